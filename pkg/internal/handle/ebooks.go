package handle

import (
	"net/http"

	"github.com/gin-gonic/gin"

	ctxPkg "github.com/yeisme/ebookshelf/pkg/context"
	"github.com/yeisme/ebookshelf/pkg/internal/auth"
	"github.com/yeisme/ebookshelf/pkg/internal/service"
	"github.com/yeisme/ebookshelf/pkg/internal/types"
)

// ListEbooks 公开列表：搜索、过滤、分页.
//
//	@Summary		电子书列表
//	@Description	按关键字、语言、分类过滤，按创建时间倒序分页；非法分页参数被收敛而不是拒绝
//	@Tags			ebooks
//	@Produce		json
//	@Param			q			query		string	false	"标题/作者/简介/分类中的子串"
//	@Param			language	query		string	false	"语言，精确匹配（别名 lang）"
//	@Param			category	query		string	false	"分类子串"
//	@Param			page		query		int		false	"页码，从 1 开始"
//	@Param			pageSize	query		int		false	"每页条数，默认 8，上限 50"
//	@Success		200			{object}	types.Envelope
//	@Failure		500			{object}	types.Envelope
//	@Router			/api/ebooks [get]
func (h *Handlers) ListEbooks(c *gin.Context) {
	var q types.ListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		logger := ctxPkg.Logger(c.Request.Context())
		logger.Debug().Err(err).Msg("ignore malformed list query")
	}

	filter, page := service.ParseListQuery(q)

	env, err := h.catalog.List(c.Request.Context(), filter, page)
	if err != nil {
		logger := ctxPkg.Logger(c.Request.Context())
		logger.Error().Err(err).Msg("list ebooks failed")

		_ = c.Error(err)
		c.JSON(service.KindOf(err).HTTPStatus(), env)

		return
	}

	c.JSON(http.StatusOK, env)
}

// GetEbook 按 ID 获取单条记录.
//
//	@Summary	电子书详情
//	@Tags		ebooks
//	@Produce	json
//	@Param		id	path		int	true	"电子书 ID"
//	@Success	200	{object}	model.Ebook
//	@Failure	400	{object}	types.ErrorResponse
//	@Failure	404	{object}	types.ErrorResponse
//	@Failure	500	{object}	types.ErrorResponse
//	@Router		/api/ebooks/{id} [get]
func (h *Handlers) GetEbook(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		writeError(c, err)
		return
	}

	e, err := h.catalog.Get(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, e)
}

// CreateEbook 新建条目（管理员）.
//
//	@Summary		新建电子书
//	@Description	multipart 表单：title、author、pdf 必填；cover、description、language、price_cents、categories 可选
//	@Tags			ebooks
//	@Accept			multipart/form-data
//	@Produce		json
//	@Param			title		formData	string	true	"标题"
//	@Param			author		formData	string	true	"作者"
//	@Param			description	formData	string	false	"简介"
//	@Param			language	formData	string	false	"语言，默认 fr"
//	@Param			price_cents	formData	int		false	"价格（分）"
//	@Param			categories	formData	string	false	"分类"
//	@Param			cover		formData	file	false	"封面"
//	@Param			pdf			formData	file	true	"PDF 文件"
//	@Success		200			{object}	types.CreateEbookResponse
//	@Failure		400			{object}	types.ErrorResponse
//	@Failure		401			{object}	types.ErrorResponse
//	@Failure		500			{object}	types.ErrorResponse
//	@Router			/api/ebooks [post]
func (h *Handlers) CreateEbook(c *gin.Context) {
	const op = "create ebook"

	p, ok := requireAdmin(c, op)
	if !ok {
		return
	}

	form, err := parseForm(c.Writer, c.Request, op, h.maxUpload)
	if err != nil {
		writeError(c, err)
		return
	}
	defer form.Close()

	in, err := form.createInput(op)
	if err != nil {
		writeError(c, err)
		return
	}

	id, err := h.admin.Create(c.Request.Context(), p, in)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, types.CreateEbookResponse{OK: true, ID: id})
}

// UpdateEbook 部分更新（管理员）.
//
//	@Summary		更新电子书
//	@Description	multipart 表单，所有字段可选；只更新请求中出现的字段
//	@Tags			ebooks
//	@Accept			multipart/form-data
//	@Produce		json
//	@Param			id			path		int		true	"电子书 ID"
//	@Param			title		formData	string	false	"标题"
//	@Param			author		formData	string	false	"作者"
//	@Param			description	formData	string	false	"简介"
//	@Param			language	formData	string	false	"语言"
//	@Param			price_cents	formData	int		false	"价格（分）"
//	@Param			categories	formData	string	false	"分类"
//	@Param			cover		formData	file	false	"新封面"
//	@Param			pdf			formData	file	false	"新 PDF"
//	@Success		200			{object}	types.UpdateEbookResponse
//	@Failure		400			{object}	types.ErrorResponse
//	@Failure		401			{object}	types.ErrorResponse
//	@Failure		404			{object}	types.ErrorResponse
//	@Failure		500			{object}	types.ErrorResponse
//	@Router			/api/ebooks/{id} [put]
func (h *Handlers) UpdateEbook(c *gin.Context) {
	const op = "update ebook"

	p, ok := requireAdmin(c, op)
	if !ok {
		return
	}

	id, err := parseID(c)
	if err != nil {
		writeError(c, err)
		return
	}

	form, err := parseForm(c.Writer, c.Request, op, h.maxUpload)
	if err != nil {
		writeError(c, err)
		return
	}
	defer form.Close()

	in, err := form.updateInput(op)
	if err != nil {
		writeError(c, err)
		return
	}

	n, err := h.admin.Update(c.Request.Context(), p, id, in)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, types.UpdateEbookResponse{OK: true, Updated: n})
}

// DeleteEbook 删除条目及其文件（管理员）.
//
//	@Summary	删除电子书
//	@Tags		ebooks
//	@Produce	json
//	@Param		id	path		int	true	"电子书 ID"
//	@Success	200	{object}	types.DeleteEbookResponse
//	@Failure	400	{object}	types.ErrorResponse
//	@Failure	401	{object}	types.ErrorResponse
//	@Failure	404	{object}	types.ErrorResponse
//	@Failure	500	{object}	types.ErrorResponse
//	@Router		/api/ebooks/{id} [delete]
func (h *Handlers) DeleteEbook(c *gin.Context) {
	const op = "delete ebook"

	p, ok := requireAdmin(c, op)
	if !ok {
		return
	}

	id, err := parseID(c)
	if err != nil {
		writeError(c, err)
		return
	}

	n, err := h.admin.Delete(c.Request.Context(), p, id)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, types.DeleteEbookResponse{OK: true, Deleted: n})
}

// requireAdmin 在读取请求体之前拒绝非管理员.
func requireAdmin(c *gin.Context, op string) (auth.Principal, bool) {
	p := auth.FromContext(c.Request.Context())
	if !p.IsAdmin() {
		writeError(c, service.Unauthorized(op, service.CodeAdminRequired, "admin session required"))
		return p, false
	}

	return p, true
}
