package handle

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	ctxPkg "github.com/yeisme/ebookshelf/pkg/context"
	"github.com/yeisme/ebookshelf/pkg/internal/auth"
	"github.com/yeisme/ebookshelf/pkg/internal/service"
	"github.com/yeisme/ebookshelf/pkg/internal/types"
	"github.com/yeisme/ebookshelf/pkg/rule"
)

// Login 管理员登录，成功后写入 HttpOnly 会话 Cookie.
//
//	@Summary		管理员登录
//	@Tags			auth
//	@Accept			json
//	@Accept			x-www-form-urlencoded
//	@Produce		json
//	@Param			request	body		types.LoginRequest	true	"登录凭据"
//	@Success		200		{object}	types.LoginResponse
//	@Failure		400		{object}	types.ErrorResponse
//	@Failure		401		{object}	types.ErrorResponse
//	@Router			/api/login [post]
func (h *Handlers) Login(c *gin.Context) {
	const op = "login"

	var req types.LoginRequest

	err := c.ShouldBind(&req)
	if err == nil {
		err = rule.ValidateStruct(&req)
	}

	if err != nil {
		if fields := rule.Errors(err).Fields(); len(fields) > 0 {
			writeError(c, service.Validation(op, service.CodeMissingFields, fields...))
			return
		}

		writeError(c, service.Validation(op, service.CodeMalformed, "body"))

		return
	}

	sess, err := h.sessions.Login(req.Email, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrBadCredentials) {
			writeError(c, service.Unauthorized(op, service.CodeBadCredential, "invalid email or password"))
			return
		}

		writeError(c, err)

		return
	}

	h.setSessionCookie(c, sess.Token, int(h.sessions.TTL().Seconds()))

	logger := ctxPkg.Logger(c.Request.Context())
	logger.Info().Str("session_id", sess.ID).Time("expires_at", sess.ExpiresAt).Msg("admin logged in")

	c.JSON(http.StatusOK, types.LoginResponse{OK: true, Email: sess.Email})
}

// Logout 吊销当前会话并清除 Cookie；未登录时同样返回成功.
//
//	@Summary	登出
//	@Tags		auth
//	@Produce	json
//	@Success	200	{object}	types.OKResponse
//	@Router		/api/logout [post]
func (h *Handlers) Logout(c *gin.Context) {
	if token, err := c.Cookie(h.sessions.CookieName()); err == nil && token != "" {
		if err := h.sessions.Revoke(c.Request.Context(), token); err != nil {
			logger := ctxPkg.Logger(c.Request.Context())
			logger.Warn().Err(err).Msg("revoke session failed")
		}
	}

	h.setSessionCookie(c, "", -1)

	c.JSON(http.StatusOK, types.OKResponse{OK: true})
}

// Me 返回当前会话身份.
//
//	@Summary	当前会话
//	@Tags		auth
//	@Produce	json
//	@Success	200	{object}	types.MeResponse
//	@Router		/api/me [get]
func (h *Handlers) Me(c *gin.Context) {
	p := auth.FromContext(c.Request.Context())

	resp := types.MeResponse{IsAdmin: p.IsAdmin()}
	if p.IsAdmin() {
		email := p.Email
		resp.Email = &email
	}

	c.JSON(http.StatusOK, resp)
}

func (h *Handlers) setSessionCookie(c *gin.Context, value string, maxAge int) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.sessions.CookieName(), value, maxAge, "/", "", h.sessions.CookieSecure(), true)
}
