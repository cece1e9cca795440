package handle

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/yeisme/ebookshelf/pkg/internal/service"
	"github.com/yeisme/ebookshelf/pkg/internal/types"
)

// multipartMemory 解析 multipart 时保留在内存中的上限，超出部分写入临时文件.
const multipartMemory = 8 << 20

// ebookForm 已解析的表单，Close 释放打开的文件.
type ebookForm struct {
	r       *http.Request
	closers []io.Closer
}

// parseForm 解析 multipart 或 urlencoded 表单，请求体超过 limit 时返回校验错误.
func parseForm(w http.ResponseWriter, r *http.Request, op string, limit int64) (*ebookForm, error) {
	r.Body = http.MaxBytesReader(w, r.Body, limit)

	if err := r.ParseMultipartForm(multipartMemory); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, service.Validation(op, service.CodeTooLarge, "body")
		}

		return nil, service.Validation(op, service.CodeMalformed, "body")
	}

	return &ebookForm{r: r}, nil
}

// value 返回字段值以及是否提供.
func (f *ebookForm) value(name string) (string, bool) {
	vs, ok := f.r.PostForm[name]
	if !ok || len(vs) == 0 {
		return "", false
	}

	return vs[0], true
}

func (f *ebookForm) optional(name string) *string {
	v, ok := f.value(name)
	if !ok {
		return nil
	}

	return &v
}

// price 解析 price_cents，空串按 0 处理.
func (f *ebookForm) price(op string) (*int64, error) {
	v, ok := f.value("price_cents")
	if !ok {
		return nil, nil
	}

	v = strings.TrimSpace(v)
	if v == "" {
		zero := int64(0)
		return &zero, nil
	}

	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return nil, service.Validation(op, service.CodeInvalidFields, "price_cents")
	}

	return &n, nil
}

// file 打开上传的文件；未上传或为空文件时返回 nil.
func (f *ebookForm) file(name string) (*types.FileUpload, error) {
	if f.r.MultipartForm == nil {
		return nil, nil
	}

	headers := f.r.MultipartForm.File[name]
	if len(headers) == 0 || headers[0].Size == 0 {
		return nil, nil
	}

	fh := headers[0]

	src, err := fh.Open()
	if err != nil {
		return nil, err
	}

	f.closers = append(f.closers, src)

	return &types.FileUpload{
		Name:        fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Size:        fh.Size,
		Content:     src,
	}, nil
}

// Close 关闭文件并清理临时文件.
func (f *ebookForm) Close() {
	for _, c := range f.closers {
		_ = c.Close()
	}

	if f.r.MultipartForm != nil {
		_ = f.r.MultipartForm.RemoveAll()
	}
}

// createInput 构造新建输入.
func (f *ebookForm) createInput(op string) (types.CreateEbookInput, error) {
	in := types.CreateEbookInput{}

	in.Title, _ = f.value("title")
	in.Author, _ = f.value("author")
	in.Description, _ = f.value("description")
	in.Language, _ = f.value("language")
	in.Categories, _ = f.value("categories")

	price, err := f.price(op)
	if err != nil {
		return in, err
	}

	if price != nil {
		in.PriceCents = *price
	}

	if in.Cover, err = f.file("cover"); err != nil {
		return in, err
	}

	if in.PDF, err = f.file("pdf"); err != nil {
		return in, err
	}

	return in, nil
}

// updateInput 构造部分更新输入，只包含请求中出现的字段.
func (f *ebookForm) updateInput(op string) (types.UpdateEbookInput, error) {
	in := types.UpdateEbookInput{
		Title:       f.optional("title"),
		Author:      f.optional("author"),
		Description: f.optional("description"),
		Language:    f.optional("language"),
		Categories:  f.optional("categories"),
	}

	var err error

	if in.PriceCents, err = f.price(op); err != nil {
		return in, err
	}

	if in.Cover, err = f.file("cover"); err != nil {
		return in, err
	}

	if in.PDF, err = f.file("pdf"); err != nil {
		return in, err
	}

	return in, nil
}
