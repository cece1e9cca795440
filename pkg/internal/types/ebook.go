// Package types 定义 HTTP 层与服务层之间传递的请求、响应结构.
package types

import (
	"io"

	"github.com/yeisme/ebookshelf/pkg/internal/model"
)

// EbookFilter 列表过滤条件，空白值视为未提供.
type EbookFilter struct {
	// Text 在标题、作者、简介、分类中做不区分大小写的子串匹配，任一命中即可.
	Text string `json:"q,omitempty"`
	// Language 精确匹配.
	Language string `json:"language,omitempty"`
	// Category 对分类字段做不区分大小写的子串匹配.
	Category string `json:"category,omitempty"`
}

// Pagination 分页参数，0 表示未提供.
type Pagination struct {
	Page     int `json:"page,omitempty"`
	PageSize int `json:"pageSize,omitempty"`
}

// ListQuery 列表接口的查询参数；数值参数以字符串接收，非法值按默认处理而不是报错.
type ListQuery struct {
	Q        string `form:"q"`
	Language string `form:"language"`
	Lang     string `form:"lang"`
	Category string `form:"category"`
	Page     string `form:"page"`
	PageSize string `form:"pageSize"`
}

// Envelope 列表响应，items 永远是数组.
type Envelope struct {
	Items    []model.Ebook `json:"items"`
	Total    int64         `json:"total"`
	Page     int           `json:"page"`
	PageSize int           `json:"pageSize"`
	Pages    int           `json:"pages"`
	HasPrev  bool          `json:"hasPrev"`
	HasNext  bool          `json:"hasNext"`
	Error    string        `json:"error,omitempty"`
}

// FileUpload 上传的单个文件.
type FileUpload struct {
	Name        string
	ContentType string
	Size        int64
	Content     io.Reader `json:"-" rule:"-"`
}

// CreateEbookInput 新建条目的输入；Title、Author、PDF 必填.
type CreateEbookInput struct {
	Title       string      `json:"title"       rule:"notblank"`
	Author      string      `json:"author"      rule:"notblank"`
	Description string      `json:"description"`
	Language    string      `json:"language"`
	PriceCents  int64       `json:"price_cents" rule:"min=0"`
	Categories  string      `json:"categories"`
	Cover       *FileUpload `json:"cover"`
	PDF         *FileUpload `json:"pdf"         rule:"required"`
}

// UpdateEbookInput 部分更新输入，nil 字段保持不变.
type UpdateEbookInput struct {
	Title       *string     `json:"title"       rule:"omitempty,notblank"`
	Author      *string     `json:"author"      rule:"omitempty,notblank"`
	Description *string     `json:"description"`
	Language    *string     `json:"language"    rule:"omitempty,notblank"`
	PriceCents  *int64      `json:"price_cents" rule:"omitempty,min=0"`
	Categories  *string     `json:"categories"`
	Cover       *FileUpload `json:"cover"`
	PDF         *FileUpload `json:"pdf"`
}

// CreateEbookResponse 新建成功响应.
type CreateEbookResponse struct {
	OK bool `json:"ok"`
	ID uint `json:"id"`
}

// UpdateEbookResponse 更新成功响应，updated 为 0 或 1.
type UpdateEbookResponse struct {
	OK      bool  `json:"ok"`
	Updated int64 `json:"updated"`
}

// DeleteEbookResponse 删除成功响应.
type DeleteEbookResponse struct {
	OK      bool  `json:"ok"`
	Deleted int64 `json:"deleted"`
}

// ErrorResponse 统一错误响应.
type ErrorResponse struct {
	OK      bool     `json:"ok"`
	Error   string   `json:"error"`
	Code    string   `json:"code,omitempty"`
	Message string   `json:"message,omitempty"`
	Fields  []string `json:"fields,omitempty"`
}
