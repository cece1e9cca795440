// Package model 定义持久化实体.
package model

import "time"

// Ebook 目录中的一本电子书.
// 采用物理删除，ID 自增且不复用；PDFPath 对已入库的行始终非空.
type Ebook struct {
	ID          uint      `gorm:"primaryKey;autoIncrement"              json:"id"`
	Title       string    `gorm:"size:512;not null"                     json:"title"`
	Author      string    `gorm:"size:512;not null"                     json:"author"`
	Description string    `gorm:"type:text;not null;default:''"         json:"description"`
	Language    string    `gorm:"size:32;not null;default:fr;index"     json:"language"`
	PriceCents  int64     `gorm:"not null;default:0"                    json:"price_cents"`
	Categories  string    `gorm:"size:1024;not null;default:''"         json:"categories"`
	CoverPath   *string   `gorm:"size:1024"                             json:"cover_path"`
	PDFPath     string    `gorm:"column:pdf_path;size:1024;not null"    json:"pdf_path"`
	CreatedAt   time.Time `gorm:"not null;index;autoCreateTime"         json:"created_at"`
}

// TableName 固定表名.
func (Ebook) TableName() string {
	return "ebooks"
}
