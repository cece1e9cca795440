// Package repository 负责 ebooks 表的读写，过滤条件全部以绑定参数传入.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/yeisme/ebookshelf/pkg/internal/model"
	"github.com/yeisme/ebookshelf/pkg/internal/types"
)

// ErrNotFound 指定 ID 的条目不存在.
var ErrNotFound = errors.New("ebook not found")

// likeEscape LIKE 模式使用的转义字符.
const likeEscape = "!"

// EbookPatch 部分更新，nil 字段不写入.
type EbookPatch struct {
	Title       *string
	Author      *string
	Description *string
	Language    *string
	PriceCents  *int64
	Categories  *string
	CoverPath   *string
	PDFPath     *string
}

// Columns 返回需要更新的列及其取值.
func (p EbookPatch) Columns() map[string]any {
	cols := make(map[string]any, 8)

	set := func(name string, v any, ok bool) {
		if ok {
			cols[name] = v
		}
	}

	set("title", deref(p.Title), p.Title != nil)
	set("author", deref(p.Author), p.Author != nil)
	set("description", deref(p.Description), p.Description != nil)
	set("language", deref(p.Language), p.Language != nil)
	set("categories", deref(p.Categories), p.Categories != nil)
	set("cover_path", deref(p.CoverPath), p.CoverPath != nil)
	set("pdf_path", deref(p.PDFPath), p.PDFPath != nil)

	if p.PriceCents != nil {
		cols["price_cents"] = *p.PriceCents
	}

	return cols
}

// Empty 没有任何字段需要更新.
func (p EbookPatch) Empty() bool {
	return len(p.Columns()) == 0
}

func deref[T any](v *T) T {
	var zero T
	if v == nil {
		return zero
	}

	return *v
}

// EbookRepository ebooks 表的访问入口，可安全并发使用.
type EbookRepository struct {
	db *gorm.DB
}

// NewEbookRepository 创建仓储.
func NewEbookRepository(db *gorm.DB) *EbookRepository {
	return &EbookRepository{db: db}
}

// Insert 插入新行并返回分配的 ID，CreatedAt 为零值时由数据库层填充为当前 UTC 时间.
func (r *EbookRepository) Insert(ctx context.Context, e *model.Ebook) (uint, error) {
	if err := r.db.WithContext(ctx).Create(e).Error; err != nil {
		return 0, fmt.Errorf("insert ebook: %w", err)
	}

	return e.ID, nil
}

// UpdateByID 只更新 patch 中提供的字段，返回受影响行数（0 或 1）.
func (r *EbookRepository) UpdateByID(ctx context.Context, id uint, patch EbookPatch) (int64, error) {
	cols := patch.Columns()
	if len(cols) == 0 {
		return 0, nil
	}

	res := r.db.WithContext(ctx).Model(&model.Ebook{}).Where("id = ?", id).Updates(cols)
	if res.Error != nil {
		return 0, fmt.Errorf("update ebook %d: %w", id, res.Error)
	}

	return res.RowsAffected, nil
}

// DeleteByID 物理删除，返回受影响行数（0 或 1）.
func (r *EbookRepository) DeleteByID(ctx context.Context, id uint) (int64, error) {
	res := r.db.WithContext(ctx).Delete(&model.Ebook{}, id)
	if res.Error != nil {
		return 0, fmt.Errorf("delete ebook %d: %w", id, res.Error)
	}

	return res.RowsAffected, nil
}

// GetByID 按 ID 读取，不存在时返回 ErrNotFound.
func (r *EbookRepository) GetByID(ctx context.Context, id uint) (model.Ebook, error) {
	var e model.Ebook

	err := r.db.WithContext(ctx).Where("id = ?", id).Take(&e).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Ebook{}, ErrNotFound
	}

	if err != nil {
		return model.Ebook{}, fmt.Errorf("get ebook %d: %w", id, err)
	}

	return e, nil
}

// QueryPage 按过滤条件统计总数并取出一页，排序固定为 created_at 倒序、id 倒序.
func (r *EbookRepository) QueryPage(ctx context.Context, f types.EbookFilter, offset, limit int) ([]model.Ebook, int64, error) {
	var total int64

	db := r.db.WithContext(ctx)

	if err := db.Model(&model.Ebook{}).Scopes(FilterScope(f)).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count ebooks: %w", err)
	}

	items := make([]model.Ebook, 0, limit)
	if total == 0 || offset >= int(total) {
		return items, total, nil
	}

	err := db.Scopes(FilterScope(f)).
		Order("created_at DESC").
		Order("id DESC").
		Offset(offset).
		Limit(limit).
		Find(&items).Error
	if err != nil {
		return nil, 0, fmt.Errorf("query ebooks: %w", err)
	}

	return items, total, nil
}

// ReferencedBlobs 返回所有行引用的封面与 PDF 引用集合.
func (r *EbookRepository) ReferencedBlobs(ctx context.Context) (map[string]struct{}, error) {
	rows, err := r.db.WithContext(ctx).Model(&model.Ebook{}).Select("cover_path", "pdf_path").Rows()
	if err != nil {
		return nil, fmt.Errorf("collect blob references: %w", err)
	}
	defer rows.Close()

	out := make(map[string]struct{})

	for rows.Next() {
		var (
			cover sql.NullString
			pdf   string
		)

		if err := rows.Scan(&cover, &pdf); err != nil {
			return nil, fmt.Errorf("scan blob references: %w", err)
		}

		out[pdf] = struct{}{}

		if cover.Valid && cover.String != "" {
			out[cover.String] = struct{}{}
		}
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("collect blob references: %w", err)
	}

	return out, nil
}

// Count 返回总行数.
func (r *EbookRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&model.Ebook{}).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("count ebooks: %w", err)
	}

	return n, nil
}

// FilterScope 把过滤条件转换为参数化的 WHERE 子句.
func FilterScope(f types.EbookFilter) func(*gorm.DB) *gorm.DB {
	text := strings.TrimSpace(f.Text)
	lang := strings.TrimSpace(f.Language)
	category := strings.TrimSpace(f.Category)

	return func(db *gorm.DB) *gorm.DB {
		if text != "" {
			p := containsPattern(text)
			db = db.Where(
				"(LOWER(title) LIKE LOWER(?) ESCAPE '"+likeEscape+"' OR LOWER(author) LIKE LOWER(?) ESCAPE '"+likeEscape+
					"' OR LOWER(description) LIKE LOWER(?) ESCAPE '"+likeEscape+"' OR LOWER(categories) LIKE LOWER(?) ESCAPE '"+likeEscape+"')",
				p, p, p, p,
			)
		}

		if lang != "" {
			db = db.Where("language = ?", lang)
		}

		if category != "" {
			db = db.Where("LOWER(categories) LIKE LOWER(?) ESCAPE '"+likeEscape+"'", containsPattern(category))
		}

		return db
	}
}

var likeReplacer = strings.NewReplacer(
	likeEscape, likeEscape+likeEscape,
	"%", likeEscape+"%",
	"_", likeEscape+"_",
)

// containsPattern 构造子串匹配模式，用户输入中的通配符按字面匹配.
// 大小写折叠交给数据库的 LOWER，列与模式两侧一致.
func containsPattern(s string) string {
	return "%" + likeReplacer.Replace(s) + "%"
}
