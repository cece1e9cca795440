// Package service 实现目录查询、管理端写操作与孤儿文件清理.
package service

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/yeisme/ebookshelf/pkg/cache"
	"github.com/yeisme/ebookshelf/pkg/configs"
	ctxPkg "github.com/yeisme/ebookshelf/pkg/context"
	"github.com/yeisme/ebookshelf/pkg/internal/model"
	"github.com/yeisme/ebookshelf/pkg/internal/repository"
	"github.com/yeisme/ebookshelf/pkg/internal/storage/kv"
	"github.com/yeisme/ebookshelf/pkg/internal/types"
	"github.com/yeisme/ebookshelf/pkg/metrics"
	"github.com/yeisme/ebookshelf/pkg/tracing"
)

// generationKey 目录缓存代号在 KV 中的键.
const generationKey = "catalog:generation"

// listCachePrefix 列表缓存键前缀.
const listCachePrefix = "catalog:list:"

// CatalogReader 目录查询所需的仓储能力.
type CatalogReader interface {
	QueryPage(ctx context.Context, f types.EbookFilter, offset, limit int) ([]model.Ebook, int64, error)
	GetByID(ctx context.Context, id uint) (model.Ebook, error)
}

// Generation 目录缓存代号，每次写操作后轮换，旧代号下的缓存随之失效.
type Generation struct {
	store kv.KVStore
}

// NewGeneration 创建缓存代号，store 为 nil 时所有操作为空操作.
func NewGeneration(store kv.KVStore) *Generation {
	return &Generation{store: store}
}

// Current 返回当前代号，不存在时生成一个.
func (g *Generation) Current(ctx context.Context) (string, error) {
	if g == nil || g.store == nil {
		return "", nil
	}

	b, err := g.store.Get(ctx, generationKey)
	if err == nil {
		return string(b), nil
	}

	if !errors.Is(err, kv.ErrNotFound) {
		return "", err
	}

	return g.Rotate(ctx)
}

// Rotate 生成并保存新的代号.
func (g *Generation) Rotate(ctx context.Context) (string, error) {
	if g == nil || g.store == nil {
		return "", nil
	}

	gen := NewULID(time.Now())
	if err := g.store.Set(ctx, generationKey, []byte(gen), 0); err != nil {
		return "", err
	}

	return gen, nil
}

// CatalogService 公开目录查询.
type CatalogService struct {
	repo  CatalogReader
	cfg   configs.CatalogConfig
	cache *cache.Cache
	gen   *Generation
}

// NewCatalogService 创建目录查询服务；store 为 nil 或配置关闭缓存时直接查库.
func NewCatalogService(repo CatalogReader, store kv.KVStore, cfg configs.CatalogConfig) *CatalogService {
	if cfg.DefaultPageSize < 1 {
		cfg.DefaultPageSize = configs.DefaultPageSize
	}

	if cfg.MaxPageSize < cfg.DefaultPageSize {
		cfg.MaxPageSize = max(configs.DefaultMaxPageSize, cfg.DefaultPageSize)
	}

	s := &CatalogService{repo: repo, cfg: cfg}

	if store != nil && cfg.CacheEnabled {
		s.cache = cache.NewCache(store, listCachePrefix)
		s.gen = NewGeneration(store)
	}

	return s
}

// ParseListQuery 把查询串参数转换为过滤条件与分页参数，lang 是 language 的别名.
// 非数字的分页参数按未提供处理.
func ParseListQuery(q types.ListQuery) (types.EbookFilter, types.Pagination) {
	language := q.Language
	if strings.TrimSpace(language) == "" {
		language = q.Lang
	}

	return types.EbookFilter{Text: q.Q, Language: language, Category: q.Category},
		types.Pagination{Page: atoi(q.Page), PageSize: atoi(q.PageSize)}
}

func atoi(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0
	}

	return n
}

// NormalizeFilter 去除首尾空白，空白值视为未提供.
func NormalizeFilter(f types.EbookFilter) types.EbookFilter {
	return types.EbookFilter{
		Text:     strings.TrimSpace(f.Text),
		Language: strings.TrimSpace(f.Language),
		Category: strings.TrimSpace(f.Category),
	}
}

// NormalizePagination page<1 取 1；pageSize<=0 取默认值，超过上限取上限.
func (s *CatalogService) NormalizePagination(p types.Pagination) types.Pagination {
	if p.Page < 1 {
		p.Page = 1
	}

	switch {
	case p.PageSize <= 0:
		p.PageSize = s.cfg.DefaultPageSize
	case p.PageSize > s.cfg.MaxPageSize:
		p.PageSize = s.cfg.MaxPageSize
	}

	return p
}

// PageCount pages = max(1, ceil(total/pageSize)).
func PageCount(total int64, pageSize int) int {
	if total <= 0 || pageSize <= 0 {
		return 1
	}

	size := int64(pageSize)

	return int((total + size - 1) / size)
}

// List 按过滤条件分页查询，超出范围的页码被收敛到最后一页.
// 失败时返回 FailedEnvelope 与上游错误.
func (s *CatalogService) List(ctx context.Context, f types.EbookFilter, p types.Pagination) (env types.Envelope, err error) {
	f = NormalizeFilter(f)
	p = s.NormalizePagination(p)

	ctx, span := tracing.StartSpan(ctx, "catalog.list", trace.WithAttributes(
		attribute.Int("catalog.page", p.Page),
		attribute.Int("catalog.page_size", p.PageSize),
		attribute.Bool("catalog.filtered", f != types.EbookFilter{}),
	))
	defer func() {
		tracing.RecordError(span, err)
		span.End()
	}()

	if s.cache == nil {
		return s.listObserved(ctx, f, p, metrics.ResultMiss)
	}

	gen, err := s.gen.Current(ctx)
	if err != nil {
		logger := ctxPkg.Logger(ctx)
		logger.Warn().Err(err).Msg("catalog cache generation unavailable, bypassing cache")

		return s.listObserved(ctx, f, p, metrics.ResultMiss)
	}

	env, hit, err := cache.GetOrSet(ctx, s.cache, listCacheKey(gen, f, p), func() (types.Envelope, error) {
		return s.query(ctx, f, p)
	}, s.cfg.CacheTTL)
	if err != nil {
		metrics.CatalogQueries.WithLabelValues(metrics.ResultError).Inc()
		return FailedEnvelope(p), err
	}

	result := metrics.ResultMiss
	if hit {
		result = metrics.ResultHit
	}

	metrics.CatalogQueries.WithLabelValues(result).Inc()

	return env, nil
}

func (s *CatalogService) listObserved(ctx context.Context, f types.EbookFilter, p types.Pagination, result string) (types.Envelope, error) {
	env, err := s.query(ctx, f, p)
	if err != nil {
		metrics.CatalogQueries.WithLabelValues(metrics.ResultError).Inc()
		return FailedEnvelope(p), err
	}

	metrics.CatalogQueries.WithLabelValues(result).Inc()

	return env, nil
}

func (s *CatalogService) query(ctx context.Context, f types.EbookFilter, p types.Pagination) (types.Envelope, error) {
	const op = "catalog list"

	items, total, err := s.repo.QueryPage(ctx, f, (p.Page-1)*p.PageSize, p.PageSize)
	if err != nil {
		return types.Envelope{}, upstreamError(op, CodeQueryFailed, err)
	}

	pages := PageCount(total, p.PageSize)

	if p.Page > pages {
		p.Page = pages

		items, total, err = s.repo.QueryPage(ctx, f, (p.Page-1)*p.PageSize, p.PageSize)
		if err != nil {
			return types.Envelope{}, upstreamError(op, CodeQueryFailed, err)
		}

		// 两次查询之间数据可能变化
		pages = PageCount(total, p.PageSize)
		p.Page = min(p.Page, pages)
	}

	if items == nil {
		items = []model.Ebook{}
	}

	return types.Envelope{
		Items:    items,
		Total:    total,
		Page:     p.Page,
		PageSize: p.PageSize,
		Pages:    pages,
		HasPrev:  p.Page > 1,
		HasNext:  p.Page < pages,
	}, nil
}

// FailedEnvelope 查询失败时返回的空列表.
func FailedEnvelope(p types.Pagination) types.Envelope {
	return types.Envelope{
		Items:    []model.Ebook{},
		Total:    0,
		Page:     1,
		PageSize: p.PageSize,
		Pages:    1,
		Error:    string(KindUpstream),
	}
}

// Get 按 ID 查询单条记录.
func (s *CatalogService) Get(ctx context.Context, id uint) (model.Ebook, error) {
	const op = "catalog get"

	e, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return model.Ebook{}, notFoundError(op, id)
		}

		return model.Ebook{}, upstreamError(op, CodeQueryFailed, err)
	}

	return e, nil
}

// listCacheKey 对规范化后的查询与当前代号做 xxhash.
func listCacheKey(gen string, f types.EbookFilter, p types.Pagination) string {
	d := xxhash.New()

	for _, part := range []string{gen, f.Text, f.Language, f.Category, strconv.Itoa(p.Page), strconv.Itoa(p.PageSize)} {
		_, _ = d.WriteString(part)
		_, _ = d.Write([]byte{0})
	}

	return strconv.FormatUint(d.Sum64(), 16)
}
