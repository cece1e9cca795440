package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"golang.org/x/sync/errgroup"

	"github.com/yeisme/ebookshelf/pkg/configs"
	ctxPkg "github.com/yeisme/ebookshelf/pkg/context"
	"github.com/yeisme/ebookshelf/pkg/internal/auth"
	"github.com/yeisme/ebookshelf/pkg/internal/model"
	"github.com/yeisme/ebookshelf/pkg/internal/repository"
	"github.com/yeisme/ebookshelf/pkg/internal/storage/blob"
	"github.com/yeisme/ebookshelf/pkg/internal/types"
	"github.com/yeisme/ebookshelf/pkg/metrics"
	"github.com/yeisme/ebookshelf/pkg/queue"
	"github.com/yeisme/ebookshelf/pkg/rule"
	"github.com/yeisme/ebookshelf/pkg/tracing"
)

// Producer 事件头中的生产者名称.
const Producer = "ebookshelf"

const defaultContentType = "application/octet-stream"

// EbookWriter 写操作所需的仓储能力.
type EbookWriter interface {
	CatalogReader
	Insert(ctx context.Context, e *model.Ebook) (uint, error)
	UpdateByID(ctx context.Context, id uint, patch repository.EbookPatch) (int64, error)
	DeleteByID(ctx context.Context, id uint) (int64, error)
}

// AdminService 管理端的新建、更新、删除，所有操作都要求管理员身份.
type AdminService struct {
	repo            EbookWriter
	blobs           blob.Store
	gen             *Generation
	pub             message.Publisher
	events          configs.EventsConfig
	defaultLanguage string
	now             func() time.Time
}

// AdminOption 配置 AdminService.
type AdminOption func(*AdminService)

// WithGeneration 写操作成功后轮换缓存代号.
func WithGeneration(g *Generation) AdminOption {
	return func(s *AdminService) { s.gen = g }
}

// WithPublisher 写操作成功后发布领域事件.
func WithPublisher(pub message.Publisher, events configs.EventsConfig) AdminOption {
	return func(s *AdminService) {
		s.pub = pub
		s.events = events
	}
}

// WithDefaultLanguage 未提供语言时使用的默认值.
func WithDefaultLanguage(lang string) AdminOption {
	return func(s *AdminService) {
		if lang = strings.TrimSpace(lang); lang != "" {
			s.defaultLanguage = lang
		}
	}
}

// WithClock 替换时钟，用于测试.
func WithClock(now func() time.Time) AdminOption {
	return func(s *AdminService) { s.now = now }
}

// NewAdminService 创建管理端服务.
func NewAdminService(repo EbookWriter, blobs blob.Store, opts ...AdminOption) *AdminService {
	s := &AdminService{
		repo:            repo,
		blobs:           blobs,
		defaultLanguage: configs.DefaultLanguage,
		now:             time.Now,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Create 上传封面（可选）与 PDF 后插入记录.
// 插入失败时已上传的文件保留，由孤儿清理任务回收.
func (s *AdminService) Create(ctx context.Context, p auth.Principal, in types.CreateEbookInput) (id uint, err error) {
	const op = "create ebook"

	defer func() { metrics.ObserveMutation("create", err) }()

	ctx, span := tracing.StartSpan(ctx, "admin.create")
	defer func() {
		tracing.RecordError(span, err)
		span.End()
	}()

	if !p.IsAdmin() {
		return 0, unauthorizedError(op)
	}

	if fields := invalidFields(in); len(fields) > 0 {
		return 0, validationError(op, validationCode(fields), fields)
	}

	var coverRef *string

	if in.Cover != nil {
		ref, err := s.upload(ctx, CoverPrefix, in.Cover)
		if err != nil {
			return 0, upstreamError(op, CodeUploadFailed, err)
		}

		coverRef = &ref
	}

	pdfRef, err := s.upload(ctx, PDFPrefix, in.PDF)
	if err != nil {
		return 0, upstreamError(op, CodeUploadFailed, err)
	}

	language := strings.TrimSpace(in.Language)
	if language == "" {
		language = s.defaultLanguage
	}

	e := model.Ebook{
		Title:       strings.TrimSpace(in.Title),
		Author:      strings.TrimSpace(in.Author),
		Description: in.Description,
		Language:    language,
		PriceCents:  in.PriceCents,
		Categories:  strings.TrimSpace(in.Categories),
		CoverPath:   coverRef,
		PDFPath:     pdfRef,
	}

	id, err = s.repo.Insert(ctx, &e)
	if err != nil {
		return 0, upstreamError(op, CodeWriteFailed, err)
	}

	s.afterMutation(ctx, op, s.events.Ebook.Created, func(pub message.Publisher) error {
		return queue.PublishEbookCreated(pub, ebookPayload(e, nil), s.eventOpts(ctx)...)
	})

	return id, nil
}

// Update 部分更新；ID 不存在时在任何上传之前返回 NotFound.
// 被替换的旧文件不删除，由孤儿清理任务回收.
func (s *AdminService) Update(ctx context.Context, p auth.Principal, id uint, in types.UpdateEbookInput) (updated int64, err error) {
	const op = "update ebook"

	defer func() { metrics.ObserveMutation("update", err) }()

	ctx, span := tracing.StartSpan(ctx, "admin.update")
	defer func() {
		tracing.RecordError(span, err)
		span.End()
	}()

	if !p.IsAdmin() {
		return 0, unauthorizedError(op)
	}

	if err := rule.ValidateStruct(in); err != nil {
		if fields := rule.Errors(err).Fields(); len(fields) > 0 {
			return 0, validationError(op, CodeInvalidFields, fields)
		}

		return 0, upstreamError(op, CodeInvalidFields, err)
	}

	if _, err := s.repo.GetByID(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return 0, notFoundError(op, id)
		}

		return 0, upstreamError(op, CodeQueryFailed, err)
	}

	patch := repository.EbookPatch{
		Title:       trimmed(in.Title),
		Author:      trimmed(in.Author),
		Description: in.Description,
		Language:    trimmed(in.Language),
		PriceCents:  in.PriceCents,
		Categories:  trimmed(in.Categories),
	}

	if in.Cover != nil {
		ref, err := s.upload(ctx, CoverPrefix, in.Cover)
		if err != nil {
			return 0, upstreamError(op, CodeUploadFailed, err)
		}

		patch.CoverPath = &ref
	}

	if in.PDF != nil {
		ref, err := s.upload(ctx, PDFPrefix, in.PDF)
		if err != nil {
			return 0, upstreamError(op, CodeUploadFailed, err)
		}

		patch.PDFPath = &ref
	}

	if patch.Empty() {
		return 0, nil
	}

	updated, err = s.repo.UpdateByID(ctx, id, patch)
	if err != nil {
		return 0, upstreamError(op, CodeWriteFailed, err)
	}

	if updated == 0 {
		return 0, notFoundError(op, id)
	}

	s.afterMutation(ctx, op, s.events.Ebook.Updated, func(pub message.Publisher) error {
		e, err := s.repo.GetByID(ctx, id)
		if err != nil {
			return err
		}

		return queue.PublishEbookUpdated(pub, ebookPayload(e, patchFields(patch)), s.eventOpts(ctx)...)
	})

	return updated, nil
}

// Delete 并发删除封面与 PDF，全部成功后再删除记录.
// 文件不存在不算错误；其他删除失败时保留记录.
func (s *AdminService) Delete(ctx context.Context, p auth.Principal, id uint) (deleted int64, err error) {
	const op = "delete ebook"

	defer func() { metrics.ObserveMutation("delete", err) }()

	ctx, span := tracing.StartSpan(ctx, "admin.delete")
	defer func() {
		tracing.RecordError(span, err)
		span.End()
	}()

	if !p.IsAdmin() {
		return 0, unauthorizedError(op)
	}

	e, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return 0, notFoundError(op, id)
		}

		return 0, upstreamError(op, CodeQueryFailed, err)
	}

	if err := s.removeBlobs(ctx, blobRefs(e)); err != nil {
		return 0, upstreamError(op, CodeRemoveFailed, err)
	}

	deleted, err = s.repo.DeleteByID(ctx, id)
	if err != nil {
		return 0, upstreamError(op, CodeWriteFailed, err)
	}

	if deleted == 0 {
		return 0, notFoundError(op, id)
	}

	s.afterMutation(ctx, op, s.events.Ebook.Deleted, func(pub message.Publisher) error {
		return queue.PublishEbookDeleted(pub, queue.EbookDeletedPayload{
			ID:        e.ID,
			CoverPath: e.CoverPath,
			PDFPath:   e.PDFPath,
		}, s.eventOpts(ctx)...)
	})

	return deleted, nil
}

func (s *AdminService) upload(ctx context.Context, prefix string, f *types.FileUpload) (string, error) {
	if f == nil || f.Content == nil {
		return "", fmt.Errorf("%s: empty upload", prefix)
	}

	contentType := f.ContentType
	if contentType == "" {
		contentType = defaultContentType
	}

	return s.blobs.Store(ctx, f.Content, f.Size, contentType, BlobKey(prefix, f.Name, s.now()))
}

func (s *AdminService) removeBlobs(ctx context.Context, refs []string) error {
	logger := ctxPkg.Logger(ctx)

	g, gctx := errgroup.WithContext(ctx)

	for _, ref := range refs {
		g.Go(func() error {
			err := s.blobs.Remove(gctx, ref)
			if errors.Is(err, blob.ErrInvalidKey) {
				// 不属于当前存储后端的引用，跳过
				logger.Warn().Str("reference", ref).Err(err).Msg("skip foreign blob reference")
				return nil
			}

			return err
		})
	}

	return g.Wait()
}

// afterMutation 轮换缓存代号并发布事件，失败只记录日志.
func (s *AdminService) afterMutation(ctx context.Context, op string, enabled bool, publish func(message.Publisher) error) {
	logger := ctxPkg.Logger(ctx)

	if _, err := s.gen.Rotate(ctx); err != nil {
		logger.Warn().Err(err).Str("op", op).Msg("rotate catalog cache generation failed")
	}

	if s.pub == nil || !s.events.Enabled || !enabled {
		return
	}

	if err := publish(s.pub); err != nil {
		logger.Warn().Err(err).Str("op", op).Msg("publish catalog event failed")
	}
}

func (s *AdminService) eventOpts(ctx context.Context) []func(*queue.EventHeader) {
	return []func(*queue.EventHeader){
		queue.WithProducer(Producer),
		queue.WithTraceID(ctxPkg.RequestID(ctx)),
	}
}

// invalidFields 返回缺失或非法的字段名.
func invalidFields(in types.CreateEbookInput) []string {
	err := rule.ValidateStruct(in)
	fields := rule.Errors(err).Fields()

	if in.PDF != nil && in.PDF.Content == nil && !contains(fields, "pdf") {
		fields = append(fields, "pdf")
	}

	if err != nil && len(fields) == 0 {
		fields = []string{"input"}
	}

	return fields
}

func validationCode(fields []string) string {
	for _, f := range fields {
		switch f {
		case "title", "author", "pdf":
			return CodeMissingFields
		}
	}

	return CodeInvalidFields
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}

	return false
}

func trimmed(s *string) *string {
	if s == nil {
		return nil
	}

	v := strings.TrimSpace(*s)

	return &v
}

func blobRefs(e model.Ebook) []string {
	refs := make([]string, 0, 2)

	if e.CoverPath != nil && strings.TrimSpace(*e.CoverPath) != "" {
		refs = append(refs, *e.CoverPath)
	}

	if strings.TrimSpace(e.PDFPath) != "" {
		refs = append(refs, e.PDFPath)
	}

	return refs
}

func patchFields(p repository.EbookPatch) []string {
	cols := p.Columns()
	fields := make([]string, 0, len(cols))

	for _, name := range []string{"title", "author", "description", "language", "price_cents", "categories", "cover_path", "pdf_path"} {
		if _, ok := cols[name]; ok {
			fields = append(fields, name)
		}
	}

	return fields
}

func ebookPayload(e model.Ebook, fields []string) queue.EbookPayload {
	return queue.EbookPayload{
		ID:         e.ID,
		Title:      e.Title,
		Author:     e.Author,
		Language:   e.Language,
		Categories: e.Categories,
		CoverPath:  e.CoverPath,
		PDFPath:    e.PDFPath,
		Fields:     fields,
	}
}
