package service

import (
	"context"
	"fmt"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"

	"github.com/yeisme/ebookshelf/pkg/configs"
	ctxPkg "github.com/yeisme/ebookshelf/pkg/context"
	"github.com/yeisme/ebookshelf/pkg/internal/storage/blob"
	"github.com/yeisme/ebookshelf/pkg/metrics"
	"github.com/yeisme/ebookshelf/pkg/queue"
)

// BlobReferencer 返回所有记录引用的文件.
type BlobReferencer interface {
	ReferencedBlobs(ctx context.Context) (map[string]struct{}, error)
}

// SweepResult 一次清理的结果.
type SweepResult struct {
	Scanned int
	Removed []string
	Failed  int
	DryRun  bool
}

// Sweeper 删除没有任何记录引用、且早于宽限期的封面与 PDF.
type Sweeper struct {
	repo  BlobReferencer
	blobs blob.Store
	cfg   configs.SweepConfig
	pub   message.Publisher
	now   func() time.Time
}

// NewSweeper 创建清理器，pub 为 nil 时不发布事件.
func NewSweeper(repo BlobReferencer, blobs blob.Store, cfg configs.SweepConfig, pub message.Publisher) *Sweeper {
	if cfg.GracePeriod <= 0 {
		cfg.GracePeriod = configs.DefaultSweepGrace
	}

	return &Sweeper{repo: repo, blobs: blobs, cfg: cfg, pub: pub, now: time.Now}
}

// SetClock 替换时钟，用于测试.
func (s *Sweeper) SetClock(now func() time.Time) {
	s.now = now
}

// Run 执行一次清理；单个文件删除失败只计数，不中断.
func (s *Sweeper) Run(ctx context.Context) (SweepResult, error) {
	logger := ctxPkg.Logger(ctx)
	res := SweepResult{DryRun: s.cfg.DryRun, Removed: []string{}}

	refs, err := s.repo.ReferencedBlobs(ctx)
	if err != nil {
		return res, fmt.Errorf("load referenced blobs: %w", err)
	}

	// 按对象 key 比对，公开前缀变更后旧记录仍然受保护
	keys := make(map[string]struct{}, len(refs))
	for ref := range refs {
		if k, ok := referenceKey(s.blobs, ref); ok {
			keys[k] = struct{}{}
		}
	}

	cutoff := s.now().Add(-s.cfg.GracePeriod)

	for _, prefix := range []string{CoverPrefix, PDFPrefix} {
		objects, err := s.blobs.List(ctx, prefix+"/")
		if err != nil {
			return res, fmt.Errorf("list %s: %w", prefix, err)
		}

		for _, obj := range objects {
			res.Scanned++

			if _, ok := keys[obj.Key]; ok {
				continue
			}

			if !obj.LastModified.Before(cutoff) {
				continue
			}

			if s.cfg.DryRun {
				res.Removed = append(res.Removed, obj.Reference)
				continue
			}

			if err := s.blobs.Remove(ctx, obj.Reference); err != nil {
				res.Failed++

				logger.Warn().Err(err).Str("reference", obj.Reference).Msg("remove orphan blob failed")

				continue
			}

			res.Removed = append(res.Removed, obj.Reference)
			metrics.SweptBlobs.Inc()
		}
	}

	logger.Info().
		Int("scanned", res.Scanned).
		Int("removed", len(res.Removed)).
		Int("failed", res.Failed).
		Bool("dry_run", res.DryRun).
		Msg("orphan blob sweep finished")

	if s.pub != nil {
		payload := queue.BlobsSweptPayload{
			Scanned: res.Scanned,
			Removed: res.Removed,
			Failed:  res.Failed,
			DryRun:  res.DryRun,
		}
		if err := queue.PublishBlobsSwept(s.pub, payload, queue.WithProducer(Producer)); err != nil {
			logger.Warn().Err(err).Msg("publish sweep event failed")
		}
	}

	return res, nil
}

// referenceKey 把记录中保存的引用还原为对象 key.
// 当前后端无法识别时，按 <covers|pdfs>/<文件名> 的 key 结构从路径末尾取回.
func referenceKey(store blob.Store, ref string) (string, bool) {
	if k, err := store.Key(ref); err == nil && managedKey(k) {
		return k, true
	}

	p := ref
	if u, err := url.Parse(ref); err == nil && u.Path != "" {
		p = u.Path
	}

	dir, name := path.Split(strings.TrimRight(p, "/"))
	if name == "" {
		return "", false
	}

	k := path.Base(dir) + "/" + name
	if !managedKey(k) {
		return "", false
	}

	return k, true
}

func managedKey(k string) bool {
	return strings.HasPrefix(k, CoverPrefix+"/") || strings.HasPrefix(k, PDFPrefix+"/")
}
