// Package handle 提供 HTTP 请求处理器.
package handle

import (
	"context"

	"github.com/ThreeDotsLabs/watermill/message"

	"github.com/yeisme/ebookshelf/pkg/internal/auth"
	"github.com/yeisme/ebookshelf/pkg/internal/service"
	"github.com/yeisme/ebookshelf/pkg/internal/storage/blob"
	"github.com/yeisme/ebookshelf/pkg/internal/storage/kv"
)

// DefaultMaxUploadBytes 单个请求体默认上限.
const DefaultMaxUploadBytes = 64 << 20

// DBPinger 数据库健康检查.
type DBPinger interface {
	HealthCheck(ctx context.Context) error
}

// Deps 处理器依赖.
type Deps struct {
	Catalog        *service.CatalogService
	Admin          *service.AdminService
	Sessions       *auth.Sessions
	MaxUploadBytes int64

	DB   DBPinger
	Blob blob.Store
	KV   kv.KVStore
	MQ   message.Publisher
}

// Handlers 目录、会话与健康检查处理器.
type Handlers struct {
	catalog   *service.CatalogService
	admin     *service.AdminService
	sessions  *auth.Sessions
	maxUpload int64

	db   DBPinger
	blob blob.Store
	kv   kv.KVStore
	mq   message.Publisher
}

// New 创建处理器.
func New(d Deps) *Handlers {
	if d.MaxUploadBytes <= 0 {
		d.MaxUploadBytes = DefaultMaxUploadBytes
	}

	return &Handlers{
		catalog:   d.Catalog,
		admin:     d.Admin,
		sessions:  d.Sessions,
		maxUpload: d.MaxUploadBytes,
		db:        d.DB,
		blob:      d.Blob,
		kv:        d.KV,
		mq:        d.MQ,
	}
}
