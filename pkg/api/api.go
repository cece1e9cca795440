// Package api 组装目录服务并把 HTTP 路由注册到 gin 引擎.
package api

import (
	"github.com/gin-gonic/gin"

	"github.com/yeisme/ebookshelf/pkg/configs"
	"github.com/yeisme/ebookshelf/pkg/internal/auth"
	"github.com/yeisme/ebookshelf/pkg/internal/handle"
	"github.com/yeisme/ebookshelf/pkg/internal/repository"
	"github.com/yeisme/ebookshelf/pkg/internal/router"
	"github.com/yeisme/ebookshelf/pkg/internal/service"
	"github.com/yeisme/ebookshelf/pkg/internal/storage"
)

// Services 由存储资源构建的业务服务.
type Services struct {
	Catalog  *service.CatalogService
	Admin    *service.AdminService
	Sweeper  *service.Sweeper
	Sessions *auth.Sessions
	Handlers *handle.Handlers
}

// NewServices 基于存储管理器构建全部服务.
func NewServices(cfg *configs.AppConfig, mgr *storage.Manager) *Services {
	repo := repository.NewEbookRepository(mgr.DB.DB)
	pub := mgr.MQ.Publisher()

	catalog := service.NewCatalogService(repo, mgr.KV, cfg.Catalog)
	admin := service.NewAdminService(repo, mgr.Blob,
		service.WithGeneration(service.NewGeneration(mgr.KV)),
		service.WithPublisher(pub, cfg.Events),
		service.WithDefaultLanguage(cfg.Catalog.DefaultLanguage),
	)
	sessions := auth.NewSessions(cfg.Auth, mgr.KV)

	return &Services{
		Catalog:  catalog,
		Admin:    admin,
		Sweeper:  service.NewSweeper(repo, mgr.Blob, cfg.Sweep, pub),
		Sessions: sessions,
		Handlers: handle.New(handle.Deps{
			Catalog:        catalog,
			Admin:          admin,
			Sessions:       sessions,
			MaxUploadBytes: cfg.Server.GetMaxUploadBytes(),
			DB:             mgr.DB,
			Blob:           mgr.Blob,
			KV:             mgr.KV,
			MQ:             pub,
		}),
	}
}

// RegisterGroup 注册 /api、/uploads 与 Swagger 路由.
func RegisterGroup(e *gin.Engine, cfg *configs.AppConfig, mgr *storage.Manager, svc *Services) *gin.Engine {
	g := e.Group("/api")

	router.Register(g, svc.Handlers)
	router.RegisterHealthCheckRoute(g, svc.Handlers)
	router.RegisterUploadsRoute(e, mgr.Blob)
	router.RegisterSwaggerRoute(e, cfg.Server)

	return e
}
