package router

import (
	"github.com/gin-gonic/gin"

	"github.com/yeisme/ebookshelf/pkg/internal/handle"
)

// RegisterHealthCheckRoute 注册健康检查路由.
func RegisterHealthCheckRoute(g *gin.RouterGroup, h *handle.Handlers) {
	g.GET("/health", h.Health)

	healthRoutes := g.Group("/health")
	{
		healthRoutes.GET("/db", h.HealthDB)
		healthRoutes.GET("/blob", h.HealthBlob)
		healthRoutes.GET("/kv", h.HealthKV)
		healthRoutes.GET("/mq", h.HealthMQ)
	}
}
