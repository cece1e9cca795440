package middleware

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/yeisme/ebookshelf/pkg/configs"
)

// CORSMiddleware CORS中间件.
// 配置了具体来源时允许携带 Cookie，否则放开所有来源但不带凭据.
func CORSMiddleware(cfg configs.ServerConfig) gin.HandlerFunc {
	config := cors.DefaultConfig()
	config.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	config.AllowHeaders = []string{"Origin", "Content-Type", "Accept", HeaderRequestID}
	config.ExposeHeaders = []string{HeaderRequestID}

	if len(cfg.CORSOrigins) == 0 {
		config.AllowAllOrigins = true
	} else {
		config.AllowOrigins = cfg.CORSOrigins
		config.AllowCredentials = true
	}

	return cors.New(config)
}
