// Package middleware 提供 gin 中间件：请求 ID、访问日志、会话、CORS、压缩、指标、追踪与熔断.
package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	ctxPkg "github.com/yeisme/ebookshelf/pkg/context"
	"github.com/yeisme/ebookshelf/pkg/log"
)

// HeaderRequestID 请求 ID 头.
const HeaderRequestID = "X-Request-ID"

// maxRequestIDLen 客户端传入的请求 ID 最大长度.
const maxRequestIDLen = 64

// RequestIDMiddleware 复用客户端的 X-Request-ID 或生成新的 ID，并注入请求级 logger.
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := strings.TrimSpace(c.GetHeader(HeaderRequestID))
		if id == "" || len(id) > maxRequestIDLen {
			id = uuid.NewString()
		}

		c.Header(HeaderRequestID, id)

		logger := log.Logger().With().Str("request_id", id).Logger()

		ctx := ctxPkg.WithRequestID(c.Request.Context(), id)
		ctx = ctxPkg.WithLogger(ctx, logger)
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}
