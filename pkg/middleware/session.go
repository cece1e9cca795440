package middleware

import (
	"errors"

	"github.com/gin-gonic/gin"

	ctxPkg "github.com/yeisme/ebookshelf/pkg/context"
	"github.com/yeisme/ebookshelf/pkg/internal/auth"
)

// SessionMiddleware 解析会话 Cookie 并注入 Principal；Cookie 无效时按匿名处理.
func SessionMiddleware(sessions *auth.Sessions) gin.HandlerFunc {
	return func(c *gin.Context) {
		p := auth.Anonymous()

		if token, err := c.Cookie(sessions.CookieName()); err == nil && token != "" {
			parsed, _, err := sessions.Parse(c.Request.Context(), token)

			switch {
			case err == nil:
				p = parsed
			case !errors.Is(err, auth.ErrInvalidSession):
				logger := ctxPkg.Logger(c.Request.Context())
				logger.Warn().Err(err).Msg("session check failed")
			}
		}

		c.Request = c.Request.WithContext(auth.WithPrincipal(c.Request.Context(), p))

		c.Next()
	}
}
