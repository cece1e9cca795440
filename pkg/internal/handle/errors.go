package handle

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"

	ctxPkg "github.com/yeisme/ebookshelf/pkg/context"
	"github.com/yeisme/ebookshelf/pkg/internal/service"
	"github.com/yeisme/ebookshelf/pkg/internal/types"
)

// writeError 按错误分类输出统一错误体；上游错误不向客户端暴露细节.
func writeError(c *gin.Context, err error) {
	logger := ctxPkg.Logger(c.Request.Context())

	resp := types.ErrorResponse{OK: false}

	var se *service.Error
	if errors.As(err, &se) {
		resp.Error = string(se.Kind)
		resp.Code = se.Code
		resp.Message = se.Message
		resp.Fields = se.Fields
	} else {
		resp.Error = string(service.KindUpstream)
		resp.Message = "upstream failure"
	}

	kind := service.Kind(resp.Error)
	if kind == service.KindUpstream {
		logger.Error().Err(err).Msg("request failed")
	} else {
		logger.Warn().Err(err).Msg("request rejected")
	}

	_ = c.Error(err)
	c.AbortWithStatusJSON(kind.HTTPStatus(), resp)
}

// parseID 解析路径参数 id.
func parseID(c *gin.Context) (uint, error) {
	raw := c.Param("id")

	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, service.InvalidID(raw)
	}

	return uint(id), nil
}
