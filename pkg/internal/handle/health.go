package handle

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yeisme/ebookshelf/pkg/internal/storage/kv"
)

const healthTimeout = 2 * time.Second

// healthCheckKey KV 健康检查读取的键，不需要存在.
const healthCheckKey = "health:check"

var errNotInitialized = errors.New("client not initialized")

// Health 进程存活检查.
//
//	@Summary	存活检查
//	@Tags		health
//	@Produce	json
//	@Success	200	{object}	map[string]string
//	@Router		/api/health [get]
func (h *Handlers) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// HealthDB 数据库健康检查.
//
//	@Summary	数据库健康检查
//	@Tags		health
//	@Produce	json
//	@Success	200	{object}	map[string]string
//	@Failure	503	{object}	map[string]string
//	@Router		/api/health/db [get]
func (h *Handlers) HealthDB(c *gin.Context) {
	checkComponent(c, "db", func(ctx context.Context) error {
		if h.db == nil {
			return errNotInitialized
		}

		return h.db.HealthCheck(ctx)
	})
}

// HealthBlob 文件存储健康检查.
//
//	@Summary	文件存储健康检查
//	@Tags		health
//	@Produce	json
//	@Success	200	{object}	map[string]string
//	@Failure	503	{object}	map[string]string
//	@Router		/api/health/blob [get]
func (h *Handlers) HealthBlob(c *gin.Context) {
	checkComponent(c, "blob", func(ctx context.Context) error {
		if h.blob == nil {
			return errNotInitialized
		}

		return h.blob.HealthCheck(ctx)
	})
}

// HealthKV KV 健康检查.
//
//	@Summary	KV 健康检查
//	@Tags		health
//	@Produce	json
//	@Success	200	{object}	map[string]string
//	@Failure	503	{object}	map[string]string
//	@Router		/api/health/kv [get]
func (h *Handlers) HealthKV(c *gin.Context) {
	checkComponent(c, "kv", func(ctx context.Context) error {
		if h.kv == nil {
			return errNotInitialized
		}

		_, err := h.kv.Get(ctx, healthCheckKey)
		if errors.Is(err, kv.ErrNotFound) {
			return nil
		}

		return err
	})
}

// HealthMQ 消息队列健康检查.
//
//	@Summary	消息队列健康检查
//	@Tags		health
//	@Produce	json
//	@Success	200	{object}	map[string]string
//	@Failure	503	{object}	map[string]string
//	@Router		/api/health/mq [get]
func (h *Handlers) HealthMQ(c *gin.Context) {
	checkComponent(c, "mq", func(context.Context) error {
		if h.mq == nil {
			return errNotInitialized
		}

		return nil
	})
}

func checkComponent(c *gin.Context, component string, check func(ctx context.Context) error) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), healthTimeout)
	defer cancel()

	if err := check(ctx); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"component": component, "status": "unhealthy", "error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"component": component, "status": "ok"})
}
