// Package metrics 提供监控指标功能.
// 支持Prometheus标准，收集HTTP请求与目录查询指标.
//
// Example:
//
//	import "github.com/yeisme/ebookshelf/pkg/metrics"
//
//	if err := metrics.InitMetrics(cfg.Metrics); err != nil {
//		log.Fatal(err)
//	}
//
//	metrics.RequestCounter.WithLabelValues("GET", "/api/ebooks", "200").Inc()
//	metrics.CatalogQueries.WithLabelValues(metrics.ResultHit).Inc()
package metrics

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/yeisme/ebookshelf/pkg/configs"
)

// 目录查询结果标签.
const (
	ResultHit   = "hit"
	ResultMiss  = "miss"
	ResultError = "error"
)

// 全局指标变量.
var (
	// RequestCounter HTTP请求计数器.
	RequestCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	// RequestDuration HTTP请求持续时间.
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	// ActiveConnections 活跃连接数.
	ActiveConnections = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "active_connections",
			Help: "Number of active connections",
		},
	)

	// CatalogQueries 列表查询次数，按缓存命中情况区分.
	CatalogQueries = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ebookshelf_catalog_queries_total",
			Help: "Catalog list queries by cache result",
		},
		[]string{"result"},
	)

	// CatalogMutations 管理端写操作次数.
	CatalogMutations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ebookshelf_catalog_mutations_total",
			Help: "Catalog mutations by operation and outcome",
		},
		[]string{"op", "outcome"},
	)

	// SweptBlobs 清理任务删除的孤儿文件数.
	SweptBlobs = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "ebookshelf_swept_blobs_total",
			Help: "Orphan blobs removed by the sweep job",
		},
	)

	// registry Prometheus注册表.
	registry = prometheus.NewRegistry()
	initOnce sync.Once
)

// InitMetrics 初始化Metrics，重复调用只注册一次.
func InitMetrics(config configs.MetricsConfig) error {
	if !config.Enabled {
		return nil
	}

	var err error

	initOnce.Do(func() {
		reg := prometheus.WrapRegistererWith(prometheus.Labels(config.Labels), registry)

		// 默认注册表自带运行时收集器，按配置移除
		if !config.RuntimeMetrics {
			prometheus.Unregister(collectors.NewGoCollector())
			prometheus.Unregister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		}

		for _, c := range []prometheus.Collector{
			RequestCounter, RequestDuration, ActiveConnections,
			CatalogQueries, CatalogMutations, SweptBlobs,
		} {
			if err = reg.Register(c); err != nil {
				return
			}
		}
	})

	return err
}

// Handler 返回 /metrics 处理器，同时输出默认注册表中的指标（GORM、watermill）.
func Handler() gin.HandlerFunc {
	return gin.WrapH(httpHandler())
}

func httpHandler() http.Handler {
	gatherers := prometheus.Gatherers{registry, prometheus.DefaultGatherer}
	return promhttp.HandlerFor(gatherers, promhttp.HandlerOpts{})
}

// RegisterRoutes 未配置独立地址时在主服务上挂载 /metrics.
func RegisterRoutes(config configs.MetricsConfig, engine *gin.Engine) {
	if !config.Enabled || config.Endpoint != "" {
		return
	}

	engine.GET("/metrics", Handler())
}

// NewServer 配置了独立地址时返回只提供 /metrics 的服务，否则返回 nil.
func NewServer(config configs.MetricsConfig) *http.Server {
	if !config.Enabled || config.Endpoint == "" {
		return nil
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", httpHandler())

	return &http.Server{
		Addr:              config.Endpoint,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
}

// GetRegistry 获取Prometheus注册表.
func GetRegistry() *prometheus.Registry {
	return registry
}

// ObserveMutation 记录一次写操作.
func ObserveMutation(op string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}

	CatalogMutations.WithLabelValues(op, outcome).Inc()
}
