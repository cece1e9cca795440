// Package app 提供应用程序的初始化、启动与优雅退出.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/yeisme/ebookshelf/pkg/api"
	"github.com/yeisme/ebookshelf/pkg/configs"
	"github.com/yeisme/ebookshelf/pkg/internal/jobs"
	"github.com/yeisme/ebookshelf/pkg/internal/storage"
	"github.com/yeisme/ebookshelf/pkg/log"
	"github.com/yeisme/ebookshelf/pkg/metrics"
	"github.com/yeisme/ebookshelf/pkg/middleware"
	"github.com/yeisme/ebookshelf/pkg/scheduler"
	"github.com/yeisme/ebookshelf/pkg/tracing"
)

// shutdownTimeout 优雅退出的最长等待时间.
const shutdownTimeout = 15 * time.Second

type App struct {
	Engine *gin.Engine

	config     *configs.AppConfig
	storage    *storage.Manager
	scheduler  *scheduler.Scheduler
	server     *http.Server
	metricsSrv *http.Server
}

// New 按配置初始化追踪、指标、存储与路由；配置需已通过 configs.InitConfig 加载.
func New(ctx context.Context, config *configs.AppConfig) (*App, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	// 初始化追踪
	if err := tracing.InitTracer(config.Tracing); err != nil {
		return nil, fmt.Errorf("init tracing: %w", err)
	}

	// 初始化监控
	if err := metrics.InitMetrics(config.Metrics); err != nil {
		return nil, fmt.Errorf("init metrics: %w", err)
	}

	manager, err := storage.New(ctx, config)
	if err != nil {
		return nil, err
	}

	svc := api.NewServices(config, manager)

	sched, err := scheduler.NewScheduler()
	if err != nil {
		_ = manager.Close()
		return nil, fmt.Errorf("init scheduler: %w", err)
	}

	if err := jobs.RegisterCronJobs(sched, config.Sweep, svc.Sweeper); err != nil {
		_ = sched.Shutdown()
		_ = manager.Close()

		return nil, fmt.Errorf("register jobs: %w", err)
	}

	l := log.Logger()
	gin.DefaultWriter = log.NewGinWriter(l, zerolog.InfoLevel)
	gin.DefaultErrorWriter = log.NewGinWriter(l, zerolog.ErrorLevel)

	engine := gin.New()

	chain := []gin.HandlerFunc{
		gin.Recovery(),
		middleware.RequestIDMiddleware(),
		middleware.GinLoggerMiddleware(),
		middleware.TracingMiddleware(),
	}
	if config.Metrics.Enabled {
		chain = append(chain, middleware.PrometheusMiddleware())
	}

	chain = append(chain,
		middleware.CORSMiddleware(config.Server),
		middleware.GzipMiddleware(),
		middleware.CircuitBreakerMiddleware(config.CircuitBreaker),
		middleware.SessionMiddleware(svc.Sessions),
	)

	engine.Use(chain...)
	metrics.RegisterRoutes(config.Metrics, engine)

	api.RegisterGroup(engine, config, manager, svc)

	timeout := config.Server.GetTimeoutDuration()

	return &App{
		Engine:    engine,
		config:    config,
		storage:   manager,
		scheduler: sched,
		server: &http.Server{
			Addr:              fmt.Sprintf("%s:%d", config.Server.Host, config.Server.Port),
			Handler:           engine,
			ReadHeaderTimeout: 10 * time.Second,
			ReadTimeout:       timeout,
			WriteTimeout:      timeout,
			IdleTimeout:       2 * timeout,
		},
		metricsSrv: metrics.NewServer(config.Metrics),
	}, nil
}

// Run 启动 HTTP 服务与定时任务，ctx 取消后优雅退出.
func (a *App) Run(ctx context.Context) error {
	l := log.Logger()
	errCh := make(chan error, 2)

	serve := func(name string, srv *http.Server) {
		l.Info().Str("server", name).Str("addr", srv.Addr).Msg("listening")

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("%s server: %w", name, err)
		}
	}

	go serve("http", a.server)

	if a.metricsSrv != nil {
		go serve("metrics", a.metricsSrv)
	}

	a.scheduler.Start()

	var runErr error

	select {
	case <-ctx.Done():
		l.Info().Msg("shutdown signal received")
	case runErr = <-errCh:
		l.Error().Err(runErr).Msg("server stopped unexpectedly")
	}

	return errors.Join(runErr, a.shutdown())
}

// shutdown 依次关闭 HTTP 服务、定时任务、追踪与存储.
func (a *App) shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	var errs []error

	if err := a.server.Shutdown(ctx); err != nil {
		errs = append(errs, fmt.Errorf("shutdown http server: %w", err))
	}

	if a.metricsSrv != nil {
		if err := a.metricsSrv.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("shutdown metrics server: %w", err))
		}
	}

	if err := a.scheduler.Shutdown(); err != nil {
		errs = append(errs, fmt.Errorf("shutdown scheduler: %w", err))
	}

	if err := tracing.ShutdownTracer(ctx); err != nil {
		errs = append(errs, fmt.Errorf("shutdown tracer: %w", err))
	}

	if err := a.storage.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close storage: %w", err))
	}

	log.Logger().Info().Msg("shutdown complete")

	return errors.Join(errs...)
}
