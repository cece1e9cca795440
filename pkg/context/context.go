// Package context 拓展上下文功能，将日志与追踪信息集成到上下文中，方便在应用程序各处传递和使用.
package context

import (
	"context"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/trace"

	nlog "github.com/yeisme/ebookshelf/pkg/log"
)

type ContextKey string

const (
	LoggerKey    ContextKey = "logger"
	RequestIDKey ContextKey = "requestID"
)

// WithLogger 将请求级 logger 存储到 context 中.
func WithLogger(ctx context.Context, logger zerolog.Logger) context.Context {
	return context.WithValue(ctx, LoggerKey, logger)
}

// WithRequestID 将请求 ID 存储到 context 中.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, RequestIDKey, id)
}

// RequestID 从 context 中获取请求 ID，不存在时返回空串.
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(RequestIDKey).(string)

	return id
}

// Logger 返回 context 中的 logger；未设置时回退到全局 logger，并附带追踪信息.
func Logger(ctx context.Context) zerolog.Logger {
	logger, ok := ctx.Value(LoggerKey).(zerolog.Logger)
	if !ok {
		logger = *nlog.Logger()

		if id := RequestID(ctx); id != "" {
			logger = logger.With().Str("request_id", id).Logger()
		}
	}

	return WithTraceContext(ctx, logger)
}

// WithTraceContext 创建带有追踪上下文的logger.
func WithTraceContext(ctx context.Context, logger zerolog.Logger) zerolog.Logger {
	span := trace.SpanFromContext(ctx)
	if span.IsRecording() {
		return logger.With().
			Str("trace_id", span.SpanContext().TraceID().String()).
			Str("span_id", span.SpanContext().SpanID().String()).
			Logger()
	}

	return logger
}
