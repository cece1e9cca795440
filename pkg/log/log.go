// Package log 提供基于 zerolog 的日志工具，支持 stderr 和文件输出（lumberjack 轮转）.
package log

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/natefinch/lumberjack"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/yeisme/ebookshelf/pkg/configs"
)

var (
	logger   zerolog.Logger
	initOnce sync.Once
)

// Init 初始化全局 logger.
func Init() {
	initOnce.Do(initLogger)
}

// initLogger 实际执行一次的初始化函数.
func initLogger() {
	ctg := configs.GetConfig()
	logger = New(ctg.Log, ctg.Server.Debug, os.Stderr)
	log.Logger = logger

	if ctg.Server.Debug {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
}

// New 按配置构建 logger，console 为人类可读输出的目标.
func New(logCfg configs.LogConfig, debug bool, console io.Writer) zerolog.Logger {
	level := strings.ToLower(strings.TrimSpace(logCfg.Level))
	if level == "" {
		level = configs.DefaultLogLevel
	}

	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid log level %q, defaulting to info\n", logCfg.Level)

		lvl = zerolog.InfoLevel
	}

	zerolog.SetGlobalLevel(lvl)

	writers := []io.Writer{consoleWriter(logCfg.Format, console)}

	if logCfg.EnableFile {
		writers = append(writers, &lumberjack.Logger{
			Filename:   logCfg.FilePath,
			MaxSize:    logCfg.MaxSize,
			MaxBackups: logCfg.MaxBackups,
			MaxAge:     logCfg.MaxAge,
			Compress:   logCfg.Compress,
		})
	}

	ctx := zerolog.New(io.MultiWriter(writers...)).With()
	if debug {
		ctx = ctx.Caller().Stack()
	}

	return ctx.Timestamp().Logger()
}

// consoleWriter json 格式直接写原始事件，其余按人类可读格式输出.
func consoleWriter(format string, out io.Writer) io.Writer {
	if strings.EqualFold(format, configs.LogFormatJSON) {
		return out
	}

	return zerolog.NewConsoleWriter(func(w *zerolog.ConsoleWriter) {
		w.Out = out
		w.TimeFormat = time.Kitchen
	})
}

// Logger 返回全局 logger.
func Logger() *zerolog.Logger {
	// ensure logger is initialized on first use
	initOnce.Do(initLogger)

	return &logger
}

// GinWriter 把 Gin 文本行转发为 zerolog 事件.
type GinWriter struct {
	logger *zerolog.Logger
	level  zerolog.Level
}

func NewGinWriter(logger *zerolog.Logger, level zerolog.Level) *GinWriter {
	return &GinWriter{logger: logger, level: level}
}

func (w *GinWriter) Write(p []byte) (n int, err error) {
	msg := strings.TrimSpace(string(p))
	if msg == "" {
		return len(p), nil
	}

	switch w.level {
	case zerolog.ErrorLevel, zerolog.FatalLevel, zerolog.PanicLevel:
		w.logger.Error().Msg(msg)
	case zerolog.WarnLevel:
		w.logger.Warn().Msg(msg)
	case zerolog.DebugLevel:
		w.logger.Debug().Msg(msg)
	default:
		w.logger.Info().Msg(msg)
	}

	return len(p), nil
}
