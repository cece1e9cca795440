package configs

import (
	"github.com/spf13/viper"
)

// 日志输出格式.
const (
	LogFormatConsole = "console" // 彩色文本，本地开发
	LogFormatJSON    = "json"    // 每行一个 JSON 对象，交给日志采集
)

const (
	DefaultLogLevel  = "info"
	DefaultLogFormat = LogFormatConsole
)

// LogConfig 日志相关配置；文件输出始终为 JSON，由 lumberjack 轮转.
type LogConfig struct {
	Level  string `mapstructure:"level"  rule:"oneof=trace debug info warn error fatal panic disabled"`
	Format string `mapstructure:"format" rule:"oneof=console json"`

	EnableFile bool   `mapstructure:"enable_file"`
	FilePath   string `mapstructure:"file_path"    rule:"required_if=EnableFile true"`
	MaxSize    int    `mapstructure:"max_size_mb"  rule:"min=0"`
	MaxBackups int    `mapstructure:"max_backups"  rule:"min=0"`
	MaxAge     int    `mapstructure:"max_age_days" rule:"min=0"`
	Compress   bool   `mapstructure:"compress"`
}

func (l *LogConfig) setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", DefaultLogLevel)
	v.SetDefault("log.format", DefaultLogFormat)
	v.SetDefault("log.enable_file", false)
	v.SetDefault("log.file_path", "logs/ebookshelf.log")
	v.SetDefault("log.max_size_mb", 100)
	v.SetDefault("log.max_backups", 7)
	v.SetDefault("log.max_age_days", 28)
	v.SetDefault("log.compress", true)
}
