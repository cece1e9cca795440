package configs

import (
	"time"

	"github.com/spf13/viper"
)

const (
	DefaultPort         = 8080      // 监听端口
	DefaultHost         = "0.0.0.0" // 监听地址
	DefaultReloadConfig = false     // 是否启用配置热重载
	DefaultDebug        = false     // 是否启用调试模式
	DefaultTimeout      = 30        // 超时时间，单位秒
	DefaultMaxUploadMB  = 64        // 单次上传请求体上限（MB）
)

type (
	// ServerConfig 服务器配置.
	ServerConfig struct {
		Port         int      `mapstructure:"port"          rule:"min=1,max=65535"`
		Host         string   `mapstructure:"host"          rule:"ip"`
		ReloadConfig bool     `mapstructure:"reload_config"`
		Debug        bool     `mapstructure:"debug"`
		Timeout      int      `mapstructure:"timeout"       rule:"min=1,max=300"`
		MaxUploadMB  int      `mapstructure:"max_upload_mb" rule:"min=1,max=1024"`
		CORSOrigins  []string `mapstructure:"cors_origins"`
	}
)

// GetTimeoutDuration 返回超时时间作为time.Duration.
func (s *ServerConfig) GetTimeoutDuration() time.Duration {
	return time.Duration(s.Timeout) * time.Second
}

// GetMaxUploadBytes 返回上传请求体上限（字节）.
func (s *ServerConfig) GetMaxUploadBytes() int64 {
	return int64(s.MaxUploadMB) << 20
}

// setDefaults 设置服务器配置的默认值.
func (s *ServerConfig) setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", DefaultPort)
	v.SetDefault("server.host", DefaultHost)
	v.SetDefault("server.reload_config", DefaultReloadConfig)
	v.SetDefault("server.debug", DefaultDebug)
	v.SetDefault("server.timeout", DefaultTimeout)
	v.SetDefault("server.max_upload_mb", DefaultMaxUploadMB)
	v.SetDefault("server.cors_origins", []string{})
}
