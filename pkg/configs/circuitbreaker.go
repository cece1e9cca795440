package configs

import (
	"time"

	"github.com/spf13/viper"
)

// CircuitBreakerConfig API 熔断配置，5xx 响应计为失败.
type CircuitBreakerConfig struct {
	Enabled bool `mapstructure:"enabled"`
	// FailureRatio 统计窗口内失败比例达到该值时打开
	FailureRatio float64 `mapstructure:"failure_ratio" rule:"gt=0,lte=1"`
	// MinRequests 窗口内请求数少于该值时不判定
	MinRequests uint32        `mapstructure:"min_requests"  rule:"min=1"`
	Window      time.Duration `mapstructure:"window"        rule:"min=0"`
	OpenFor     time.Duration `mapstructure:"open_for"      rule:"gt=0"`
	// HalfOpenRequests 半开状态放行的探测请求数
	HalfOpenRequests uint32 `mapstructure:"half_open_requests" rule:"min=1"`
}

func (c *CircuitBreakerConfig) setDefaults(v *viper.Viper) {
	v.SetDefault("circuit_breaker.enabled", false)
	v.SetDefault("circuit_breaker.failure_ratio", 0.5)
	v.SetDefault("circuit_breaker.min_requests", 20)
	v.SetDefault("circuit_breaker.window", "1m")
	v.SetDefault("circuit_breaker.open_for", "30s")
	v.SetDefault("circuit_breaker.half_open_requests", 5)
}
