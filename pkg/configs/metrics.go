package configs

import (
	"github.com/spf13/viper"
)

// MetricsConfig Metrics相关配置.
type MetricsConfig struct {
	Enabled        bool              `mapstructure:"enabled"`         // 是否启用Metrics
	ServiceName    string            `mapstructure:"service_name"`    // 服务名称
	Endpoint       string            `mapstructure:"endpoint"`        // 独立指标服务地址，为空时挂载在主服务 /metrics
	RuntimeMetrics bool              `mapstructure:"runtime_metrics"` // 是否收集运行时指标
	Labels         map[string]string `mapstructure:"labels"`          // 默认标签
}

// setDefaults 设置Metrics配置的默认值.
func (c *MetricsConfig) setDefaults(v *viper.Viper) {
	v.SetDefault("metrics.enabled", false)
	v.SetDefault("metrics.service_name", "ebookshelf")
	v.SetDefault("metrics.endpoint", "")
	v.SetDefault("metrics.runtime_metrics", true)
	v.SetDefault("metrics.labels", map[string]string{
		"service": "ebookshelf",
	})
}
