package configs

import (
	"time"

	"github.com/spf13/viper"
)

const (
	DefaultPageSize     = 8                // 未指定 pageSize 时的每页条数
	DefaultMaxPageSize  = 50               // pageSize 上限
	DefaultCacheEnabled = true             // 是否缓存列表结果
	DefaultCacheTTL     = 60 * time.Second // 列表缓存过期时间
	DefaultLanguage     = "fr"             // 新建条目的默认语言
)

// CatalogConfig 目录查询配置.
type CatalogConfig struct {
	DefaultPageSize int           `mapstructure:"default_page_size" rule:"min=1"`
	MaxPageSize     int           `mapstructure:"max_page_size"     rule:"min=1,gtefield=DefaultPageSize"`
	CacheEnabled    bool          `mapstructure:"cache_enabled"`
	CacheTTL        time.Duration `mapstructure:"cache_ttl"`
	DefaultLanguage string        `mapstructure:"default_language"  rule:"required"`
}

func (c *CatalogConfig) setDefaults(v *viper.Viper) {
	v.SetDefault("catalog.default_page_size", DefaultPageSize)
	v.SetDefault("catalog.max_page_size", DefaultMaxPageSize)
	v.SetDefault("catalog.cache_enabled", DefaultCacheEnabled)
	v.SetDefault("catalog.cache_ttl", DefaultCacheTTL)
	v.SetDefault("catalog.default_language", DefaultLanguage)
}
