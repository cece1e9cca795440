// Package configs 管理应用程序配置，包括数据库、对象存储、会话与目录查询的配置信息.
// configs 包支持多种配置格式（YAML、JSON、TOML、dotenv）并启用热重载.
//
// Example:
//
//	import "github.com/yeisme/ebookshelf/pkg/configs"
//
//	err := configs.InitConfig("./")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	config := configs.GetConfig()
//	fmt.Println(config.Server.Port)
//
// Example accessing Blob config:
//
//	config := configs.GetConfig()
//	blobConfig := config.Blob
//	fmt.Println("Blob backend:", blobConfig.Type)
//
// Example accessing Catalog config:
//
//	config := configs.GetConfig()
//	fmt.Println("Default page size:", config.Catalog.DefaultPageSize)
package configs

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// AppVersion 应用版本号，构建时可通过 -ldflags 覆盖.
var AppVersion = "0.1.0"

// EnvPrefix 环境变量前缀，例如 EBOOKSHELF_SERVER_PORT.
const EnvPrefix = "EBOOKSHELF"

type (
	// AppConfig 全局应用程序配置.
	AppConfig struct {
		Server         ServerConfig         `mapstructure:"server"`          // ServerConfig 服务器配置，端口、超时等
		DB             DBConfig             `mapstructure:"db"`              // DBConfig 数据库配置
		Blob           BlobConfig           `mapstructure:"blob"`            // BlobConfig 封面与 PDF 的存储配置
		KV             KVConfig             `mapstructure:"kv"`              // KVConfig 键值存储配置（会话吊销、列表缓存）
		MQ             MQConfig             `mapstructure:"mq"`              // MQConfig 消息队列配置
		Events         EventsConfig         `mapstructure:"events"`          // EventsConfig 领域事件开关
		Log            LogConfig            `mapstructure:"log"`             // LogConfig 日志相关配置
		Auth           AuthConfig           `mapstructure:"auth"`            // AuthConfig 管理员凭据与会话
		Catalog        CatalogConfig        `mapstructure:"catalog"`         // CatalogConfig 列表分页与缓存
		Sweep          SweepConfig          `mapstructure:"sweep"`           // SweepConfig 孤儿文件清理
		Metrics        MetricsConfig        `mapstructure:"metrics"`         // MetricsConfig 监控指标
		Tracing        TracingConfig        `mapstructure:"tracing"`         // TracingConfig 分布式追踪
		CircuitBreaker CircuitBreakerConfig `mapstructure:"circuit_breaker"` // CircuitBreakerConfig 熔断器
	}
)

var (
	// globalConfig 全局配置实例.
	globalConfig AppConfig
	// appViper 全局 Viper 实例.
	appViper *viper.Viper
)

// InitConfig 加载应用程序配置，支持多种格式(yaml、json、toml、dotenv)并启用热重载.
// 找不到配置文件时使用默认值与环境变量.
func InitConfig(path string) error {
	v, err := load(path)
	if err != nil {
		return err
	}

	appViper = v

	if err := appViper.Unmarshal(&globalConfig); err != nil {
		return fmt.Errorf("failed to unmarshal config: %w", err)
	}

	reloadConfigs(appViper, globalConfig.Server.ReloadConfig)

	return nil
}

// Load 读取配置但不修改全局实例，主要供测试与子命令使用.
func Load(path string) (*AppConfig, error) {
	v, err := load(path)
	if err != nil {
		return nil, err
	}

	var cfg AppConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

func load(path string) (*viper.Viper, error) {
	v := viper.New()
	// 设置默认值
	setAllDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path == "" {
		return v, nil
	}

	// 检查path是否是文件
	if info, err := os.Stat(path); err == nil && !info.IsDir() {
		// 是文件，使用SetConfigFile，Viper会自动检测类型
		v.SetConfigFile(path)
	} else {
		// 是目录，设置配置名和路径
		v.SetConfigName("config")
		v.AddConfigPath(path)
		v.AddConfigPath(filepath.Join(path, "configs"))

		exts := []string{"yaml", "yml", "json", "toml", "env", "dotenv"}

		for _, ext := range exts {
			cfg := filepath.Join(path, "config."+ext)
			if _, err := os.Stat(cfg); err == nil {
				v.SetConfigFile(cfg)

				break
			}
		}
	}

	// 读取配置
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	return v, nil
}

// setAllDefaults 设置所有配置的默认值.
func setAllDefaults(v *viper.Viper) {
	var cfg AppConfig

	cfg.Server.setDefaults(v)
	cfg.DB.setDefaults(v)
	cfg.Blob.setDefaults(v)
	cfg.KV.setDefaults(v)
	cfg.MQ.setDefaults(v)
	cfg.Events.setDefaults(v)
	cfg.Log.setDefaults(v)
	cfg.Auth.setDefaults(v)
	cfg.Catalog.setDefaults(v)
	cfg.Sweep.setDefaults(v)
	cfg.Metrics.setDefaults(v)
	cfg.Tracing.setDefaults(v)
	cfg.CircuitBreaker.setDefaults(v)
}

func reloadConfigs(v *viper.Viper, isHotReload bool) {
	if !isHotReload || v.ConfigFileUsed() == "" {
		return
	}
	// 启用配置热重载
	v.OnConfigChange(func(e fsnotify.Event) {
		fmt.Println("Config file changed:", e.Name)
		fmt.Println("Reloading configuration...")

		if err := v.Unmarshal(&globalConfig); err != nil {
			fmt.Printf("Error reloading config: %v\n", err)
		}
	})
	v.WatchConfig()
}

// GetConfig 返回全局配置实例.
func GetConfig() *AppConfig {
	return &globalConfig
}

// SetConfig 替换全局配置实例，测试中使用.
func SetConfig(cfg AppConfig) {
	globalConfig = cfg
}

// GetViper 返回全局 Viper 实例，未初始化时为 nil.
func GetViper() *viper.Viper {
	return appViper
}
