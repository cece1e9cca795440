package configs

import (
	"time"

	"github.com/spf13/viper"
)

const (
	DefaultSweepCron  = "0 * * * *"    // 每小时整点
	DefaultSweepGrace = 24 * time.Hour // 只清理早于该时长的孤儿文件
)

// SweepConfig 孤儿文件清理任务配置.
type SweepConfig struct {
	Enabled     bool          `mapstructure:"enabled"`
	Cron        string        `mapstructure:"cron"         rule:"required"`
	GracePeriod time.Duration `mapstructure:"grace_period"`
	DryRun      bool          `mapstructure:"dry_run"`
}

func (c *SweepConfig) setDefaults(v *viper.Viper) {
	v.SetDefault("sweep.enabled", true)
	v.SetDefault("sweep.cron", DefaultSweepCron)
	v.SetDefault("sweep.grace_period", DefaultSweepGrace)
	v.SetDefault("sweep.dry_run", false)
}
