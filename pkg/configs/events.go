package configs

import "github.com/spf13/viper"

// EventsConfig 控制事件发布的开关（全局与分主题）。
type EventsConfig struct {
	Enabled bool              `mapstructure:"enabled"` // 总开关
	Ebook   EbookEventsConfig `mapstructure:"ebook"`
}

// EbookEventsConfig 针对目录条目的事件开关。
type EbookEventsConfig struct {
	Created bool `mapstructure:"created"`
	Updated bool `mapstructure:"updated"`
	Deleted bool `mapstructure:"deleted"`
}

func (c *EventsConfig) setDefaults(v *viper.Viper) {
	v.SetDefault("events.enabled", true)

	v.SetDefault("events.ebook.created", true)
	v.SetDefault("events.ebook.updated", true)
	v.SetDefault("events.ebook.deleted", true)
}
