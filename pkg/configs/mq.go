package configs

import (
	"github.com/spf13/viper"
)

// MQType 消息队列类型.
type MQType string

const (
	MQTypeGoChannel MQType = "gochannel" // 进程内队列，单机部署默认使用
	MQTypeNATS      MQType = "nats"
	MQTypeRedis     MQType = "redis" // Redis Pub/Sub，不持久化

	DefaultMQURL         = "nats://localhost:4222"
	DefaultMQUser        = ""
	DefaultMQPassword    = ""
	DefaultMaxReconnects = 5            // 默认最大重连次数.
	DefaultReconnectWait = 5            // 默认重连等待时间（秒）.
	DefaultMQClientID    = "ebookshelf" // 默认客户端ID

	DefaultGoChannelBuffer = 64 // 进程内队列每个订阅者的缓冲大小

	// JetStream 流配置常量.

	DefaultStreamMaxAge = 24 // 默认流最大年龄 (小时)
)

// MQConfig 消息队列配置.
type MQConfig struct {
	Type      MQType            `mapstructure:"type"      rule:"oneof=gochannel nats redis"`
	Common    MQCommonConfig    `mapstructure:"common"`
	NATS      MQNATSConfig      `mapstructure:"nats"`
	GoChannel MQGoChannelConfig `mapstructure:"gochannel"`
	Redis     MQRedisConfig     `mapstructure:"redis"`
}

// MQCommonConfig 通用MQ配置.
type MQCommonConfig struct {
	URL           string `mapstructure:"url"`
	User          string `mapstructure:"user"`
	Password      string `mapstructure:"password"`
	ClientID      string `mapstructure:"client_id"`
	MaxReconnects int    `mapstructure:"max_reconnects" rule:"min=0,max=100"`
	ReconnectWait int    `mapstructure:"reconnect_wait" rule:"min=1,max=300"`
	EnableMetrics bool   `mapstructure:"enable_metrics"`
}

// MQNATSConfig NATS MQ 配置.
type MQNATSConfig struct {
	JetStreamEnabled       bool   `mapstructure:"jetstream_enabled"`
	SubjectPrefix          string `mapstructure:"subject_prefix"`
	JetStreamAutoProvision bool   `mapstructure:"jetstream_auto_provision"`
	JetStreamTrackMsgID    bool   `mapstructure:"jetstream_track_msg_id"`
	JetStreamAckAsync      bool   `mapstructure:"jetstream_ack_async"`
	JetStreamDurablePrefix string `mapstructure:"jetstream_durable_prefix"`
	StreamMaxAge           int    `mapstructure:"stream_max_age"`
}

// MQGoChannelConfig 进程内队列配置.
type MQGoChannelConfig struct {
	OutputBuffer int64 `mapstructure:"output_buffer" rule:"min=0"`
	Persistent   bool  `mapstructure:"persistent"`
}

// MQRedisConfig Redis Pub/Sub 配置.
type MQRedisConfig struct {
	Addr          string `mapstructure:"addr"           rule:"omitempty,hostname_port"`
	Password      string `mapstructure:"password"`
	DB            int    `mapstructure:"db"             rule:"min=0,max=15"`
	ChannelPrefix string `mapstructure:"channel_prefix"`
}

// GetMQType 返回当前配置的消息队列类型.
func (c *MQConfig) GetMQType() MQType {
	return c.Type
}

// setDefaults 设置MQ配置的默认值.
func (c *MQConfig) setDefaults(v *viper.Viper) {
	v.SetDefault("mq.type", MQTypeGoChannel)

	// Common 默认值
	v.SetDefault("mq.common.url", DefaultMQURL)
	v.SetDefault("mq.common.user", DefaultMQUser)
	v.SetDefault("mq.common.password", DefaultMQPassword)
	v.SetDefault("mq.common.client_id", DefaultMQClientID)
	v.SetDefault("mq.common.max_reconnects", DefaultMaxReconnects)
	v.SetDefault("mq.common.reconnect_wait", DefaultReconnectWait)
	v.SetDefault("mq.common.enable_metrics", false)

	// NATS 默认值
	v.SetDefault("mq.nats.jetstream_enabled", true)
	v.SetDefault("mq.nats.subject_prefix", "ebookshelf.")
	v.SetDefault("mq.nats.jetstream_auto_provision", true)
	v.SetDefault("mq.nats.jetstream_track_msg_id", true)
	v.SetDefault("mq.nats.jetstream_ack_async", false)
	v.SetDefault("mq.nats.jetstream_durable_prefix", "ebookshelf-durable")
	v.SetDefault("mq.nats.stream_max_age", DefaultStreamMaxAge)

	// GoChannel 默认值
	v.SetDefault("mq.gochannel.output_buffer", DefaultGoChannelBuffer)
	v.SetDefault("mq.gochannel.persistent", false)

	// Redis 默认值
	v.SetDefault("mq.redis.addr", "localhost:6379")
	v.SetDefault("mq.redis.password", "")
	v.SetDefault("mq.redis.db", 0)
	v.SetDefault("mq.redis.channel_prefix", "ebookshelf:")
}
