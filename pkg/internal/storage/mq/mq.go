// Package mq 提供基于 Watermill 库的统一消息队列操作接口。
// 支持发布/订阅模式，并通过工厂模式抽象不同的 MQ 实现。
//
// 支持的 MQ 类型：
//   - gochannel（进程内，单机部署默认）
//   - NATS（支持 JetStream）
//   - Redis Pub/Sub
//
// 使用示例：
//
//	client, err := mq.New(ctx, cfg.MQ, cfg.Metrics)
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer client.Close()
//
//	msg, _ := queue.NewWatermillMessage(queue.TopicEbookCreated, payload)
//	err = client.Publish(ctx, queue.TopicEbookCreated, msg)
package mq

import (
	"context"
	"errors"
	"fmt"
	"sort"

	watermill "github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/components/metrics"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/yeisme/ebookshelf/pkg/configs"
	nlog "github.com/yeisme/ebookshelf/pkg/log"
)

// Factory 定义创建 Publisher + Subscriber 的工厂函数.
type Factory func(ctx context.Context, cfg *configs.MQConfig, logger watermill.LoggerAdapter) (message.Publisher, message.Subscriber, error)

var (
	factories = map[configs.MQType]Factory{}
)

// RegisterFactory 注册指定 MQType 的工厂.
func RegisterFactory(t configs.MQType, f Factory) {
	factories[t] = f
}

// RegisteredTypes 返回已注册的 MQ 类型.
func RegisteredTypes() []configs.MQType {
	types := make([]configs.MQType, 0, len(factories))
	for t := range factories {
		types = append(types, t)
	}

	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })

	return types
}

// Client 封装 watermill Publisher 与 Subscriber.
type Client struct {
	typ        configs.MQType
	prefix     string // 主题前缀，NATS 与 Redis 使用
	publisher  message.Publisher
	subscriber message.Subscriber
}

// Type 返回 MQ 类型.
func (c *Client) Type() configs.MQType {
	return c.typ
}

// Publisher 返回带主题前缀的 Publisher，供 queue 包的发布函数使用.
func (c *Client) Publisher() message.Publisher {
	return prefixedPublisher{Publisher: c.publisher, prefix: c.prefix}
}

type prefixedPublisher struct {
	message.Publisher
	prefix string
}

func (p prefixedPublisher) Publish(topic string, msgs ...*message.Message) error {
	return p.Publisher.Publish(p.prefix+topic, msgs...)
}

// Publish 便捷发布.
func (c *Client) Publish(ctx context.Context, topic string, msgs ...*message.Message) error {
	if c == nil || c.publisher == nil {
		return fmt.Errorf("mq publisher not initialized")
	}

	for _, m := range msgs {
		m.SetContext(ctx)

		if err := c.publisher.Publish(c.prefix+topic, m); err != nil {
			return err
		}
	}

	return nil
}

// Subscribe 便捷订阅.
func (c *Client) Subscribe(ctx context.Context, topic string) (<-chan *message.Message, error) {
	if c == nil || c.subscriber == nil {
		return nil, fmt.Errorf("mq subscriber not initialized")
	}

	return c.subscriber.Subscribe(ctx, c.prefix+topic)
}

// Close 关闭资源.
func (c *Client) Close() error {
	var errs []error

	if c.publisher != nil {
		errs = append(errs, c.publisher.Close())
	}

	// gochannel 的 Publisher 与 Subscriber 是同一实例
	if c.subscriber != nil && any(c.subscriber) != any(c.publisher) {
		errs = append(errs, c.subscriber.Close())
	}

	return errors.Join(errs...)
}

// New 按配置初始化消息队列；metricsCfg.Enabled 时用 Prometheus 装饰发布与订阅.
func New(ctx context.Context, cfg configs.MQConfig, metricsCfg configs.MetricsConfig) (*Client, error) {
	factory, ok := factories[cfg.Type]
	if !ok {
		return nil, fmt.Errorf("unsupported mq type: %s", cfg.Type)
	}

	logger := NewLoggerAdapter(nlog.Logger())

	pub, sub, err := factory(ctx, &cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("init mq (%s): %w", cfg.Type, err)
	}

	if metricsCfg.Enabled && cfg.Common.EnableMetrics {
		builder := metrics.NewPrometheusMetricsBuilder(prometheus.DefaultRegisterer, "ebookshelf", "mq")

		if pub, err = builder.DecoratePublisher(pub); err != nil {
			return nil, fmt.Errorf("decorate publisher with metrics: %w", err)
		}

		if sub, err = builder.DecorateSubscriber(sub); err != nil {
			return nil, fmt.Errorf("decorate subscriber with metrics: %w", err)
		}

		nlog.Logger().Info().Msg("MQ metrics enabled")
	}

	nlog.Logger().Info().Str("type", string(cfg.Type)).Msg("MQ 已初始化")

	client := &Client{typ: cfg.Type, publisher: pub, subscriber: sub}
	switch cfg.Type {
	case configs.MQTypeNATS:
		client.prefix = cfg.NATS.SubjectPrefix
	case configs.MQTypeRedis:
		client.prefix = cfg.Redis.ChannelPrefix
	}

	return client, nil
}
