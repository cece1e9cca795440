package mq

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/bytedance/sonic"
	"github.com/redis/go-redis/v9"

	"github.com/yeisme/ebookshelf/pkg/configs"
)

const (
	// DefaultChannelBufferSize 默认通道缓冲区大小.
	DefaultChannelBufferSize = 100
)

// ErrSubscriberClosed 订阅者已关闭.
var ErrSubscriberClosed = errors.New("redis subscriber closed")

// redisFrame Redis 频道上传输的消息帧，保留 watermill 的 UUID 与元数据.
type redisFrame struct {
	UUID     string            `json:"uuid"`
	Metadata map[string]string `json:"metadata,omitempty"`
	Payload  []byte            `json:"payload"`
}

// RedisPublisher Redis Publisher 实现.
type RedisPublisher struct {
	client *redis.Client
	owner  bool
}

// RedisSubscriber Redis Subscriber 实现.
type RedisSubscriber struct {
	client  *redis.Client
	logger  watermill.LoggerAdapter
	subs    []*redis.PubSub
	mu      sync.Mutex
	wg      sync.WaitGroup
	closed  bool
	closeCh chan struct{}
}

func init() {
	RegisterFactory(configs.MQTypeRedis, redisFactory)
}

// redisFactory 创建 Redis Publisher & Subscriber，两者共用一个客户端，由 Subscriber 负责关闭.
func redisFactory(
	ctx context.Context,
	cfg *configs.MQConfig,
	logger watermill.LoggerAdapter) (
	message.Publisher, message.Subscriber, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, nil, fmt.Errorf("ping redis: %w", err)
	}

	return NewRedisPublisher(rdb, false), NewRedisSubscriber(rdb, logger), nil
}

// NewRedisPublisher 基于已有客户端创建 Publisher；owner 为 true 时 Close 会关闭客户端.
func NewRedisPublisher(client *redis.Client, owner bool) *RedisPublisher {
	return &RedisPublisher{client: client, owner: owner}
}

// NewRedisSubscriber 基于已有客户端创建 Subscriber.
func NewRedisSubscriber(client *redis.Client, logger watermill.LoggerAdapter) *RedisSubscriber {
	if logger == nil {
		logger = watermill.NopLogger{}
	}

	return &RedisSubscriber{
		client:  client,
		logger:  logger,
		closeCh: make(chan struct{}),
	}
}

// Publish 实现 Publisher 接口.
func (p *RedisPublisher) Publish(topic string, msgs ...*message.Message) error {
	for _, msg := range msgs {
		data, err := sonic.Marshal(redisFrame{UUID: msg.UUID, Metadata: msg.Metadata, Payload: msg.Payload})
		if err != nil {
			return fmt.Errorf("encode message %s: %w", msg.UUID, err)
		}

		if err := p.client.Publish(msg.Context(), topic, data).Err(); err != nil {
			return fmt.Errorf("publish to %s: %w", topic, err)
		}
	}

	return nil
}

// Close 实现 Publisher 接口.
func (p *RedisPublisher) Close() error {
	if !p.owner {
		return nil
	}

	return p.client.Close()
}

// Subscribe 实现 Subscriber 接口；返回前订阅已在服务端生效.
func (s *RedisSubscriber) Subscribe(ctx context.Context, topic string) (<-chan *message.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, ErrSubscriberClosed
	}

	ps := s.client.Subscribe(ctx, topic)
	if _, err := ps.Receive(ctx); err != nil {
		_ = ps.Close()
		return nil, fmt.Errorf("subscribe %s: %w", topic, err)
	}

	s.subs = append(s.subs, ps)

	out := make(chan *message.Message, DefaultChannelBufferSize)

	s.wg.Add(1)

	go s.consume(ctx, topic, ps.Channel(), out)

	return out, nil
}

func (s *RedisSubscriber) consume(ctx context.Context, topic string, in <-chan *redis.Message, out chan<- *message.Message) {
	defer s.wg.Done()
	defer close(out)

	fields := watermill.LogFields{"topic": topic}

	for {
		var raw *redis.Message

		select {
		case <-s.closeCh:
			return
		case <-ctx.Done():
			return
		case m, ok := <-in:
			if !ok {
				return
			}

			raw = m
		}

		var frame redisFrame
		if err := sonic.UnmarshalString(raw.Payload, &frame); err != nil {
			s.logger.Error("drop undecodable redis message", err, fields)
			continue
		}

		msg := message.NewMessage(frame.UUID, frame.Payload)
		for k, v := range frame.Metadata {
			msg.Metadata.Set(k, v)
		}

		msg.SetContext(ctx)

		select {
		case out <- msg:
		case <-s.closeCh:
			return
		case <-ctx.Done():
			return
		}
	}
}

// Close 实现 Subscriber 接口.
func (s *RedisSubscriber) Close() error {
	s.mu.Lock()

	if s.closed {
		s.mu.Unlock()
		return nil
	}

	s.closed = true
	close(s.closeCh)

	var errs []error
	for _, ps := range s.subs {
		errs = append(errs, ps.Close())
	}

	s.mu.Unlock()

	s.wg.Wait()

	errs = append(errs, s.client.Close())

	return errors.Join(errs...)
}
