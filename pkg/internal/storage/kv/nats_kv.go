package kv

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/yeisme/ebookshelf/pkg/configs"
)

// NATSKV 基于 NATS JetStream KV 的实现；bucket 没有按键 TTL，过期时间写在值的包装里.
type NATSKV struct {
	kv   nats.KeyValue
	conn *nats.Conn
}

// NewNATSKV 创建 NATS KV 实例.
func NewNATSKV(_ context.Context, cfg configs.KVConfig) (KVStore, error) {
	natsConfig := cfg.NATS

	// 连接到 NATS
	opts := []nats.Option{nats.Name("ebookshelf-kv")}
	if natsConfig.User != "" {
		opts = append(opts, nats.UserInfo(natsConfig.User, natsConfig.Password))
	}

	nc, err := nats.Connect(natsConfig.URL, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	// 创建 JetStream 上下文
	js, err := nc.JetStream()
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("failed to create JetStream context: %w", err)
	}

	// 获取或创建 KV bucket
	kv, err := js.KeyValue(natsConfig.Bucket)
	if errors.Is(err, nats.ErrBucketNotFound) {
		kv, err = js.CreateKeyValue(&nats.KeyValueConfig{Bucket: natsConfig.Bucket})
	}

	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("failed to create/get KV bucket: %w", err)
	}

	return &NATSKV{kv: kv, conn: nc}, nil
}

func (n *NATSKV) entry(key string) ([]byte, error) {
	entry, err := n.kv.Get(key)
	if errors.Is(err, nats.ErrKeyNotFound) {
		return nil, ErrNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("failed to get key: %w", err)
	}

	val, expired, err := decodeWithTTL(entry.Value(), time.Now())
	if err != nil {
		return nil, err
	}

	if expired {
		// lazy delete expired entry
		_ = n.kv.Delete(key)
		return nil, ErrNotFound
	}

	return val, nil
}

// Get 获取键的值.
func (n *NATSKV) Get(_ context.Context, key string) ([]byte, error) {
	return n.entry(key)
}

// Set 设置键的值.
func (n *NATSKV) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	encoded, err := encodeWithTTL(value, ttl, time.Now())
	if err != nil {
		return err
	}

	if _, err := n.kv.Put(key, encoded); err != nil {
		return fmt.Errorf("failed to set key: %w", err)
	}

	return nil
}

// Delete 删除键.
func (n *NATSKV) Delete(_ context.Context, key string) error {
	if err := n.kv.Delete(key); err != nil && !errors.Is(err, nats.ErrKeyNotFound) {
		return fmt.Errorf("failed to delete key: %w", err)
	}

	return nil
}

// Exists 检查键是否存在.
func (n *NATSKV) Exists(_ context.Context, key string) (bool, error) {
	_, err := n.entry(key)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}

	return err == nil, err
}

// Keys 获取匹配模式的键.
func (n *NATSKV) Keys(_ context.Context, pattern string) ([]string, error) {
	keys, err := n.kv.Keys()
	if errors.Is(err, nats.ErrNoKeysFound) {
		return []string{}, nil
	}

	if err != nil {
		return nil, fmt.Errorf("failed to get keys: %w", err)
	}

	result := make([]string, 0, len(keys))

	for _, key := range keys {
		if !matchKey(pattern, key) {
			continue
		}

		if _, err := n.entry(key); err != nil {
			continue
		}

		result = append(result, key)
	}

	sort.Strings(result)

	return result, nil
}

// Close 关闭 NATS 连接.
func (n *NATSKV) Close() error {
	n.conn.Close()
	return nil
}

func init() {
	RegisterKVFactory(KVTypeNATS, NewNATSKV)
}
