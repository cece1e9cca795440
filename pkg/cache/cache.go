// Package cache 提供基于键值存储的泛型缓存实现.
//
// 值使用 sonic 序列化，键统一加上命名空间前缀.
// 并发的未命中请求通过 singleflight 合并，只有一个调用者真正执行 getter.
//
// 基本用法:
//
//	c := cache.NewCache(kvStore, "catalog:")
//	env, err := cache.GetOrSet(ctx, c, key, func() (Envelope, error) {
//	    return load(ctx)
//	}, time.Minute)
//
// getter 返回错误时结果不会写入缓存.
package cache

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"golang.org/x/sync/singleflight"

	"github.com/yeisme/ebookshelf/pkg/internal/storage/kv"
)

// ErrMiss 缓存未命中.
var ErrMiss = errors.New("cache: miss")

// Cache 基于KV存储的缓存实现.
type Cache struct {
	kvStore kv.KVStore
	prefix  string
	group   singleflight.Group
}

// NewCache 创建一个新的缓存实例.
func NewCache(kvStore kv.KVStore, prefix string) *Cache {
	return &Cache{
		kvStore: kvStore,
		prefix:  prefix,
	}
}

// Key 返回带命名空间前缀的完整键.
func (c *Cache) Key(key string) string {
	return c.prefix + key
}

// Get 泛型获取缓存值，未命中返回 ErrMiss.
func Get[T any](ctx context.Context, c *Cache, key string) (T, error) {
	var zero T

	data, err := c.kvStore.Get(ctx, c.Key(key))
	if err != nil {
		if errors.Is(err, kv.ErrNotFound) {
			return zero, ErrMiss
		}

		return zero, err
	}

	var value T
	if err := sonic.Unmarshal(data, &value); err != nil {
		return zero, fmt.Errorf("failed to unmarshal cache value: %w", err)
	}

	return value, nil
}

// Set 泛型设置缓存值.
func Set[T any](ctx context.Context, c *Cache, key string, value T, ttl time.Duration) error {
	data, err := sonic.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal cache value: %w", err)
	}

	return c.kvStore.Set(ctx, c.Key(key), data, ttl)
}

// Delete 删除缓存键.
func (c *Cache) Delete(ctx context.Context, key string) error {
	return c.kvStore.Delete(ctx, c.Key(key))
}

// Exists 检查缓存键是否存在.
func (c *Cache) Exists(ctx context.Context, key string) (bool, error) {
	return c.kvStore.Exists(ctx, c.Key(key))
}

// GetOrSet 获取缓存值，未命中时执行 getter 并写回.
// 同一个键的并发未命中只执行一次 getter；写回失败不影响返回值.
// hit 表示结果是否来自缓存.
func GetOrSet[T any](ctx context.Context, c *Cache, key string, getter func() (T, error), ttl time.Duration) (value T, hit bool, err error) {
	if value, err := Get[T](ctx, c, key); err == nil {
		return value, true, nil
	}

	v, err, _ := c.group.Do(key, func() (any, error) {
		value, err := getter()
		if err != nil {
			return value, err
		}

		// 缓存失败，但仍返回值
		_ = Set(ctx, c, key, value, ttl)

		return value, nil
	})
	if err != nil {
		var zero T
		return zero, false, err
	}

	return v.(T), false, nil
}

// Clear 删除当前命名空间下的全部键.
func (c *Cache) Clear(ctx context.Context) error {
	keys, err := c.kvStore.Keys(ctx, c.prefix+"*")
	if err != nil {
		return err
	}

	for _, key := range keys {
		if !strings.HasPrefix(key, c.prefix) {
			continue
		}

		if delErr := c.kvStore.Delete(ctx, key); delErr != nil {
			return delErr
		}
	}

	return nil
}
