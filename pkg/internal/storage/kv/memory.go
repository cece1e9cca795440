package kv

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/yeisme/ebookshelf/pkg/configs"
)

type memoryEntry struct {
	value     []byte
	expiresAt time.Time // 零值表示不过期
}

func (e *memoryEntry) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && !now.Before(e.expiresAt)
}

// MemoryKV 基于 sync.Map 的内存 KV 实现，过期键在访问时惰性删除.
type MemoryKV struct {
	data sync.Map // 并发安全的 map
	now  func() time.Time
}

// NewMemoryKV 创建内存 KV 实例.
func NewMemoryKV(_ context.Context, _ configs.KVConfig) (KVStore, error) {
	// 内存实现不需要特殊配置
	return &MemoryKV{now: time.Now}, nil
}

// load 返回未过期的条目；过期条目按指针比较删除，不会误删并发写入的新值.
func (m *MemoryKV) load(key string) (*memoryEntry, bool) {
	v, ok := m.data.Load(key)
	if !ok {
		return nil, false
	}

	e, ok := v.(*memoryEntry)
	if !ok {
		return nil, false
	}

	if e.expired(m.clock()) {
		m.data.CompareAndDelete(key, e)

		return nil, false
	}

	return e, true
}

func (m *MemoryKV) clock() time.Time {
	if m.now == nil {
		return time.Now()
	}

	return m.now()
}

// Get 获取键的值.
func (m *MemoryKV) Get(_ context.Context, key string) ([]byte, error) {
	e, ok := m.load(key)
	if !ok {
		return nil, ErrNotFound
	}

	// 返回副本
	result := make([]byte, len(e.value))
	copy(result, e.value)

	return result, nil
}

// Set 设置键的值.
func (m *MemoryKV) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	// 复制值
	data := make([]byte, len(value))
	copy(data, value)

	e := &memoryEntry{value: data}
	if ttl > 0 {
		e.expiresAt = m.clock().Add(ttl)
	}

	m.data.Store(key, e)

	return nil
}

// Delete 删除键.
func (m *MemoryKV) Delete(_ context.Context, key string) error {
	m.data.Delete(key)
	return nil
}

// Exists 检查键是否存在.
func (m *MemoryKV) Exists(_ context.Context, key string) (bool, error) {
	_, ok := m.load(key)
	return ok, nil
}

// Keys 获取匹配模式的键.
func (m *MemoryKV) Keys(_ context.Context, pattern string) ([]string, error) {
	keys := make([]string, 0)

	m.data.Range(func(key, _ any) bool {
		k, ok := key.(string)
		if !ok {
			return true // 继续遍历
		}

		if _, live := m.load(k); live && matchKey(pattern, k) {
			keys = append(keys, k)
		}

		return true
	})

	sort.Strings(keys)

	return keys, nil
}

// Close 关闭存储（内存实现无需操作）.
func (m *MemoryKV) Close() error {
	return nil
}

func init() {
	RegisterKVFactory(KVTypeMemory, NewMemoryKV)
}
