package kv_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yeisme/ebookshelf/pkg/configs"
	"github.com/yeisme/ebookshelf/pkg/internal/storage/kv"
)

func newMemory(t testing.TB) kv.KVStore {
	t.Helper()

	store, err := kv.NewKVStore(context.Background(), kv.KVTypeMemory, configs.KVConfig{})
	require.NoError(t, err)

	return store
}

func newRedis(t *testing.T) (kv.KVStore, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	cfg := configs.KVConfig{Type: "redis", Redis: configs.RedisKVConfig{Addr: mr.Addr()}}

	store, err := kv.NewKVStore(context.Background(), kv.KVTypeRedis, cfg)
	require.NoError(t, err)

	t.Cleanup(func() { _ = store.Close() })

	return store, mr
}

// exerciseStore 对任意实现执行相同的读写删校验.
func exerciseStore(t *testing.T, store kv.KVStore) {
	t.Helper()

	ctx := context.Background()

	_, err := store.Get(ctx, "session:missing")
	assert.ErrorIs(t, err, kv.ErrNotFound)

	require.NoError(t, store.Set(ctx, "session:revoked:a", []byte("1"), 0))
	require.NoError(t, store.Set(ctx, "session:revoked:b", []byte("1"), time.Hour))
	require.NoError(t, store.Set(ctx, "catalog:gen", []byte("01J"), 0))

	v, err := store.Get(ctx, "catalog:gen")
	require.NoError(t, err)
	assert.Equal(t, "01J", string(v))

	ok, err := store.Exists(ctx, "session:revoked:a")
	require.NoError(t, err)
	assert.True(t, ok)

	keys, err := store.Keys(ctx, "session:*")
	require.NoError(t, err)
	assert.Equal(t, []string{"session:revoked:a", "session:revoked:b"}, keys)

	require.NoError(t, store.Delete(ctx, "session:revoked:a"))

	ok, err = store.Exists(ctx, "session:revoked:a")
	require.NoError(t, err)
	assert.False(t, ok)

	// 删除不存在的键不报错
	assert.NoError(t, store.Delete(ctx, "session:revoked:a"))
}

func TestMemoryKV(t *testing.T) {
	exerciseStore(t, newMemory(t))
}

func TestRedisKV(t *testing.T) {
	store, _ := newRedis(t)
	exerciseStore(t, store)
}

func TestMemoryKVExpiry(t *testing.T) {
	ctx := context.Background()
	store := newMemory(t)

	require.NoError(t, store.Set(ctx, "k", []byte("v"), 20*time.Millisecond))

	ok, _ := store.Exists(ctx, "k")
	assert.True(t, ok)

	time.Sleep(40 * time.Millisecond)

	_, err := store.Get(ctx, "k")
	assert.ErrorIs(t, err, kv.ErrNotFound)

	keys, err := store.Keys(ctx, "")
	require.NoError(t, err)
	assert.Empty(t, keys)
}

func TestMemoryKVSetAfterExpiry(t *testing.T) {
	ctx := context.Background()
	store := newMemory(t)

	require.NoError(t, store.Set(ctx, "catalog:list:1", []byte("old"), 10*time.Millisecond))
	time.Sleep(30 * time.Millisecond)

	ok, err := store.Exists(ctx, "catalog:list:1")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.Set(ctx, "catalog:list:1", []byte("new"), time.Minute))

	got, err := store.Get(ctx, "catalog:list:1")
	require.NoError(t, err)
	assert.Equal(t, []byte("new"), got)
}

func TestRedisKVExpiry(t *testing.T) {
	ctx := context.Background()
	store, mr := newRedis(t)

	require.NoError(t, store.Set(ctx, "k", []byte("v"), time.Minute))
	mr.FastForward(2 * time.Minute)

	_, err := store.Get(ctx, "k")
	assert.ErrorIs(t, err, kv.ErrNotFound)
}

func TestMemoryKVReturnsCopies(t *testing.T) {
	ctx := context.Background()
	store := newMemory(t)

	in := []byte("abc")
	require.NoError(t, store.Set(ctx, "k", in, 0))
	in[0] = 'x'

	out, err := store.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "abc", string(out))
}

func TestUnsupportedType(t *testing.T) {
	_, err := kv.NewKVStore(context.Background(), "groupcache", configs.KVConfig{})
	assert.Error(t, err)
	assert.Equal(t, []kv.KVType{kv.KVTypeMemory, kv.KVTypeNATS, kv.KVTypeRedis}, kv.GetRegisteredKVTypes())
}

func BenchmarkMemoryKV(b *testing.B) {
	ctx := context.Background()
	store := newMemory(b)
	val := []byte("value")

	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		key := fmt.Sprintf("k-%d", i%1024)
		_ = store.Set(ctx, key, val, time.Minute)
		_, _ = store.Get(ctx, key)
	}
}

func BenchmarkMemoryKVParallel(b *testing.B) {
	ctx := context.Background()
	store := newMemory(b)
	val := []byte("value")

	b.RunParallel(func(pb *testing.PB) {
		i := 0
		for pb.Next() {
			key := fmt.Sprintf("k-%d", i%1024)
			_ = store.Set(ctx, key, val, 0)
			_, _ = store.Get(ctx, key)
			i++
		}
	})
}
