package cache_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/yeisme/ebookshelf/pkg/cache"
	"github.com/yeisme/ebookshelf/pkg/configs"
	"github.com/yeisme/ebookshelf/pkg/internal/storage/kv"
)

// testBook 测试用的结构体.
type testBook struct {
	ID    uint   `json:"id"`
	Title string `json:"title"`
}

func newStore(t *testing.T) kv.KVStore {
	t.Helper()

	store, err := kv.NewMemoryKV(context.Background(), configs.KVConfig{})
	if err != nil {
		t.Fatalf("NewMemoryKV: %v", err)
	}

	return store
}

// TestCache_GetSet 测试 Get 与 Set.
func TestCache_GetSet(t *testing.T) {
	store := newStore(t)
	c := cache.NewCache(store, "test:")
	ctx := context.Background()

	if _, err := cache.Get[testBook](ctx, c, "missing"); !errors.Is(err, cache.ErrMiss) {
		t.Errorf("Expected ErrMiss, got %v", err)
	}

	book := testBook{ID: 1, Title: "L'Étranger"}
	if err := cache.Set(ctx, c, "book:1", book, 0); err != nil {
		t.Fatalf("Failed to set cache: %v", err)
	}

	// 键带前缀写入底层存储
	if ok, _ := store.Exists(ctx, "test:book:1"); !ok {
		t.Error("Expected prefixed key in store")
	}

	got, err := cache.Get[testBook](ctx, c, "book:1")
	if err != nil {
		t.Fatalf("Failed to get cache: %v", err)
	}

	if got != book {
		t.Errorf("Retrieved %+v does not match original %+v", got, book)
	}
}

// TestCache_Delete 测试 Delete 与 Exists.
func TestCache_Delete(t *testing.T) {
	c := cache.NewCache(newStore(t), "test:")
	ctx := context.Background()

	if err := cache.Set(ctx, c, "k", 42, 0); err != nil {
		t.Fatalf("Failed to set cache: %v", err)
	}

	if ok, _ := c.Exists(ctx, "k"); !ok {
		t.Error("Key should exist before deletion")
	}

	if err := c.Delete(ctx, "k"); err != nil {
		t.Fatalf("Failed to delete cache: %v", err)
	}

	if ok, _ := c.Exists(ctx, "k"); ok {
		t.Error("Key should not exist after deletion")
	}
}

// TestGetOrSet 测试 GetOrSet 只在未命中时调用 getter.
func TestGetOrSet(t *testing.T) {
	c := cache.NewCache(newStore(t), "test:")
	ctx := context.Background()

	callCount := 0
	getter := func() (testBook, error) {
		callCount++
		return testBook{ID: 5, Title: "Dune"}, nil
	}

	first, hit, err := cache.GetOrSet(ctx, c, "book:5", getter, time.Minute)
	if err != nil {
		t.Fatalf("Failed to get or set: %v", err)
	}

	if hit || callCount != 1 {
		t.Errorf("Expected a miss with one getter call, got hit=%v calls=%d", hit, callCount)
	}

	second, hit, err := cache.GetOrSet(ctx, c, "book:5", getter, time.Minute)
	if err != nil {
		t.Fatalf("Failed to get or set: %v", err)
	}

	if !hit || callCount != 1 {
		t.Errorf("Expected a hit without getter call, got hit=%v calls=%d", hit, callCount)
	}

	if first != second {
		t.Errorf("Results don't match: %+v vs %+v", first, second)
	}
}

// TestGetOrSet_GetterError 测试 getter 失败时不写缓存.
func TestGetOrSet_GetterError(t *testing.T) {
	c := cache.NewCache(newStore(t), "test:")
	ctx := context.Background()

	_, _, err := cache.GetOrSet(ctx, c, "book:err", func() (testBook, error) {
		return testBook{}, errors.New("getter error")
	}, 0)
	if err == nil || err.Error() != "getter error" {
		t.Fatalf("Expected 'getter error', got %v", err)
	}

	if ok, _ := c.Exists(ctx, "book:err"); ok {
		t.Error("Failed result must not be cached")
	}
}

// TestGetOrSet_Collapses 测试并发未命中被合并.
func TestGetOrSet_Collapses(t *testing.T) {
	c := cache.NewCache(newStore(t), "test:")
	ctx := context.Background()

	var calls atomic.Int32

	release := make(chan struct{})
	getter := func() (int, error) {
		calls.Add(1)
		<-release

		return 7, nil
	}

	const n = 8

	var wg sync.WaitGroup

	results := make([]int, n)

	for i := range n {
		wg.Add(1)

		go func(i int) {
			defer wg.Done()

			v, _, err := cache.GetOrSet(ctx, c, "shared", getter, 0)
			if err != nil {
				t.Errorf("GetOrSet: %v", err)
			}

			results[i] = v
		}(i)
	}

	// 等待第一个调用进入 getter
	for calls.Load() == 0 {
		time.Sleep(time.Millisecond)
	}

	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	if got := calls.Load(); got > n {
		t.Errorf("getter called %d times", got)
	}

	for i, v := range results {
		if v != 7 {
			t.Errorf("result %d = %d, want 7", i, v)
		}
	}
}

// TestCache_Clear 测试 Clear 只删除本命名空间的键.
func TestCache_Clear(t *testing.T) {
	store := newStore(t)
	c := cache.NewCache(store, "test:")
	ctx := context.Background()

	for i := 1; i <= 3; i++ {
		if err := cache.Set(ctx, c, fmt.Sprintf("book:%d", i), i, 0); err != nil {
			t.Fatalf("Failed to set cache: %v", err)
		}
	}

	if err := store.Set(ctx, "other:key", []byte("x"), 0); err != nil {
		t.Fatalf("Failed to set foreign key: %v", err)
	}

	if err := c.Clear(ctx); err != nil {
		t.Fatalf("Failed to clear cache: %v", err)
	}

	keys, _ := store.Keys(ctx, "*")
	if len(keys) != 1 || keys[0] != "other:key" {
		t.Errorf("Expected only other:key to remain, got %v", keys)
	}
}
