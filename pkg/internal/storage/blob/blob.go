// Package blob 处理封面图片与 PDF 文件的存储，提供本地文件系统与 S3 两种后端.
//
// 对象以 key 寻址（例如 covers/01J...-cover.png），对外暴露的是公开引用（reference）：
// 本地后端为 /uploads/<key>，S3 后端为 <public_url>/<key>。
package blob

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/yeisme/ebookshelf/pkg/configs"
)

var (
	// ErrExists 目标 key 已存在，Store 只创建不覆盖.
	ErrExists = errors.New("blob already exists")
	// ErrInvalidKey key 为空或包含非法路径.
	ErrInvalidKey = errors.New("invalid blob key")
)

// Object 存储中的单个对象.
type Object struct {
	Key          string
	Reference    string
	Size         int64
	LastModified time.Time
}

// Store 文件存储后端.
type Store interface {
	// Store 写入 content 并返回公开引用；key 已存在时返回 ErrExists.
	Store(ctx context.Context, content io.Reader, size int64, contentType, key string) (string, error)
	// Key 把公开引用还原为对象 key；不属于本后端的引用返回 ErrInvalidKey.
	Key(reference string) (string, error)
	// Remove 删除引用指向的对象，对象不存在时不报错.
	Remove(ctx context.Context, reference string) error
	// List 列出 key 以 prefix 开头的对象.
	List(ctx context.Context, prefix string) ([]Object, error)
	// HealthCheck 检查后端可用性.
	HealthCheck(ctx context.Context) error
	// Type 返回后端类型.
	Type() configs.BlobType
}

// StoreFactory 根据配置创建 Store.
type StoreFactory func(ctx context.Context, cfg configs.BlobConfig) (Store, error)

var storeFactories = map[configs.BlobType]StoreFactory{}

// RegisterStoreFactory 注册存储后端工厂.
func RegisterStoreFactory(t configs.BlobType, f StoreFactory) {
	storeFactories[t] = f
}

// New 按配置创建存储后端.
func New(ctx context.Context, cfg configs.BlobConfig) (Store, error) {
	f, ok := storeFactories[cfg.Type]
	if !ok {
		return nil, fmt.Errorf("unsupported blob store type: %s", cfg.Type)
	}

	return f(ctx, cfg)
}

// CleanKey 规范化 key，拒绝空 key 与越界路径.
func CleanKey(key string) (string, error) {
	key = strings.TrimLeft(strings.TrimSpace(key), "/")
	if key == "" {
		return "", ErrInvalidKey
	}

	cleaned := path.Clean(key)
	if cleaned == "." || cleaned == ".." || strings.HasPrefix(cleaned, "../") || cleaned != key {
		return "", fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}

	return cleaned, nil
}

// refMapper 负责 key 与公开引用之间的转换.
type refMapper struct {
	base string
}

func (m refMapper) ref(key string) string {
	return m.base + "/" + key
}

// key 将引用还原为 key；不带前缀的引用按 key 处理.
func (m refMapper) key(reference string) (string, error) {
	reference = strings.TrimSpace(reference)
	if rest, ok := strings.CutPrefix(reference, m.base+"/"); ok {
		return CleanKey(rest)
	}

	if strings.Contains(reference, "://") {
		return "", fmt.Errorf("%w: foreign reference %q", ErrInvalidKey, reference)
	}

	return CleanKey(reference)
}
