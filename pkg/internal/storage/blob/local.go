package blob

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"os"
	"path"
	"strings"

	"github.com/spf13/afero"

	"github.com/yeisme/ebookshelf/pkg/configs"
	nlog "github.com/yeisme/ebookshelf/pkg/log"
)

// LocalStore 基于 afero 文件系统的存储后端.
type LocalStore struct {
	fs     afero.Fs
	mapper refMapper
}

var _ Store = (*LocalStore)(nil)

func init() {
	RegisterStoreFactory(configs.BlobLocal, func(_ context.Context, cfg configs.BlobConfig) (Store, error) {
		if err := os.MkdirAll(cfg.Root, 0o755); err != nil {
			return nil, fmt.Errorf("create blob root %s: %w", cfg.Root, err)
		}

		nlog.Logger().Info().Str("root", cfg.Root).Str("url_prefix", cfg.URLPrefix).Msg("local blob store ready")

		return NewLocalStore(afero.NewBasePathFs(afero.NewOsFs(), cfg.Root), cfg.URLPrefix), nil
	})
}

// NewLocalStore 使用给定文件系统创建本地存储，urlPrefix 为公开访问前缀（如 /uploads）.
func NewLocalStore(fsys afero.Fs, urlPrefix string) *LocalStore {
	return &LocalStore{
		fs:     fsys,
		mapper: refMapper{base: strings.TrimRight(urlPrefix, "/")},
	}
}

// Store 以独占方式创建文件并写入内容.
func (s *LocalStore) Store(ctx context.Context, content io.Reader, _ int64, _ string, key string) (string, error) {
	key, err := CleanKey(key)
	if err != nil {
		return "", err
	}

	if err := ctx.Err(); err != nil {
		return "", err
	}

	if err := s.fs.MkdirAll(path.Dir(key), 0o755); err != nil {
		return "", fmt.Errorf("create blob dir: %w", err)
	}

	f, err := s.fs.OpenFile(key, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		if errors.Is(err, os.ErrExist) {
			return "", fmt.Errorf("%w: %s", ErrExists, key)
		}

		return "", fmt.Errorf("create blob %s: %w", key, err)
	}

	if _, err := io.Copy(f, contextReader{ctx: ctx, r: content}); err != nil {
		_ = f.Close()
		_ = s.fs.Remove(key)

		return "", fmt.Errorf("write blob %s: %w", key, err)
	}

	if err := f.Close(); err != nil {
		_ = s.fs.Remove(key)

		return "", fmt.Errorf("close blob %s: %w", key, err)
	}

	return s.mapper.ref(key), nil
}

// Key 还原对象 key.
func (s *LocalStore) Key(reference string) (string, error) {
	return s.mapper.key(reference)
}

// Remove 删除文件，不存在时视为成功.
func (s *LocalStore) Remove(_ context.Context, reference string) error {
	key, err := s.mapper.key(reference)
	if err != nil {
		return err
	}

	if err := s.fs.Remove(key); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove blob %s: %w", key, err)
	}

	return nil
}

// List 遍历 prefix 目录下的所有文件.
func (s *LocalStore) List(_ context.Context, prefix string) ([]Object, error) {
	root := strings.Trim(prefix, "/")
	if root == "" {
		root = "."
	}

	var objects []Object

	err := afero.Walk(s.fs, root, func(p string, info fs.FileInfo, err error) error {
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				return nil
			}

			return err
		}

		if info.IsDir() {
			return nil
		}

		key := strings.TrimPrefix(path.Clean(p), "./")
		objects = append(objects, Object{
			Key:          key,
			Reference:    s.mapper.ref(key),
			Size:         info.Size(),
			LastModified: info.ModTime(),
		})

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list blobs %s: %w", prefix, err)
	}

	return objects, nil
}

// HealthCheck 检查根目录可访问.
func (s *LocalStore) HealthCheck(_ context.Context) error {
	if _, err := s.fs.Stat("."); err != nil {
		return fmt.Errorf("blob root unavailable: %w", err)
	}

	return nil
}

// Type 返回后端类型.
func (s *LocalStore) Type() configs.BlobType {
	return configs.BlobLocal
}

// FileSystem 返回只读的 http.FileSystem，目录不可列出.
func (s *LocalStore) FileSystem() http.FileSystem {
	return filesOnly{fs: afero.NewHttpFs(s.fs)}
}

// URLPrefix 返回公开访问前缀.
func (s *LocalStore) URLPrefix() string {
	return s.mapper.base
}

type filesOnly struct {
	fs http.FileSystem
}

func (f filesOnly) Open(name string) (http.File, error) {
	name = strings.TrimPrefix(path.Clean("/"+name), "/")
	if name == "" {
		return nil, os.ErrNotExist
	}

	file, err := f.fs.Open(name)
	if err != nil {
		return nil, err
	}

	info, err := file.Stat()
	if err != nil {
		_ = file.Close()

		return nil, err
	}

	if info.IsDir() {
		_ = file.Close()

		return nil, os.ErrNotExist
	}

	return file, nil
}

// contextReader 在 context 取消后停止读取.
type contextReader struct {
	ctx context.Context
	r   io.Reader
}

func (c contextReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}

	return c.r.Read(p)
}
