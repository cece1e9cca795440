// Package testutil 提供测试用的数据库、文件存储与 KV 构造函数.
package testutil

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"

	"github.com/yeisme/ebookshelf/pkg/configs"
	"github.com/yeisme/ebookshelf/pkg/internal/model"
	"github.com/yeisme/ebookshelf/pkg/internal/repository"
	"github.com/yeisme/ebookshelf/pkg/internal/storage/blob"
	dbc "github.com/yeisme/ebookshelf/pkg/internal/storage/db"
	"github.com/yeisme/ebookshelf/pkg/internal/storage/kv"
)

// BaseTime 种子数据的起始创建时间.
var BaseTime = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

// NewDB 在临时目录创建纯 Go SQLite 数据库并完成迁移.
func NewDB(t testing.TB) *dbc.Client {
	t.Helper()

	ctx := context.Background()

	client, err := dbc.Open(ctx, sqlite.Open(filepath.Join(t.TempDir(), "catalog.db")))
	require.NoError(t, err)

	sqlDB, err := client.DB.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, client.Migrate(ctx, &model.Ebook{}))

	t.Cleanup(func() { _ = client.Close() })

	return client
}

// NewRepository 返回基于临时数据库的仓储.
func NewRepository(t testing.TB) *repository.EbookRepository {
	t.Helper()

	return repository.NewEbookRepository(NewDB(t).DB)
}

// NewBlobStore 返回内存文件系统上的本地存储及其底层文件系统.
func NewBlobStore(t testing.TB) (*blob.LocalStore, afero.Fs) {
	t.Helper()

	fs := afero.NewMemMapFs()

	return blob.NewLocalStore(fs, configs.DefaultBlobURLPrefix), fs
}

// NewKV 返回内存 KV.
func NewKV(t testing.TB) kv.KVStore {
	t.Helper()

	store, err := kv.NewKVStore(context.Background(), kv.KVTypeMemory, configs.KVConfig{})
	require.NoError(t, err)

	return store
}

// Book 构造一条测试记录，第 i 条比第 i-1 条晚一分钟创建.
func Book(i int, title, author string) model.Ebook {
	return model.Ebook{
		Title:     title,
		Author:    author,
		Language:  "fr",
		PDFPath:   "/uploads/pdfs/seed-" + title + ".pdf",
		CreatedAt: BaseTime.Add(time.Duration(i) * time.Minute),
	}
}

// Seed 依次插入记录并返回分配的 ID.
func Seed(t testing.TB, repo *repository.EbookRepository, books ...model.Ebook) []uint {
	t.Helper()

	ids := make([]uint, 0, len(books))

	for i := range books {
		id, err := repo.Insert(context.Background(), &books[i])
		require.NoError(t, err)

		ids = append(ids, id)
	}

	return ids
}

// DefaultCatalogConfig 测试使用的目录配置，关闭缓存.
func DefaultCatalogConfig() configs.CatalogConfig {
	return configs.CatalogConfig{
		DefaultPageSize: configs.DefaultPageSize,
		MaxPageSize:     configs.DefaultMaxPageSize,
		DefaultLanguage: configs.DefaultLanguage,
	}
}
