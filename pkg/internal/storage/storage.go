// Package storage 聚合数据库、文件存储、KV 与消息队列客户端.
//
// Example:
//
//	mgr, err := storage.New(ctx, configs.GetConfig())
//	if err != nil {
//		// 处理错误
//	}
//	defer mgr.Close()
//
//	repo := repository.NewEbookRepository(mgr.DB.DB)
package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/yeisme/ebookshelf/pkg/configs"
	"github.com/yeisme/ebookshelf/pkg/internal/model"
	"github.com/yeisme/ebookshelf/pkg/internal/storage/blob"
	dbc "github.com/yeisme/ebookshelf/pkg/internal/storage/db"
	kvc "github.com/yeisme/ebookshelf/pkg/internal/storage/kv"
	mqc "github.com/yeisme/ebookshelf/pkg/internal/storage/mq"
	nlog "github.com/yeisme/ebookshelf/pkg/log"
)

// Manager 聚合所有存储资源.
type Manager struct {
	DB   *dbc.Client
	Blob blob.Store
	KV   *kvc.Client
	MQ   *mqc.Client
}

// New 按配置初始化全部存储；任一步失败时关闭已打开的资源.
func New(ctx context.Context, cfg *configs.AppConfig) (*Manager, error) {
	m := &Manager{}

	var err error

	if m.DB, err = dbc.New(ctx, cfg.DB); err != nil {
		return nil, err
	}

	if cfg.DB.AutoMigrate {
		if err = m.DB.Migrate(ctx, &model.Ebook{}); err != nil {
			_ = m.Close()

			return nil, err
		}
	}

	if m.Blob, err = blob.New(ctx, cfg.Blob); err != nil {
		_ = m.Close()

		return nil, fmt.Errorf("init blob store: %w", err)
	}

	if m.KV, err = kvc.NewKVClient(ctx, cfg.KV); err != nil {
		_ = m.Close()

		return nil, fmt.Errorf("init kv: %w", err)
	}

	if m.MQ, err = mqc.New(ctx, cfg.MQ, cfg.Metrics); err != nil {
		_ = m.Close()

		return nil, err
	}

	nlog.Logger().Info().
		Str("db", cfg.DB.GetDBType()).
		Str("blob", string(cfg.Blob.Type)).
		Str("kv", cfg.KV.Type).
		Str("mq", string(cfg.MQ.Type)).
		Msg("storage manager initialized")

	return m, nil
}

// Close 关闭所有已初始化的资源.
func (m *Manager) Close() error {
	var errs []error

	if m.MQ != nil {
		errs = append(errs, m.MQ.Close())
	}

	if m.KV != nil {
		errs = append(errs, m.KV.Close())
	}

	if m.DB != nil {
		errs = append(errs, m.DB.Close())
	}

	return errors.Join(errs...)
}
