// Package db 处理数据库存储操作.
package db

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	gormPrometheus "gorm.io/plugin/prometheus"

	"github.com/yeisme/ebookshelf/pkg/configs"
	nlog "github.com/yeisme/ebookshelf/pkg/log"
)

// DialectorFactory 定义创建 dialector 的函数类型.
type DialectorFactory func(dsn string) gorm.Dialector

var (
	// dialectorFactories 存储数据库类型到 dialector 工厂的映射.
	dialectorFactories = map[configs.DBType]DialectorFactory{}
	factoriesMu        sync.RWMutex
)

// RegisterDialectorFactory 注册数据库 dialector 工厂函数.
func RegisterDialectorFactory(factory DialectorFactory, dbTypes ...configs.DBType) {
	factoriesMu.Lock()
	defer factoriesMu.Unlock()

	for _, t := range dbTypes {
		dialectorFactories[t] = factory
	}
}

// GetRegisteredDBTypes 返回已注册的数据库类型列表.
func GetRegisteredDBTypes() []configs.DBType {
	factoriesMu.RLock()
	defer factoriesMu.RUnlock()

	types := make([]configs.DBType, 0, len(dialectorFactories))
	for dbType := range dialectorFactories {
		types = append(types, dbType)
	}

	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })

	return types
}

// Client 包装 GORM DB 客户端.
type Client struct {
	*gorm.DB
}

const slowQueryThreshold = 200 * time.Millisecond

// New 按配置连接数据库并校验连通性.
func New(ctx context.Context, cfg configs.DBConfig) (*Client, error) {
	dsn := cfg.GetDSN()
	if dsn == "" {
		return nil, fmt.Errorf("failed to generate DSN for database type: %s", cfg.Type)
	}

	factoriesMu.RLock()
	factory, exists := dialectorFactories[cfg.Type]
	factoriesMu.RUnlock()

	if !exists {
		return nil, fmt.Errorf("unsupported database type: %s", cfg.Type)
	}

	client, err := Open(ctx, factory(dsn))
	if err != nil {
		return nil, err
	}

	sqlDB, err := client.DB.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	// 配置连接池；SQLite 只允许单写连接，未显式配置时限制为 1
	maxOpen := cfg.MaxOpenConns
	if cfg.Type == configs.SQLite && maxOpen == 0 {
		maxOpen = 1
	}

	sqlDB.SetMaxOpenConns(maxOpen)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)

	if cfg.Metrics {
		if err := client.RegisterGORMMetrics(cfg.Database); err != nil {
			return nil, fmt.Errorf("failed to register GORM metrics: %w", err)
		}

		nlog.Logger().Info().Msg("GORM metrics 注册成功")
	}

	nlog.Logger().Info().
		Str("type", cfg.GetDBType()).
		Str("host", cfg.Host).
		Int("port", cfg.Port).
		Str("database", cfg.Database).
		Msg("数据库连接成功")

	return client, nil
}

// Open 使用给定 dialector 打开连接，测试中可直接传入 SQLite dialector.
func Open(ctx context.Context, dialector gorm.Dialector) (*Client, error) {
	level := logger.Warn
	if configs.GetConfig().Server.Debug {
		level = logger.Info
	}

	// 配置 GORM 日志，输出到 zerolog
	gormLogger := logger.New(
		nlog.Logger(),
		logger.Config{
			SlowThreshold:             slowQueryThreshold,
			LogLevel:                  level,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:      gormLogger,
		PrepareStmt: true,
		NowFunc:     func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	client := &Client{DB: db}
	if err := client.HealthCheck(ctx); err != nil {
		return nil, err
	}

	return client, nil
}

// GetDB 返回 GORM DB 实例.
func (c *Client) GetDB() *gorm.DB {
	return c.DB
}

// Migrate 为给定模型执行自动迁移.
func (c *Client) Migrate(ctx context.Context, models ...any) error {
	if err := c.WithContext(ctx).AutoMigrate(models...); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	return nil
}

// HealthCheck 检查数据库连接.
func (c *Client) HealthCheck(ctx context.Context) error {
	sqlDB, err := c.DB.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	if err := sqlDB.PingContext(ctx); err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}

	return nil
}

// Close 关闭底层连接池.
func (c *Client) Close() error {
	sqlDB, err := c.DB.DB()
	if err != nil {
		return err
	}

	return sqlDB.Close()
}

const defaultGORMMetricsRefreshInterval = 15 // 秒

// RegisterGORMMetrics 注册GORM连接池指标到默认注册表.
func (c *Client) RegisterGORMMetrics(dbName string) error {
	promConfig := gormPrometheus.Config{
		DBName:          dbName,
		RefreshInterval: defaultGORMMetricsRefreshInterval,
		StartServer:     false, // 不启动独立的服务器
	}

	if err := c.Use(gormPrometheus.New(promConfig)); err != nil {
		return fmt.Errorf("failed to register GORM prometheus plugin: %w", err)
	}

	return nil
}
