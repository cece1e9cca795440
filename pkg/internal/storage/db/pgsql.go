//go:build !no_postgres

package db

import (
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/yeisme/ebookshelf/pkg/configs"
)

// postgresDialector 使用 pgx 驱动；PreferSimpleProtocol 关闭以复用预编译的列表查询.
func postgresDialector(dsn string) gorm.Dialector {
	return postgres.New(postgres.Config{
		DSN:                  dsn,
		PreferSimpleProtocol: false,
	})
}

func init() {
	RegisterDialectorFactory(postgresDialector, configs.PostgreSQL, configs.Postgres, configs.Pg)
}
