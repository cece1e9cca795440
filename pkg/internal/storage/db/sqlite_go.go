//go:build !no_sqlite && !cgo

package db

import (
	"strings"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"

	"github.com/yeisme/ebookshelf/pkg/configs"
)

// sqliteDialector 纯 Go 构建使用 modernc.org/sqlite，默认构建走这里.
func sqliteDialector(dsn string) gorm.Dialector {
	return sqlite.Open(withSQLitePragmas(dsn))
}

func init() {
	RegisterDialectorFactory(sqliteDialector, configs.SQLite)
}

// withSQLitePragmas 写锁冲突时等待而不是立即返回 SQLITE_BUSY.
func withSQLitePragmas(dsn string) string {
	if strings.Contains(dsn, "busy_timeout") {
		return dsn
	}

	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}

	return dsn + sep + "_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
}
