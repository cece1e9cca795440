//go:build !no_sqlite && cgo

package db

import (
	"strings"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/yeisme/ebookshelf/pkg/configs"
)

// sqliteDialector cgo 构建使用 mattn/go-sqlite3.
func sqliteDialector(dsn string) gorm.Dialector {
	return sqlite.Open(withSQLitePragmas(dsn))
}

func init() {
	RegisterDialectorFactory(sqliteDialector, configs.SQLite)
}

// withSQLitePragmas 写锁冲突时等待而不是立即返回 SQLITE_BUSY.
func withSQLitePragmas(dsn string) string {
	if strings.Contains(dsn, "_busy_timeout") {
		return dsn
	}

	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}

	return dsn + sep + "_busy_timeout=5000&_journal_mode=WAL"
}
