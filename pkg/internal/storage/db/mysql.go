//go:build !no_mysql

package db

import (
	"gorm.io/driver/mysql"
	"gorm.io/gorm"

	"github.com/yeisme/ebookshelf/pkg/configs"
)

// utf8mb4 下 InnoDB 单列索引上限 767 字节.
const mysqlDefaultStringSize = 191

// mysqlDialector 未声明 size 的字符串列使用 191，便于 language 等列建索引.
func mysqlDialector(dsn string) gorm.Dialector {
	return mysql.New(mysql.Config{
		DSN:                    dsn,
		DefaultStringSize:      mysqlDefaultStringSize,
		DontSupportRenameIndex: true,
	})
}

func init() {
	RegisterDialectorFactory(mysqlDialector, configs.MySQL, configs.MariaDB)
}
