// Package main 启动应用程序
package main

import (
	"os"

	"github.com/yeisme/ebookshelf/pkg/cmd"
)

//	@title			ebookshelf API
//	@version		1.0
//	@description	ebookshelf 是一个电子书目录服务：公开的检索与分页列表，以及管理员维护条目、封面与 PDF 文件的接口。

//	@license.name	MIT
//	@license.url	https://opensource.org/license/mit/

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
