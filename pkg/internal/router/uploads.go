package router

import (
	"github.com/gin-gonic/gin"

	"github.com/yeisme/ebookshelf/pkg/internal/storage/blob"
)

// RegisterUploadsRoute 本地存储时以静态文件方式提供封面与 PDF；S3 后端由对象存储直接提供.
func RegisterUploadsRoute(r *gin.Engine, store blob.Store) bool {
	local, ok := store.(*blob.LocalStore)
	if !ok {
		return false
	}

	r.StaticFS(local.URLPrefix(), local.FileSystem())

	return true
}
