// Package router 将处理器绑定到 gin 路由.
package router

import (
	"github.com/gin-gonic/gin"

	"github.com/yeisme/ebookshelf/pkg/internal/handle"
)

// Register 绑定目录与会话路由（假定上层传入 e.Group("/api")）：
//
//	GET    /ebooks      -> ListEbooks
//	GET    /ebooks/:id  -> GetEbook
//	POST   /ebooks      -> CreateEbook   (管理员)
//	PUT    /ebooks/:id  -> UpdateEbook   (管理员)
//	DELETE /ebooks/:id  -> DeleteEbook   (管理员)
//	POST   /login       -> Login
//	POST   /logout      -> Logout
//	GET    /me          -> Me
func Register(group *gin.RouterGroup, h *handle.Handlers) {
	ebooks := group.Group("/ebooks")
	{
		ebooks.GET("", h.ListEbooks)
		ebooks.GET("/:id", h.GetEbook)
		ebooks.POST("", h.CreateEbook)
		ebooks.PUT("/:id", h.UpdateEbook)
		ebooks.DELETE("/:id", h.DeleteEbook)
	}

	group.POST("/login", h.Login)
	group.POST("/logout", h.Logout)
	group.GET("/me", h.Me)
}
