package router

import (
	"github.com/gin-gonic/gin"

	"parley.app/server/internal/http/handler"
	"parley.app/server/internal/http/middleware"
)

// ChatRouter mounts the chat surface. The chat turn and the proxies accept
// guest scopes; everything touching stored conversations requires a signed-in
// user.
func ChatRouter(
	rg *gin.RouterGroup,
	chat *handler.ChatHandler,
	conversations *handler.ConversationHandler,
	admin *handler.AdminHandler,
	proxy *handler.ProxyHandler,
) {
	rg.POST("/chat", chat.Send)
	rg.GET("/weather", proxy.Weather)
	rg.GET("/news", proxy.News)

	user := rg.Group("")
	user.Use(middleware.RequireUser())
	{
		user.GET("/history", conversations.History)
		user.GET("/conversations", conversations.List)
		user.PUT("/update-message", conversations.UpdateMessage)
		user.POST("/feedback", conversations.Feedback)
		user.DELETE("/conversations/:id", conversations.Delete)
		user.PUT("/conversations/:id/rename", conversations.Rename)
		user.GET("/conversations/:id/export", conversations.Export)
		user.GET("/stats", admin.Stats)
	}
}
