package router

import (
	"github.com/gin-gonic/gin"

	"parley.app/server/internal/http/handler"
	"parley.app/server/internal/http/middleware"
	"parley.app/server/internal/service"
)

type RouterConfig struct {
	DashboardURL string
	IsProduction bool
}

func SetupRoutes(router *gin.Engine, services *service.Services, cfg RouterConfig) {
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	authHandler := handler.NewAuthHandler(services.Auth(), cfg.DashboardURL, cfg.IsProduction)
	AuthRouter(router.Group("/auth"), authHandler)

	v1 := router.Group("/api/v1")
	{
		chat := v1.Group("/chat")
		chat.Use(middleware.ResolveScope(services.Auth(), services.Guests(), cfg.IsProduction))

		chatHandler := handler.NewChatHandler(services.Chat())
		conversationHandler := handler.NewConversationHandler(services.Conversations())
		adminHandler := handler.NewAdminHandler(services.Admin())
		proxyHandler := handler.NewProxyHandler(services.Proxy())

		ChatRouter(chat, chatHandler, conversationHandler, adminHandler, proxyHandler)
	}
}
