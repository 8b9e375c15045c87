// Package routes wires the HTTP surface to the handlers.
package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/helixdesk/helixdesk-go/internal/application/container"
	"github.com/helixdesk/helixdesk-go/internal/presentation/http/handlers"
	"github.com/helixdesk/helixdesk-go/internal/presentation/http/middleware"
)

// SetupRoutes configures the gin router with all endpoints
func SetupRoutes(container *container.Container) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORSMiddleware())

	chatHandlers := handlers.NewChatHandlers(container)
	authHandlers := handlers.NewAuthHandlers(container)
	opsHandlers := handlers.NewOpsHandlers(container)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := router.Group("/api/v1")
	api.Use(middleware.SessionMiddleware())
	{
		chat := api.Group("/chat")
		{
			chat.POST("/message", chatHandlers.PostMessage)
			chat.POST("/auth", chatHandlers.PostAuthInput)
			chat.POST("/voice", chatHandlers.PostVoice)
		}

		auth := api.Group("/auth")
		{
			auth.GET("/status", authHandlers.GetStatus)
			auth.GET("/events", authHandlers.GetAuthEvents)
		}

		ops := api.Group("/ops")
		{
			ops.GET("/db/status", opsHandlers.GetDBStatus)
			ops.GET("/perf", opsHandlers.GetPerfStats)
			ops.GET("/logs/stream", opsHandlers.StreamLogs)
			ops.GET("/logs/levels", opsHandlers.GetLogLevels)
			ops.POST("/logs/levels", opsHandlers.SetLogLevel)
			ops.GET("/ws", opsHandlers.SessionMapSocket)
		}
	}

	return router
}
