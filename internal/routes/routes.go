package routes

import (
	"homefix_backend/internal/handlers"
	"homefix_backend/internal/logger"
	"homefix_backend/ws"

	"github.com/gin-gonic/gin"
)

// RegisterRoutes регистрирует все HTTP и WebSocket маршруты.
// /ws проверяет токен сам: браузер не может передать заголовок при upgrade.
func RegisterRoutes(
	ginRouter *gin.Engine,
	appHandlers *handlers.AppHandlers,
	wsHandler *ws.WebSocketHandler,
	requireAuth gin.HandlerFunc,
) {
	appHandlers.HealthHandler.RegisterRoutes(ginRouter)

	api := ginRouter.Group("/api/v1")
	{
		appHandlers.BookingHandler.RegisterRoutes(api, requireAuth)
		appHandlers.WorkerHandler.RegisterRoutes(api, requireAuth)
		appHandlers.NotificationHandler.RegisterRoutes(api, requireAuth)
	}

	ginRouter.GET("/ws", wsHandler.ServeWS)
	logger.Info("Routes registered", "routes", len(ginRouter.Routes()))
}
