package routes

import (
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/appdesk/appdesk_backend/controllers"
	"github.com/appdesk/appdesk_backend/middleware"
	"github.com/appdesk/appdesk_backend/websocket"
)

// RegisterChatRoutes sets up the chat history, send and WebSocket routes
func RegisterChatRoutes(e *echo.Echo, db *mongo.Client, hub *websocket.Hub) {
	chatController := controllers.NewChatController(db, hub)

	r := e.Group("/api")
	r.Use(middleware.JWTMiddleware())
	r.Use(middleware.ActivityTracker(db))

	r.POST("/messages", chatController.SendMessage)
	r.GET("/messages/project/:id", chatController.GetProjectMessages)
	r.GET("/ws", chatController.HandleWebSocket)
}
