package routes

import (
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/appdesk/appdesk_backend/controllers"
	"github.com/appdesk/appdesk_backend/websocket"
)

// SetupRoutes configures all API routes by calling individual route
// registration functions
func SetupRoutes(e *echo.Echo, db *mongo.Client, hub *websocket.Hub) {
	RegisterAuthRoutes(e, db)
	RegisterProjectRoutes(e, db, hub)
	RegisterAdminRoutes(e, db)
	RegisterChatRoutes(e, db, hub)
	RegisterUserRoutes(e, db)
}

// RegisterAuthRoutes sets up the public authentication routes
func RegisterAuthRoutes(e *echo.Echo, db *mongo.Client) {
	authController := controllers.NewAuthController(db)

	auth := e.Group("/api/auth")
	auth.POST("/signup", authController.Signup)
	auth.POST("/login", authController.Login)
	auth.POST("/google", authController.GoogleLogin)
	auth.POST("/logout", authController.Logout)
	auth.GET("/validate-token", authController.ValidateToken)
	auth.POST("/refresh-token", authController.RefreshToken)
	auth.POST("/forgot-password", authController.ForgotPassword)
	auth.POST("/reset-password", authController.ResetPassword)
}
