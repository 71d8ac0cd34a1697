package routes

import (
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/appdesk/appdesk_backend/controllers"
	"github.com/appdesk/appdesk_backend/middleware"
)

// RegisterUserRoutes sets up profile and notification routes
func RegisterUserRoutes(e *echo.Echo, db *mongo.Client) {
	userController := controllers.NewUserController(db)

	r := e.Group("/api/users")
	r.Use(middleware.JWTMiddleware())
	r.Use(middleware.ActivityTracker(db))

	r.GET("/profile", userController.GetProfile)
	r.PUT("/profile", userController.UpdateProfile)
	r.POST("/profile-photo", userController.UploadProfilePhoto)
	r.POST("/change-password", userController.ChangePassword)
	r.GET("/notifications", userController.GetNotifications)
	r.PUT("/notifications/:id/read", userController.MarkNotificationRead)
}
