package routes

import (
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/appdesk/appdesk_backend/controllers"
	"github.com/appdesk/appdesk_backend/middleware"
)

// RegisterAdminRoutes sets up the admin console routes
func RegisterAdminRoutes(e *echo.Echo, db *mongo.Client) {
	adminController := controllers.NewAdminController(db)

	r := e.Group("/api/admin")
	r.Use(middleware.JWTMiddleware())
	r.Use(middleware.ActivityTracker(db))
	r.Use(middleware.RequireAdmin())

	r.GET("/projects", adminController.GetAllProjects)
	r.GET("/stats", adminController.GetStats)

	// Payment QR catalog
	r.GET("/qrcodes", adminController.GetQRCodes)
	r.POST("/qrcodes", adminController.UploadQRCode)
	r.POST("/qrcodes/generate", adminController.GenerateQRCode)
	r.DELETE("/qrcodes/:id", adminController.DeleteQRCode)
}
