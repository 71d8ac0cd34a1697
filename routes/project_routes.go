package routes

import (
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/appdesk/appdesk_backend/controllers"
	"github.com/appdesk/appdesk_backend/middleware"
	"github.com/appdesk/appdesk_backend/websocket"
)

// RegisterProjectRoutes sets up the project workflow and proposal routes
func RegisterProjectRoutes(e *echo.Echo, db *mongo.Client, hub *websocket.Hub) {
	projectController := controllers.NewProjectController(db, hub)
	proposalController := controllers.NewProposalController(db)

	r := e.Group("/api")
	r.Use(middleware.JWTMiddleware())
	r.Use(middleware.ActivityTracker(db))

	// Project submission and tracking
	r.POST("/projects", projectController.CreateProject)
	r.GET("/projects", projectController.GetUserProjects)
	r.GET("/projects/:id", projectController.GetProject)
	r.PUT("/projects/:id", projectController.UpdateProject)
	r.GET("/projects/:id/payment-qr", projectController.GetPaymentQR)

	// Admin-driven workflow operations
	r.PUT("/projects/:id/status", projectController.UpdateProjectStatus, middleware.RequireAdmin())
	r.POST("/projects/:id/apk", projectController.UploadApk, middleware.RequireAdmin())
	r.PUT("/projects/:id/payment-details", projectController.UpdatePaymentDetails, middleware.RequireAdmin())

	// Proposals
	r.POST("/proposals", proposalController.CreateProposal, middleware.RequireAdmin())
	r.GET("/proposals/project/:id", proposalController.GetProjectProposals)
	r.PUT("/proposals/:id/status", proposalController.UpdateProposalStatus)
}
