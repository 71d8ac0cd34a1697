package controllers

import (
	"context"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/appdesk/appdesk_backend/config"
	"github.com/appdesk/appdesk_backend/middleware"
	"github.com/appdesk/appdesk_backend/models"
	"github.com/appdesk/appdesk_backend/repositories"
	"github.com/appdesk/appdesk_backend/utils"
)

// ProposalController contains the proposal logic
type ProposalController struct {
	DB     *mongo.Client
	repo   *repositories.ProjectRepository
	logger *log.Logger
}

// NewProposalController creates a new proposal controller
func NewProposalController(db *mongo.Client) *ProposalController {
	return &ProposalController{
		DB:     db,
		repo:   repositories.NewProjectRepository(db),
		logger: log.New(os.Stdout, "[PROPOSAL] ", log.LstdFlags),
	}
}

// CreateProposal lets an admin submit a bid against a pending project
func (prc *ProposalController) CreateProposal(c echo.Context) error {
	adminID, err := utils.GetUserIDFromToken(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Invalid credentials",
		})
	}

	var req models.ProposalRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid request body",
		})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Project, title and description are required",
		})
	}

	projectID, err := primitive.ObjectIDFromHex(req.ProjectID)
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid project ID",
		})
	}

	project, err := prc.repo.FindByID(projectID)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return c.JSON(http.StatusNotFound, models.Response{
				Status:  http.StatusNotFound,
				Message: "Project not found",
			})
		}
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Database error",
		})
	}

	if project.IsTerminal() {
		return c.JSON(http.StatusConflict, models.Response{
			Status:  http.StatusConflict,
			Message: "Cannot propose against a finished project",
		})
	}

	proposal := models.Proposal{
		ID:                  primitive.NewObjectID(),
		ProjectID:           projectID,
		AdminID:             adminID,
		Title:               utils.SanitizeInput(req.Title),
		Description:         utils.SanitizeInput(req.Description),
		ProposedBudget:      req.ProposedBudget,
		EstimatedCompletion: utils.SanitizeInput(req.EstimatedCompletion),
		Status:              models.ProposalPending,
		CreatedAt:           time.Now(),
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if _, err := config.GetCollection(prc.DB, "proposals").InsertOne(ctx, proposal); err != nil {
		return c.JSON(http.StatusInternalServerError, models.ProposalResponse{
			Status:  http.StatusInternalServerError,
			Message: "Failed to create proposal",
		})
	}

	// Tell the project owner a proposal arrived
	go func() {
		title := "New proposal received"
		message := "A proposal was submitted for your project " + project.Title
		if err := utils.SaveNotification(prc.DB, project.UserID, title, message, models.NotificationProposal, map[string]interface{}{
			"projectId":  projectID.Hex(),
			"proposalId": proposal.ID.Hex(),
		}); err != nil {
			prc.logger.Printf("failed to save proposal notification: %v", err)
		}
		utils.SendPushNotification(prc.DB, project.UserID, title, message, map[string]string{
			"projectId":  projectID.Hex(),
			"proposalId": proposal.ID.Hex(),
		})
	}()

	return c.JSON(http.StatusCreated, models.ProposalResponse{
		Status:  http.StatusCreated,
		Message: "Proposal submitted successfully",
		Data:    &proposal,
	})
}

// GetProjectProposals lists proposals for a project, newest first. Owners see
// proposals against their own projects; admins see all.
func (prc *ProposalController) GetProjectProposals(c echo.Context) error {
	projectID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid project ID",
		})
	}

	project, err := prc.repo.FindByID(projectID)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return c.JSON(http.StatusNotFound, models.Response{
				Status:  http.StatusNotFound,
				Message: "Project not found",
			})
		}
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Database error",
		})
	}

	userID, err := utils.GetUserIDFromToken(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Invalid credentials",
		})
	}
	if middleware.ExtractRole(c) != models.RoleAdmin && project.UserID != userID {
		return c.JSON(http.StatusForbidden, models.Response{
			Status:  http.StatusForbidden,
			Message: "You do not have access to this project",
		})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := config.GetCollection(prc.DB, "proposals").Find(ctx, bson.M{"projectId": projectID}, opts)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.ProposalsResponse{
			Status:  http.StatusInternalServerError,
			Message: "Failed to fetch proposals",
		})
	}
	defer cursor.Close(ctx)

	proposals := []models.Proposal{}
	if err := cursor.All(ctx, &proposals); err != nil {
		return c.JSON(http.StatusInternalServerError, models.ProposalsResponse{
			Status:  http.StatusInternalServerError,
			Message: "Failed to decode proposals",
		})
	}

	return c.JSON(http.StatusOK, models.ProposalsResponse{
		Status:  http.StatusOK,
		Message: "Proposals retrieved successfully",
		Data:    proposals,
	})
}

// UpdateProposalStatus lets the project owner accept or reject a pending
// proposal. Accepting moves the project to IN_PROGRESS when it is still
// pending.
func (prc *ProposalController) UpdateProposalStatus(c echo.Context) error {
	proposalID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid proposal ID",
		})
	}

	var req models.ProposalStatusRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid request body",
		})
	}

	newStatus := strings.ToUpper(strings.TrimSpace(req.Status))
	if newStatus != models.ProposalAccepted && newStatus != models.ProposalRejected {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Status must be ACCEPTED or REJECTED",
		})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	collection := config.GetCollection(prc.DB, "proposals")

	var proposal models.Proposal
	if err := collection.FindOne(ctx, bson.M{"_id": proposalID}).Decode(&proposal); err != nil {
		return c.JSON(http.StatusNotFound, models.Response{
			Status:  http.StatusNotFound,
			Message: "Proposal not found",
		})
	}

	project, err := prc.repo.FindByID(proposal.ProjectID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Database error",
		})
	}

	userID, err := utils.GetUserIDFromToken(c)
	if err != nil || project.UserID != userID {
		return c.JSON(http.StatusForbidden, models.Response{
			Status:  http.StatusForbidden,
			Message: "Only the project owner can decide on a proposal",
		})
	}

	if proposal.Status != models.ProposalPending {
		return c.JSON(http.StatusConflict, models.Response{
			Status:  http.StatusConflict,
			Message: "Proposal has already been decided",
		})
	}

	if _, err := collection.UpdateOne(ctx, bson.M{"_id": proposalID}, bson.M{"$set": bson.M{"status": newStatus}}); err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to update proposal",
		})
	}
	proposal.Status = newStatus

	if newStatus == models.ProposalAccepted && project.Status == models.StatusPending {
		if err := prc.repo.UpdateFields(project.ID, bson.M{"status": models.StatusInProgress}); err != nil {
			prc.logger.Printf("failed to start project %s after acceptance: %v", project.ID.Hex(), err)
		}
	}

	return c.JSON(http.StatusOK, models.ProposalResponse{
		Status:  http.StatusOK,
		Message: "Proposal " + strings.ToLower(newStatus),
		Data:    &proposal,
	})
}
