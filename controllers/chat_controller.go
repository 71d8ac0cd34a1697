package controllers

import (
	"context"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/go-redis/redis/v8"
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
	ws "github.com/appdesk/appdesk_backend/websocket"
)

// ChatController contains the per-project chat logic
type ChatController struct {
	DB     *mongo.Client
	Hub    *ws.Hub
	repo   *repositories.ProjectRepository
	logger *log.Logger
}

// NewChatController creates a new chat controller
func NewChatController(db *mongo.Client, hub *ws.Hub) *ChatController {
	return &ChatController{
		DB:     db,
		Hub:    hub,
		repo:   repositories.NewProjectRepository(db),
		logger: log.New(os.Stdout, "[CHAT] ", log.LstdFlags),
	}
}

// senderName resolves the display name for message attribution, trying the
// session cache before MongoDB
func (cc *ChatController) senderName(c echo.Context, userID primitive.ObjectID) string {
	if session, err := utils.GetSessionUser(config.GetRedisClient(), userID.Hex()); err == nil {
		return session.FullName
	} else if err != redis.Nil {
		cc.logger.Printf("session cache read failed for %s: %v", userID.Hex(), err)
	}

	user, err := utils.GetUserFromToken(c, cc.DB)
	if err != nil {
		return ""
	}
	return user.FullName
}

// SendMessage appends a chat message to the project's conversation. The
// message is persisted first, then fanned out to the room; a delivered
// message is never lost on reconnect.
func (cc *ChatController) SendMessage(c echo.Context) error {
	userID, err := utils.GetUserIDFromToken(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Invalid credentials",
		})
	}

	var req models.MessageRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid request body",
		})
	}

	content := utils.SanitizeInput(req.Content)
	if content == "" {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Message content is required",
		})
	}

	projectID, err := primitive.ObjectIDFromHex(req.ProjectID)
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid project ID",
		})
	}

	project, err := cc.repo.FindByID(projectID)
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

	role := middleware.ExtractRole(c)
	if role != models.RoleAdmin && project.UserID != userID {
		return c.JSON(http.StatusForbidden, models.Response{
			Status:  http.StatusForbidden,
			Message: "You do not have access to this conversation",
		})
	}

	// Server-side id and timestamp keep ordering consistent across clients
	message := models.Message{
		ID:         primitive.NewObjectID(),
		ProjectID:  projectID,
		SenderID:   userID,
		SenderName: cc.senderName(c, userID),
		SenderRole: role,
		Content:    content,
		Timestamp:  time.Now(),
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if _, err := config.GetCollection(cc.DB, "messages").InsertOne(ctx, message); err != nil {
		return c.JSON(http.StatusInternalServerError, models.MessageResponse{
			Status:  http.StatusInternalServerError,
			Message: "Failed to send message",
		})
	}

	cc.Hub.NotifyChatMessage(projectID.Hex(), message)

	// Notify the other side when they are not in the room
	go func() {
		recipient := project.UserID
		if role != models.RoleAdmin {
			// User wrote; in-app notification targets are resolved by the
			// admin console polling, no per-admin fanout here
			return
		}
		if recipient == userID {
			return
		}
		title := "New message"
		body := message.SenderName + ": " + content
		if err := utils.SaveNotification(cc.DB, recipient, title, body, models.NotificationChatMessage, map[string]interface{}{
			"projectId": projectID.Hex(),
		}); err != nil {
			cc.logger.Printf("failed to save chat notification: %v", err)
		}
		utils.SendPushNotification(cc.DB, recipient, title, body, map[string]string{
			"projectId": projectID.Hex(),
		})
	}()

	return c.JSON(http.StatusCreated, models.MessageResponse{
		Status:  http.StatusCreated,
		Message: "Message sent",
		Data:    &message,
	})
}

// GetProjectMessages returns a project's conversation in timestamp order
func (cc *ChatController) GetProjectMessages(c echo.Context) error {
	projectID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid project ID",
		})
	}

	project, err := cc.repo.FindByID(projectID)
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
			Message: "You do not have access to this conversation",
		})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "timestamp", Value: 1}})
	cursor, err := config.GetCollection(cc.DB, "messages").Find(ctx, bson.M{"projectId": projectID}, opts)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.MessagesResponse{
			Status:  http.StatusInternalServerError,
			Message: "Failed to fetch messages",
		})
	}
	defer cursor.Close(ctx)

	messages := []models.Message{}
	if err := cursor.All(ctx, &messages); err != nil {
		return c.JSON(http.StatusInternalServerError, models.MessagesResponse{
			Status:  http.StatusInternalServerError,
			Message: "Failed to decode messages",
		})
	}

	return c.JSON(http.StatusOK, models.MessagesResponse{
		Status:  http.StatusOK,
		Message: "Messages retrieved successfully",
		Data:    messages,
	})
}

// HandleWebSocket upgrades an authenticated request into a hub connection.
// Room joins are gated by the same owner-or-admin rule as the REST routes.
func (cc *ChatController) HandleWebSocket(c echo.Context) error {
	userID, err := utils.GetUserIDFromToken(c)
	if err != nil {
		return echo.ErrUnauthorized
	}
	role := middleware.ExtractRole(c)

	canAccess := func(projectID string) bool {
		if role == models.RoleAdmin {
			return true
		}
		oid, err := primitive.ObjectIDFromHex(projectID)
		if err != nil {
			return false
		}
		project, err := cc.repo.FindByID(oid)
		if err != nil {
			return false
		}
		return project.UserID == userID
	}

	return ws.HandleWebSocket(c, cc.Hub, userID, role, canAccess)
}
