// models/message.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Message model - a chat entry scoped to one project. Append-only.
type Message struct {
	ID         primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	ProjectID  primitive.ObjectID `json:"projectId" bson:"projectId"`
	SenderID   primitive.ObjectID `json:"senderId" bson:"senderId"`
	SenderName string             `json:"senderName" bson:"senderName"`
	SenderRole string             `json:"senderRole" bson:"senderRole"` // "USER" or "ADMIN"
	Content    string             `json:"content" bson:"content"`
	Timestamp  time.Time          `json:"timestamp" bson:"timestamp"`
}

// MessageRequest model for sending a chat message
type MessageRequest struct {
	ProjectID string `json:"projectId" validate:"required"`
	Content   string `json:"content" validate:"required"`
}

// MessageResponse model
type MessageResponse struct {
	Status  int      `json:"status"`
	Message string   `json:"message"`
	Data    *Message `json:"data,omitempty"`
}

// MessagesResponse model for a chat history
type MessagesResponse struct {
	Status  int       `json:"status"`
	Message string    `json:"message"`
	Data    []Message `json:"data,omitempty"`
}
