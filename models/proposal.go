// models/proposal.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Proposal status values
const (
	ProposalPending  = "PENDING"
	ProposalAccepted = "ACCEPTED"
	ProposalRejected = "REJECTED"
)

// Proposal model - an admin's bid against a project
type Proposal struct {
	ID                  primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	ProjectID           primitive.ObjectID `json:"projectId" bson:"projectId"`
	AdminID             primitive.ObjectID `json:"adminId" bson:"adminId"`
	Title               string             `json:"title" bson:"title"`
	Description         string             `json:"description" bson:"description"`
	ProposedBudget      float64            `json:"proposedBudget" bson:"proposedBudget"`
	EstimatedCompletion string             `json:"estimatedCompletion" bson:"estimatedCompletion"`
	Status              string             `json:"status" bson:"status"` // "PENDING", "ACCEPTED", "REJECTED"
	CreatedAt           time.Time          `json:"createdAt" bson:"createdAt"`
}

// ProposalRequest model for creating a new proposal
type ProposalRequest struct {
	ProjectID           string  `json:"projectId" validate:"required"`
	Title               string  `json:"title" validate:"required"`
	Description         string  `json:"description" validate:"required"`
	ProposedBudget      float64 `json:"proposedBudget" validate:"gte=0"`
	EstimatedCompletion string  `json:"estimatedCompletion"`
}

// ProposalStatusRequest model for accepting or rejecting a proposal
type ProposalStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

// ProposalResponse model
type ProposalResponse struct {
	Status  int       `json:"status"`
	Message string    `json:"message"`
	Data    *Proposal `json:"data,omitempty"`
}

// ProposalsResponse model for multiple proposals
type ProposalsResponse struct {
	Status  int        `json:"status"`
	Message string     `json:"message"`
	Data    []Proposal `json:"data,omitempty"`
}
