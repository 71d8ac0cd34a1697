// models/project.go
package models

import (
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Project status values
const (
	StatusPending           = "PENDING"
	StatusInProgress        = "IN_PROGRESS"
	StatusPaymentProcessing = "PAYMENT_PROCESSING"
	StatusPaymentCompleted  = "PAYMENT_COMPLETED"
	StatusCompleted         = "COMPLETED"
	StatusCancelled         = "CANCELLED"
)

// ErrQRCodeRequired is returned when a project is moved to PAYMENT_PROCESSING
// without a payment QR code reference. Callers surface a QR-selection prompt.
var ErrQRCodeRequired = errors.New("payment QR code is required before payment processing")

// Project model for a work request
type Project struct {
	ID             primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	UserID         primitive.ObjectID `json:"userId" bson:"userId"`
	Title          string             `json:"title" bson:"title"`
	Description    string             `json:"description" bson:"description"`
	Features       string             `json:"features,omitempty" bson:"features,omitempty"`
	Budget         float64            `json:"budget" bson:"budget"`
	Timeline       int                `json:"timeline" bson:"timeline"` // days
	ContactName    string             `json:"contactName" bson:"contactName"`
	Email          string             `json:"email" bson:"email"`
	Phone          string             `json:"phone" bson:"phone"`
	Whatsapp       string             `json:"whatsapp,omitempty" bson:"whatsapp,omitempty"`
	Status         string             `json:"status" bson:"status"`
	Attachments    []string           `json:"attachments" bson:"attachments"`
	ApkFileURL     string             `json:"apkFileUrl,omitempty" bson:"apkFileUrl,omitempty"`
	PaymentQrCode  string             `json:"paymentQrCode,omitempty" bson:"paymentQrCode,omitempty"`
	PaymentDetails *PaymentDetails    `json:"paymentDetails,omitempty" bson:"paymentDetails,omitempty"`
	CreatedAt      time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt      time.Time          `json:"updatedAt" bson:"updatedAt"`
}

// PaymentDetails shown in the pay dialog alongside the QR image
type PaymentDetails struct {
	AccountHolder string `json:"accountHolder" bson:"accountHolder"`
	AccountName   string `json:"accountName" bson:"accountName"`
}

// UpdateProjectRequest carries the owner-editable fields. Admin-managed fields
// (status, paymentQrCode, apkFileUrl, paymentDetails) are never patched here.
type UpdateProjectRequest struct {
	Title       string  `json:"title,omitempty"`
	Description string  `json:"description,omitempty"`
	Features    string  `json:"features,omitempty"`
	Budget      float64 `json:"budget,omitempty"`
	Timeline    int     `json:"timeline,omitempty"`
	ContactName string  `json:"contactName,omitempty"`
	Email       string  `json:"email,omitempty"`
	Phone       string  `json:"phone,omitempty"`
	Whatsapp    string  `json:"whatsapp,omitempty"`
}

// StatusUpdateRequest model for driving the project workflow
type StatusUpdateRequest struct {
	Status         string          `json:"status" validate:"required"`
	PaymentQrCode  string          `json:"paymentQrCode,omitempty"`
	ApkFileURL     string          `json:"apkFileUrl,omitempty"`
	PaymentDetails *PaymentDetails `json:"paymentDetails,omitempty"`
}

// PaymentDetailsRequest model
type PaymentDetailsRequest struct {
	AccountHolder string `json:"accountHolder" validate:"required"`
	AccountName   string `json:"accountName" validate:"required"`
}

// ProjectResponse model
type ProjectResponse struct {
	Status  int      `json:"status"`
	Message string   `json:"message"`
	Data    *Project `json:"data,omitempty"`
}

// ProjectsResponse model for multiple projects
type ProjectsResponse struct {
	Status  int       `json:"status"`
	Message string    `json:"message"`
	Data    []Project `json:"data,omitempty"`
}

// allowedTransitions is the single source of truth for the project workflow.
// COMPLETED and CANCELLED are terminal. COMPLETED straight from IN_PROGRESS
// covers the proposal flow, which finishes without a payment leg.
var allowedTransitions = map[string][]string{
	StatusPending:           {StatusInProgress, StatusCancelled},
	StatusInProgress:        {StatusPaymentProcessing, StatusCompleted, StatusCancelled},
	StatusPaymentProcessing: {StatusPaymentCompleted, StatusCancelled},
	StatusPaymentCompleted:  {StatusCompleted},
	StatusCompleted:         {},
	StatusCancelled:         {},
}

// IsValidStatus reports whether s is one of the known project states
func IsValidStatus(s string) bool {
	_, ok := allowedTransitions[s]
	return ok
}

// CanTransition reports whether the workflow allows moving from one status to another
func CanTransition(from, to string) bool {
	for _, next := range allowedTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// ValidateStatusChange checks a requested transition against the workflow
// table and the payment gate. qrCode is the reference that would be in effect
// after the change: either the one already on the project or the one supplied
// with the request.
func (p *Project) ValidateStatusChange(newStatus, qrCode string) error {
	if !IsValidStatus(newStatus) {
		return errors.New("unknown project status: " + newStatus)
	}
	if !CanTransition(p.Status, newStatus) {
		return errors.New("cannot move project from " + p.Status + " to " + newStatus)
	}
	if newStatus == StatusPaymentProcessing && qrCode == "" {
		return ErrQRCodeRequired
	}
	return nil
}

// IsTerminal reports whether the project has reached a final state
func (p *Project) IsTerminal() bool {
	return p.Status == StatusCompleted || p.Status == StatusCancelled
}
