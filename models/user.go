// models/user.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User roles
const (
	RoleUser  = "USER"
	RoleAdmin = "ADMIN"
)

// User model
type User struct {
	ID                  primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	Email               string             `json:"email" bson:"email"`
	Password            string             `json:"password,omitempty" bson:"password"`
	FullName            string             `json:"fullName" bson:"fullName"`
	Role                string             `json:"role" bson:"role"` // "USER" or "ADMIN"
	Phone               string             `json:"phone,omitempty" bson:"phone,omitempty"`
	ProfilePic          string             `json:"profilePic,omitempty" bson:"profilePic,omitempty"`
	GoogleID            string             `json:"googleId,omitempty" bson:"googleId,omitempty"`
	FCMToken            string             `json:"fcmToken,omitempty" bson:"fcmToken,omitempty"`
	IsActive            bool               `json:"isActive" bson:"isActive"`
	ResetPasswordToken  string             `json:"-" bson:"resetPasswordToken,omitempty"`
	ResetTokenExpiresAt time.Time          `json:"-" bson:"resetTokenExpiresAt,omitempty"`
	LastActivityAt      time.Time          `json:"lastActivityAt" bson:"lastActivityAt"`
	CreatedAt           time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt           time.Time          `json:"updatedAt" bson:"updatedAt"`
}

// SignupRequest model
type SignupRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	FullName string `json:"fullName" validate:"required"`
	Phone    string `json:"phone,omitempty"`
}

// LoginRequest model
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
	FCMToken string `json:"fcmToken,omitempty"`
}

// UpdateProfileRequest carries the user-editable profile fields
type UpdateProfileRequest struct {
	FullName string `json:"fullName,omitempty"`
	Phone    string `json:"phone,omitempty"`
	FCMToken string `json:"fcmToken,omitempty"`
}

// ForgotPasswordRequest model
type ForgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// ResetPasswordRequest model
type ResetPasswordRequest struct {
	Token       string `json:"token" validate:"required"`
	NewPassword string `json:"newPassword" validate:"required,min=8"`
}

// ChangePasswordRequest model
type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required,min=8"`
}

// Response model
type Response struct {
	Status  int         `json:"status"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}
