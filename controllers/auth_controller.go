package controllers

import (
	"context"
	"log"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt"
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/appdesk/appdesk_backend/config"
	"github.com/appdesk/appdesk_backend/middleware"
	"github.com/appdesk/appdesk_backend/models"
	"github.com/appdesk/appdesk_backend/security"
	"github.com/appdesk/appdesk_backend/services"
	"github.com/appdesk/appdesk_backend/utils"
)

const (
	maxLoginAttempts = 5
	lockoutDuration  = 15 * time.Minute
	resetTokenTTL    = 1 * time.Hour
)

// AuthController contains authentication logic
type AuthController struct {
	DB            *mongo.Client
	logger        *log.Logger
	googleAuth    *services.GoogleAuthService
	loginAttempts map[string]struct {
		count       int
		lastAttempt time.Time
	}
	loginAttemptsMu sync.Mutex
}

// NewAuthController creates a new auth controller
func NewAuthController(db *mongo.Client) *AuthController {
	ac := &AuthController{
		DB:         db,
		logger:     log.New(os.Stdout, "[AUTH] ", log.LstdFlags),
		googleAuth: services.NewGoogleAuthService(db),
		loginAttempts: make(map[string]struct {
			count       int
			lastAttempt time.Time
		}),
	}

	go ac.startLoginAttemptCleanupRoutine()

	return ac
}

func (ac *AuthController) startLoginAttemptCleanupRoutine() {
	for {
		time.Sleep(30 * time.Minute)
		now := time.Now()
		ac.loginAttemptsMu.Lock()
		for email, attempt := range ac.loginAttempts {
			if now.Sub(attempt.lastAttempt) > lockoutDuration {
				delete(ac.loginAttempts, email)
			}
		}
		ac.loginAttemptsMu.Unlock()
	}
}

// isLockedOut reports whether the account hit the failed-login cap recently
func (ac *AuthController) isLockedOut(email string) bool {
	ac.loginAttemptsMu.Lock()
	defer ac.loginAttemptsMu.Unlock()

	attempt, ok := ac.loginAttempts[email]
	if !ok {
		return false
	}
	if time.Since(attempt.lastAttempt) > lockoutDuration {
		delete(ac.loginAttempts, email)
		return false
	}
	return attempt.count >= maxLoginAttempts
}

func (ac *AuthController) recordFailedLogin(email string) {
	ac.loginAttemptsMu.Lock()
	defer ac.loginAttemptsMu.Unlock()

	attempt := ac.loginAttempts[email]
	attempt.count++
	attempt.lastAttempt = time.Now()
	ac.loginAttempts[email] = attempt
}

func (ac *AuthController) clearLoginAttempts(email string) {
	ac.loginAttemptsMu.Lock()
	defer ac.loginAttemptsMu.Unlock()
	delete(ac.loginAttempts, email)
}

// Signup handler
func (ac *AuthController) Signup(c echo.Context) error {
	var req models.SignupRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid request body",
		})
	}

	email, err := utils.SanitizeEmail(req.Email)
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid email format",
		})
	}
	req.Email = email

	if req.Phone != "" {
		phone, err := utils.SanitizePhone(req.Phone)
		if err != nil {
			return c.JSON(http.StatusBadRequest, models.Response{
				Status:  http.StatusBadRequest,
				Message: "Invalid phone number format",
			})
		}
		req.Phone = phone
	}

	req.FullName = utils.SanitizeInput(req.FullName)
	if req.FullName == "" {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Full name is required",
		})
	}

	if !utils.IsStrongPassword(req.Password) {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Password must be at least 8 characters with upper, lower and digit",
		})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	collection := config.GetCollection(ac.DB, "users")

	count, err := collection.CountDocuments(ctx, bson.M{"email": req.Email})
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Database error",
		})
	}
	if count > 0 {
		return c.JSON(http.StatusConflict, models.Response{
			Status:  http.StatusConflict,
			Message: "An account with this email already exists",
		})
	}

	hashedPassword, err := utils.HashPassword(req.Password)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to process password",
		})
	}

	now := time.Now()
	user := models.User{
		Email:          req.Email,
		Password:       hashedPassword,
		FullName:       req.FullName,
		Role:           models.RoleUser,
		Phone:          req.Phone,
		IsActive:       true,
		LastActivityAt: now,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	result, err := collection.InsertOne(ctx, user)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return c.JSON(http.StatusConflict, models.Response{
				Status:  http.StatusConflict,
				Message: "An account with this email already exists",
			})
		}
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to create account",
		})
	}

	user.ID = result.InsertedID.(primitive.ObjectID)

	return ac.issueSession(c, &user, http.StatusCreated, "Account created successfully")
}

// Login handler
func (ac *AuthController) Login(c echo.Context) error {
	var req models.LoginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid request body",
		})
	}

	email, err := utils.SanitizeEmail(req.Email)
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid email format",
		})
	}

	if ac.isLockedOut(email) {
		return c.JSON(http.StatusTooManyRequests, models.Response{
			Status:  http.StatusTooManyRequests,
			Message: "Too many failed attempts, try again later",
		})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	collection := config.GetCollection(ac.DB, "users")

	var user models.User
	err = collection.FindOne(ctx, bson.M{"email": email}).Decode(&user)
	if err != nil {
		ac.recordFailedLogin(email)
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Invalid email or password",
		})
	}

	if user.Password == "" {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "This account uses Google sign-in",
		})
	}

	if err := utils.CheckPassword(req.Password, user.Password); err != nil {
		ac.recordFailedLogin(email)
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Invalid email or password",
		})
	}

	ac.clearLoginAttempts(email)

	update := bson.M{"lastActivityAt": time.Now(), "isActive": true}
	if req.FCMToken != "" {
		update["fcmToken"] = req.FCMToken
	}
	if _, err := collection.UpdateOne(ctx, bson.M{"_id": user.ID}, bson.M{"$set": update}); err != nil {
		ac.logger.Printf("failed to update login metadata for %s: %v", email, err)
	}

	return ac.issueSession(c, &user, http.StatusOK, "Login successful")
}

// issueSession generates the token pair, warms the session cache and writes
// the auth response
func (ac *AuthController) issueSession(c echo.Context, user *models.User, status int, message string) error {
	token, refreshToken, err := middleware.GenerateJWT(user.ID.Hex(), user.Email, user.Role)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to generate token",
		})
	}

	if err := utils.CacheSessionUser(config.GetRedisClient(), user); err != nil {
		ac.logger.Printf("failed to cache session for %s: %v", user.Email, err)
	}

	user.Password = ""

	return c.JSON(status, models.Response{
		Status:  status,
		Message: message,
		Data: map[string]interface{}{
			"token":        token,
			"refreshToken": refreshToken,
			"user":         user,
		},
	})
}

// GoogleLogin handler for Google sign-in
func (ac *AuthController) GoogleLogin(c echo.Context) error {
	var googleUser services.GoogleUser
	if err := c.Bind(&googleUser); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid request body",
		})
	}

	user, err := ac.googleAuth.AuthenticateUser(&googleUser)
	if err != nil {
		ac.logger.Printf("Google authentication failed: %v", err)
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Google authentication failed",
		})
	}

	return ac.issueSession(c, user, http.StatusOK, "Login successful")
}

// Logout handler invalidates the current token and drops the cached session
func (ac *AuthController) Logout(c echo.Context) error {
	authHeader := c.Request().Header.Get("Authorization")
	tokenString := strings.TrimPrefix(authHeader, "Bearer ")
	if tokenString == "" || tokenString == authHeader {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "No token provided",
		})
	}

	token, err := jwt.ParseWithClaims(tokenString, &middleware.JwtCustomClaims{}, func(token *jwt.Token) (interface{}, error) {
		return []byte(middleware.GetJWTSecret()), nil
	})
	if err == nil && token.Valid {
		if claims, ok := token.Claims.(*middleware.JwtCustomClaims); ok {
			middleware.BlacklistToken(tokenString, time.Unix(claims.ExpiresAt, 0))
			if err := utils.DropSessionUser(config.GetRedisClient(), claims.UserID); err != nil {
				ac.logger.Printf("failed to drop session for %s: %v", claims.UserID, err)
			}
		}
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Logged out successfully",
	})
}

// ValidateToken lets the client verify a stored token after a reload
func (ac *AuthController) ValidateToken(c echo.Context) error {
	authHeader := c.Request().Header.Get("Authorization")
	tokenString := strings.TrimPrefix(authHeader, "Bearer ")
	if tokenString == authHeader {
		tokenString = ""
	}

	if middleware.IsTokenBlacklisted(tokenString) {
		return c.JSON(http.StatusOK, utils.ValidateTokenResponse{
			Valid:   false,
			Message: "Token has been invalidated",
		})
	}

	result, err := utils.ValidateToken(tokenString, ac.DB)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to validate token",
		})
	}

	return c.JSON(http.StatusOK, result)
}

// RefreshToken exchanges a valid refresh token for a new token pair
func (ac *AuthController) RefreshToken(c echo.Context) error {
	var req struct {
		RefreshToken string `json:"refreshToken" validate:"required"`
	}
	if err := c.Bind(&req); err != nil || req.RefreshToken == "" {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Refresh token is required",
		})
	}

	if middleware.IsTokenBlacklisted(req.RefreshToken) {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Token has been invalidated",
		})
	}

	token, err := jwt.ParseWithClaims(req.RefreshToken, &middleware.JwtCustomClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, echo.ErrUnauthorized
		}
		return []byte(middleware.GetJWTSecret()), nil
	})
	if err != nil || !token.Valid {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Invalid refresh token",
		})
	}

	claims, ok := token.Claims.(*middleware.JwtCustomClaims)
	if !ok {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Invalid token claims",
		})
	}

	newToken, newRefreshToken, err := middleware.GenerateJWT(claims.UserID, claims.Email, claims.Role)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to generate token",
		})
	}

	// The old refresh token is single use
	middleware.BlacklistToken(req.RefreshToken, time.Unix(claims.ExpiresAt, 0))

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Token refreshed",
		Data: map[string]interface{}{
			"token":        newToken,
			"refreshToken": newRefreshToken,
		},
	})
}

// ForgotPassword emails a one-hour reset link token to the account
func (ac *AuthController) ForgotPassword(c echo.Context) error {
	var req models.ForgotPasswordRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid request body",
		})
	}

	email, err := utils.SanitizeEmail(req.Email)
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid email format",
		})
	}

	// Always respond OK so the endpoint cannot be used to probe accounts
	okResponse := models.Response{
		Status:  http.StatusOK,
		Message: "If an account exists, a reset email has been sent",
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	collection := config.GetCollection(ac.DB, "users")

	var user models.User
	if err := collection.FindOne(ctx, bson.M{"email": email}).Decode(&user); err != nil {
		return c.JSON(http.StatusOK, okResponse)
	}

	resetToken, err := security.GenerateToken()
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to generate reset token",
		})
	}

	_, err = collection.UpdateOne(ctx, bson.M{"_id": user.ID}, bson.M{"$set": bson.M{
		"resetPasswordToken":  resetToken,
		"resetTokenExpiresAt": time.Now().Add(resetTokenTTL),
		"updatedAt":           time.Now(),
	}})
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to store reset token",
		})
	}

	go func() {
		body := "Hi " + user.FullName + ",\n\nUse this token to reset your password (valid for 1 hour):\n\n" + resetToken + "\n\nAppDesk"
		if err := utils.SendEmail(user.Email, "Password reset", body); err != nil {
			ac.logger.Printf("failed to send reset email to %s: %v", user.Email, err)
		}
	}()

	return c.JSON(http.StatusOK, okResponse)
}

// ResetPassword sets a new password given a valid reset token
func (ac *AuthController) ResetPassword(c echo.Context) error {
	var req models.ResetPasswordRequest
	if err := c.Bind(&req); err != nil || req.Token == "" {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Token and new password are required",
		})
	}

	if !utils.IsStrongPassword(req.NewPassword) {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Password must be at least 8 characters with upper, lower and digit",
		})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	collection := config.GetCollection(ac.DB, "users")

	var user models.User
	err := collection.FindOne(ctx, bson.M{
		"resetPasswordToken":  req.Token,
		"resetTokenExpiresAt": bson.M{"$gt": time.Now()},
	}).Decode(&user)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Invalid or expired reset token",
		})
	}

	hashedPassword, err := utils.HashPassword(req.NewPassword)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to process password",
		})
	}

	_, err = collection.UpdateOne(ctx, bson.M{"_id": user.ID}, bson.M{
		"$set": bson.M{
			"password":  hashedPassword,
			"updatedAt": time.Now(),
		},
		"$unset": bson.M{
			"resetPasswordToken":  "",
			"resetTokenExpiresAt": "",
		},
	})
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to update password",
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Password has been reset",
	})
}
