package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/appdesk/appdesk_backend/config"
	"github.com/appdesk/appdesk_backend/models"
)

// GoogleAuthService handles Google authentication
type GoogleAuthService struct {
	DB *mongo.Client
}

// GoogleUser represents Google user information
type GoogleUser struct {
	Email       string `json:"email"`
	DisplayName string `json:"name"`
	PhotoURL    string `json:"photoUrl"`
	GoogleID    string `json:"googleId"`
	IDToken     string `json:"idToken"`
}

// NewGoogleAuthService creates a new Google auth service
func NewGoogleAuthService(db *mongo.Client) *GoogleAuthService {
	return &GoogleAuthService{
		DB: db,
	}
}

// AuthenticateUser verifies the Google token and finds or creates the
// matching account. New accounts always get the USER role; ADMIN is only
// ever assigned out of band. Token issuance is the caller's job so every
// sign-in path shares one session bootstrap.
func (s *GoogleAuthService) AuthenticateUser(googleUser *GoogleUser) (*models.User, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if googleUser.Email == "" || googleUser.GoogleID == "" {
		return nil, errors.New("email and Google ID are required")
	}

	if err := s.verifyGoogleToken(googleUser.IDToken); err != nil {
		return nil, fmt.Errorf("failed to verify Google token: %w", err)
	}

	collection := config.GetCollection(s.DB, "users")

	var user models.User
	err := collection.FindOne(ctx, bson.M{"email": googleUser.Email}).Decode(&user)

	if err != nil {
		if err != mongo.ErrNoDocuments {
			return nil, fmt.Errorf("database error: %w", err)
		}

		now := time.Now()
		user = models.User{
			Email:      googleUser.Email,
			FullName:   googleUser.DisplayName,
			Role:       models.RoleUser,
			GoogleID:   googleUser.GoogleID,
			ProfilePic: googleUser.PhotoURL,
			IsActive:   true,
			CreatedAt:  now,
			UpdatedAt:  now,
		}

		result, err := collection.InsertOne(ctx, user)
		if err != nil {
			return nil, fmt.Errorf("failed to create user: %w", err)
		}
		user.ID = result.InsertedID.(primitive.ObjectID)
	} else {
		update := bson.M{
			"$set": bson.M{
				"googleId":  googleUser.GoogleID,
				"updatedAt": time.Now(),
			},
		}
		if googleUser.PhotoURL != "" && user.ProfilePic == "" {
			update["$set"].(bson.M)["profilePic"] = googleUser.PhotoURL
		}

		if _, err := collection.UpdateOne(ctx, bson.M{"_id": user.ID}, update); err != nil {
			return nil, fmt.Errorf("failed to update user: %w", err)
		}
	}

	user.Password = ""
	return &user, nil
}

// verifyGoogleToken checks the ID token against Google's tokeninfo endpoint
func (s *GoogleAuthService) verifyGoogleToken(idToken string) error {
	if idToken == "" {
		return errors.New("missing Google ID token")
	}

	client := &http.Client{
		Timeout: 5 * time.Second,
	}

	req, err := http.NewRequest("GET", "https://oauth2.googleapis.com/tokeninfo", nil)
	if err != nil {
		return err
	}

	q := req.URL.Query()
	q.Add("id_token", idToken)
	req.URL.RawQuery = q.Encode()

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("invalid token, Google API returned: %s", string(body))
	}

	var tokenInfo map[string]interface{}
	if err := json.Unmarshal(body, &tokenInfo); err != nil {
		return err
	}

	return nil
}
