package controllers

import (
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/appdesk/appdesk_backend/models"
)

// issueSession is the single bootstrap shared by password, signup and Google
// sign-in; it must hand out a token pair and never leak the password hash.
func TestIssueSessionReturnsTokenPair(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/api/auth/google", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	ac := &AuthController{logger: log.New(io.Discard, "", 0)}
	user := &models.User{
		ID:       primitive.NewObjectID(),
		Email:    "user@example.com",
		FullName: "Example User",
		Role:     models.RoleUser,
		Password: "bcrypt-hash",
	}

	if err := ac.issueSession(c, user, http.StatusOK, "Login successful"); err != nil {
		t.Fatalf("issueSession failed: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}

	var resp models.Response
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("response is not valid JSON: %v", err)
	}

	data, ok := resp.Data.(map[string]interface{})
	if !ok {
		t.Fatalf("response data has unexpected shape: %T", resp.Data)
	}
	if token, _ := data["token"].(string); token == "" {
		t.Error("missing access token")
	}
	if refresh, _ := data["refreshToken"].(string); refresh == "" {
		t.Error("missing refresh token")
	}

	userData, ok := data["user"].(map[string]interface{})
	if !ok {
		t.Fatalf("user payload has unexpected shape: %T", data["user"])
	}
	if _, leaked := userData["password"]; leaked {
		t.Error("password hash leaked into the auth response")
	}
	if userData["email"] != "user@example.com" {
		t.Errorf("email = %v, want user@example.com", userData["email"])
	}
}

func TestIssueSessionFailsWithoutSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")

	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodPost, "/", nil), rec)

	ac := &AuthController{logger: log.New(io.Discard, "", 0)}
	user := &models.User{ID: primitive.NewObjectID(), Email: "a@b.co", Role: models.RoleUser}

	if err := ac.issueSession(c, user, http.StatusOK, "Login successful"); err != nil {
		t.Fatalf("issueSession returned transport error: %v", err)
	}
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want %d when no signing secret is configured", rec.Code, http.StatusInternalServerError)
	}
}
