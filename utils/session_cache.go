// utils/session_cache.go
package utils

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/appdesk/appdesk_backend/models"
)

// SessionUser is the cached projection of the signed-in user, kept for
// display and websocket sender attribution. It mirrors what the client
// keeps in browser storage; MongoDB stays authoritative.
type SessionUser struct {
	ID         string    `json:"id"`
	FullName   string    `json:"fullName"`
	Email      string    `json:"email"`
	Role       string    `json:"role"`
	ProfilePic string    `json:"profilePic,omitempty"`
	CachedAt   time.Time `json:"cachedAt"`
}

const sessionTTL = 24 * time.Hour

func sessionKey(userID string) string {
	return fmt.Sprintf("session:user:%s", userID)
}

// CacheSessionUser stores the user projection in Redis. A nil client is a
// no-op; the cache is best effort.
func CacheSessionUser(client *redis.Client, user *models.User) error {
	if client == nil {
		return nil
	}

	session := SessionUser{
		ID:         user.ID.Hex(),
		FullName:   user.FullName,
		Email:      user.Email,
		Role:       user.Role,
		ProfilePic: user.ProfilePic,
		CachedAt:   time.Now(),
	}

	data, err := json.Marshal(session)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	return client.Set(ctx, sessionKey(session.ID), data, sessionTTL).Err()
}

// GetSessionUser fetches the cached projection. Returns redis.Nil when the
// entry is missing so callers can fall back to MongoDB.
func GetSessionUser(client *redis.Client, userID string) (*SessionUser, error) {
	if client == nil {
		return nil, redis.Nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	data, err := client.Get(ctx, sessionKey(userID)).Bytes()
	if err != nil {
		return nil, err
	}

	var session SessionUser
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, err
	}

	return &session, nil
}

// DropSessionUser removes the cached projection, called on logout and on
// profile changes so the next read refreshes from MongoDB
func DropSessionUser(client *redis.Client, userID string) error {
	if client == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	return client.Del(ctx, sessionKey(userID)).Err()
}
