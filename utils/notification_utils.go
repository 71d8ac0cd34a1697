package utils

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"firebase.google.com/go/v4/messaging"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"gopkg.in/gomail.v2"

	"github.com/appdesk/appdesk_backend/config"
	"github.com/appdesk/appdesk_backend/models"
)

// SaveNotification saves an in-app notification to the database
func SaveNotification(db *mongo.Client, userID primitive.ObjectID, title, message, notifType string, data interface{}) error {
	collection := config.GetCollection(db, "notifications")

	notification := models.Notification{
		ID:        primitive.NewObjectID(),
		UserID:    userID,
		Title:     title,
		Message:   message,
		Type:      notifType,
		Data:      data,
		IsRead:    false,
		CreatedAt: time.Now(),
	}

	_, err := collection.InsertOne(context.Background(), notification)
	return err
}

// SendPushNotification delivers a push message via FCM to the user's device.
// Best effort: missing Firebase config or a missing token is not an error
// for the caller.
func SendPushNotification(db *mongo.Client, userID primitive.ObjectID, title, body string, data map[string]string) {
	if config.FirebaseApp == nil {
		return
	}

	var user models.User
	err := config.GetCollection(db, "users").FindOne(context.Background(), bson.M{"_id": userID}).Decode(&user)
	if err != nil || user.FCMToken == "" {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := config.FirebaseApp.Messaging(ctx)
	if err != nil {
		log.Printf("failed to get messaging client: %v", err)
		return
	}

	msg := &messaging.Message{
		Token: user.FCMToken,
		Notification: &messaging.Notification{
			Title: title,
			Body:  body,
		},
		Data: data,
	}

	if _, err := client.Send(ctx, msg); err != nil {
		log.Printf("failed to send push notification to user %s: %v", userID.Hex(), err)
	}
}

// SendEmail sends a plain-text email through the configured SMTP server
func SendEmail(to, subject, body string) error {
	smtpHost := os.Getenv("SMTP_HOST")
	smtpUser := os.Getenv("SMTP_USER")
	smtpPass := os.Getenv("SMTP_PASS")
	if smtpHost == "" {
		return fmt.Errorf("SMTP_HOST not configured")
	}

	smtpPort := 587
	if portStr := os.Getenv("SMTP_PORT"); portStr != "" {
		fmt.Sscanf(portStr, "%d", &smtpPort)
	}

	m := gomail.NewMessage()
	m.SetHeader("From", smtpUser)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", body)

	d := gomail.NewDialer(smtpHost, smtpPort, smtpUser, smtpPass)
	return d.DialAndSend(m)
}

// NotifyProjectStatusChange tells the project owner their project moved to a
// new state, via in-app notification, push and email. Failures are logged
// and swallowed; a notification must never fail the status write.
func NotifyProjectStatusChange(db *mongo.Client, project *models.Project, newStatus string) {
	title := "Project status updated"
	message := fmt.Sprintf("Your project %q is now %s", project.Title, newStatus)

	if err := SaveNotification(db, project.UserID, title, message, models.NotificationProjectStatus, map[string]interface{}{
		"projectId": project.ID.Hex(),
		"status":    newStatus,
	}); err != nil {
		log.Printf("failed to save status notification: %v", err)
	}

	SendPushNotification(db, project.UserID, title, message, map[string]string{
		"projectId": project.ID.Hex(),
		"status":    newStatus,
	})

	if project.Email != "" {
		body := fmt.Sprintf("Hi %s,\n\nYour project %q has moved to %s.\n\nAppDesk", project.ContactName, project.Title, newStatus)
		if err := SendEmail(project.Email, title, body); err != nil {
			log.Printf("failed to email status notification: %v", err)
		}
	}
}
