package websocket

import (
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

func joinMessage(projectID string) []byte {
	return []byte(`{"action":"join","projectId":"` + projectID + `"}`)
}

func TestJoinDeniedForForeignProject(t *testing.T) {
	hub := NewHub()
	projectID := primitive.NewObjectID().Hex()

	intruder := &Client{UserID: primitive.NewObjectID(), Role: "USER"}
	notOwner := func(string) bool { return false }

	handleCommand(hub, intruder, joinMessage(projectID), notOwner)

	if got := hub.RoomSize(projectID); got != 0 {
		t.Fatalf("RoomSize = %d, want 0: a user without access must not enter the room", got)
	}
}

func TestJoinAllowedForOwnProject(t *testing.T) {
	hub := NewHub()
	projectID := primitive.NewObjectID().Hex()

	owner := &Client{UserID: primitive.NewObjectID(), Role: "USER"}
	ownProject := func(id string) bool { return id == projectID }

	handleCommand(hub, owner, joinMessage(projectID), ownProject)
	if got := hub.RoomSize(projectID); got != 1 {
		t.Fatalf("RoomSize = %d, want 1", got)
	}

	// The check only covers the project it was written for
	other := primitive.NewObjectID().Hex()
	handleCommand(hub, owner, joinMessage(other), ownProject)
	if got := hub.RoomSize(other); got != 0 {
		t.Fatalf("RoomSize for other project = %d, want 0", got)
	}
}

func TestJoinDeniedWithoutAccessCheck(t *testing.T) {
	hub := NewHub()
	projectID := primitive.NewObjectID().Hex()
	client := &Client{UserID: primitive.NewObjectID(), Role: "USER"}

	handleCommand(hub, client, joinMessage(projectID), nil)

	if got := hub.RoomSize(projectID); got != 0 {
		t.Fatalf("RoomSize = %d, want 0: a missing access check must deny joins", got)
	}
}

func TestLeaveCommand(t *testing.T) {
	hub := NewHub()
	projectID := primitive.NewObjectID().Hex()
	client := &Client{UserID: primitive.NewObjectID(), Role: "ADMIN"}
	allow := func(string) bool { return true }

	handleCommand(hub, client, joinMessage(projectID), allow)
	handleCommand(hub, client, []byte(`{"action":"leave","projectId":"`+projectID+`"}`), allow)

	if got := hub.RoomSize(projectID); got != 0 {
		t.Fatalf("RoomSize after leave = %d, want 0", got)
	}
}

func TestMalformedCommandIsIgnored(t *testing.T) {
	hub := NewHub()
	client := &Client{UserID: primitive.NewObjectID()}
	allow := func(string) bool { return true }

	handleCommand(hub, client, []byte(`{not json`), allow)
	handleCommand(hub, client, []byte(`{"action":"join"}`), allow)
	handleCommand(hub, client, []byte(`{"action":"shout","projectId":"abc"}`), allow)

	if got := hub.RoomSize("abc"); got != 0 {
		t.Fatalf("RoomSize = %d, want 0", got)
	}
}
