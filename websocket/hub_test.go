package websocket

import (
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestJoinAndLeaveProject(t *testing.T) {
	hub := NewHub()

	alice := &Client{UserID: primitive.NewObjectID(), Role: "USER"}
	admin := &Client{UserID: primitive.NewObjectID(), Role: "ADMIN"}

	projectID := primitive.NewObjectID().Hex()

	hub.JoinProject(alice, projectID)
	hub.JoinProject(admin, projectID)
	if got := hub.RoomSize(projectID); got != 2 {
		t.Fatalf("RoomSize = %d, want 2", got)
	}

	// Joining twice is idempotent
	hub.JoinProject(alice, projectID)
	if got := hub.RoomSize(projectID); got != 2 {
		t.Fatalf("RoomSize after duplicate join = %d, want 2", got)
	}

	hub.LeaveProject(alice, projectID)
	if got := hub.RoomSize(projectID); got != 1 {
		t.Fatalf("RoomSize after leave = %d, want 1", got)
	}

	hub.LeaveProject(admin, projectID)
	if got := hub.RoomSize(projectID); got != 0 {
		t.Fatalf("RoomSize after everyone left = %d, want 0", got)
	}
}

func TestLeaveUnknownProjectIsNoop(t *testing.T) {
	hub := NewHub()
	client := &Client{UserID: primitive.NewObjectID()}
	hub.LeaveProject(client, "missing")
	if got := hub.RoomSize("missing"); got != 0 {
		t.Fatalf("RoomSize = %d, want 0", got)
	}
}

func TestUnregisterRemovesRoomMemberships(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	client := &Client{UserID: primitive.NewObjectID()}
	projectID := primitive.NewObjectID().Hex()

	hub.Register(client)
	hub.JoinProject(client, projectID)
	if got := hub.RoomSize(projectID); got != 1 {
		t.Fatalf("RoomSize = %d, want 1", got)
	}

	hub.Unregister(client)

	deadline := time.After(2 * time.Second)
	for hub.RoomSize(projectID) != 0 {
		select {
		case <-deadline:
			t.Fatal("client still in room after unregister")
		case <-time.After(10 * time.Millisecond):
		}
	}
}

func TestStatusRecipientsOwnerInRoomListedOnce(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	ownerID := primitive.NewObjectID()
	owner := &Client{UserID: ownerID, Role: "USER"}
	admin := &Client{UserID: primitive.NewObjectID(), Role: "ADMIN"}
	projectID := primitive.NewObjectID().Hex()

	hub.Register(owner)
	hub.Register(admin)
	waitForClients(t, hub, 2)

	hub.JoinProject(owner, projectID)
	hub.JoinProject(admin, projectID)

	recipients := hub.statusRecipients(projectID, ownerID)
	if len(recipients) != 2 {
		t.Fatalf("got %d recipients, want 2", len(recipients))
	}
	ownerCount := 0
	for _, r := range recipients {
		if r.UserID == ownerID {
			ownerCount++
		}
	}
	if ownerCount != 1 {
		t.Errorf("owner appears %d times, want exactly once", ownerCount)
	}
}

func TestStatusRecipientsIncludesOwnerOutsideRoom(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	ownerID := primitive.NewObjectID()
	owner := &Client{UserID: ownerID, Role: "USER"}
	admin := &Client{UserID: primitive.NewObjectID(), Role: "ADMIN"}
	projectID := primitive.NewObjectID().Hex()

	hub.Register(owner)
	hub.Register(admin)
	waitForClients(t, hub, 2)

	hub.JoinProject(admin, projectID)

	recipients := hub.statusRecipients(projectID, ownerID)
	if len(recipients) != 2 {
		t.Fatalf("got %d recipients, want 2 (room member plus owner)", len(recipients))
	}
	found := false
	for _, r := range recipients {
		if r.UserID == ownerID {
			found = true
		}
	}
	if !found {
		t.Error("owner missing from recipients despite being connected")
	}
}

func waitForClients(t *testing.T, hub *Hub, want int) {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		hub.mu.RLock()
		n := len(hub.clients)
		hub.mu.RUnlock()
		if n == want {
			return
		}
		select {
		case <-deadline:
			t.Fatalf("hub has %d clients, want %d", n, want)
		case <-time.After(10 * time.Millisecond):
		}
	}
}

func TestSendToUserNotConnected(t *testing.T) {
	hub := NewHub()
	if err := hub.SendToUser(primitive.NewObjectID(), Notification{Type: EventConnected}); err == nil {
		t.Error("expected an error for a user that is not connected")
	}
}
