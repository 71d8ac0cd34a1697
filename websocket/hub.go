package websocket

import (
	"fmt"
	"sync"

	"github.com/gorilla/websocket"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Event types pushed to connected clients
const (
	EventChatMessage   = "chat_message"
	EventProjectStatus = "project_status"
	EventConnected     = "connected"
	EventAccessDenied  = "access_denied"
)

// Notification represents a message sent over WebSocket
type Notification struct {
	Type      string      `json:"type"`
	Message   string      `json:"message,omitempty"`
	ProjectID string      `json:"projectId,omitempty"`
	Data      interface{} `json:"data,omitempty"`
}

// Client represents a connected WebSocket client
type Client struct {
	UserID primitive.ObjectID
	Role   string
	Conn   *websocket.Conn

	mu sync.Mutex
}

// WriteJSON serializes writes; gorilla connections allow one writer at a
// time. A client whose connection is already gone drops the write.
func (c *Client) WriteJSON(v interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.Conn == nil {
		return nil
	}
	return c.Conn.WriteJSON(v)
}

// Hub maintains the set of active clients and the per-project chat rooms
type Hub struct {
	clients    map[primitive.ObjectID]*Client
	rooms      map[string]map[*Client]bool // projectID hex -> subscribers
	register   chan *Client
	unregister chan *Client
	mu         sync.RWMutex
}

// NewHub creates a new Hub instance
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[primitive.ObjectID]*Client),
		rooms:      make(map[string]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
	}
}

// Run starts the hub's event loop
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.UserID] = client
			h.mu.Unlock()
		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client.UserID]; ok {
				delete(h.clients, client.UserID)
			}
			for projectID, members := range h.rooms {
				if members[client] {
					delete(members, client)
					if len(members) == 0 {
						delete(h.rooms, projectID)
					}
				}
			}
			h.mu.Unlock()
			if client.Conn != nil {
				client.Conn.Close()
			}
		}
	}
}

// Register adds a client to the hub
func (h *Hub) Register(client *Client) {
	h.register <- client
}

// Unregister removes a client and closes its connection
func (h *Hub) Unregister(client *Client) {
	h.unregister <- client
}

// JoinProject subscribes a client to a project's event room
func (h *Hub) JoinProject(client *Client, projectID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	members, ok := h.rooms[projectID]
	if !ok {
		members = make(map[*Client]bool)
		h.rooms[projectID] = members
	}
	members[client] = true
}

// LeaveProject unsubscribes a client from a project's event room
func (h *Hub) LeaveProject(client *Client, projectID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if members, ok := h.rooms[projectID]; ok {
		delete(members, client)
		if len(members) == 0 {
			delete(h.rooms, projectID)
		}
	}
}

// RoomSize returns the number of subscribers in a project room
func (h *Hub) RoomSize(projectID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[projectID])
}

// SendToUser sends a notification to a specific connected user
func (h *Hub) SendToUser(userID primitive.ObjectID, notification Notification) error {
	h.mu.RLock()
	client, ok := h.clients[userID]
	h.mu.RUnlock()

	if !ok {
		return fmt.Errorf("user not connected")
	}

	return client.WriteJSON(notification)
}

// BroadcastToProject fans a notification out to every subscriber of a project
func (h *Hub) BroadcastToProject(projectID string, notification Notification) {
	h.mu.RLock()
	members := make([]*Client, 0, len(h.rooms[projectID]))
	for client := range h.rooms[projectID] {
		members = append(members, client)
	}
	h.mu.RUnlock()

	for _, client := range members {
		client.WriteJSON(notification)
	}
}

// NotifyChatMessage pushes a persisted chat message to the project room
func (h *Hub) NotifyChatMessage(projectID string, message interface{}) {
	h.BroadcastToProject(projectID, Notification{
		Type:      EventChatMessage,
		ProjectID: projectID,
		Data:      message,
	})
}

// statusRecipients collects the room's subscribers, appending the owner's
// connection when the owner is not subscribed, so each client hears about a
// status change exactly once
func (h *Hub) statusRecipients(projectID string, ownerID primitive.ObjectID) []*Client {
	h.mu.RLock()
	defer h.mu.RUnlock()

	recipients := make([]*Client, 0, len(h.rooms[projectID])+1)
	ownerSubscribed := false
	for client := range h.rooms[projectID] {
		recipients = append(recipients, client)
		if client.UserID == ownerID {
			ownerSubscribed = true
		}
	}

	if !ownerSubscribed {
		if owner, ok := h.clients[ownerID]; ok {
			recipients = append(recipients, owner)
		}
	}

	return recipients
}

// NotifyProjectStatus pushes a status change to the project room and to the
// owner directly, so the owner hears about it even without the room open
func (h *Hub) NotifyProjectStatus(projectID string, ownerID primitive.ObjectID, status string, project interface{}) {
	notification := Notification{
		Type:      EventProjectStatus,
		Message:   "Project status changed to " + status,
		ProjectID: projectID,
		Data:      project,
	}

	for _, client := range h.statusRecipients(projectID, ownerID) {
		client.WriteJSON(notification)
	}
}
