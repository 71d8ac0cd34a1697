package websocket

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// AccessFunc reports whether the connected user may subscribe to a
// project's event room
type AccessFunc func(projectID string) bool

// clientCommand is what connected clients send us: room membership changes
type clientCommand struct {
	Action    string `json:"action"` // "join" or "leave"
	ProjectID string `json:"projectId"`
}

// HandleWebSocket upgrades the request and runs the client's read loop.
// The caller has already authenticated the user via JWT middleware; canAccess
// carries the owner-or-admin project check used to gate joins.
func HandleWebSocket(c echo.Context, hub *Hub, userID primitive.ObjectID, role string, canAccess AccessFunc) error {
	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return err
	}

	client := &Client{
		UserID: userID,
		Role:   role,
		Conn:   conn,
	}

	hub.Register(client)

	client.WriteJSON(Notification{
		Type:    EventConnected,
		Message: "WebSocket connection established",
	})

	go func() {
		defer hub.Unregister(client)

		for {
			_, message, err := conn.ReadMessage()
			if err != nil {
				break
			}
			handleCommand(hub, client, message, canAccess)
		}
	}()

	return nil
}

// handleCommand applies one room-membership command from a connected client.
// Joins pass through the same owner-or-admin rule the REST chat routes use;
// a denied join leaves the room membership untouched.
func handleCommand(hub *Hub, client *Client, message []byte, canAccess AccessFunc) {
	var cmd clientCommand
	if err := json.Unmarshal(message, &cmd); err != nil {
		return
	}

	switch cmd.Action {
	case "join":
		if cmd.ProjectID == "" {
			return
		}
		if canAccess == nil || !canAccess(cmd.ProjectID) {
			client.WriteJSON(Notification{
				Type:      EventAccessDenied,
				Message:   "You do not have access to this project",
				ProjectID: cmd.ProjectID,
			})
			return
		}
		hub.JoinProject(client, cmd.ProjectID)
	case "leave":
		if cmd.ProjectID != "" {
			hub.LeaveProject(client, cmd.ProjectID)
		}
	}
}
