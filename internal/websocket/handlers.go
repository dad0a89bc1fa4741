// internal/websocket/handlers.go
// WebSocket connection handlers

package websocket

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// HandleConnection handles new WebSocket connections. The optional
// game_id query parameter subscribes the client immediately.
func HandleConnection(hub *Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		gameID := c.Query("game_id")

		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			log.Printf("failed to upgrade connection: %v", err)
			return
		}

		client := &Client{
			hub:   hub,
			conn:  conn,
			send:  make(chan []byte, 256),
			games: make([]string, 0),
		}
		if gameID != "" {
			client.games = append(client.games, gameID)
		}

		hub.register <- client

		welcomeMsg := Message{
			Type:   "welcome",
			GameID: gameID,
			Data:   map[string]string{"message": "connected to rotation engine websocket"},
		}
		if data, err := json.Marshal(welcomeMsg); err == nil {
			client.send <- data
		}

		go client.writePump()
		go client.readPump()
	}
}

// Message types forwarded from the rotation event bus.
const (
	MessageGameStarted      = "game_started"
	MessageRotationPending  = "rotation_pending"
	MessageRotationConfirmed = "rotation_confirmed"
	MessagePeriodEnd        = "period_end"
	MessageGameEnded        = "game_ended"
	MessageStateValidated   = "state_validated"
	MessageWarning          = "warning"
	MessageEarlyWarning     = "early_warning"
	MessageImminentWarning  = "imminent_warning"
	MessageError            = "error"
)
