// internal/websocket/hub.go
// WebSocket hub manages client connections and message broadcasting

package websocket

import (
	"encoding/json"
	"log"
	"sync"
)

// Hub maintains active websocket connections and broadcasts engine events
// to spectators/coaches watching a given game.
type Hub struct {
	// Registered clients by game ID
	games map[string]map[*Client]bool

	// Register client
	register chan *Client

	// Unregister client
	unregister chan *Client

	// Broadcast messages to a game's subscribers
	broadcast chan *Message

	logger *log.Logger

	mu sync.RWMutex
}

// Message represents a WebSocket message. Type mirrors the rotation event
// bus's Name (game_started, rotation_pending, ...), with Data carrying the
// event payload.
type Message struct {
	Type   string      `json:"type"`
	GameID string      `json:"game_id,omitempty"`
	Data   interface{} `json:"data"`
}

// NewHub creates a new WebSocket hub.
func NewHub(logger *log.Logger) *Hub {
	return &Hub{
		games:      make(map[string]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan *Message, 256),
		logger:     logger,
	}
}

// Run starts the hub's main loop.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.registerClient(client)

		case client := <-h.unregister:
			h.unregisterClient(client)

		case message := <-h.broadcast:
			h.broadcastMessage(message)
		}
	}
}

func (h *Hub) registerClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, gameID := range client.games {
		if h.games[gameID] == nil {
			h.games[gameID] = make(map[*Client]bool)
		}
		h.games[gameID][client] = true
	}

	h.logger.Printf("client registered (games: %v)", client.games)
}

func (h *Hub) unregisterClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.removeClient(client)
	client.close()

	h.logger.Printf("client unregistered")
}

func (h *Hub) removeClient(client *Client) {
	for _, gameID := range client.games {
		if clients, exists := h.games[gameID]; exists {
			delete(clients, client)
			if len(clients) == 0 {
				delete(h.games, gameID)
			}
		}
	}
}

func (h *Hub) broadcastMessage(message *Message) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	data, err := json.Marshal(message)
	if err != nil {
		h.logger.Printf("failed to marshal message: %v", err)
		return
	}

	if message.GameID == "" {
		return
	}
	clients, exists := h.games[message.GameID]
	if !exists {
		return
	}
	for client := range clients {
		select {
		case client.send <- data:
		default:
			h.removeClient(client)
			client.close()
		}
	}
}

// BroadcastGameEvent pushes an engine event to everyone watching a game.
// It never blocks: when the broadcast buffer is full (as it stays once
// Run is not running), the event is dropped.
func (h *Hub) BroadcastGameEvent(gameID, eventType string, data interface{}) {
	select {
	case h.broadcast <- &Message{Type: eventType, GameID: gameID, Data: data}:
	default:
	}
}

// SubscribeToGame subscribes a client to a game's events.
func (h *Hub) SubscribeToGame(client *Client, gameID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	client.games = append(client.games, gameID)

	if h.games[gameID] == nil {
		h.games[gameID] = make(map[*Client]bool)
	}
	h.games[gameID][client] = true

	h.logger.Printf("client subscribed to game %s", gameID)
}

// UnsubscribeFromGame unsubscribes a client from a game's events.
func (h *Hub) UnsubscribeFromGame(client *Client, gameID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for i, id := range client.games {
		if id == gameID {
			client.games = append(client.games[:i], client.games[i+1:]...)
			break
		}
	}

	if clients, exists := h.games[gameID]; exists {
		delete(clients, client)
		if len(clients) == 0 {
			delete(h.games, gameID)
		}
	}

	h.logger.Printf("client unsubscribed from game %s", gameID)
}
