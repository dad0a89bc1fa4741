// internal/websocket/client.go
// WebSocket client connection handler

package websocket

import (
	"encoding/json"
	"log"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512 * 1024
)

// Client represents a websocket client connection subscribed to one or
// more games.
type Client struct {
	hub   *Hub
	conn  *websocket.Conn
	send  chan []byte
	games []string
}

// ClientMessage represents a message from client.
type ClientMessage struct {
	Type   string          `json:"type"`
	Action string          `json:"action"`
	Data   json.RawMessage `json:"data"`
}

func (c *Client) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		var msg ClientMessage
		err := c.conn.ReadJSON(&msg)
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("websocket error: %v", err)
			}
			break
		}

		switch msg.Type {
		case "subscribe":
			c.handleSubscribe(msg)
		case "unsubscribe":
			c.handleUnsubscribe(msg)
		case "ping":
			c.handlePing()
		default:
			log.Printf("unknown message type: %s", msg.Type)
		}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *Client) handleSubscribe(msg ClientMessage) {
	var data struct {
		GameID string `json:"game_id"`
	}

	if err := json.Unmarshal(msg.Data, &data); err != nil {
		log.Printf("failed to unmarshal subscribe data: %v", err)
		return
	}

	if data.GameID != "" {
		c.hub.SubscribeToGame(c, data.GameID)

		response := Message{Type: "subscribed", GameID: data.GameID}
		if responseData, err := json.Marshal(response); err == nil {
			c.send <- responseData
		}
	}
}

func (c *Client) handleUnsubscribe(msg ClientMessage) {
	var data struct {
		GameID string `json:"game_id"`
	}

	if err := json.Unmarshal(msg.Data, &data); err != nil {
		log.Printf("failed to unmarshal unsubscribe data: %v", err)
		return
	}

	if data.GameID != "" {
		c.hub.UnsubscribeFromGame(c, data.GameID)

		response := Message{Type: "unsubscribed", GameID: data.GameID}
		if responseData, err := json.Marshal(response); err == nil {
			c.send <- responseData
		}
	}
}

func (c *Client) handlePing() {
	response := Message{
		Type: "pong",
		Data: map[string]int64{"timestamp": time.Now().Unix()},
	}

	if responseData, err := json.Marshal(response); err == nil {
		c.send <- responseData
	}
}

func (c *Client) close() {
	close(c.send)
}
