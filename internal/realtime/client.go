package realtime

import (
	"encoding/json"
	"log"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/volunhub/backend/internal/models"
)

const sendBufferSize = 256

// Client represents one authenticated websocket connection. A user with
// several tabs open holds several Clients at once.
type Client struct {
	user *models.User
	conn *websocket.Conn

	mu     sync.Mutex
	closed bool
	send   chan []byte
}

func newClient(user *models.User, conn *websocket.Conn) *Client {
	return &Client{
		user: user,
		conn: conn,
		send: make(chan []byte, sendBufferSize),
	}
}

// User returns the authenticated user bound to this connection.
func (c *Client) User() *models.User {
	return c.user
}

// enqueue hands a frame to the write pump without blocking. Frames for a
// closed connection, or for one whose buffer is full, are dropped: live
// push is best-effort and the stored record is the source of truth.
func (c *Client) enqueue(frame []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	select {
	case c.send <- frame:
	default:
		log.Printf("Chat client %d: send buffer full, dropping frame", c.user.ID)
	}
}

// close shuts the send channel exactly once and closes the underlying
// connection. Safe to call from both pumps and from the gateway.
func (c *Client) close() {
	c.mu.Lock()
	already := c.closed
	c.closed = true
	if !already {
		close(c.send)
	}
	c.mu.Unlock()

	if !already && c.conn != nil {
		c.conn.Close()
	}
}

// readPump consumes inbound frames until the connection drops, dispatching
// each decoded event to the gateway. Runs on the handshake goroutine.
func (c *Client) readPump(g *Gateway) {
	defer g.disconnect(c)

	for {
		_, frame, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				log.Printf("Chat client %d: read error: %v", c.user.ID, err)
			}
			return
		}

		var envelope Envelope
		if err := json.Unmarshal(frame, &envelope); err != nil {
			continue
		}

		switch envelope.Event {
		case EventSendMessage:
			var payload SendMessagePayload
			if err := json.Unmarshal(envelope.Data, &payload); err != nil {
				g.pushError(c, "Invalid sendMessage payload.")
				continue
			}
			g.handleSendMessage(c, payload)
		}
	}
}

// writePump drains the send channel onto the wire. One per connection.
func (c *Client) writePump() {
	defer c.conn.Close()

	for frame := range c.send {
		if err := c.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
			return
		}
	}
}
