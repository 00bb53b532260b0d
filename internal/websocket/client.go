package websocket

import (
	"sync"
	"time"

	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

// Client is the write side of one session connection. The read loop
// stays with the live handler, which owns the conversation protocol;
// the client only drains Send onto the wire and keeps the connection
// alive with pings.
type Client struct {
	Hub *Hub

	// The websocket connection.
	Conn *websocket.Conn

	// SessionID this connection is scoped to
	SessionID uuid.UUID

	// Buffered channel of outbound messages. Written only through
	// TrySend; a displaced client's handler may still be mid-turn when
	// the channel closes, so raw sends are not safe.
	Send chan []byte

	mu     sync.Mutex
	closed bool
}

func NewClient(hub *Hub, conn *websocket.Conn, sessionID uuid.UUID) *Client {
	return &Client{Hub: hub, Conn: conn, SessionID: sessionID, Send: make(chan []byte, 256)}
}

// TrySend enqueues data unless the client is closed or its buffer is
// full. Reports whether the frame was enqueued.
func (c *Client) TrySend(data []byte) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return false
	}
	select {
	case c.Send <- data:
		return true
	default:
		return false
	}
}

// Close shuts the send channel exactly once. Safe to call from the hub
// while the owning handler is still running a turn.
func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}
	c.closed = true
	close(c.Send)
}

// WritePump pumps messages from the hub to the websocket connection.
// It exits when Send is closed, either by Unregister or by a reconnect
// displacing this client.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// The hub closed the channel.
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
