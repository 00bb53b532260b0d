package websocket

import (
	"context"
	"encoding/json"
	"sync"

	"brd-discovery-be/internal/constant"
	"brd-discovery-be/internal/pkg/logger"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// advisoryChannel is the redis channel other instances may watch for
// push traffic. The in-process map below stays the source of truth for
// delivery; redis is observation only.
const advisoryChannel = "discovery_push_events"

type Hub struct {
	// Registered clients map: SessionID -> single live Client. At most
	// one connection per session; a reconnect replaces the old one.
	clients map[uuid.UUID]*Client

	// Lock for safe map access
	mu sync.RWMutex

	// Redis connection for cross-instance observability (optional)
	rdb *redis.Client

	// Dedicated Logger
	logger logger.ILogger
}

func NewHub(rdb *redis.Client, log logger.ILogger) *Hub {
	return &Hub{
		clients: make(map[uuid.UUID]*Client),
		rdb:     rdb,
		logger:  log,
	}
}

// Register binds the client to its session. An existing connection for
// the same session is displaced: its send channel is closed so its
// write pump exits, and the new client takes the slot.
func (h *Hub) Register(client *Client) {
	h.mu.Lock()
	old, existed := h.clients[client.SessionID]
	h.clients[client.SessionID] = client
	h.mu.Unlock()

	if existed && old != client {
		old.Close()
		h.logger.Warn("Hub", "Displaced stale connection on reconnect", map[string]interface{}{"session_id": client.SessionID})
	}
	h.logger.Info("Hub", "Client registered", map[string]interface{}{"session_id": client.SessionID})
}

// Unregister removes the client only if it still owns the session slot.
// A client displaced by a reconnect finds a different pointer in the map
// and leaves it alone, so a slow disconnect never evicts its successor.
func (h *Hub) Unregister(client *Client) {
	h.mu.Lock()
	current, ok := h.clients[client.SessionID]
	if ok && current == client {
		delete(h.clients, client.SessionID)
		client.Close()
		h.logger.Info("Hub", "Client unregistered", map[string]interface{}{"session_id": client.SessionID})
	}
	h.mu.Unlock()
}

// PushTo delivers raw bytes to the session's connection. Unknown
// sessions and full send buffers are silent no-ops: pushes are
// best-effort and must never stall or fail the caller.
func (h *Hub) PushTo(sessionID uuid.UUID, data []byte) {
	h.mu.RLock()
	client, ok := h.clients[sessionID]
	h.mu.RUnlock()

	if ok && !client.TrySend(data) {
		h.logger.Warn("Hub", "Client closed or buffer full, dropping push", map[string]interface{}{"session_id": sessionID})
	}

	if h.rdb != nil {
		payload, _ := json.Marshal(map[string]interface{}{
			"target_session_id": sessionID.String(),
			"message":           json.RawMessage(data),
		})
		h.rdb.Publish(context.Background(), advisoryChannel, payload)
	}
}

// PushStageUpdate notifies the session's client that the workflow moved
// to a new stage.
func (h *Hub) PushStageUpdate(sessionID uuid.UUID, currentStage int) {
	data, _ := json.Marshal(map[string]interface{}{
		"type":          constant.MessageTypeStageUpdate,
		"current_stage": currentStage,
	})
	h.PushTo(sessionID, data)
}

// PushJSON marshals a typed payload and delivers it to the session.
func (h *Hub) PushJSON(sessionID uuid.UUID, messageType string, fields map[string]interface{}) {
	payload := map[string]interface{}{"type": messageType}
	for k, v := range fields {
		payload[k] = v
	}
	data, _ := json.Marshal(payload)
	h.PushTo(sessionID, data)
}

// IsConnected reports whether the session has a live connection.
func (h *Hub) IsConnected(sessionID uuid.UUID) bool {
	h.mu.RLock()
	_, ok := h.clients[sessionID]
	h.mu.RUnlock()
	return ok
}
