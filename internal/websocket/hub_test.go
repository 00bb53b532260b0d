package websocket

import (
	"encoding/json"
	"testing"

	"brd-discovery-be/internal/pkg/logger"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

type nopLogger struct{}

func (nopLogger) Debug(module, message string, details map[string]interface{}) {}
func (nopLogger) Info(module, message string, details map[string]interface{})  {}
func (nopLogger) Warn(module, message string, details map[string]interface{})  {}
func (nopLogger) Error(module, message string, details map[string]interface{}) {}
func (nopLogger) Sync() error                                                  { return nil }
func (nopLogger) GetLogs(level string, limit, offset int) ([]logger.LogEntry, error) {
	return nil, nil
}
func (nopLogger) GetLogById(id string) (*logger.LogEntry, error) { return nil, nil }

func newTestHub() *Hub {
	return NewHub(nil, nopLogger{})
}

func testClient(h *Hub, sessionID uuid.UUID) *Client {
	return &Client{Hub: h, SessionID: sessionID, Send: make(chan []byte, 8)}
}

func TestRegisterAndPush(t *testing.T) {
	hub := newTestHub()
	sessionID := uuid.New()
	client := testClient(hub, sessionID)
	hub.Register(client)

	hub.PushStageUpdate(sessionID, 3)

	select {
	case raw := <-client.Send:
		var msg map[string]interface{}
		assert.NoError(t, json.Unmarshal(raw, &msg))
		assert.Equal(t, "stage_update", msg["type"])
		assert.Equal(t, float64(3), msg["current_stage"])
	default:
		t.Fatal("expected a pushed message")
	}
}

func TestPushToUnknownSessionIsNoop(t *testing.T) {
	hub := newTestHub()
	// No client registered. Must neither panic nor block.
	hub.PushStageUpdate(uuid.New(), 1)
	hub.PushTo(uuid.New(), []byte(`{"type":"reply"}`))
}

func TestReconnectDisplacesOldClient(t *testing.T) {
	hub := newTestHub()
	sessionID := uuid.New()

	first := testClient(hub, sessionID)
	hub.Register(first)

	second := testClient(hub, sessionID)
	hub.Register(second)

	// The displaced client's channel is closed so its write pump exits.
	_, open := <-first.Send
	assert.False(t, open)

	hub.PushStageUpdate(sessionID, 2)
	select {
	case raw := <-second.Send:
		assert.Contains(t, string(raw), `"current_stage":2`)
	default:
		t.Fatal("replacement client did not receive the push")
	}
}

func TestSendAfterDisplacementDoesNotPanic(t *testing.T) {
	hub := newTestHub()
	sessionID := uuid.New()

	first := testClient(hub, sessionID)
	hub.Register(first)

	// A reconnect displaces the first client while its handler turn may
	// still be in flight.
	second := testClient(hub, sessionID)
	hub.Register(second)

	// The stale handler finishing its turn writes through TrySend, which
	// must report the closed client instead of panicking.
	assert.False(t, first.TrySend([]byte(`{"type":"reply"}`)))

	assert.True(t, second.TrySend([]byte(`{"type":"reply"}`)))
	select {
	case raw := <-second.Send:
		assert.Contains(t, string(raw), `"type":"reply"`)
	default:
		t.Fatal("replacement client did not receive the frame")
	}

	// Close is idempotent; a late Unregister of a displaced client must
	// not panic on a second close.
	first.Close()
	hub.Unregister(first)
}

func TestUnregisterOnlyRemovesOwner(t *testing.T) {
	hub := newTestHub()
	sessionID := uuid.New()

	first := testClient(hub, sessionID)
	hub.Register(first)
	second := testClient(hub, sessionID)
	hub.Register(second)

	// The stale client unregistering after displacement must not evict
	// its successor.
	hub.Unregister(first)
	assert.True(t, hub.IsConnected(sessionID))

	hub.Unregister(second)
	assert.False(t, hub.IsConnected(sessionID))

	_, open := <-second.Send
	assert.False(t, open)
}

func TestUnregisterUnknownClientIsNoop(t *testing.T) {
	hub := newTestHub()
	client := testClient(hub, uuid.New())
	hub.Unregister(client)
	hub.Unregister(client)
}

func TestPushDropsWhenBufferFull(t *testing.T) {
	hub := newTestHub()
	sessionID := uuid.New()
	client := &Client{Hub: hub, SessionID: sessionID, Send: make(chan []byte, 1)}
	hub.Register(client)

	hub.PushStageUpdate(sessionID, 1)
	hub.PushStageUpdate(sessionID, 2)

	// Second push is dropped, connection stays registered.
	assert.True(t, hub.IsConnected(sessionID))
	assert.Len(t, client.Send, 1)
}

func TestPushJSON(t *testing.T) {
	hub := newTestHub()
	sessionID := uuid.New()
	client := testClient(hub, sessionID)
	hub.Register(client)

	hub.PushJSON(sessionID, "brd_ready", map[string]interface{}{"session_id": sessionID.String()})

	raw := <-client.Send
	var msg map[string]interface{}
	assert.NoError(t, json.Unmarshal(raw, &msg))
	assert.Equal(t, "brd_ready", msg["type"])
	assert.Equal(t, sessionID.String(), msg["session_id"])
}
