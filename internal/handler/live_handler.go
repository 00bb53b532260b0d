package handler

import (
	"context"
	"encoding/json"
	"os"
	"time"

	"brd-discovery-be/internal/constant"
	"brd-discovery-be/internal/dto"
	"brd-discovery-be/internal/entity"
	"brd-discovery-be/internal/pkg/logger"
	"brd-discovery-be/internal/service"
	internalWS "brd-discovery-be/internal/websocket"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const readWait = 60 * time.Second

// LiveHandler owns the conversational websocket endpoint. It reads the
// protocol (setup frame, then user turns) while the hub's client pump
// handles everything written back.
type LiveHandler struct {
	conversation service.IConversationService
	hub          *internalWS.Hub
	logger       logger.ILogger
}

func NewLiveHandler(conversation service.IConversationService, hub *internalWS.Hub, log logger.ILogger) *LiveHandler {
	return &LiveHandler{
		conversation: conversation,
		hub:          hub,
		logger:       log,
	}
}

func (h *LiveHandler) RegisterRoutes(app *fiber.App) {
	app.Get("/ws/live", h.ServeLive)
}

// ServeLive authenticates the handshake and upgrades to the live
// conversation protocol.
func (h *LiveHandler) ServeLive(c *fiber.Ctx) error {
	// Query param first (browser standard), then Authorization header.
	tokenStr := c.Query("token")
	if tokenStr == "" {
		authHeader := c.Get("Authorization")
		if len(authHeader) > 7 && authHeader[:7] == "Bearer " {
			tokenStr = authHeader[7:]
		}
	}
	if tokenStr == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Missing token (Query 'token' or Header 'Authorization')"})
	}

	token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fiber.ErrUnauthorized
		}
		return []byte(os.Getenv("JWT_SECRET")), nil
	})
	if err != nil || !token.Valid {
		h.logger.Warn("LiveHandler", "Invalid token in WS handshake", map[string]interface{}{"error": err})
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token claims"})
	}
	userIDStr, ok := claims["user_id"].(string)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Token missing user_id"})
	}
	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid user ID format in token"})
	}

	if websocket.IsWebSocketUpgrade(c) {
		return websocket.New(func(conn *websocket.Conn) {
			h.runSession(conn, userID)
		})(c)
	}
	return fiber.ErrUpgradeRequired
}

func (h *LiveHandler) runSession(conn *websocket.Conn, userID uuid.UUID) {
	ctx := context.Background()

	sessionID, ok := h.awaitSetup(conn)
	if !ok {
		conn.Close()
		return
	}

	session, history, err := h.conversation.EnsureSession(ctx, sessionID, userID)
	if err != nil {
		h.logger.Error("LiveHandler", "Session setup failed", map[string]interface{}{
			"session_id": sessionID,
			"error":      err.Error(),
		})
		conn.Close()
		return
	}

	client := internalWS.NewClient(h.hub, conn, sessionID)
	h.hub.Register(client)
	defer h.hub.Unregister(client)
	go client.WritePump()

	h.logger.Info("LiveHandler", "Live session started", map[string]interface{}{
		"session_id": sessionID,
		"user_id":    userID,
		"resuming":   session.IsResuming(),
	})

	if len(history) > 0 {
		h.sendHistory(client, history)
	}

	conn.SetReadDeadline(time.Now().Add(readWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(readWait))
		return nil
	})

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			h.logger.Info("LiveHandler", "Live session ended", map[string]interface{}{
				"session_id": sessionID,
				"error":      err.Error(),
			})
			return
		}
		conn.SetReadDeadline(time.Now().Add(readWait))

		var inbound dto.LiveInbound
		if err := json.Unmarshal(raw, &inbound); err != nil || inbound.Text == "" {
			continue
		}

		reply, err := h.conversation.HandleUserInput(ctx, sessionID, inbound.Text)
		if err != nil {
			// Upstream failures stay inline; the connection survives.
			h.send(client, dto.LiveError{Type: constant.MessageTypeError, Message: "The assistant is temporarily unavailable. Please try again."})
			h.logger.Error("LiveHandler", "Turn failed", map[string]interface{}{
				"session_id": sessionID,
				"error":      err.Error(),
			})
			continue
		}

		h.send(client, dto.LiveReply{Type: constant.MessageTypeReply, Text: reply})
	}
}

// awaitSetup reads frames until the setup payload arrives. The project
// id doubles as the session id when no session id is given.
func (h *LiveHandler) awaitSetup(conn *websocket.Conn) (uuid.UUID, bool) {
	conn.SetReadDeadline(time.Now().Add(readWait))
	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			return uuid.Nil, false
		}

		var inbound dto.LiveInbound
		if err := json.Unmarshal(raw, &inbound); err != nil || inbound.Setup == nil {
			continue
		}

		idStr := inbound.Setup.SessionId
		if idStr == "" {
			idStr = inbound.Setup.ProjectId
		}
		sessionID, err := uuid.Parse(idStr)
		if err != nil {
			h.logger.Warn("LiveHandler", "Setup payload without usable session id", map[string]interface{}{"raw": idStr})
			return uuid.Nil, false
		}
		return sessionID, true
	}
}

func (h *LiveHandler) sendHistory(client *internalWS.Client, history []*entity.SessionEvent) {
	items := make([]dto.TranscriptEventResponse, 0, len(history))
	for _, ev := range history {
		if ev.Role == constant.EventRoleSystem {
			continue
		}
		items = append(items, dto.TranscriptEventResponse{
			Id:        ev.Id,
			Author:    ev.Author,
			Role:      ev.Role,
			Content:   ev.Content,
			CreatedAt: ev.CreatedAt,
		})
	}
	h.send(client, map[string]interface{}{
		"type":   constant.MessageTypeHistory,
		"events": items,
	})
}

func (h *LiveHandler) send(client *internalWS.Client, payload interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		return
	}
	// The client may have been displaced by a reconnect while this turn
	// was in flight; a dropped frame is fine, a panic is not.
	if !client.TrySend(data) {
		h.logger.Warn("LiveHandler", "Client closed or buffer full, dropping frame", map[string]interface{}{"session_id": client.SessionID})
	}
}
