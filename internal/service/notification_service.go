package service

import (
	"brd-discovery-be/internal/constant"
	"brd-discovery-be/internal/pkg/logger"

	"github.com/google/uuid"
)

// NotificationDelivery defines how to push real-time updates.
// Typically implemented by the WebSocket Hub.
type NotificationDelivery interface {
	PushStageUpdate(sessionID uuid.UUID, currentStage int)
	PushJSON(sessionID uuid.UUID, messageType string, fields map[string]interface{})
}

// INotificationService dispatches workflow pushes. All methods are
// fire-and-forget: the workflow decision that triggered them is already
// committed and must never block on, or fail because of, delivery.
type INotificationService interface {
	NotifyStageAdvanced(sessionId uuid.UUID, currentStage int)
	NotifyBRDReady(sessionId uuid.UUID)
}

type notificationService struct {
	delivery NotificationDelivery
	logger   logger.ILogger
}

func NewNotificationService(delivery NotificationDelivery, log logger.ILogger) INotificationService {
	return &notificationService{delivery: delivery, logger: log}
}

func (s *notificationService) NotifyStageAdvanced(sessionId uuid.UUID, currentStage int) {
	if s.delivery == nil {
		return
	}
	go func() {
		defer s.recoverPanic("stage_update", sessionId)
		s.delivery.PushStageUpdate(sessionId, currentStage)
	}()
}

func (s *notificationService) NotifyBRDReady(sessionId uuid.UUID) {
	if s.delivery == nil {
		return
	}
	go func() {
		defer s.recoverPanic(constant.MessageTypeBRDReady, sessionId)
		s.delivery.PushJSON(sessionId, constant.MessageTypeBRDReady, map[string]interface{}{
			"session_id": sessionId.String(),
		})
	}()
}

func (s *notificationService) recoverPanic(messageType string, sessionId uuid.UUID) {
	if r := recover(); r != nil {
		s.logger.Error("NotificationService", "Push delivery panicked", map[string]interface{}{
			"type":       messageType,
			"session_id": sessionId,
			"panic":      r,
		})
	}
}
