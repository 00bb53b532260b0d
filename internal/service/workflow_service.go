package service

import (
	"context"
	"fmt"
	"time"

	"brd-discovery-be/internal/constant"
	"brd-discovery-be/internal/pkg/logger"
	"brd-discovery-be/internal/repository/unitofwork"
	"brd-discovery-be/pkg/events"
	pktNats "brd-discovery-be/pkg/nats"

	"github.com/google/uuid"
)

var ErrSessionNotFound = fmt.Errorf("session not found")

type IWorkflowService interface {
	// Advance attempts a single-step progression. assertedStage is the
	// stage the caller believes it is completing; reason is free text
	// carried into the audit event.
	Advance(ctx context.Context, sessionId uuid.UUID, assertedStage int, reason string) (AdvanceOutcome, error)
	// Finalize unconditionally moves the session to the terminal stage
	// and marks the workflow completed.
	Finalize(ctx context.Context, sessionId uuid.UUID) error
	CurrentStage(ctx context.Context, sessionId uuid.UUID) (int, error)
}

type workflowService struct {
	uowFactory       unitofwork.RepositoryFactory
	notifier         INotificationService
	publisherService IPublisherService
	eventPublisher   *pktNats.Publisher
	logger           logger.ILogger
}

func NewWorkflowService(
	uowFactory unitofwork.RepositoryFactory,
	notifier INotificationService,
	publisherService IPublisherService,
	eventPublisher *pktNats.Publisher,
	log logger.ILogger,
) IWorkflowService {
	return &workflowService{
		uowFactory:       uowFactory,
		notifier:         notifier,
		publisherService: publisherService,
		eventPublisher:   eventPublisher,
		logger:           log,
	}
}

func (s *workflowService) Advance(ctx context.Context, sessionId uuid.UUID, assertedStage int, reason string) (AdvanceOutcome, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	session, err := uow.DiscoverySessionRepository().FindById(ctx, sessionId)
	if err != nil {
		return AdvanceOutcome{}, err
	}
	if session == nil {
		return AdvanceOutcome{}, ErrSessionNotFound
	}

	// History replay after a reconnect re-emits completion signals. The
	// resumption guard wins over everything, including a matching stage
	// assertion.
	if session.IsResuming() {
		s.logger.Info("WorkflowService", "Blocking advance during resumption", map[string]interface{}{
			"session_id":     sessionId,
			"asserted_stage": assertedStage,
		})
		return ResumptionBlocked(), nil
	}

	current := session.CurrentStageIndex()
	if assertedStage != current {
		s.logger.Warn("WorkflowService", "Rejecting stale advance call", map[string]interface{}{
			"session_id":     sessionId,
			"asserted_stage": assertedStage,
			"current_stage":  current,
		})
		return Rejected(assertedStage, current), nil
	}

	next := current + 1
	session.SetCurrentStageIndex(next)
	if err := uow.DiscoverySessionRepository().Update(ctx, session); err != nil {
		return AdvanceOutcome{}, err
	}

	s.logger.Info("WorkflowService", "Stage advanced", map[string]interface{}{
		"session_id": sessionId,
		"from":       current,
		"to":         next,
		"reason":     reason,
	})

	if s.notifier != nil {
		s.notifier.NotifyStageAdvanced(sessionId, next)
	}
	s.publishAudit(ctx, "STAGE_ADVANCED", map[string]interface{}{
		"session_id": sessionId.String(),
		"from_stage": current,
		"to_stage":   next,
		"reason":     reason,
	})

	return Advanced(current, next), nil
}

func (s *workflowService) Finalize(ctx context.Context, sessionId uuid.UUID) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	session, err := uow.DiscoverySessionRepository().FindById(ctx, sessionId)
	if err != nil {
		return err
	}
	if session == nil {
		return ErrSessionNotFound
	}

	session.SetCurrentStageIndex(constant.TerminalStageIndex)
	session.SetWorkflowStatus(constant.WorkflowStatusCompleted)
	session.State[constant.StateKeyDiscoveryCompleted] = true
	if err := uow.DiscoverySessionRepository().Update(ctx, session); err != nil {
		return err
	}

	s.logger.Info("WorkflowService", "Discovery finalized", map[string]interface{}{"session_id": sessionId})

	if s.notifier != nil {
		s.notifier.NotifyStageAdvanced(sessionId, constant.TerminalStageIndex)
	}
	s.publishAudit(ctx, "DISCOVERY_COMPLETED", map[string]interface{}{
		"session_id": sessionId.String(),
	})

	// Kick off async BRD generation. Best-effort: the workflow is
	// already committed.
	if s.publisherService != nil {
		payload := fmt.Sprintf(`{"session_id":%q}`, sessionId.String())
		if err := s.publisherService.Publish(ctx, []byte(payload)); err != nil {
			s.logger.Error("WorkflowService", "Failed to publish discovery completion", map[string]interface{}{
				"session_id": sessionId,
				"error":      err.Error(),
			})
		}
	}

	return nil
}

func (s *workflowService) CurrentStage(ctx context.Context, sessionId uuid.UUID) (int, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	session, err := uow.DiscoverySessionRepository().FindById(ctx, sessionId)
	if err != nil {
		return 0, err
	}
	if session == nil {
		return 0, ErrSessionNotFound
	}
	return session.CurrentStageIndex(), nil
}

func (s *workflowService) publishAudit(ctx context.Context, eventType string, payload map[string]interface{}) {
	if s.eventPublisher == nil {
		return
	}
	event := events.BaseEvent{
		Type:       eventType,
		Data:       payload,
		OccurredAt: time.Now(),
	}
	if err := s.eventPublisher.Publish(ctx, event); err != nil {
		s.logger.Warn("WorkflowService", "Audit event publish failed", map[string]interface{}{
			"type":  eventType,
			"error": err.Error(),
		})
	}
}
