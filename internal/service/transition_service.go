package service

import (
	"context"
	"time"

	"brd-discovery-be/internal/constant"
	"brd-discovery-be/internal/pkg/logger"
	"brd-discovery-be/internal/repository/unitofwork"
	"brd-discovery-be/pkg/extraction"

	"github.com/google/uuid"
)

// ITransitionService records a stage completion: it folds extracted
// facts into the session state and writes the per-stage completion
// entry. Extraction is advisory; a completion is recorded even when
// nothing could be extracted.
type ITransitionService interface {
	OnStageComplete(ctx context.Context, sessionId uuid.UUID, stageName string) error
}

type transitionService struct {
	uowFactory    unitofwork.RepositoryFactory
	registry      *extraction.Registry
	memoryService IMemoryService
	logger        logger.ILogger
}

func NewTransitionService(
	uowFactory unitofwork.RepositoryFactory,
	registry *extraction.Registry,
	memoryService IMemoryService,
	log logger.ILogger,
) ITransitionService {
	return &transitionService{
		uowFactory:    uowFactory,
		registry:      registry,
		memoryService: memoryService,
		logger:        log,
	}
}

func (s *transitionService) OnStageComplete(ctx context.Context, sessionId uuid.UUID, stageName string) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	session, err := uow.DiscoverySessionRepository().FindById(ctx, sessionId)
	if err != nil {
		return err
	}
	if session == nil {
		return ErrSessionNotFound
	}

	session.EnsureScaffolding()

	outputKey, known := extraction.OutputKeys[stageName]
	if !known {
		s.logger.Warn("TransitionService", "Unknown stage name, skipping transition record", map[string]interface{}{
			"session_id": sessionId,
			"stage":      stageName,
		})
		return nil
	}

	text := session.Output(outputKey)
	if text == "" {
		s.logger.Warn("TransitionService", "No output recorded for stage", map[string]interface{}{
			"session_id": sessionId,
			"stage":      stageName,
			"output_key": outputKey,
		})
	} else {
		research := session.Output(constant.StateKeyCompanyResearch)
		facts := s.registry.Extract(stageName, text, research)
		if len(facts) > 0 {
			session.MergeExtracted(map[string]interface{}(facts))
			s.logger.Info("TransitionService", "Extracted facts merged", map[string]interface{}{
				"session_id": sessionId,
				"stage":      stageName,
				"fact_count": len(facts),
			})
		}
	}

	eventCount, err := uow.SessionEventRepository().CountByAuthor(ctx, sessionId, stageName)
	if err != nil {
		s.logger.Warn("TransitionService", "Event count unavailable", map[string]interface{}{
			"session_id": sessionId,
			"stage":      stageName,
			"error":      err.Error(),
		})
		eventCount = 0
	}

	session.MarkStageCompleted(stageName, time.Now(), int(eventCount))
	session.SetCurrentStageName(stageName)
	session.IncrementTurnCount()

	if err := uow.DiscoverySessionRepository().Update(ctx, session); err != nil {
		return err
	}

	if s.memoryService != nil && text != "" {
		s.memoryService.Remember(ctx, sessionId, stageName, text)
	}

	return nil
}
