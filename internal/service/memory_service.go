package service

import (
	"context"
	"time"

	"brd-discovery-be/internal/entity"
	"brd-discovery-be/internal/pkg/logger"
	"brd-discovery-be/internal/repository/unitofwork"
	"brd-discovery-be/pkg/embedding"

	"github.com/google/uuid"
)

const recallLimit = 3

// IMemoryService stores compact per-stage summaries as embeddings and
// recalls the most similar ones to enrich later stage instructions.
// Both operations are best-effort; workflow progression never depends
// on them.
type IMemoryService interface {
	Remember(ctx context.Context, sessionId uuid.UUID, stageName string, summary string)
	Recall(ctx context.Context, sessionId uuid.UUID, query string) []string
	Forget(ctx context.Context, sessionId uuid.UUID) error
}

type memoryService struct {
	uowFactory        unitofwork.RepositoryFactory
	embeddingProvider embedding.EmbeddingProvider
	logger            logger.ILogger
}

func NewMemoryService(
	uowFactory unitofwork.RepositoryFactory,
	embeddingProvider embedding.EmbeddingProvider,
	log logger.ILogger,
) IMemoryService {
	return &memoryService{
		uowFactory:        uowFactory,
		embeddingProvider: embeddingProvider,
		logger:            log,
	}
}

func (s *memoryService) Remember(ctx context.Context, sessionId uuid.UUID, stageName string, summary string) {
	if s.embeddingProvider == nil || summary == "" {
		return
	}

	res, err := s.embeddingProvider.Generate(summary, "RETRIEVAL_DOCUMENT")
	if err != nil {
		s.logger.Warn("MemoryService", "Embedding generation failed", map[string]interface{}{
			"session_id": sessionId,
			"stage":      stageName,
			"error":      err.Error(),
		})
		return
	}

	memory := entity.StageMemory{
		Id:        uuid.New(),
		SessionId: sessionId,
		StageName: stageName,
		Summary:   summary,
		Embedding: res.Embedding.Values,
		CreatedAt: time.Now(),
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.StageMemoryRepository().Create(ctx, &memory); err != nil {
		s.logger.Warn("MemoryService", "Failed to store stage memory", map[string]interface{}{
			"session_id": sessionId,
			"stage":      stageName,
			"error":      err.Error(),
		})
	}
}

func (s *memoryService) Recall(ctx context.Context, sessionId uuid.UUID, query string) []string {
	if s.embeddingProvider == nil || query == "" {
		return nil
	}

	res, err := s.embeddingProvider.Generate(query, "RETRIEVAL_QUERY")
	if err != nil {
		s.logger.Warn("MemoryService", "Query embedding failed", map[string]interface{}{
			"session_id": sessionId,
			"error":      err.Error(),
		})
		return nil
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	memories, err := uow.StageMemoryRepository().SearchSimilar(ctx, sessionId, res.Embedding.Values, recallLimit)
	if err != nil {
		s.logger.Warn("MemoryService", "Memory recall failed", map[string]interface{}{
			"session_id": sessionId,
			"error":      err.Error(),
		})
		return nil
	}

	summaries := make([]string, 0, len(memories))
	for _, m := range memories {
		summaries = append(summaries, m.Summary)
	}
	return summaries
}

func (s *memoryService) Forget(ctx context.Context, sessionId uuid.UUID) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	return uow.StageMemoryRepository().DeleteAllBySessionId(ctx, sessionId)
}
