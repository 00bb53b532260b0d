package contract

import (
	"context"

	"brd-discovery-be/internal/entity"

	"github.com/google/uuid"
)

type StageMemoryRepository interface {
	Create(ctx context.Context, memory *entity.StageMemory) error
	SearchSimilar(ctx context.Context, sessionId uuid.UUID, embedding []float32, limit int) ([]*entity.StageMemory, error)
	DeleteAllBySessionId(ctx context.Context, sessionId uuid.UUID) error
}
