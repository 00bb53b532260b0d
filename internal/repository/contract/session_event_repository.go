package contract

import (
	"context"

	"brd-discovery-be/internal/entity"

	"github.com/google/uuid"
)

type SessionEventRepository interface {
	Append(ctx context.Context, event *entity.SessionEvent) error
	FindAllBySessionId(ctx context.Context, sessionId uuid.UUID) ([]*entity.SessionEvent, error)
	CountByAuthor(ctx context.Context, sessionId uuid.UUID, author string) (int64, error)
}
