package contract

import (
	"context"

	"brd-discovery-be/internal/entity"

	"github.com/google/uuid"
)

// DiscoverySessionRepository is the session state store. Implementations
// serialize concurrent writes per session; callers rely on that plus the
// stage-index comparison in the workflow service as the concurrency guard.
type DiscoverySessionRepository interface {
	Create(ctx context.Context, session *entity.DiscoverySession) error
	Update(ctx context.Context, session *entity.DiscoverySession) error
	FindById(ctx context.Context, id uuid.UUID) (*entity.DiscoverySession, error)
	FindAllByUserId(ctx context.Context, userId uuid.UUID) ([]*entity.DiscoverySession, error)
	Delete(ctx context.Context, id uuid.UUID) error
}
