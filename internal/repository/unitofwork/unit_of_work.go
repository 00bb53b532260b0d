package unitofwork

import (
	"context"

	"brd-discovery-be/internal/repository/contract"
)

type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	DiscoverySessionRepository() contract.DiscoverySessionRepository
	SessionEventRepository() contract.SessionEventRepository
	StageMemoryRepository() contract.StageMemoryRepository
}
