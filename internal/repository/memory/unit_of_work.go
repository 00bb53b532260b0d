package memory

import (
	"context"

	"brd-discovery-be/internal/repository/contract"
	"brd-discovery-be/internal/repository/unitofwork"
)

// RepositoryFactory is the in-memory counterpart of the gorm factory,
// used when no database DSN is configured. The repositories are shared
// across units of work so state survives between requests.
type RepositoryFactory struct {
	sessions contract.DiscoverySessionRepository
	events   contract.SessionEventRepository
	memories contract.StageMemoryRepository
}

func NewRepositoryFactory() unitofwork.RepositoryFactory {
	return &RepositoryFactory{
		sessions: NewDiscoverySessionRepository(),
		events:   NewSessionEventRepository(),
		memories: NewStageMemoryRepository(),
	}
}

func (f *RepositoryFactory) NewUnitOfWork(ctx context.Context) unitofwork.UnitOfWork {
	return &unitOfWork{factory: f}
}

// unitOfWork has no transaction boundary. Begin/Commit/Rollback are
// accepted and ignored so callers written against the gorm unit of work
// run unchanged.
type unitOfWork struct {
	factory *RepositoryFactory
}

func (u *unitOfWork) Begin(ctx context.Context) error { return nil }
func (u *unitOfWork) Commit() error                   { return nil }
func (u *unitOfWork) Rollback() error                 { return nil }

func (u *unitOfWork) DiscoverySessionRepository() contract.DiscoverySessionRepository {
	return u.factory.sessions
}

func (u *unitOfWork) SessionEventRepository() contract.SessionEventRepository {
	return u.factory.events
}

func (u *unitOfWork) StageMemoryRepository() contract.StageMemoryRepository {
	return u.factory.memories
}
