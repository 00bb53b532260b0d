package implementation

import (
	"context"

	"brd-discovery-be/internal/entity"
	"brd-discovery-be/internal/mapper"
	"brd-discovery-be/internal/model"
	"brd-discovery-be/internal/repository/contract"
	"brd-discovery-be/internal/repository/scope"
	"brd-discovery-be/internal/repository/specification"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type SessionEventRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.DiscoveryMapper
}

func NewSessionEventRepository(db *gorm.DB) contract.SessionEventRepository {
	return &SessionEventRepositoryImpl{
		db:     db,
		mapper: mapper.NewDiscoveryMapper(),
	}
}

func (r *SessionEventRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *SessionEventRepositoryImpl) Append(ctx context.Context, event *entity.SessionEvent) error {
	m := r.mapper.EventToModel(event)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*event = *r.mapper.EventToEntity(m)
	return nil
}

func (r *SessionEventRepositoryImpl) FindAllBySessionId(ctx context.Context, sessionId uuid.UUID) ([]*entity.SessionEvent, error) {
	var models []*model.SessionEvent
	query := r.applySpecifications(
		r.db.WithContext(ctx).Scopes(scope.OrderByCreatedAsc),
		specification.BySessionID{SessionID: sessionId},
	)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	entities := make([]*entity.SessionEvent, len(models))
	for i, m := range models {
		entities[i] = r.mapper.EventToEntity(m)
	}
	return entities, nil
}

func (r *SessionEventRepositoryImpl) CountByAuthor(ctx context.Context, sessionId uuid.UUID, author string) (int64, error) {
	var count int64
	query := r.applySpecifications(
		r.db.WithContext(ctx),
		specification.BySessionID{SessionID: sessionId},
		specification.ByAuthor{Author: author},
	)
	err := query.Model(&model.SessionEvent{}).Count(&count).Error
	return count, err
}
