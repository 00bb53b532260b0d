package implementation

import (
	"context"
	"errors"

	"brd-discovery-be/internal/entity"
	"brd-discovery-be/internal/mapper"
	"brd-discovery-be/internal/model"
	"brd-discovery-be/internal/repository/contract"
	"brd-discovery-be/internal/repository/scope"
	"brd-discovery-be/internal/repository/specification"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type DiscoverySessionRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.DiscoveryMapper
}

func NewDiscoverySessionRepository(db *gorm.DB) contract.DiscoverySessionRepository {
	return &DiscoverySessionRepositoryImpl{
		db:     db,
		mapper: mapper.NewDiscoveryMapper(),
	}
}

func (r *DiscoverySessionRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *DiscoverySessionRepositoryImpl) Create(ctx context.Context, session *entity.DiscoverySession) error {
	m := r.mapper.SessionToModel(session)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*session = *r.mapper.SessionToEntity(m)
	return nil
}

func (r *DiscoverySessionRepositoryImpl) Update(ctx context.Context, session *entity.DiscoverySession) error {
	m := r.mapper.SessionToModel(session)
	if err := r.db.WithContext(ctx).Save(m).Error; err != nil {
		return err
	}
	*session = *r.mapper.SessionToEntity(m)
	return nil
}

func (r *DiscoverySessionRepositoryImpl) FindById(ctx context.Context, id uuid.UUID) (*entity.DiscoverySession, error) {
	var m model.DiscoverySession
	query := r.applySpecifications(r.db.WithContext(ctx), specification.ByID{ID: id})
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.SessionToEntity(&m), nil
}

func (r *DiscoverySessionRepositoryImpl) FindAllByUserId(ctx context.Context, userId uuid.UUID) ([]*entity.DiscoverySession, error) {
	var models []*model.DiscoverySession
	query := r.applySpecifications(
		r.db.WithContext(ctx).Scopes(scope.OrderByCreatedDesc),
		specification.ByUserID{UserID: userId},
	)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	entities := make([]*entity.DiscoverySession, len(models))
	for i, m := range models {
		entities[i] = r.mapper.SessionToEntity(m)
	}
	return entities, nil
}

func (r *DiscoverySessionRepositoryImpl) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.DiscoverySession{}, id).Error
}
