package implementation

import (
	"context"

	"brd-discovery-be/internal/entity"
	"brd-discovery-be/internal/mapper"
	"brd-discovery-be/internal/model"
	"brd-discovery-be/internal/repository/contract"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"
)

type StageMemoryRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.DiscoveryMapper
}

func NewStageMemoryRepository(db *gorm.DB) contract.StageMemoryRepository {
	return &StageMemoryRepositoryImpl{
		db:     db,
		mapper: mapper.NewDiscoveryMapper(),
	}
}

func (r *StageMemoryRepositoryImpl) Create(ctx context.Context, memory *entity.StageMemory) error {
	m := r.mapper.MemoryToModel(memory)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*memory = *r.mapper.MemoryToEntity(m)
	return nil
}

func (r *StageMemoryRepositoryImpl) SearchSimilar(ctx context.Context, sessionId uuid.UUID, embedding []float32, limit int) ([]*entity.StageMemory, error) {
	if limit <= 0 {
		limit = 5
	}
	var models []*model.StageMemory

	// pgvector cosine distance: embedding <=> vector
	err := r.db.WithContext(ctx).
		Where("session_id = ?", sessionId).
		Order(gorm.Expr("embedding <=> ?", pgvector.NewVector(embedding))).
		Limit(limit).
		Find(&models).Error
	if err != nil {
		return nil, err
	}

	entities := make([]*entity.StageMemory, len(models))
	for i, m := range models {
		entities[i] = r.mapper.MemoryToEntity(m)
	}
	return entities, nil
}

func (r *StageMemoryRepositoryImpl) DeleteAllBySessionId(ctx context.Context, sessionId uuid.UUID) error {
	return r.db.WithContext(ctx).Where("session_id = ?", sessionId).Delete(&model.StageMemory{}).Error
}
