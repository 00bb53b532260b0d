package mapper

import (
	"time"

	"brd-discovery-be/internal/entity"
	"brd-discovery-be/internal/model"

	"github.com/pgvector/pgvector-go"
	"gorm.io/datatypes"
)

type DiscoveryMapper struct{}

func NewDiscoveryMapper() *DiscoveryMapper {
	return &DiscoveryMapper{}
}

// Session Mappers

func (m *DiscoveryMapper) SessionToEntity(s *model.DiscoverySession) *entity.DiscoverySession {
	if s == nil {
		return nil
	}

	var updatedAt *time.Time
	if !s.UpdatedAt.IsZero() {
		t := s.UpdatedAt
		updatedAt = &t
	}

	state := make(map[string]interface{}, len(s.State))
	for k, v := range s.State {
		state[k] = v
	}

	return &entity.DiscoverySession{
		Id:        s.Id,
		UserId:    s.UserId,
		UserName:  s.UserName,
		UserEmail: s.UserEmail,
		Language:  s.Language,
		Title:     s.Title,
		State:     state,
		CreatedAt: s.CreatedAt,
		UpdatedAt: updatedAt,
	}
}

func (m *DiscoveryMapper) SessionToModel(s *entity.DiscoverySession) *model.DiscoverySession {
	if s == nil {
		return nil
	}

	var updatedAt time.Time
	if s.UpdatedAt != nil {
		updatedAt = *s.UpdatedAt
	}

	return &model.DiscoverySession{
		Id:        s.Id,
		UserId:    s.UserId,
		UserName:  s.UserName,
		UserEmail: s.UserEmail,
		Language:  s.Language,
		Title:     s.Title,
		State:     datatypes.JSONMap(s.State),
		CreatedAt: s.CreatedAt,
		UpdatedAt: updatedAt,
	}
}

// Event Mappers

func (m *DiscoveryMapper) EventToEntity(e *model.SessionEvent) *entity.SessionEvent {
	if e == nil {
		return nil
	}
	return &entity.SessionEvent{
		Id:        e.Id,
		SessionId: e.SessionId,
		Author:    e.Author,
		Role:      e.Role,
		Content:   e.Content,
		CreatedAt: e.CreatedAt,
	}
}

func (m *DiscoveryMapper) EventToModel(e *entity.SessionEvent) *model.SessionEvent {
	if e == nil {
		return nil
	}
	return &model.SessionEvent{
		Id:        e.Id,
		SessionId: e.SessionId,
		Author:    e.Author,
		Role:      e.Role,
		Content:   e.Content,
		CreatedAt: e.CreatedAt,
	}
}

// Memory Mappers

func (m *DiscoveryMapper) MemoryToEntity(s *model.StageMemory) *entity.StageMemory {
	if s == nil {
		return nil
	}
	return &entity.StageMemory{
		Id:        s.Id,
		SessionId: s.SessionId,
		StageName: s.StageName,
		Summary:   s.Summary,
		Embedding: s.Embedding.Slice(),
		CreatedAt: s.CreatedAt,
	}
}

func (m *DiscoveryMapper) MemoryToModel(s *entity.StageMemory) *model.StageMemory {
	if s == nil {
		return nil
	}
	return &model.StageMemory{
		Id:        s.Id,
		SessionId: s.SessionId,
		StageName: s.StageName,
		Summary:   s.Summary,
		Embedding: pgvector.NewVector(s.Embedding),
		CreatedAt: s.CreatedAt,
	}
}
