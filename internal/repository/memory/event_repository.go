package memory

import (
	"context"
	"sync"
	"time"

	"brd-discovery-be/internal/entity"
	"brd-discovery-be/internal/repository/contract"

	"github.com/google/uuid"
)

// SessionEventRepository keeps transcript events in process memory,
// ordered by append.
type SessionEventRepository struct {
	mu     sync.RWMutex
	events map[uuid.UUID][]*entity.SessionEvent
}

func NewSessionEventRepository() contract.SessionEventRepository {
	return &SessionEventRepository{
		events: make(map[uuid.UUID][]*entity.SessionEvent),
	}
}

func (r *SessionEventRepository) Append(ctx context.Context, event *entity.SessionEvent) error {
	if event.Id == uuid.Nil {
		event.Id = uuid.New()
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now()
	}
	cp := *event

	r.mu.Lock()
	defer r.mu.Unlock()
	r.events[event.SessionId] = append(r.events[event.SessionId], &cp)
	return nil
}

func (r *SessionEventRepository) FindAllBySessionId(ctx context.Context, sessionId uuid.UUID) ([]*entity.SessionEvent, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stored := r.events[sessionId]
	out := make([]*entity.SessionEvent, len(stored))
	for i, e := range stored {
		cp := *e
		out[i] = &cp
	}
	return out, nil
}

func (r *SessionEventRepository) CountByAuthor(ctx context.Context, sessionId uuid.UUID, author string) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var count int64
	for _, e := range r.events[sessionId] {
		if e.Author == author {
			count++
		}
	}
	return count, nil
}
