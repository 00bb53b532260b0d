package memory

import (
	"context"
	"time"

	"brd-discovery-be/internal/entity"
	"brd-discovery-be/internal/repository/contract"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
)

// DiscoverySessionRepository is the in-process session store used when no
// database connection is configured. Durability is cache-lifetime only.
type DiscoverySessionRepository struct {
	cache *cache.Cache
}

func NewDiscoverySessionRepository() contract.DiscoverySessionRepository {
	// Sessions idle for 12 hours are evicted; purge sweep every 30 minutes.
	c := cache.New(12*time.Hour, 30*time.Minute)
	return &DiscoverySessionRepository{cache: c}
}

func (r *DiscoverySessionRepository) Create(ctx context.Context, session *entity.DiscoverySession) error {
	if session.Id == uuid.Nil {
		session.Id = uuid.New()
	}
	if session.CreatedAt.IsZero() {
		session.CreatedAt = time.Now()
	}
	r.cache.Set(session.Id.String(), cloneSession(session), cache.DefaultExpiration)
	return nil
}

func (r *DiscoverySessionRepository) Update(ctx context.Context, session *entity.DiscoverySession) error {
	now := time.Now()
	session.UpdatedAt = &now
	r.cache.Set(session.Id.String(), cloneSession(session), cache.DefaultExpiration)
	return nil
}

func (r *DiscoverySessionRepository) FindById(ctx context.Context, id uuid.UUID) (*entity.DiscoverySession, error) {
	if x, found := r.cache.Get(id.String()); found {
		return cloneSession(x.(*entity.DiscoverySession)), nil
	}
	return nil, nil
}

func (r *DiscoverySessionRepository) FindAllByUserId(ctx context.Context, userId uuid.UUID) ([]*entity.DiscoverySession, error) {
	var sessions []*entity.DiscoverySession
	for _, item := range r.cache.Items() {
		s := item.Object.(*entity.DiscoverySession)
		if s.UserId == userId {
			sessions = append(sessions, cloneSession(s))
		}
	}
	return sessions, nil
}

func (r *DiscoverySessionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	r.cache.Delete(id.String())
	return nil
}

// cloneSession copies the session with its state map so callers never
// share mutable state with the cache.
func cloneSession(s *entity.DiscoverySession) *entity.DiscoverySession {
	cp := *s
	cp.State = deepCopyMap(s.State)
	return &cp
}

func deepCopyMap(in map[string]interface{}) map[string]interface{} {
	if in == nil {
		return nil
	}
	out := make(map[string]interface{}, len(in))
	for k, v := range in {
		if nested, ok := v.(map[string]interface{}); ok {
			out[k] = deepCopyMap(nested)
			continue
		}
		out[k] = v
	}
	return out
}
