package memory

import (
	"context"
	"math"
	"sort"
	"sync"
	"time"

	"brd-discovery-be/internal/entity"
	"brd-discovery-be/internal/repository/contract"

	"github.com/google/uuid"
)

// StageMemoryRepository is the in-process recall store; similarity search
// is a brute-force cosine scan, adequate for the handful of summaries one
// session produces.
type StageMemoryRepository struct {
	mu       sync.RWMutex
	memories map[uuid.UUID][]*entity.StageMemory
}

func NewStageMemoryRepository() contract.StageMemoryRepository {
	return &StageMemoryRepository{
		memories: make(map[uuid.UUID][]*entity.StageMemory),
	}
}

func (r *StageMemoryRepository) Create(ctx context.Context, memory *entity.StageMemory) error {
	if memory.Id == uuid.Nil {
		memory.Id = uuid.New()
	}
	if memory.CreatedAt.IsZero() {
		memory.CreatedAt = time.Now()
	}
	cp := *memory

	r.mu.Lock()
	defer r.mu.Unlock()
	r.memories[memory.SessionId] = append(r.memories[memory.SessionId], &cp)
	return nil
}

func (r *StageMemoryRepository) SearchSimilar(ctx context.Context, sessionId uuid.UUID, embedding []float32, limit int) ([]*entity.StageMemory, error) {
	if limit <= 0 {
		limit = 5
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	type scored struct {
		memory *entity.StageMemory
		score  float64
	}
	var results []scored
	for _, m := range r.memories[sessionId] {
		results = append(results, scored{memory: m, score: cosineSimilarity(embedding, m.Embedding)})
	}
	sort.Slice(results, func(i, j int) bool { return results[i].score > results[j].score })

	if len(results) > limit {
		results = results[:limit]
	}
	out := make([]*entity.StageMemory, len(results))
	for i, s := range results {
		cp := *s.memory
		out[i] = &cp
	}
	return out, nil
}

func (r *StageMemoryRepository) DeleteAllBySessionId(ctx context.Context, sessionId uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.memories, sessionId)
	return nil
}

func cosineSimilarity(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
