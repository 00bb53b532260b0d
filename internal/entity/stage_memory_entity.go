package entity

import (
	"time"

	"github.com/google/uuid"
)

// StageMemory is an embedded summary of a completed stage, recalled into
// later stage instructions.
type StageMemory struct {
	Id        uuid.UUID
	SessionId uuid.UUID
	StageName string
	Summary   string
	Embedding []float32
	CreatedAt time.Time
}
