package entity

import (
	"time"

	"github.com/google/uuid"
)

// SessionEvent is one append-only transcript entry. Author is either
// "user" or the stage name that produced the turn.
type SessionEvent struct {
	Id        uuid.UUID
	SessionId uuid.UUID
	Author    string
	Role      string
	Content   string
	CreatedAt time.Time
}
