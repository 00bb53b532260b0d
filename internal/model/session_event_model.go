package model

import (
	"time"

	"github.com/google/uuid"
)

// SessionEvent rows are append-only; there is no soft delete because the
// transcript is the audit trail.
type SessionEvent struct {
	Id        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	SessionId uuid.UUID `gorm:"type:uuid;not null;index:idx_session_events_session"`
	Author    string    `gorm:"type:varchar(64);not null;index:idx_session_events_author"`
	Role      string    `gorm:"type:varchar(16);not null"`
	Content   string    `gorm:"type:text;not null"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

func (SessionEvent) TableName() string {
	return "session_events"
}
