package specification

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ByUserID filters by owning user
type ByUserID struct {
	UserID uuid.UUID
}

func (s ByUserID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("user_id = ?", s.UserID)
}

// BySessionID filters transcript rows by session
type BySessionID struct {
	SessionID uuid.UUID
}

func (s BySessionID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("session_id = ?", s.SessionID)
}

// ByAuthor filters transcript rows by the authoring agent or user
type ByAuthor struct {
	Author string
}

func (s ByAuthor) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("author = ?", s.Author)
}
