package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
)

type StageMemory struct {
	Id        uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	SessionId uuid.UUID       `gorm:"type:uuid;not null;index"`
	StageName string          `gorm:"type:varchar(64);not null"`
	Summary   string          `gorm:"type:text;not null"`
	Embedding pgvector.Vector `gorm:"type:vector(768)"` // text-embedding-004 / nomic dimensions
	CreatedAt time.Time       `gorm:"autoCreateTime"`
}

func (StageMemory) TableName() string {
	return "stage_memories"
}
