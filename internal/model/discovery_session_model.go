package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type DiscoverySession struct {
	Id        uuid.UUID         `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserId    uuid.UUID         `gorm:"type:uuid;not null;index"` // User ownership for data isolation
	UserName  string            `gorm:"type:text"`
	UserEmail string            `gorm:"type:text"`
	Language  string            `gorm:"type:varchar(16);default:'en'"`
	Title     string            `gorm:"type:text;not null"`
	State     datatypes.JSONMap `gorm:"type:jsonb"`
	CreatedAt time.Time         `gorm:"autoCreateTime"`
	UpdatedAt time.Time         `gorm:"autoUpdateTime"`
	DeletedAt gorm.DeletedAt    `gorm:"index"`
}

func (DiscoverySession) TableName() string {
	return "discovery_sessions"
}
