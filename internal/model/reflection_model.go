package model

import (
	"time"

	"github.com/google/uuid"
)

type Reflection struct {
	Id        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	SessionId string    `gorm:"type:varchar(64);not null;index"`
	Text      string    `gorm:"type:text;not null"`
	RGI       float64   `gorm:"column:rgi"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

func (Reflection) TableName() string {
	return "reflections"
}
