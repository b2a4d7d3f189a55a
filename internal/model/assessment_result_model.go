package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type AssessmentResult struct {
	Id         uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	SessionId  string         `gorm:"type:varchar(64);not null;index"`
	Mutual     bool           `gorm:"not null;default:false"`
	RGI        float64        `gorm:"column:rgi;not null"`
	Categories datatypes.JSON `gorm:"type:jsonb;not null"`
	ComputedAt time.Time      `gorm:"not null"`
	CreatedAt  time.Time      `gorm:"autoCreateTime"`
}

func (AssessmentResult) TableName() string {
	return "assessment_results"
}
