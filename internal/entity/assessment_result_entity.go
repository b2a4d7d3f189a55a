package entity

import (
	"time"

	"relatescore-be/pkg/assessment"

	"github.com/google/uuid"
)

// AssessmentResult is one scored submission kept for the session history.
type AssessmentResult struct {
	Id         uuid.UUID
	SessionId  string
	Mutual     bool
	RGI        float64
	Categories []assessment.CategoryScore
	ComputedAt time.Time
	CreatedAt  time.Time
}
