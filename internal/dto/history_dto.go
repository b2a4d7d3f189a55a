package dto

import (
	"time"

	"relatescore-be/pkg/assessment"

	"github.com/google/uuid"
)

type ReflectionResponse struct {
	Id        uuid.UUID `json:"id"`
	Text      string    `json:"text"`
	RGI       float64   `json:"rgi"`
	CreatedAt time.Time `json:"created_at"`
}

type ResultSnapshotResponse struct {
	Id         uuid.UUID                  `json:"id"`
	RGI        float64                    `json:"rgi"`
	Mutual     bool                       `json:"mutual"`
	Categories []assessment.CategoryScore `json:"categories"`
	ComputedAt time.Time                  `json:"computed_at"`
}

type HistoryResponse struct {
	Reflections []*ReflectionResponse     `json:"reflections"`
	Results     []*ResultSnapshotResponse `json:"results"`
	Total       int64                     `json:"total_results"`
}

// HistoryMessage is the in-process job persisting a session event.
type HistoryMessage struct {
	Type       string                   `json:"type"`
	SessionId  string                   `json:"session_id"`
	Text       string                   `json:"text,omitempty"`
	RGI        float64                  `json:"rgi,omitempty"`
	Result     *assessment.ResultBundle `json:"result,omitempty"`
	OccurredAt time.Time                `json:"occurred_at"`
}
