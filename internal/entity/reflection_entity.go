package entity

import (
	"time"

	"github.com/google/uuid"
)

type Reflection struct {
	Id        uuid.UUID
	SessionId string
	Text      string
	RGI       float64
	CreatedAt time.Time
}
