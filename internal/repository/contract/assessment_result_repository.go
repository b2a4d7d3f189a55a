package contract

import (
	"context"

	"relatescore-be/internal/entity"
	"relatescore-be/internal/repository/specification"
)

type AssessmentResultRepository interface {
	Create(ctx context.Context, result *entity.AssessmentResult) error
	DeleteAllBySessionId(ctx context.Context, sessionId string) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.AssessmentResult, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.AssessmentResult, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}
