package contract

import (
	"context"

	"relatescore-be/internal/entity"
	"relatescore-be/internal/repository/specification"
)

type ReflectionRepository interface {
	Create(ctx context.Context, reflection *entity.Reflection) error
	DeleteAllBySessionId(ctx context.Context, sessionId string) error
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Reflection, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}
