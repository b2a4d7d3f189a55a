package unitofwork

import (
	"context"

	"relatescore-be/internal/repository/contract"
)

type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	AssessmentResultRepository() contract.AssessmentResultRepository
	ReflectionRepository() contract.ReflectionRepository
}

// Run executes fn inside a transaction, rolling back when fn fails.
func Run(ctx context.Context, uow UnitOfWork, fn func(UnitOfWork) error) error {
	if err := uow.Begin(ctx); err != nil {
		return err
	}
	if err := fn(uow); err != nil {
		_ = uow.Rollback()
		return err
	}
	return uow.Commit()
}
