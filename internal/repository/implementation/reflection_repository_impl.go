package implementation

import (
	"context"

	"relatescore-be/internal/entity"
	"relatescore-be/internal/mapper"
	"relatescore-be/internal/model"
	"relatescore-be/internal/repository/contract"
	"relatescore-be/internal/repository/specification"

	"gorm.io/gorm"
)

type ReflectionRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.ReflectionMapper
}

func NewReflectionRepository(db *gorm.DB) contract.ReflectionRepository {
	return &ReflectionRepositoryImpl{
		db:     db,
		mapper: mapper.NewReflectionMapper(),
	}
}

func (r *ReflectionRepositoryImpl) Create(ctx context.Context, reflection *entity.Reflection) error {
	m := r.mapper.ToModel(reflection)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*reflection = *r.mapper.ToEntity(m)
	return nil
}

func (r *ReflectionRepositoryImpl) DeleteAllBySessionId(ctx context.Context, sessionId string) error {
	return r.db.WithContext(ctx).Where("session_id = ?", sessionId).Delete(&model.Reflection{}).Error
}

func (r *ReflectionRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Reflection, error) {
	var models []*model.Reflection
	query := specification.ApplyAll(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.ToEntities(models), nil
}

func (r *ReflectionRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := specification.ApplyAll(r.db.WithContext(ctx).Model(&model.Reflection{}), specs...)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
