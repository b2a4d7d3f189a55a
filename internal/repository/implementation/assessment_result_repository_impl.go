package implementation

import (
	"context"
	"errors"

	"relatescore-be/internal/entity"
	"relatescore-be/internal/mapper"
	"relatescore-be/internal/model"
	"relatescore-be/internal/repository/contract"
	"relatescore-be/internal/repository/specification"

	"gorm.io/gorm"
)

type AssessmentResultRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.AssessmentResultMapper
}

func NewAssessmentResultRepository(db *gorm.DB) contract.AssessmentResultRepository {
	return &AssessmentResultRepositoryImpl{
		db:     db,
		mapper: mapper.NewAssessmentResultMapper(),
	}
}

func (r *AssessmentResultRepositoryImpl) Create(ctx context.Context, result *entity.AssessmentResult) error {
	m, err := r.mapper.ToModel(result)
	if err != nil {
		return err
	}
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*result = *r.mapper.ToEntity(m)
	return nil
}

func (r *AssessmentResultRepositoryImpl) DeleteAllBySessionId(ctx context.Context, sessionId string) error {
	return r.db.WithContext(ctx).Where("session_id = ?", sessionId).Delete(&model.AssessmentResult{}).Error
}

func (r *AssessmentResultRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.AssessmentResult, error) {
	var m model.AssessmentResult
	query := specification.ApplyAll(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *AssessmentResultRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.AssessmentResult, error) {
	var models []*model.AssessmentResult
	query := specification.ApplyAll(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.ToEntities(models), nil
}

func (r *AssessmentResultRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := specification.ApplyAll(r.db.WithContext(ctx).Model(&model.AssessmentResult{}), specs...)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
