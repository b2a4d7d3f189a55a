package mapper

import (
	"encoding/json"

	"relatescore-be/internal/entity"
	"relatescore-be/internal/model"
	"relatescore-be/pkg/assessment"

	"gorm.io/datatypes"
)

type AssessmentResultMapper struct{}

func NewAssessmentResultMapper() *AssessmentResultMapper {
	return &AssessmentResultMapper{}
}

func (m *AssessmentResultMapper) ToEntity(r *model.AssessmentResult) *entity.AssessmentResult {
	if r == nil {
		return nil
	}
	var categories []assessment.CategoryScore
	if len(r.Categories) > 0 {
		// A corrupt row still lists with its RGI.
		_ = json.Unmarshal(r.Categories, &categories)
	}
	return &entity.AssessmentResult{
		Id:         r.Id,
		SessionId:  r.SessionId,
		Mutual:     r.Mutual,
		RGI:        r.RGI,
		Categories: categories,
		ComputedAt: r.ComputedAt,
		CreatedAt:  r.CreatedAt,
	}
}

func (m *AssessmentResultMapper) ToModel(r *entity.AssessmentResult) (*model.AssessmentResult, error) {
	if r == nil {
		return nil, nil
	}
	categories, err := json.Marshal(r.Categories)
	if err != nil {
		return nil, err
	}
	return &model.AssessmentResult{
		Id:         r.Id,
		SessionId:  r.SessionId,
		Mutual:     r.Mutual,
		RGI:        r.RGI,
		Categories: datatypes.JSON(categories),
		ComputedAt: r.ComputedAt,
		CreatedAt:  r.CreatedAt,
	}, nil
}

func (m *AssessmentResultMapper) ToEntities(results []*model.AssessmentResult) []*entity.AssessmentResult {
	entities := make([]*entity.AssessmentResult, len(results))
	for i, r := range results {
		entities[i] = m.ToEntity(r)
	}
	return entities
}

// FromBundle builds the history row of a scored submission.
func (m *AssessmentResultMapper) FromBundle(sessionID string, b *assessment.ResultBundle) *entity.AssessmentResult {
	if b == nil {
		return nil
	}
	return &entity.AssessmentResult{
		SessionId:  sessionID,
		Mutual:     b.Mutual,
		RGI:        b.RGI,
		Categories: b.Clone().Categories,
		ComputedAt: b.ComputedAt,
	}
}
