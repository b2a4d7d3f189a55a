package mapper

import (
	"relatescore-be/internal/entity"
	"relatescore-be/internal/model"
)

type ReflectionMapper struct{}

func NewReflectionMapper() *ReflectionMapper {
	return &ReflectionMapper{}
}

func (m *ReflectionMapper) ToEntity(r *model.Reflection) *entity.Reflection {
	if r == nil {
		return nil
	}
	return &entity.Reflection{
		Id:        r.Id,
		SessionId: r.SessionId,
		Text:      r.Text,
		RGI:       r.RGI,
		CreatedAt: r.CreatedAt,
	}
}

func (m *ReflectionMapper) ToModel(r *entity.Reflection) *model.Reflection {
	if r == nil {
		return nil
	}
	return &model.Reflection{
		Id:        r.Id,
		SessionId: r.SessionId,
		Text:      r.Text,
		RGI:       r.RGI,
		CreatedAt: r.CreatedAt,
	}
}

func (m *ReflectionMapper) ToEntities(reflections []*model.Reflection) []*entity.Reflection {
	entities := make([]*entity.Reflection, len(reflections))
	for i, r := range reflections {
		entities[i] = m.ToEntity(r)
	}
	return entities
}
