package service

import (
	"context"

	"relatescore-be/internal/dto"
	"relatescore-be/internal/repository/specification"
	"relatescore-be/internal/repository/unitofwork"
)

type IHistoryService interface {
	History(ctx context.Context, sessionID string, limit, offset int) (*dto.HistoryResponse, error)
}

type historyService struct {
	uowFactory unitofwork.RepositoryFactory
}

// NewHistoryService reads persisted history. A nil factory means no
// database is configured and every history is empty.
func NewHistoryService(uowFactory unitofwork.RepositoryFactory) IHistoryService {
	return &historyService{uowFactory: uowFactory}
}

func (s *historyService) History(ctx context.Context, sessionID string, limit, offset int) (*dto.HistoryResponse, error) {
	res := &dto.HistoryResponse{
		Reflections: make([]*dto.ReflectionResponse, 0),
		Results:     make([]*dto.ResultSnapshotResponse, 0),
	}
	if s.uowFactory == nil {
		return res, nil
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	bySession := specification.BySessionID{SessionID: sessionID}
	newest := specification.OrderBy{Field: "created_at", Desc: true}
	page := specification.Pagination{Limit: limit, Offset: offset}

	results, err := uow.AssessmentResultRepository().FindAll(ctx, bySession, newest, page)
	if err != nil {
		return nil, err
	}
	total, err := uow.AssessmentResultRepository().Count(ctx, bySession)
	if err != nil {
		return nil, err
	}
	reflections, err := uow.ReflectionRepository().FindAll(ctx, bySession, newest, page)
	if err != nil {
		return nil, err
	}

	for _, r := range results {
		res.Results = append(res.Results, &dto.ResultSnapshotResponse{
			Id:         r.Id,
			RGI:        r.RGI,
			Mutual:     r.Mutual,
			Categories: r.Categories,
			ComputedAt: r.ComputedAt,
		})
	}
	for _, r := range reflections {
		res.Reflections = append(res.Reflections, &dto.ReflectionResponse{
			Id:        r.Id,
			Text:      r.Text,
			RGI:       r.RGI,
			CreatedAt: r.CreatedAt,
		})
	}
	res.Total = total
	return res, nil
}
