package service

import (
	"relatescore-be/internal/dto"
	"relatescore-be/pkg/assessment"
)

type IQuestionService interface {
	Bank() *dto.QuestionBankResponse
}

type questionService struct {
	bank *dto.QuestionBankResponse
}

// NewQuestionService renders the bank once; it never changes at runtime.
func NewQuestionService(bank *assessment.QuestionBank) IQuestionService {
	res := &dto.QuestionBankResponse{
		Categories:  make([]dto.CategoryResponse, 0, len(assessment.Categories)),
		Calibration: questions(bank, assessment.BatteryCalibration),
		Assessment:  questions(bank, assessment.BatteryAssessment),
		MinRating:   assessment.MinRating,
		MaxRating:   assessment.MaxRating,
	}
	for _, cat := range assessment.Categories {
		res.Categories = append(res.Categories, dto.CategoryResponse{
			Category: cat,
			Label:    cat.Label(),
			Weight:   cat.Weight(),
		})
	}
	return &questionService{bank: res}
}

func questions(bank *assessment.QuestionBank, battery assessment.Battery) []dto.QuestionResponse {
	qs := bank.Questions(battery)
	out := make([]dto.QuestionResponse, 0, len(qs))
	for _, q := range qs {
		out = append(out, dto.QuestionResponse{
			Key:      q.Key.String(),
			Category: q.Key.Category,
			Label:    q.Key.Category.Label(),
			Index:    q.Key.Index,
			Text:     q.Text,
		})
	}
	return out
}

func (s *questionService) Bank() *dto.QuestionBankResponse {
	return s.bank
}
