package dto

import "relatescore-be/pkg/assessment"

type QuestionResponse struct {
	Key      string              `json:"key"`
	Category assessment.Category `json:"category"`
	Label    string              `json:"label"`
	Index    int                 `json:"index"`
	Text     string              `json:"text"`
}

type CategoryResponse struct {
	Category assessment.Category `json:"category"`
	Label    string              `json:"label"`
	Weight   float64             `json:"weight"`
}

type QuestionBankResponse struct {
	Categories  []CategoryResponse `json:"categories"`
	Calibration []QuestionResponse `json:"calibration"`
	Assessment  []QuestionResponse `json:"assessment"`
	MinRating   int                `json:"min_rating"`
	MaxRating   int                `json:"max_rating"`
}
