package dto

import (
	"fmt"
	"time"

	"relatescore-be/pkg/assessment"
	"relatescore-be/pkg/flow"
	"relatescore-be/pkg/store"
)

// ActionRequest is the JSON body of POST /session/v1/actions. Fields not
// used by Type are ignored.
type ActionRequest struct {
	Type       string         `json:"type" validate:"required,oneof=navigate set_consent set_mutual set_rating set_ratings submit_partner_code submit_assessment save_reflection generate_insight reset"`
	To         string         `json:"to,omitempty" validate:"required_if=Type navigate"`
	Value      *bool          `json:"value,omitempty"`
	Question   string         `json:"question,omitempty" validate:"required_if=Type set_rating"`
	Rating     int            `json:"rating,omitempty"`
	Ratings    map[string]int `json:"ratings,omitempty" validate:"required_if=Type set_ratings"`
	Code       string         `json:"code,omitempty" validate:"max=64"`
	Text       string         `json:"text,omitempty" validate:"max=4000"`
	KeepInvite bool           `json:"keep_invite,omitempty"`
}

// ToAction converts the body into a controller action. Malformed question
// keys are reported as invalid actions.
func (r *ActionRequest) ToAction() (flow.Action, error) {
	a := flow.Action{
		Type:       flow.ActionType(r.Type),
		To:         r.To,
		Flag:       r.Value,
		Rating:     r.Rating,
		Code:       r.Code,
		Text:       r.Text,
		KeepInvite: r.KeepInvite,
	}

	switch a.Type {
	case flow.ActionSetRating:
		key, err := assessment.ParseQuestionKey(r.Question)
		if err != nil {
			return flow.Action{}, fmt.Errorf("%w: %v", flow.ErrInvalidAction, err)
		}
		a.Question = key
	case flow.ActionSetRatings:
		a.Ratings = make(assessment.Ratings, len(r.Ratings))
		for raw, value := range r.Ratings {
			key, err := assessment.ParseQuestionKey(raw)
			if err != nil {
				return flow.Action{}, fmt.Errorf("%w: %v", flow.ErrInvalidAction, err)
			}
			a.Ratings[key] = value
		}
	}
	return a, nil
}

type ProgressResponse struct {
	CalibrationAnswered int `json:"calibration_answered"`
	CalibrationTotal    int `json:"calibration_total"`
	AssessmentAnswered  int `json:"assessment_answered"`
	AssessmentTotal     int `json:"assessment_total"`
}

// SessionResponse is the snapshot the presentation layer renders.
type SessionResponse struct {
	Id              string                   `json:"id"`
	Screen          store.Screen             `json:"screen"`
	Allowed         []store.Screen           `json:"allowed"`
	Notice          *store.Notice            `json:"notice,omitempty"`
	Authenticated   bool                     `json:"authenticated"`
	ConsentAccepted bool                     `json:"consent_accepted"`
	InviteCode      string                   `json:"invite_code,omitempty"`
	InviteActive    bool                     `json:"invite_active"`
	PartnerCode     string                   `json:"partner_code,omitempty"`
	PartnerAccepted bool                     `json:"partner_accepted"`
	UseMutual       bool                     `json:"use_mutual"`
	Calibration     assessment.Ratings       `json:"calibration"`
	Assessment      assessment.Ratings       `json:"assessment"`
	Progress        ProgressResponse         `json:"progress"`
	Results         *assessment.ResultBundle `json:"results,omitempty"`
	Insights        []assessment.Insight     `json:"insights,omitempty"`
	UpdatedAt       time.Time                `json:"updated_at"`
}

// StartSessionResponse carries the bearer token of a new session.
type StartSessionResponse struct {
	Token     string           `json:"token"`
	ExpiresAt time.Time        `json:"expires_at"`
	Session   *SessionResponse `json:"session"`
}
