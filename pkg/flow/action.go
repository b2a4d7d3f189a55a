package flow

import (
	"errors"

	"relatescore-be/pkg/assessment"
)

// ErrInvalidAction marks malformed action payloads (bad rating value, wrong
// battery, unknown action type). These are client bugs, not user mistakes.
var ErrInvalidAction = errors.New("invalid action")

// ActionType names one inbound user action.
type ActionType string

const (
	ActionNavigate          ActionType = "navigate"
	ActionSetConsent        ActionType = "set_consent"
	ActionSetMutual         ActionType = "set_mutual"
	ActionSetRating         ActionType = "set_rating"
	ActionSetRatings        ActionType = "set_ratings"
	ActionSubmitPartnerCode ActionType = "submit_partner_code"
	ActionSubmitAssessment  ActionType = "submit_assessment"
	ActionSaveReflection    ActionType = "save_reflection"
	ActionGenerateInsight   ActionType = "generate_insight"
	ActionReset             ActionType = "reset"
)

// Action is one inbound event with its payload. Only the fields relevant
// to Type are read.
type Action struct {
	Type ActionType

	// navigate
	To string

	// set_consent, set_mutual. Nil toggles the flag.
	Flag *bool

	// set_rating
	Question assessment.QuestionKey
	Rating   int

	// set_ratings
	Ratings assessment.Ratings

	// submit_partner_code
	Code string

	// save_reflection, generate_insight
	Text string

	// reset
	KeepInvite bool
}

func Navigate(to string) Action {
	return Action{Type: ActionNavigate, To: to}
}

func SetRating(key assessment.QuestionKey, value int) Action {
	return Action{Type: ActionSetRating, Question: key, Rating: value}
}

func SetFlag(t ActionType, v bool) Action {
	return Action{Type: t, Flag: &v}
}
