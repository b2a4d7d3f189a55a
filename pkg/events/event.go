package events

import "time"

// Event defines the contract for all system events.
type Event interface {
	// EventType returns the unique code for this event (e.g., "USER_LOGIN").
	EventType() string

	// Payload returns the data associated with the event.
	Payload() map[string]interface{}

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

// BaseEvent helps embed common logic if needed,
// strictly creating valid implementations is preferred though.
type BaseEvent struct {
	Type       string
	Data       map[string]interface{}
	OccurredAt time.Time
}

func (e BaseEvent) EventType() string {
	return e.Type
}

func (e BaseEvent) Payload() map[string]interface{} {
	return e.Data
}

func (e BaseEvent) Timestamp() time.Time {
	return e.OccurredAt
}

// Event codes emitted by the wizard.
const (
	TypeInviteIssued        = "INVITE_ISSUED"
	TypeInviteAccepted      = "INVITE_ACCEPTED"
	TypeAssessmentCompleted = "ASSESSMENT_COMPLETED"
	TypeReflectionSaved     = "REFLECTION_SAVED"
	TypeSessionReset        = "SESSION_RESET"
)

// New builds a BaseEvent stamped with the given time.
func New(eventType string, data map[string]interface{}, at time.Time) BaseEvent {
	return BaseEvent{Type: eventType, Data: data, OccurredAt: at}
}
