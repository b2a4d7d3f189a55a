package nats

import (
	"encoding/json"
	"strings"
	"time"

	"relatescore-be/pkg/events"
)

// SubjectPrefix namespaces every domain event subject.
const SubjectPrefix = "relatescore.events."

// StreamName is the JetStream stream holding domain events.
const StreamName = "RELATESCORE_EVENTS"

// envelope is the wire form of an event. The type and time travel with the
// payload so consumers need not parse the subject.
type envelope struct {
	Type       string                 `json:"type"`
	OccurredAt time.Time              `json:"occurred_at"`
	Data       map[string]interface{} `json:"data"`
}

func Subject(eventType string) string {
	return SubjectPrefix + eventType
}

func encode(e events.Event) ([]byte, error) {
	return json.Marshal(envelope{
		Type:       e.EventType(),
		OccurredAt: e.Timestamp(),
		Data:       e.Payload(),
	})
}

func decode(subject string, data []byte) (events.BaseEvent, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return events.BaseEvent{}, err
	}
	if env.Type == "" {
		env.Type = strings.TrimPrefix(subject, SubjectPrefix)
	}
	if env.OccurredAt.IsZero() {
		env.OccurredAt = time.Now()
	}
	if env.Data == nil {
		env.Data = map[string]interface{}{}
	}
	return events.New(env.Type, env.Data, env.OccurredAt), nil
}
