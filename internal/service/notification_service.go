package service

import (
	"context"
	"time"

	"relatescore-be/internal/dto"
	"relatescore-be/internal/pkg/logger"
	"relatescore-be/pkg/events"
	pktNats "relatescore-be/pkg/nats"
)

// NotificationDelivery pushes real-time updates to a session.
// Implemented by the WebSocket Hub.
type NotificationDelivery interface {
	Send(sessionID string, notification dto.Notification)
}

// EventPublisher sends domain events to whoever reacts to them.
type EventPublisher interface {
	Publish(ctx context.Context, event events.Event) error
}

type NotificationService struct {
	subscriber *pktNats.Subscriber
	delivery   NotificationDelivery
	logger     logger.ILogger
}

func NewNotificationService(sub *pktNats.Subscriber, delivery NotificationDelivery, log logger.ILogger) *NotificationService {
	return &NotificationService{
		subscriber: sub,
		delivery:   delivery,
		logger:     log,
	}
}

// Start begins listening to the event bus. Without a subscriber events
// arrive through a LocalEventPublisher instead.
func (s *NotificationService) Start(ctx context.Context) {
	if s.subscriber == nil {
		return
	}
	err := s.subscriber.Subscribe(ctx, pktNats.SubjectPrefix+">", "relatescore-notifier", s.HandleEvent)
	if err != nil {
		s.logger.Error("NotificationService", "Failed to start notification subscriber", map[string]interface{}{"error": err})
		return
	}
	s.logger.Info("NotificationService", "Notification service started", nil)
}

// HandleEvent tells the other side of an invite about progress. Scores are
// never forwarded.
func (s *NotificationService) HandleEvent(_ context.Context, event events.Event) error {
	payload := event.Payload()

	switch event.EventType() {
	case events.TypeInviteAccepted:
		issuer, _ := payload["issuer_session_id"].(string)
		partner, _ := payload["session_id"].(string)
		if issuer == "" || issuer == partner {
			return nil
		}
		s.deliver(issuer, dto.Notification{
			Type:      event.EventType(),
			Title:     "Your partner connected",
			Message:   "Your invite code was accepted. You can each reflect at your own pace.",
			CreatedAt: event.Timestamp(),
		})

	case events.TypeAssessmentCompleted:
		issuer, _ := payload["invited_by"].(string)
		partner, _ := payload["session_id"].(string)
		if issuer == "" || issuer == partner {
			return nil
		}
		s.deliver(issuer, dto.Notification{
			Type:      event.EventType(),
			Title:     "Your partner finished reflecting",
			Message:   "Your partner completed their assessment.",
			Data:      map[string]interface{}{"mutual": payload["mutual"]},
			CreatedAt: event.Timestamp(),
		})

	default:
		s.logger.Debug("NotificationService", "No notification for event", map[string]interface{}{"type": event.EventType()})
	}
	return nil
}

func (s *NotificationService) deliver(sessionID string, n dto.Notification) {
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now()
	}
	if s.delivery != nil {
		s.delivery.Send(sessionID, n)
	}
	s.logger.Info("NotificationService", "Notification delivered", map[string]interface{}{"session_id": sessionID, "type": n.Type})
}

// LocalEventPublisher hands events straight to the notifier when no NATS
// server is configured.
type LocalEventPublisher struct {
	Notifier *NotificationService
}

func (p LocalEventPublisher) Publish(ctx context.Context, event events.Event) error {
	return p.Notifier.HandleEvent(ctx, event)
}
