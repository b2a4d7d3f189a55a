package service

import (
	"context"
	"encoding/json"
	"time"

	"relatescore-be/internal/dto"
	"relatescore-be/internal/entity"
	"relatescore-be/internal/mapper"
	"relatescore-be/internal/pkg/logger"
	"relatescore-be/internal/repository/unitofwork"
	"relatescore-be/pkg/events"

	"github.com/ThreeDotsLabs/watermill/message"
)

type IConsumerService interface {
	Consume(ctx context.Context) error
}

const consumerAttempts = 3

type consumerService struct {
	subscriber message.Subscriber
	topicName  string
	uowFactory unitofwork.RepositoryFactory
	mapper     *mapper.AssessmentResultMapper
	logger     logger.ILogger
	backoff    time.Duration
}

// NewConsumerService persists history messages: result snapshots,
// reflections, and their removal on reset.
func NewConsumerService(
	subscriber message.Subscriber,
	topicName string,
	uowFactory unitofwork.RepositoryFactory,
	log logger.ILogger,
) IConsumerService {
	return &consumerService{
		subscriber: subscriber,
		topicName:  topicName,
		uowFactory: uowFactory,
		mapper:     mapper.NewAssessmentResultMapper(),
		logger:     log,
		backoff:    200 * time.Millisecond,
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.subscriber.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(ctx, msg)
		}
	}()

	return nil
}

func (cs *consumerService) processMessage(ctx context.Context, msg *message.Message) {
	var payload dto.HistoryMessage
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		cs.logger.Error("ConsumerService", "Failed to unmarshal message", map[string]interface{}{"error": err})
		msg.Ack() // Redelivery cannot fix a malformed payload.
		return
	}

	var err error
	for attempt := 1; attempt <= consumerAttempts; attempt++ {
		if err = cs.apply(ctx, &payload); err == nil {
			break
		}
		cs.logger.Warn("ConsumerService", "Persisting history failed", map[string]interface{}{
			"type":       payload.Type,
			"session_id": payload.SessionId,
			"attempt":    attempt,
			"error":      err.Error(),
		})
		select {
		case <-ctx.Done():
			msg.Nack()
			return
		case <-time.After(cs.backoff * time.Duration(attempt)):
		}
	}
	if err != nil {
		cs.logger.Error("ConsumerService", "Dropping history message", map[string]interface{}{"type": payload.Type, "session_id": payload.SessionId, "error": err})
	}
	msg.Ack()
}

func (cs *consumerService) apply(ctx context.Context, payload *dto.HistoryMessage) error {
	uow := cs.uowFactory.NewUnitOfWork(ctx)

	switch payload.Type {
	case events.TypeAssessmentCompleted:
		if payload.Result == nil {
			return nil
		}
		return uow.AssessmentResultRepository().Create(ctx, cs.mapper.FromBundle(payload.SessionId, payload.Result))

	case events.TypeReflectionSaved:
		return uow.ReflectionRepository().Create(ctx, &entity.Reflection{
			SessionId: payload.SessionId,
			Text:      payload.Text,
			RGI:       payload.RGI,
			CreatedAt: payload.OccurredAt,
		})

	case events.TypeSessionReset:
		return unitofwork.Run(ctx, uow, func(tx unitofwork.UnitOfWork) error {
			if err := tx.ReflectionRepository().DeleteAllBySessionId(ctx, payload.SessionId); err != nil {
				return err
			}
			return tx.AssessmentResultRepository().DeleteAllBySessionId(ctx, payload.SessionId)
		})
	}

	cs.logger.Debug("ConsumerService", "Ignoring history message", map[string]interface{}{"type": payload.Type})
	return nil
}
