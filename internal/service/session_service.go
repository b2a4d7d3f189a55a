package service

import (
	"context"
	"fmt"
	"time"

	"relatescore-be/internal/dto"
	"relatescore-be/internal/pkg/logger"
	"relatescore-be/internal/pkg/serverutils"
	"relatescore-be/pkg/assessment"
	"relatescore-be/pkg/events"
	"relatescore-be/pkg/flow"
	"relatescore-be/pkg/store"

	"github.com/google/uuid"
)

// SessionStore holds the current value of every live session.
type SessionStore interface {
	Save(session *store.Session)
	Get(sessionID string) (*store.Session, bool)
	Delete(sessionID string)
}

type ISessionService interface {
	Start(ctx context.Context) (*dto.StartSessionResponse, error)
	Get(ctx context.Context, sessionID string) (*dto.SessionResponse, error)
	Dispatch(ctx context.Context, sessionID string, req *dto.ActionRequest) (*dto.SessionResponse, error)
	Current(ctx context.Context, sessionID string) (*store.Session, error)
}

type SessionServiceConfig struct {
	TokenSecret string
	TokenTTL    time.Duration
	Clock       func() time.Time
}

type sessionService struct {
	sessions   SessionStore
	controller *flow.Controller
	events     EventPublisher
	history    IPublisherService
	logger     logger.ILogger
	locks      sessionLocks
	cfg        SessionServiceConfig
}

// NewSessionService wires the flow controller to storage. publisher and
// history may be nil, in which case those side effects are skipped.
func NewSessionService(
	sessions SessionStore,
	controller *flow.Controller,
	publisher EventPublisher,
	history IPublisherService,
	log logger.ILogger,
	cfg SessionServiceConfig,
) ISessionService {
	if cfg.Clock == nil {
		cfg.Clock = time.Now
	}
	return &sessionService{
		sessions:   sessions,
		controller: controller,
		events:     publisher,
		history:    history,
		logger:     log,
		cfg:        cfg,
	}
}

func (s *sessionService) Start(ctx context.Context) (*dto.StartSessionResponse, error) {
	now := s.cfg.Clock()
	session := store.NewSession(uuid.NewString(), now)

	token, err := serverutils.IssueSessionToken(s.cfg.TokenSecret, session.ID, s.cfg.TokenTTL, now)
	if err != nil {
		return nil, fmt.Errorf("issue session token: %w", err)
	}
	s.sessions.Save(session)
	s.logger.Info("SessionService", "Session started", map[string]interface{}{"session_id": session.ID})

	snapshot, err := s.snapshot(ctx, session)
	if err != nil {
		return nil, err
	}
	return &dto.StartSessionResponse{
		Token:     token,
		ExpiresAt: now.Add(s.cfg.TokenTTL),
		Session:   snapshot,
	}, nil
}

func (s *sessionService) Current(_ context.Context, sessionID string) (*store.Session, error) {
	session, ok := s.sessions.Get(sessionID)
	if !ok {
		return nil, ErrSessionNotFound
	}
	return session, nil
}

func (s *sessionService) Get(ctx context.Context, sessionID string) (*dto.SessionResponse, error) {
	session, err := s.Current(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return s.snapshot(ctx, session)
}

// Dispatch applies one action. The stored session is replaced only when
// the controller succeeds.
func (s *sessionService) Dispatch(ctx context.Context, sessionID string, req *dto.ActionRequest) (*dto.SessionResponse, error) {
	action, err := req.ToAction()
	if err != nil {
		return nil, err
	}

	unlock := s.locks.lock(sessionID)
	defer unlock()

	current, ok := s.sessions.Get(sessionID)
	if !ok {
		return nil, ErrSessionNotFound
	}

	out, err := s.controller.Apply(ctx, current, action)
	if err != nil {
		s.logger.Warn("SessionService", "Action rejected", map[string]interface{}{
			"session_id": sessionID,
			"action":     req.Type,
			"error":      err.Error(),
		})
		return nil, err
	}
	s.sessions.Save(out.Session)

	if n := out.Session.Notice; n != nil {
		s.logger.Debug("SessionService", "Notice", map[string]interface{}{"session_id": sessionID, "code": n.Code, "kind": n.Kind})
	}
	s.emit(ctx, out)

	return s.snapshot(ctx, out.Session)
}

// emit forwards events. Delivery failures are logged, never surfaced: the
// session change already happened.
func (s *sessionService) emit(ctx context.Context, out *flow.Outcome) {
	for _, e := range out.Events {
		s.logger.Info("SessionService", "Domain event", map[string]interface{}{"type": e.EventType(), "session_id": out.Session.ID})

		if s.events != nil {
			if err := s.events.Publish(ctx, e); err != nil {
				s.logger.Warn("SessionService", "Failed to publish event", map[string]interface{}{"type": e.EventType(), "error": err.Error()})
			}
		}

		if s.history == nil {
			continue
		}
		msg := historyMessage(out.Session, e)
		if msg == nil {
			continue
		}
		if err := s.history.Publish(ctx, msg); err != nil {
			s.logger.Warn("SessionService", "Failed to queue history", map[string]interface{}{"type": e.EventType(), "error": err.Error()})
		}
	}
}

func historyMessage(session *store.Session, e events.Event) *dto.HistoryMessage {
	msg := &dto.HistoryMessage{
		Type:       e.EventType(),
		SessionId:  session.ID,
		OccurredAt: e.Timestamp(),
	}
	switch e.EventType() {
	case events.TypeAssessmentCompleted:
		msg.Result = session.Results.Clone()
	case events.TypeReflectionSaved:
		msg.Text, _ = e.Payload()["text"].(string)
		msg.RGI, _ = e.Payload()["rgi"].(float64)
	case events.TypeSessionReset:
	default:
		return nil
	}
	return msg
}

func (s *sessionService) snapshot(ctx context.Context, session *store.Session) (*dto.SessionResponse, error) {
	allowed, err := s.controller.Allowed(ctx, session)
	if err != nil {
		return nil, err
	}
	active, err := s.controller.InviteActive(ctx, session)
	if err != nil {
		return nil, err
	}
	bank := s.controller.Bank()

	return &dto.SessionResponse{
		Id:              session.ID,
		Screen:          session.Screen,
		Allowed:         allowed,
		Notice:          session.Notice,
		Authenticated:   session.Authenticated,
		ConsentAccepted: session.ConsentAccepted,
		InviteCode:      session.InviteCode,
		InviteActive:    active,
		PartnerCode:     session.PartnerCode,
		PartnerAccepted: session.PartnerAccepted,
		UseMutual:       session.UseMutual,
		Calibration:     session.Calibration,
		Assessment:      session.Assessment,
		Progress: dto.ProgressResponse{
			CalibrationAnswered: session.Calibration.Answered(bank, assessment.BatteryCalibration),
			CalibrationTotal:    bank.Size(assessment.BatteryCalibration),
			AssessmentAnswered:  session.Assessment.Answered(bank, assessment.BatteryAssessment),
			AssessmentTotal:     bank.Size(assessment.BatteryAssessment),
		},
		Results:   session.Results,
		Insights:  session.Insights,
		UpdatedAt: session.UpdatedAt,
	}, nil
}
