package service

import (
	"context"

	"relatescore-be/internal/dto"
	"relatescore-be/internal/pkg/logger"
	"relatescore-be/internal/pkg/mailer"
	"relatescore-be/pkg/flow"
)

type IInviteService interface {
	SendInviteEmail(ctx context.Context, sessionID string, req *dto.SendInviteEmailRequest) (*dto.SendInviteEmailResponse, error)
}

type inviteService struct {
	sessions   ISessionService
	controller *flow.Controller
	mailer     mailer.IEmailService
	logger     logger.ILogger
}

// NewInviteService sends invite codes by e-mail. mailer may be nil when
// SMTP is not configured.
func NewInviteService(sessions ISessionService, controller *flow.Controller, mailer mailer.IEmailService, log logger.ILogger) IInviteService {
	return &inviteService{
		sessions:   sessions,
		controller: controller,
		mailer:     mailer,
		logger:     log,
	}
}

func (s *inviteService) SendInviteEmail(ctx context.Context, sessionID string, req *dto.SendInviteEmailRequest) (*dto.SendInviteEmailResponse, error) {
	if s.mailer == nil {
		return nil, ErrMailerDisabled
	}

	session, err := s.sessions.Current(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if !session.Authenticated {
		return nil, ErrInviteUnavailable
	}
	active, err := s.controller.InviteActive(ctx, session)
	if err != nil {
		return nil, err
	}
	if !active {
		return nil, ErrInviteUnavailable
	}

	if err := s.mailer.SendInviteCode(req.Email, session.InviteCode); err != nil {
		return nil, err
	}
	s.logger.Info("InviteService", "Invite e-mailed", map[string]interface{}{"session_id": sessionID})

	return &dto.SendInviteEmailResponse{Email: req.Email, InviteCode: session.InviteCode}, nil
}
