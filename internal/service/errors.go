package service

import "errors"

var (
	ErrSessionNotFound   = errors.New("session not found")
	ErrInviteUnavailable = errors.New("no active invite code for this session")
	ErrMailerDisabled    = errors.New("e-mail delivery is not configured")
)
