package flow

import (
	"context"
	"crypto/rand"
	"errors"
	"math/big"
	"strings"
)

const (
	InviteCodeLength   = 8
	inviteCodeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
)

var ErrInviteCodeTaken = errors.New("invite code already issued")

// InviteRegistry is the shared lookup from invite code to the issuing
// session. Implementations must be safe for concurrent use; it is the only
// state shared between sessions.
type InviteRegistry interface {
	// Issue registers a new code. Returns ErrInviteCodeTaken on collision.
	Issue(ctx context.Context, code, sessionID string) error
	// Claim consumes a code and returns its issuer. ok is false when the
	// code is unknown, expired or already claimed.
	Claim(ctx context.Context, code, claimantID string) (issuerID string, ok bool, err error)
	// Revoke drops a code if it is still owned by sessionID.
	Revoke(ctx context.Context, code, sessionID string) error
	// Owner returns the issuing session of an active code.
	Owner(ctx context.Context, code string) (sessionID string, ok bool, err error)
	// Any reports whether at least one code is active.
	Any(ctx context.Context) (bool, error)
}

// CodeGenerator produces candidate invite codes.
type CodeGenerator func() (string, error)

// GenerateInviteCode returns 8 random upper-case alphanumerics.
func GenerateInviteCode() (string, error) {
	max := big.NewInt(int64(len(inviteCodeAlphabet)))
	var sb strings.Builder
	sb.Grow(InviteCodeLength)
	for i := 0; i < InviteCodeLength; i++ {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		sb.WriteByte(inviteCodeAlphabet[n.Int64()])
	}
	return sb.String(), nil
}

// NormalizeCode trims surrounding whitespace and upper-cases a typed code.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
