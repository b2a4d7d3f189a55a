package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("MODERATION_BLOCK_RATE", "")
	t.Setenv("SESSION_TTL_MINUTES", "")

	cfg := Load()
	assert.InDelta(t, 0.10, cfg.Scoring.ModerationBlockRate, 1e-9)
	assert.Equal(t, time.Hour, cfg.Session.TTL)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("MODERATION_BLOCK_RATE", "1.5")
	t.Setenv("SCORING_SEED", "42")
	t.Setenv("INVITE_STORE", "Redis")
	t.Setenv("OTEL_ENABLED", "true")
	t.Setenv("INVITE_TTL_MINUTES", "15")

	cfg := Load()
	assert.Equal(t, 1.0, cfg.Scoring.ModerationBlockRate)
	assert.Equal(t, uint64(42), cfg.Scoring.Seed)
	assert.Equal(t, "redis", cfg.Session.InviteStore)
	assert.True(t, cfg.Tracing.Enabled)
	assert.Equal(t, 15*time.Minute, cfg.Session.InviteTTL)
}
