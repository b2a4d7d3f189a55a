package memory

import (
	"context"
	"sync"
	"testing"
	"time"

	"relatescore-be/pkg/flow"
	"relatescore-be/pkg/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionRepository(t *testing.T) {
	repo := NewSessionRepository(time.Minute)
	s := store.NewSession("abc", time.Now())

	_, ok := repo.Get("abc")
	assert.False(t, ok)

	repo.Save(s)
	got, ok := repo.Get("abc")
	require.True(t, ok)
	assert.Same(t, s, got)
	assert.Equal(t, 1, repo.Count())

	repo.Delete("abc")
	_, ok = repo.Get("abc")
	assert.False(t, ok)
}

func TestInviteRegistryLifecycle(t *testing.T) {
	ctx := context.Background()
	reg := NewInviteRegistry(time.Minute)

	active, err := reg.Any(ctx)
	require.NoError(t, err)
	assert.False(t, active)

	require.NoError(t, reg.Issue(ctx, "AB12CD34", "issuer"))
	assert.ErrorIs(t, reg.Issue(ctx, "AB12CD34", "other"), flow.ErrInviteCodeTaken)

	active, _ = reg.Any(ctx)
	assert.True(t, active)

	owner, ok, err := reg.Owner(ctx, "AB12CD34")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "issuer", owner)

	require.NoError(t, reg.Revoke(ctx, "AB12CD34", "not-the-owner"))
	_, ok, _ = reg.Owner(ctx, "AB12CD34")
	assert.True(t, ok)

	issuer, ok, err := reg.Claim(ctx, "AB12CD34", "partner")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "issuer", issuer)

	_, ok, _ = reg.Claim(ctx, "AB12CD34", "late")
	assert.False(t, ok)

	active, _ = reg.Any(ctx)
	assert.False(t, active, "claiming the last code leaves no active invite")
}

func TestInviteRegistryAnyIgnoresUnpurgedExpiry(t *testing.T) {
	ctx := context.Background()
	reg := NewInviteRegistry(20 * time.Millisecond)
	require.NoError(t, reg.Issue(ctx, "AB12CD34", "issuer"))

	time.Sleep(40 * time.Millisecond)

	// The janitor runs every ten minutes, so the expired entry is still stored.
	assert.Equal(t, 1, reg.cache.ItemCount())
	active, err := reg.Any(ctx)
	require.NoError(t, err)
	assert.False(t, active)
}

func TestInviteRegistryExpiry(t *testing.T) {
	ctx := context.Background()
	reg := NewInviteRegistry(20 * time.Millisecond)
	require.NoError(t, reg.Issue(ctx, "AB12CD34", "issuer"))

	time.Sleep(40 * time.Millisecond)

	_, ok, _ := reg.Claim(ctx, "AB12CD34", "partner")
	assert.False(t, ok)
	active, _ := reg.Any(ctx)
	assert.False(t, active)
}

func TestInviteRegistryClaimIsExclusive(t *testing.T) {
	ctx := context.Background()
	reg := NewInviteRegistry(time.Minute)
	require.NoError(t, reg.Issue(ctx, "AB12CD34", "issuer"))

	var wg sync.WaitGroup
	var mu sync.Mutex
	wins := 0
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, ok, _ := reg.Claim(ctx, "AB12CD34", "partner"); ok {
				mu.Lock()
				wins++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, wins)
}
