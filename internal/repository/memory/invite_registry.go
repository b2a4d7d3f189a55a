package memory

import (
	"context"
	"sync"
	"time"

	"relatescore-be/pkg/flow"

	"github.com/patrickmn/go-cache"
)

// InviteRegistry is the single-process invite lookup. Codes expire after
// ttl and are removed once claimed.
type InviteRegistry struct {
	mu    sync.Mutex
	cache *cache.Cache
}

func NewInviteRegistry(ttl time.Duration) *InviteRegistry {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &InviteRegistry{cache: cache.New(ttl, 10*time.Minute)}
}

func (r *InviteRegistry) Issue(_ context.Context, code, sessionID string) error {
	if err := r.cache.Add(code, sessionID, cache.DefaultExpiration); err != nil {
		return flow.ErrInviteCodeTaken
	}
	return nil
}

func (r *InviteRegistry) Claim(_ context.Context, code, _ string) (string, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	x, found := r.cache.Get(code)
	if !found {
		return "", false, nil
	}
	r.cache.Delete(code)
	return x.(string), true, nil
}

func (r *InviteRegistry) Revoke(_ context.Context, code, sessionID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if x, found := r.cache.Get(code); found && x.(string) == sessionID {
		r.cache.Delete(code)
	}
	return nil
}

func (r *InviteRegistry) Owner(_ context.Context, code string) (string, bool, error) {
	if x, found := r.cache.Get(code); found {
		return x.(string), true, nil
	}
	return "", false, nil
}

// Any runs on every partner_entry check. ItemCount is constant time but
// also counts expired codes the janitor has not purged yet, so a non-zero
// count is confirmed with Items, which copies only unexpired entries.
func (r *InviteRegistry) Any(context.Context) (bool, error) {
	if r.cache.ItemCount() == 0 {
		return false, nil
	}
	return len(r.cache.Items()) > 0, nil
}
