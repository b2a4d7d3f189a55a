package assessment

import (
	"math/rand/v2"
	"sync"
	"time"
)

// Random is the source behind the simulated partner draw and the
// moderation gate. *rand.Rand satisfies it.
type Random interface {
	Float64() float64
}

// LockedRandom makes a seeded *rand.Rand safe to share between sessions.
type LockedRandom struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewRandom returns a shared source. A zero seed seeds from the clock.
func NewRandom(seed uint64) *LockedRandom {
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	return &LockedRandom{rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

func (r *LockedRandom) Float64() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rng.Float64()
}

// Uniform draws from [lo, hi).
func Uniform(r Random, lo, hi float64) float64 {
	return lo + r.Float64()*(hi-lo)
}
