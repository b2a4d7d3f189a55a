package assessment

// ModerationGate decides whether a submission is held back before scoring.
// A blocked submission keeps its ratings and may be retried as is.
type ModerationGate interface {
	Blocked(assessment Ratings) bool
}

// DefaultBlockRate is the share of submissions the simulated filter rejects.
const DefaultBlockRate = 0.10

// RandomGate blocks each attempt independently with probability Rate.
type RandomGate struct {
	Rate float64
	rng  Random
}

func NewRandomGate(rate float64, rng Random) *RandomGate {
	return &RandomGate{Rate: rate, rng: rng}
}

func (g *RandomGate) Blocked(Ratings) bool {
	if g.Rate <= 0 {
		return false
	}
	return g.rng.Float64() < g.Rate
}

// GateFunc adapts a function to ModerationGate.
type GateFunc func(Ratings) bool

func (f GateFunc) Blocked(r Ratings) bool {
	return f(r)
}

// AllowAll never blocks.
var AllowAll ModerationGate = GateFunc(func(Ratings) bool { return false })
