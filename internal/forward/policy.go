package forward

import (
	"errors"
	"math"
	"math/rand"
)

var (
	ErrBaseProbability = errors.New("base probability must be in (0, 1]")
	ErrDecayFactor     = errors.New("decay factor must be in (0, 1)")
	ErrFanout          = errors.New("fanout must be at least 1")
)

// Policy holds the forwarding parameters for one node. These determine
// how aggressively the cluster floods: a decay factor close to 1 with
// fanout >= 2 gives near-total coverage, a small decay factor dies out
// after a few hops.
type Policy struct {
	BaseProbability float64
	DecayFactor     float64
	Fanout          int
}

// New validates the parameters and returns a Policy. Invalid
// parameters are construction-time failures, never runtime ones.
func New(baseProbability, decayFactor float64, fanout int) (Policy, error) {
	if baseProbability <= 0 || baseProbability > 1 {
		return Policy{}, ErrBaseProbability
	}
	if decayFactor <= 0 || decayFactor >= 1 {
		return Policy{}, ErrDecayFactor
	}
	if fanout < 1 {
		return Policy{}, ErrFanout
	}
	return Policy{
		BaseProbability: baseProbability,
		DecayFactor:     decayFactor,
		Fanout:          fanout,
	}, nil
}

// Probability returns the forwarding probability for a message that
// has already been relayed relayCount times. It equals BaseProbability
// at relayCount zero and decreases strictly with every relay.
func (p Policy) Probability(relayCount uint32) float64 {
	return p.BaseProbability * math.Pow(p.DecayFactor, float64(relayCount))
}

// Decide draws one uniform value and reports whether the message
// should be relayed further. Callers make at most one draw per
// accepted message.
func (p Policy) Decide(relayCount uint32, rng *rand.Rand) bool {
	return rng.Float64() < p.Probability(relayCount)
}
