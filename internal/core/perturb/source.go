package perturb

import (
	"math/rand/v2"
	"time"

	"github.com/cespare/xxhash/v2"
)

// Source supplies the random draws of a tick. A Source is only used from the
// tick goroutine and need not be safe for concurrent use.
type Source interface {
	// Coin is a fair coin flip.
	Coin() bool
	// Float64 is uniform in [0,1).
	Float64() float64
	// Uniform is uniform in [lo,hi).
	Uniform(lo, hi float64) float64
}

type pcgSource struct {
	rng *rand.Rand
}

// NewSource returns a deterministic PCG-backed source.
func NewSource(seed uint64) Source {
	return &pcgSource{rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

// NewTimeSource seeds a source from the wall clock.
func NewTimeSource() Source {
	return NewSource(uint64(time.Now().UnixNano()))
}

// SeedFromString maps a textual seed from configuration to a numeric one.
func SeedFromString(seed string) uint64 {
	return xxhash.Sum64String(seed)
}

func (s *pcgSource) Coin() bool { return s.rng.Uint64()&1 == 1 }

func (s *pcgSource) Float64() float64 { return s.rng.Float64() }

func (s *pcgSource) Uniform(lo, hi float64) float64 {
	return lo + s.rng.Float64()*(hi-lo)
}
