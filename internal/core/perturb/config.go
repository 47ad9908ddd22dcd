package perturb

import (
	"fmt"
	"math"
	"time"
)

const (
	DefaultTickInterval     = time.Second / 60
	DefaultTriggerThreshold = 0.995
	DefaultNudgeRange       = 0.03
)

// Config controls how often the scheduler ticks and how it nudges.
//
// A tick fires when the coin comes up true (if CoinGate is set) and a uniform
// draw in [0,1) exceeds TriggerThreshold. With the defaults that is
// 0.5 * 0.005 = 0.0025 per tick.
type Config struct {
	TickInterval     time.Duration
	TriggerThreshold float64
	CoinGate         bool
	// NudgeRange bounds each axis delta to [-NudgeRange, NudgeRange].
	NudgeRange float64
	// MaxSpeed clamps the nudged linear speed. Zero leaves speed unbounded.
	MaxSpeed float64
}

func DefaultConfig() Config {
	return Config{
		TickInterval:     DefaultTickInterval,
		TriggerThreshold: DefaultTriggerThreshold,
		CoinGate:         true,
		NudgeRange:       DefaultNudgeRange,
	}
}

// FiringProbability is the designed per-tick probability of a nudge.
func (c Config) FiringProbability() float64 {
	p := 1 - c.TriggerThreshold
	if c.CoinGate {
		p *= 0.5
	}
	return p
}

func (c Config) Validate() error {
	if c.TickInterval <= 0 {
		return fmt.Errorf("%w: tick interval %v", ErrInvalidConfig, c.TickInterval)
	}
	if math.IsNaN(c.TriggerThreshold) || c.TriggerThreshold < 0 || c.TriggerThreshold >= 1 {
		return fmt.Errorf("%w: trigger threshold %g outside [0,1)", ErrInvalidConfig, c.TriggerThreshold)
	}
	if math.IsNaN(c.NudgeRange) || math.IsInf(c.NudgeRange, 0) || c.NudgeRange < 0 {
		return fmt.Errorf("%w: nudge range %g", ErrInvalidConfig, c.NudgeRange)
	}
	if math.IsNaN(c.MaxSpeed) || math.IsInf(c.MaxSpeed, 0) || c.MaxSpeed < 0 {
		return fmt.Errorf("%w: max speed %g", ErrInvalidConfig, c.MaxSpeed)
	}
	return nil
}
