package perturb

import (
	"sync"
	"time"

	"github.com/zeusync/jitterball/internal/core/physics"
)

// scriptedSource replays fixed draws. Running out of draws panics so a test
// notices an unexpected extra draw.
type scriptedSource struct {
	coins    []bool
	scalars  []float64
	uniforms []float64
}

func (s *scriptedSource) Coin() bool {
	c := s.coins[0]
	s.coins = s.coins[1:]
	return c
}

func (s *scriptedSource) Float64() float64 {
	f := s.scalars[0]
	s.scalars = s.scalars[1:]
	return f
}

func (s *scriptedSource) Uniform(lo, hi float64) float64 {
	u := s.uniforms[0]
	s.uniforms = s.uniforms[1:]
	if u < lo || u > hi {
		panic("scripted uniform outside requested range")
	}
	return u
}

// manualClock hands out tickers whose ticks are sent by the test.
type manualClock struct {
	mu      sync.Mutex
	tickers []*manualTicker
}

func (c *manualClock) NewTicker(time.Duration) Ticker {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &manualTicker{ch: make(chan time.Time), stopped: make(chan struct{})}
	c.tickers = append(c.tickers, t)
	return t
}

func (c *manualClock) last() *manualTicker {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.tickers[len(c.tickers)-1]
}

type manualTicker struct {
	ch       chan time.Time
	stopOnce sync.Once
	stopped  chan struct{}
}

func (t *manualTicker) C() <-chan time.Time { return t.ch }

func (t *manualTicker) Stop() { t.stopOnce.Do(func() { close(t.stopped) }) }

// fire delivers one tick and reports whether the task received it.
func (t *manualTicker) fire(timeout time.Duration) bool {
	select {
	case t.ch <- time.Now():
		return true
	case <-t.stopped:
		return false
	case <-time.After(timeout):
		return false
	}
}

// memoryBody is a plain BodyHandle without MotionUpdater.
type memoryBody struct {
	mu      sync.Mutex
	motion  physics.Motion
	gone    bool
	writes  int
	lastSet physics.Motion
}

func (b *memoryBody) Motion() (physics.Motion, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.gone {
		return physics.Motion{}, physics.ErrBodyUnavailable
	}
	return b.motion, nil
}

func (b *memoryBody) SetMotion(m physics.Motion) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.gone {
		return physics.ErrBodyUnavailable
	}
	b.writes++
	b.motion = m
	b.lastSet = m
	return nil
}

func (b *memoryBody) snapshot() (physics.Motion, int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.motion, b.writes
}

type countingObserver struct {
	mu      sync.Mutex
	ticks   int
	skipped int
	nudges  []Nudge
}

func (o *countingObserver) TickObserved() {
	o.mu.Lock()
	o.ticks++
	o.mu.Unlock()
}

func (o *countingObserver) TickSkipped() {
	o.mu.Lock()
	o.skipped++
	o.mu.Unlock()
}

func (o *countingObserver) NudgeApplied(n Nudge) {
	o.mu.Lock()
	o.nudges = append(o.nudges, n)
	o.mu.Unlock()
}
