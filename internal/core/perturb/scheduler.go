package perturb

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/zeusync/jitterball/internal/core/events/bus"
	"github.com/zeusync/jitterball/internal/core/observability/log"
	"github.com/zeusync/jitterball/internal/core/physics"
)

const EventNudge = "perturb.nudge"

// Nudge describes one applied perturbation.
type Nudge struct {
	Tick   uint64            `json:"tick"`
	At     time.Time         `json:"at"`
	Before physics.Velocity3 `json:"before"`
	Delta  physics.Velocity3 `json:"delta"`
	After  physics.Velocity3 `json:"after"`
}

// Observer receives per-tick outcomes. Calls come from the tick goroutine.
type Observer interface {
	TickObserved()
	TickSkipped()
	NudgeApplied(n Nudge)
}

// Stats are cumulative counters since the scheduler was created.
type Stats struct {
	Ticks   uint64
	Fired   uint64
	Skipped uint64
}

// Scheduler nudges the linear velocity of one body at random, on a fixed
// clock, for as long as its Task runs. Only one Task may be active at a time.
type Scheduler struct {
	config    Config
	source    Source
	clock     Clock
	logger    log.Log
	publisher bus.Publisher
	observer  Observer

	active  atomic.Bool
	ticks   atomic.Uint64
	fired   atomic.Uint64
	skipped atomic.Uint64
}

type Option func(*Scheduler)

func WithSource(src Source) Option {
	return func(s *Scheduler) { s.source = src }
}

func WithClock(c Clock) Option {
	return func(s *Scheduler) { s.clock = c }
}

func WithLogger(l log.Log) Option {
	return func(s *Scheduler) { s.logger = l }
}

func WithPublisher(p bus.Publisher) Option {
	return func(s *Scheduler) { s.publisher = p }
}

func WithObserver(o Observer) Option {
	return func(s *Scheduler) { s.observer = o }
}

func New(config Config, opts ...Option) (*Scheduler, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	s := &Scheduler{
		config: config,
		clock:  SystemClock,
		logger: log.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.source == nil {
		s.source = NewTimeSource()
	}
	s.logger = s.logger.With(log.String("component", "perturb"))
	return s, nil
}

func (s *Scheduler) Config() Config { return s.config }

// Active reports whether a Task is currently running.
func (s *Scheduler) Active() bool { return s.active.Load() }

func (s *Scheduler) Stats() Stats {
	return Stats{
		Ticks:   s.ticks.Load(),
		Fired:   s.fired.Load(),
		Skipped: s.skipped.Load(),
	}
}

// Start begins ticking against target and returns the Task that owns the
// timer. The task ends when Stop is called or ctx is cancelled, whichever
// comes first.
func (s *Scheduler) Start(ctx context.Context, target physics.BodyHandle) (*Task, error) {
	if target == nil {
		return nil, ErrNilTarget
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrContextDone, err)
	}
	if !s.active.CompareAndSwap(false, true) {
		return nil, ErrAlreadyActive
	}

	t := &Task{
		scheduler: s,
		target:    target,
		ticker:    s.clock.NewTicker(s.config.TickInterval),
		stopChan:  make(chan struct{}),
		done:      make(chan struct{}),
	}
	go t.run(ctx)

	s.logger.Info("Perturbation scheduler started",
		log.Duration("tick_interval", s.config.TickInterval),
		log.Float64("firing_probability", s.config.FiringProbability()))
	return t, nil
}

// tick runs one read, decide, write cycle. It never fails: an unavailable
// or rejecting target just skips the tick.
func (s *Scheduler) tick(target physics.BodyHandle) {
	n := s.ticks.Add(1)
	if s.observer != nil {
		s.observer.TickObserved()
	}

	var (
		nudge Nudge
		fired bool
		err   error
	)
	decide := func(m physics.Motion) (physics.Motion, bool) {
		next, delta, ok := s.perturb(m)
		if ok {
			fired = true
			nudge = Nudge{Tick: n, Before: m.Linear, Delta: delta, After: next.Linear}
		}
		return next, ok
	}

	if updater, ok := target.(physics.MotionUpdater); ok {
		err = updater.UpdateMotion(decide)
	} else {
		var m physics.Motion
		if m, err = target.Motion(); err == nil {
			if next, write := decide(m); write {
				err = target.SetMotion(next)
			}
		}
	}

	if err != nil {
		s.skipped.Add(1)
		if s.observer != nil {
			s.observer.TickSkipped()
		}
		if !errors.Is(err, physics.ErrBodyUnavailable) {
			s.logger.Debug("Tick skipped", log.Uint64("tick", n), log.Error(err))
		}
		return
	}
	if !fired {
		return
	}

	nudge.At = time.Now()
	s.fired.Add(1)
	if s.logger.Enabled(log.LevelDebug) {
		s.logger.Debug("Nudge applied",
			log.Uint64("tick", n),
			log.Vec3("delta", nudge.Delta),
			log.Vec3("velocity", nudge.After))
	}
	if s.observer != nil {
		s.observer.NudgeApplied(nudge)
	}
	if s.publisher != nil {
		if err := s.publisher.Publish(bus.NewEvent(EventNudge, "perturb", nudge)); err != nil {
			s.logger.Warn("Nudge handler failed", log.Error(err))
		}
	}
}

// perturb draws the coin and threshold sample and, when both pass, adds a
// uniform delta on every axis. Angular velocity is carried through untouched.
func (s *Scheduler) perturb(m physics.Motion) (physics.Motion, physics.Velocity3, bool) {
	coin := s.source.Coin()
	r := s.source.Float64()
	if (s.config.CoinGate && !coin) || !(r > s.config.TriggerThreshold) {
		return m, physics.Velocity3{}, false
	}

	span := s.config.NudgeRange
	delta := physics.Velocity3{
		s.source.Uniform(-span, span),
		s.source.Uniform(-span, span),
		s.source.Uniform(-span, span),
	}

	next := m
	next.Linear = m.Linear.Add(delta)
	if limit := s.config.MaxSpeed; limit > 0 {
		if speed := next.Linear.Len(); speed > limit {
			next.Linear = next.Linear.Mul(limit / speed)
		}
	}
	return next, delta, true
}

// Task is the running side of a Scheduler. It owns the ticker.
type Task struct {
	scheduler *Scheduler
	target    physics.BodyHandle
	ticker    Ticker

	stopChan chan struct{}
	stopOnce sync.Once
	done     chan struct{}
}

func (t *Task) run(ctx context.Context) {
	defer close(t.done)
	defer t.scheduler.active.Store(false)
	defer t.ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			t.scheduler.logger.Info("Perturbation scheduler stopped by context", log.Error(ctx.Err()))
			return
		case <-t.stopChan:
			return
		case <-t.ticker.C():
			// Stop may have raced with a pending tick.
			select {
			case <-t.stopChan:
				return
			default:
			}
			t.scheduler.tick(t.target)
		}
	}
}

// Stop cancels the timer and waits for the tick goroutine to exit, so no tick
// runs after it returns. It is safe to call more than once and on a nil Task.
// It must not be called from inside a tick.
func (t *Task) Stop() {
	if t == nil {
		return
	}
	t.stopOnce.Do(func() {
		close(t.stopChan)
		t.scheduler.logger.Info("Perturbation scheduler stopped", log.Uint64("ticks", t.scheduler.ticks.Load()))
	})
	<-t.done
}

// Done is closed once the task has released its timer.
func (t *Task) Done() <-chan struct{} { return t.done }
