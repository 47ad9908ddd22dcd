package view

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/zeusync/jitterball/internal/core/events/bus"
	"github.com/zeusync/jitterball/internal/core/observability/log"
	"github.com/zeusync/jitterball/internal/core/perturb"
	"github.com/zeusync/jitterball/internal/core/scene"
)

const (
	EventAppeared    = "view.appeared"
	EventDisappeared = "view.disappeared"
)

// View hosts the sphere. While visible it steps the scene every frame and
// keeps one perturbation task running against the sphere's body.
type View struct {
	sphere        *scene.Entity
	frameInterval time.Duration

	scene     *scene.Scene
	scheduler *perturb.Scheduler
	clock     perturb.Clock
	publisher bus.Publisher
	logger    log.Log

	mu       sync.Mutex
	entityID scene.EntityID
	task     *perturb.Task
	frames   *frameLoop
	visible  bool
	closed   bool
}

type Option func(*View)

func WithClock(c perturb.Clock) Option {
	return func(v *View) { v.clock = c }
}

func WithPublisher(p bus.Publisher) Option {
	return func(v *View) { v.publisher = p }
}

func WithLogger(l log.Log) Option {
	return func(v *View) { v.logger = l }
}

func New(sphere *scene.Entity, frameInterval time.Duration, sc *scene.Scene, scheduler *perturb.Scheduler, opts ...Option) (*View, error) {
	if sphere == nil {
		return nil, ErrNilSphere
	}
	if frameInterval <= 0 {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFrame, frameInterval)
	}
	v := &View{
		sphere:        sphere,
		frameInterval: frameInterval,
		scene:         sc,
		scheduler:     scheduler,
		clock:         perturb.SystemClock,
		logger:        log.NewNop(),
	}
	for _, opt := range opts {
		opt(v)
	}
	v.logger = v.logger.With(log.String("component", "view"))
	return v, nil
}

// Appear adds the sphere on first use, then starts the frame loop and the
// perturbation task. Both run until Disappear, Close or the end of ctx.
// Calling it while visible does nothing; after ctx has ended it starts the
// loops again.
//
// If the scheduler cannot start, the view stays hidden but the sphere stays
// in the scene. The next Appear reuses it.
func (v *View) Appear(ctx context.Context) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.closed {
		return ErrViewClosed
	}
	if v.runningLocked() {
		return nil
	}
	// Loops ended by a cancelled context are released here.
	v.disappearLocked()

	if v.entityID == "" {
		id, err := v.scene.Add(v.sphere)
		if err != nil {
			return fmt.Errorf("add sphere: %w", err)
		}
		v.entityID = id
	}

	frames := startFrameLoop(ctx, v.clock.NewTicker(v.frameInterval), v.frameInterval, v.scene, v.logger)
	task, err := v.scheduler.Start(ctx, v.scene.Body(v.entityID))
	if err != nil {
		frames.stop()
		return fmt.Errorf("start perturbation: %w", err)
	}

	v.frames = frames
	v.task = task
	v.visible = true

	v.logger.Info("View appeared", log.String("entity_id", string(v.entityID)))
	v.publish(EventAppeared)
	return nil
}

// Disappear stops the perturbation task and the frame loop. It is idempotent.
func (v *View) Disappear() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.disappearLocked()
}

func (v *View) disappearLocked() {
	if !v.visible {
		return
	}
	v.task.Stop()
	v.frames.stop()
	v.task, v.frames = nil, nil
	v.visible = false

	v.logger.Info("View disappeared", log.String("entity_id", string(v.entityID)))
	v.publish(EventDisappeared)
}

// Close hides the view and removes the sphere from the scene. The view cannot
// appear again afterwards.
func (v *View) Close() error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.closed {
		return nil
	}
	v.disappearLocked()
	v.closed = true

	if v.entityID == "" {
		return nil
	}
	if err := v.scene.Remove(v.entityID); err != nil {
		return fmt.Errorf("remove sphere: %w", err)
	}
	return nil
}

// Visible reports whether the frame loop and the perturbation task are
// running. It turns false once the Appear context ends.
func (v *View) Visible() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.runningLocked()
}

func (v *View) runningLocked() bool {
	if !v.visible {
		return false
	}
	select {
	case <-v.task.Done():
		return false
	case <-v.frames.done:
		return false
	default:
		return true
	}
}

// EntityID is empty until the first Appear.
func (v *View) EntityID() scene.EntityID {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.entityID
}

func (v *View) publish(eventType string) {
	if v.publisher == nil {
		return
	}
	if err := v.publisher.Publish(bus.NewEvent(eventType, "view", v.entityID)); err != nil {
		v.logger.Warn("Event handler failed", log.String("event", eventType), log.Error(err))
	}
}
