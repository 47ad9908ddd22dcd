package scene

import (
	"fmt"
	"math"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/zeusync/jitterball/internal/core/events/bus"
	"github.com/zeusync/jitterball/internal/core/observability/log"
	"github.com/zeusync/jitterball/internal/core/physics"
)

const (
	EventEntityAdded   = "scene.entity.added"
	EventEntityRemoved = "scene.entity.removed"
)

// Config describes the simulated room. Zero bounds disable contact handling.
type Config struct {
	Gravity   mgl64.Vec3
	BoundsMin physics.Position3
	BoundsMax physics.Position3
}

func DefaultConfig() Config {
	return Config{
		BoundsMin: physics.Position3{-0.5, -0.5, -1.0},
		BoundsMax: physics.Position3{0.5, 0.5, 0.0},
	}
}

func (c Config) Validate() error {
	if !physics.IsFinite(c.Gravity) || !physics.IsFinite(c.BoundsMin) || !physics.IsFinite(c.BoundsMax) {
		return fmt.Errorf("%w: %w", ErrInvalidBounds, physics.ErrNonFinite)
	}
	if c.bounded() {
		for i := 0; i < 3; i++ {
			if c.BoundsMin[i] >= c.BoundsMax[i] {
				return fmt.Errorf("%w: axis %d min %g >= max %g", ErrInvalidBounds, i, c.BoundsMin[i], c.BoundsMax[i])
			}
		}
	}
	return nil
}

func (c Config) bounded() bool {
	return c.BoundsMin != (physics.Position3{}) || c.BoundsMax != (physics.Position3{})
}

// Scene registers entities and advances the simulated ones. It stands in for
// the host engine: the rest of the program only talks to it through Add,
// Remove and the BodyHandle returned by Body.
type Scene struct {
	mu       sync.RWMutex
	entities map[EntityID]*Entity

	config    Config
	publisher bus.Publisher
	logger    log.Log

	steps atomic.Uint64
}

type Option func(*Scene)

func WithPublisher(p bus.Publisher) Option {
	return func(s *Scene) { s.publisher = p }
}

func WithLogger(l log.Log) Option {
	return func(s *Scene) { s.logger = l }
}

func New(config Config, opts ...Option) (*Scene, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	s := &Scene{
		entities: make(map[EntityID]*Entity),
		config:   config,
		logger:   log.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With(log.String("component", "scene"))
	return s, nil
}

// Add registers the entity for simulation. The scene keeps its own copy, so
// later changes to e are not observed. An empty ID is assigned a new one.
func (s *Scene) Add(e *Entity) (EntityID, error) {
	if e == nil {
		return "", ErrNilEntity
	}
	if err := e.Validate(); err != nil {
		return "", err
	}

	owned := e.clone()
	if owned.ID == "" {
		owned.ID = NewEntityID()
	}

	s.mu.Lock()
	if _, exists := s.entities[owned.ID]; exists {
		s.mu.Unlock()
		return "", fmt.Errorf("%w: %s", ErrDuplicateEntity, owned.ID)
	}
	s.entities[owned.ID] = owned
	state := owned.state()
	s.mu.Unlock()

	s.logger.Info("Entity added",
		log.String("entity_id", string(owned.ID)),
		log.String("name", owned.Name),
		log.Vec3("position", owned.Transform.Pos))
	s.publish(EventEntityAdded, state)

	return owned.ID, nil
}

func (s *Scene) Remove(id EntityID) error {
	s.mu.Lock()
	e, ok := s.entities[id]
	if !ok {
		s.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrEntityNotFound, id)
	}
	delete(s.entities, id)
	state := e.state()
	s.mu.Unlock()

	s.logger.Info("Entity removed", log.String("entity_id", string(id)))
	s.publish(EventEntityRemoved, state)
	return nil
}

// Get returns a copy of the entity.
func (s *Scene) Get(id EntityID) (Entity, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entities[id]
	if !ok {
		return Entity{}, false
	}
	return *e.clone(), true
}

func (s *Scene) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entities)
}

// Steps returns how many times Step has advanced the scene.
func (s *Scene) Steps() uint64 {
	return s.steps.Load()
}

// Body returns a non-owning handle to the entity's motion. The handle does not
// keep the entity alive: once removed, every call reports
// physics.ErrBodyUnavailable.
func (s *Scene) Body(id EntityID) physics.BodyHandle {
	return &bodyHandle{scene: s, id: id}
}

// Snapshot returns the state of every entity ordered by id.
func (s *Scene) Snapshot() []State {
	s.mu.RLock()
	out := make([]State, 0, len(s.entities))
	for _, e := range s.entities {
		out = append(out, e.state())
	}
	s.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Step advances every simulated entity by dt seconds.
func (s *Scene) Step(dt float64) error {
	if !(dt > 0) || math.IsInf(dt, 0) {
		return fmt.Errorf("%w: %g", ErrInvalidStep, dt)
	}

	s.mu.Lock()
	for _, e := range s.entities {
		if !e.IsSimulated() {
			continue
		}
		s.integrate(e, dt)
	}
	s.mu.Unlock()

	s.steps.Add(1)
	return nil
}

// integrate uses semi-implicit Euler, then resolves contacts against the room
// walls. Angular velocity is carried but not integrated.
func (s *Scene) integrate(e *Entity, dt float64) {
	v := e.Motion.Linear
	if e.Body.Mode == physics.ModeDynamic {
		v = v.Add(s.config.Gravity.Mul(dt))
	}
	p := e.Transform.Pos.Add(v.Mul(dt))

	if e.Body.Mode == physics.ModeDynamic && s.config.bounded() {
		radius := e.Geometry.Radius
		if e.Collision != nil {
			radius = e.Collision.Radius
		}
		p, v = s.resolveWalls(p, v, radius, e.Body.Material)
	}

	e.Transform.Pos = p
	e.Motion.Linear = v
}

func (s *Scene) resolveWalls(p, v mgl64.Vec3, radius float64, m physics.Material) (mgl64.Vec3, mgl64.Vec3) {
	for axis := 0; axis < 3; axis++ {
		lo := s.config.BoundsMin[axis] + radius
		hi := s.config.BoundsMax[axis] - radius
		switch {
		case p[axis] < lo:
			p[axis] = lo
			if v[axis] < 0 {
				v = bounce(v, axis, m)
			}
		case p[axis] > hi:
			p[axis] = hi
			if v[axis] > 0 {
				v = bounce(v, axis, m)
			}
		}
	}
	return p, v
}

// bounce reflects the normal component scaled by restitution and removes up
// to friction times the normal impulse from the tangential velocity.
func bounce(v mgl64.Vec3, axis int, m physics.Material) mgl64.Vec3 {
	vn := v[axis]
	impulse := (1 + m.Restitution) * math.Abs(vn)

	tangent := v
	tangent[axis] = 0
	if speed := tangent.Len(); speed > 0 {
		reduced := math.Max(0, speed-m.Friction*impulse)
		tangent = tangent.Mul(reduced / speed)
	}

	tangent[axis] = -vn * m.Restitution
	return tangent
}

func (s *Scene) publish(eventType string, state State) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(bus.NewEvent(eventType, "scene", state)); err != nil {
		s.logger.Warn("Event handler failed", log.String("event", eventType), log.Error(err))
	}
}

type bodyHandle struct {
	scene *Scene
	id    EntityID
}

var (
	_ physics.BodyHandle    = (*bodyHandle)(nil)
	_ physics.MotionUpdater = (*bodyHandle)(nil)
)

func (h *bodyHandle) Motion() (physics.Motion, error) {
	h.scene.mu.RLock()
	defer h.scene.mu.RUnlock()
	e, ok := h.scene.entities[h.id]
	if !ok {
		return physics.Motion{}, physics.ErrBodyUnavailable
	}
	return e.Motion, nil
}

func (h *bodyHandle) SetMotion(m physics.Motion) error {
	if err := m.Validate(); err != nil {
		return err
	}
	h.scene.mu.Lock()
	defer h.scene.mu.Unlock()
	e, ok := h.scene.entities[h.id]
	if !ok {
		return physics.ErrBodyUnavailable
	}
	e.Motion = m
	return nil
}

// UpdateMotion holds the scene lock for the whole read-modify-write, so Step
// cannot interleave. fn must not call back into the scene.
func (h *bodyHandle) UpdateMotion(fn func(physics.Motion) (physics.Motion, bool)) error {
	h.scene.mu.Lock()
	defer h.scene.mu.Unlock()
	e, ok := h.scene.entities[h.id]
	if !ok {
		return physics.ErrBodyUnavailable
	}
	next, write := fn(e.Motion)
	if !write {
		return nil
	}
	if err := next.Validate(); err != nil {
		return err
	}
	e.Motion = next
	return nil
}
