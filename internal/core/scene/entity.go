package scene

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/zeusync/jitterball/internal/core/physics"
)

// EntityID identifies an entity inside a Scene.
type EntityID string

// NewEntityID returns a random uuid-based id.
func NewEntityID() EntityID { return EntityID(uuid.NewString()) }

// CollisionShape is the shape contacts are resolved against. It is generated
// from the entity geometry.
type CollisionShape struct {
	Radius float64
}

// PhysicsBody holds the simulation properties of an entity.
type PhysicsBody struct {
	Mass     float64
	Material physics.Material
	Mode     physics.Mode
}

// Entity is an object placed in the scene, composed of independent components.
type Entity struct {
	ID        EntityID
	Name      string
	Transform physics.Transform3D
	Geometry  physics.Sphere
	Collision *CollisionShape
	Body      *PhysicsBody
	Motion    physics.Motion
}

// NewSphere creates an entity with sphere geometry at the given position.
// Collision shape, body and motion are attached by the caller.
func NewSphere(name string, radius float64, position physics.Position3) *Entity {
	return &Entity{
		Name:      name,
		Transform: physics.Transform3D{Pos: position},
		Geometry:  physics.Sphere{Radius: radius},
	}
}

// GenerateCollisionShape derives the collision shape from the geometry.
func (e *Entity) GenerateCollisionShape() *Entity {
	e.Collision = &CollisionShape{Radius: e.Geometry.Radius}
	return e
}

func (e *Entity) WithBody(body PhysicsBody) *Entity {
	e.Body = &body
	return e
}

func (e *Entity) WithMotion(m physics.Motion) *Entity {
	e.Motion = m
	return e
}

// IsSimulated reports whether Step moves the entity.
func (e *Entity) IsSimulated() bool {
	return e.Body != nil && e.Body.Mode != physics.ModeStatic
}

// Validate checks the components Add would reject: geometry, finite position
// and motion, material ranges and a positive mass on dynamic bodies.
func (e *Entity) Validate() error {
	if err := e.Geometry.Validate(); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrInvalidEntity, e.Name, err)
	}
	if !physics.IsFinite(e.Transform.Pos) {
		return fmt.Errorf("%w: %s: position: %w", ErrInvalidEntity, e.Name, physics.ErrNonFinite)
	}
	if err := e.Motion.Validate(); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrInvalidEntity, e.Name, err)
	}
	if e.Body != nil {
		if err := e.Body.Material.Validate(); err != nil {
			return fmt.Errorf("%w: %s: %w", ErrInvalidEntity, e.Name, err)
		}
		if e.Body.Mode == physics.ModeDynamic && !(e.Body.Mass > 0) {
			return fmt.Errorf("%w: %s: %w", ErrInvalidEntity, e.Name, physics.ErrInvalidMass)
		}
	}
	return nil
}

func (e *Entity) clone() *Entity {
	c := *e
	if e.Collision != nil {
		collision := *e.Collision
		c.Collision = &collision
	}
	if e.Body != nil {
		body := *e.Body
		c.Body = &body
	}
	return &c
}

// State is a read-only snapshot of an entity, shaped for telemetry.
type State struct {
	ID              EntityID   `json:"id"`
	Name            string     `json:"name"`
	Position        [3]float64 `json:"position"`
	Radius          float64    `json:"radius"`
	Mode            string     `json:"mode"`
	LinearVelocity  [3]float64 `json:"linear_velocity"`
	AngularVelocity [3]float64 `json:"angular_velocity"`
	Speed           float64    `json:"speed"`
}

func (e *Entity) state() State {
	mode := physics.ModeStatic
	if e.Body != nil {
		mode = e.Body.Mode
	}
	return State{
		ID:              e.ID,
		Name:            e.Name,
		Position:        e.Transform.Pos,
		Radius:          e.Geometry.Radius,
		Mode:            mode.String(),
		LinearVelocity:  e.Motion.Linear,
		AngularVelocity: e.Motion.Angular,
		Speed:           e.Motion.Speed(),
	}
}
