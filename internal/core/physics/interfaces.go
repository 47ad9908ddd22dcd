package physics

//go:generate mockgen -destination=mocks/mock_body.go -package=mocks github.com/zeusync/jitterball/internal/core/physics BodyHandle,MotionUpdater

// Physics abstractions shared by the scene and the perturbation scheduler.
// The scene owns bodies; everyone else only holds a BodyHandle.

// BodyHandle is a non-owning reference to a physics body living in a scene.
// Both accessors return ErrBodyUnavailable once the body has been removed.
type BodyHandle interface {
	Motion() (Motion, error)
	SetMotion(Motion) error
}

// MotionUpdater is implemented by handles that can run a read-modify-write of
// the motion state as a single critical section relative to the physics step.
// The callback returns the new state and whether it should be written.
type MotionUpdater interface {
	UpdateMotion(fn func(Motion) (Motion, bool)) error
}
