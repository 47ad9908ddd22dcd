package physics

import "errors"

var (
	ErrBodyUnavailable = errors.New("physics body unavailable")
	ErrNonFinite       = errors.New("non-finite vector component")
	ErrInvalidMaterial = errors.New("invalid physics material")
	ErrInvalidMass     = errors.New("mass must be positive for dynamic bodies")
	ErrInvalidRadius   = errors.New("radius must be positive")
)
