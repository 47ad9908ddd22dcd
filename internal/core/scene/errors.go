package scene

import "errors"

var (
	ErrNilEntity       = errors.New("nil entity")
	ErrDuplicateEntity = errors.New("entity already in scene")
	ErrEntityNotFound  = errors.New("entity not found")
	ErrInvalidEntity   = errors.New("invalid entity")
	ErrInvalidStep     = errors.New("step duration must be positive")
	ErrInvalidBounds   = errors.New("invalid scene bounds")
)
