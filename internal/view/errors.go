package view

import "errors"

var (
	ErrViewClosed   = errors.New("view is closed")
	ErrNilSphere    = errors.New("view needs a sphere entity")
	ErrInvalidFrame = errors.New("frame interval must be positive")
)
