package perturb

import "errors"

var (
	ErrNilTarget     = errors.New("perturbation target is nil")
	ErrAlreadyActive = errors.New("perturbation scheduler is already active")
	ErrContextDone   = errors.New("scheduling context is done")
	ErrInvalidConfig = errors.New("invalid perturbation config")
)
