package telemetry

import "errors"

var (
	ErrServerAlreadyRunning = errors.New("telemetry server is already running")
	ErrServerNotRunning     = errors.New("telemetry server is not running")
	ErrInvalidConfig        = errors.New("invalid telemetry configuration")
	ErrListenerFailed       = errors.New("failed to create listener")
)
