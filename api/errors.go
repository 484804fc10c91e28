// Package api
// Author: momentics <momentics@gmail.com>
//
// Common error values shared by the sink, reactor and consumers.

package api

import "github.com/pkg/errors"

// Common errors used across the module.
var (
	ErrNotSupported    = errors.New("operation not supported on this platform")
	ErrAlreadyRunning  = errors.New("sink already running")
	ErrNotRunning      = errors.New("sink not running")
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrNoJob is the panic value of TakeJob when nothing is queued.
	// Callers must observe WaitForJob returning true first.
	ErrNoJob = errors.New("take on empty job queue")
)
