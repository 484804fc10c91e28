// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package api

import (
	"context"
	"time"
)

// JobSource is the consumer-facing side of a sink.
// A single consumer goroutine is assumed; concurrent consumers race on order.
type JobSource interface {
	// WaitForJob blocks until a job is pending or timeout elapses and
	// reports whether one is pending. It never consumes.
	WaitForJob(timeout time.Duration) bool

	// WaitForJobContext is WaitForJob that also returns early when ctx ends.
	WaitForJobContext(ctx context.Context, timeout time.Duration) bool

	// TakeJob removes and returns the oldest pending job.
	// It panics with ErrNoJob when nothing is pending.
	TakeJob() *Job
}

// Lifecycle is implemented by components with explicit start/stop.
type Lifecycle interface {
	Start() error
	Stop() error
}
