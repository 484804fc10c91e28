//go:build !linux && !darwin && !freebsd && !netbsd && !openbsd && !windows

// File: reactor/reactor_stub.go
// Author: momentics <momentics@gmail.com>
//
// Stub implementation for unsupported platforms.

package reactor

import (
	"time"

	"github.com/momentics/printsink/api"
)

// Listen returns api.ErrNotSupported on this platform.
func Listen(port, backlog int) (*Listener, error) {
	return nil, api.ErrNotSupported
}

func (l *Listener) Accept() (*Conn, error) { return nil, api.ErrNotSupported }
func (l *Listener) Close() error           { return api.ErrNotSupported }
func (c *Conn) Read(p []byte) (int, error) { return 0, api.ErrNotSupported }
func (c *Conn) Close() error               { return api.ErrNotSupported }

// Wait returns api.ErrNotSupported on this platform.
func Wait(fds []int, timeout time.Duration) ([]Readiness, error) {
	return nil, api.ErrNotSupported
}
