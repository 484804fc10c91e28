// File: reactor/reactor.go
// Author: momentics <momentics@gmail.com>
//
// Platform-neutral readiness types shared by the poll implementations.

package reactor

import "github.com/pkg/errors"

// DefaultBacklog is the listen(2) backlog used when none is configured.
const DefaultBacklog = 10

// ErrWouldBlock reports that a non-blocking accept or read had nothing to do
// this round. It is not a failure of the descriptor.
var ErrWouldBlock = errors.New("reactor: operation would block")

// Readiness is one descriptor reported by Wait.
type Readiness struct {
	Fd       int
	Readable bool
	Hangup   bool
	Error    bool
}

// Listener is a TCP socket listening on the loopback interface.
type Listener struct {
	fd   int
	port int
}

// Fd returns the listening descriptor.
func (l *Listener) Fd() int { return l.fd }

// Port returns the bound port, resolved when 0 was requested.
func (l *Listener) Port() int { return l.port }

// Conn is an accepted client connection.
type Conn struct {
	fd   int
	peer string
}

// Fd returns the connection descriptor, which identifies the connection.
func (c *Conn) Fd() int { return c.fd }

// Peer returns the remote address as host:port.
func (c *Conn) Peer() string { return c.peer }
