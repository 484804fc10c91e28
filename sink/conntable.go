// File: sink/conntable.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package sink

import (
	"time"

	"github.com/momentics/printsink/reactor"
)

// pendingJob is one open connection and the bytes it has delivered so far.
type pendingJob struct {
	conn     *reactor.Conn
	data     []byte
	openedAt time.Time
}

// connTable maps connection descriptors to their partial jobs. It belongs to
// the multiplexer goroutine and is never shared, so it carries no lock.
// Buffers grow without a cap and connections are never timed out.
type connTable struct {
	entries map[int]*pendingJob
}

func newConnTable() *connTable {
	return &connTable{entries: make(map[int]*pendingJob)}
}

// insert registers a freshly accepted connection.
func (t *connTable) insert(c *reactor.Conn, now time.Time) {
	t.entries[c.Fd()] = &pendingJob{conn: c, openedAt: now}
}

// get returns the entry for fd, if open.
func (t *connTable) get(fd int) (*pendingJob, bool) {
	p, ok := t.entries[fd]
	return p, ok
}

// appendData adds bytes in arrival order.
func (t *connTable) appendData(fd int, b []byte) {
	if p, ok := t.entries[fd]; ok {
		p.data = append(p.data, b...)
	}
}

// remove drops the entry for fd and returns it. Removal happens once per
// connection; later calls report false.
func (t *connTable) remove(fd int) (*pendingJob, bool) {
	p, ok := t.entries[fd]
	if ok {
		delete(t.entries, fd)
	}
	return p, ok
}

// fds lists the open connection descriptors in unspecified order.
func (t *connTable) fds() []int {
	out := make([]int, 0, len(t.entries))
	for fd := range t.entries {
		out = append(out, fd)
	}
	return out
}

func (t *connTable) len() int { return len(t.entries) }
