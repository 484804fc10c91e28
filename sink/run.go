// File: sink/run.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Multiplexer loop: the only goroutine touching sockets and partial jobs.

package sink

import (
	"time"

	"github.com/pkg/errors"

	"github.com/momentics/printsink/api"
	"github.com/momentics/printsink/reactor"
)

// run services the listener and every open connection until Stop raises
// the stop flag. The flag is re-checked after each bounded readiness wait.
func (s *Sink) run(ln *reactor.Listener, done chan struct{}) {
	defer close(done)

	table := newConnTable()
	defer s.closeAll(table)

	buf := make([]byte, s.cfg.ReadBufferSize)
	lnFd := ln.Fd()

	for !s.stopping.Load() {
		fds := append([]int{lnFd}, table.fds()...)

		ready, err := s.wait(fds, s.cfg.PollInterval)
		if err != nil {
			s.loopErr = errors.Wrap(err, "readiness wait")
			s.log.Error("multiplexer stopped", "err", err)
			return
		}

		for _, r := range ready {
			if r.Fd == lnFd {
				s.accept(ln, table)
				continue
			}
			s.service(r.Fd, table, buf)
		}
	}
}

// accept takes one pending connection. Failures are transient and skipped.
func (s *Sink) accept(ln *reactor.Listener, table *connTable) {
	conn, err := ln.Accept()
	if err != nil {
		if !errors.Is(err, reactor.ErrWouldBlock) {
			s.metrics.Add(MetricAcceptErrors, 1)
			s.log.Debug("accept failed", "err", err)
		}
		return
	}

	table.insert(conn, time.Now())
	s.metrics.Add(MetricConnectionsAccepted, 1)
	s.metrics.Set(MetricConnectionsOpen, int64(table.len()))
	s.log.Debug("connection opened", "peer", conn.Peer(), "fd", conn.Fd())
}

// service performs one read on a ready connection and applies the outcome:
// data is appended, orderly close queues a job, an error drops everything.
func (s *Sink) service(fd int, table *connTable, buf []byte) {
	p, ok := table.get(fd)
	if !ok {
		return
	}

	n, err := p.conn.Read(buf)
	switch {
	case errors.Is(err, reactor.ErrWouldBlock):
		return

	case err != nil:
		table.remove(fd)
		_ = p.conn.Close()
		s.metrics.Add(MetricJobsDropped, 1)
		s.metrics.Set(MetricConnectionsOpen, int64(table.len()))
		s.log.Warn("connection failed, partial job discarded",
			"peer", p.conn.Peer(), "bytes", len(p.data), "err", err)

	case n == 0:
		table.remove(fd)
		job := api.NewJob(p.data, p.conn.Peer(), p.openedAt, time.Now())
		s.jobs.Push(job)
		_ = p.conn.Close()
		s.metrics.Add(MetricJobsCompleted, 1)
		s.metrics.Set(MetricConnectionsOpen, int64(table.len()))
		s.log.Info("job completed", "job", job.ID, "peer", job.Peer, "bytes", job.Len())

	default:
		table.appendData(fd, buf[:n])
		s.metrics.Add(MetricBytesReceived, int64(n))
	}
}

// closeAll releases connections still open at shutdown. Their bytes never
// became jobs and are discarded.
func (s *Sink) closeAll(table *connTable) {
	for _, fd := range table.fds() {
		if p, ok := table.remove(fd); ok {
			_ = p.conn.Close()
			s.log.Debug("connection closed at shutdown", "peer", p.conn.Peer(), "bytes", len(p.data))
		}
	}
	s.metrics.Set(MetricConnectionsOpen, int64(0))
}
