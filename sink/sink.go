// File: sink/sink.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package sink

import (
	"context"
	"log/slog"
	"net"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"

	"github.com/momentics/printsink/api"
	"github.com/momentics/printsink/control"
	"github.com/momentics/printsink/internal/concurrency"
	"github.com/momentics/printsink/internal/logging"
	"github.com/momentics/printsink/reactor"
)

// Metric keys published through Stats.
const (
	MetricConnectionsAccepted = "connections_accepted"
	MetricConnectionsOpen     = "connections_open"
	MetricAcceptErrors        = "accept_errors"
	MetricJobsCompleted       = "jobs_completed"
	MetricJobsDropped         = "jobs_dropped"
	MetricBytesReceived       = "bytes_received"
)

// Sink is a loopback print sink. The zero value is not usable; call New.
type Sink struct {
	cfg     *Config
	log     *slog.Logger
	jobs    *concurrency.NotifyQueue[*api.Job]
	metrics *control.MetricsRegistry
	probes  *control.DebugProbes
	wait    func(fds []int, timeout time.Duration) ([]reactor.Readiness, error)

	mu       sync.Mutex // guards lifecycle fields below
	running  bool
	port     int
	ln       *reactor.Listener
	done     chan struct{}
	stopping atomic.Bool
	loopErr  error // written by the loop before done is closed
}

var (
	_ api.JobSource = (*Sink)(nil)
	_ api.Lifecycle = (*Sink)(nil)
	_ api.Control   = (*Sink)(nil)
)

// New builds a stopped sink. A nil cfg means DefaultConfig.
func New(cfg *Config, opts ...Option) *Sink {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	c := *cfg
	s := &Sink{
		cfg:     &c,
		log:     logging.Discard(),
		jobs:    concurrency.NewNotifyQueue[*api.Job](),
		metrics: control.NewMetricsRegistry(),
		probes:  control.NewDebugProbes(),
		wait:    reactor.Wait,
		port:    c.Port,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.cfg.normalize()

	control.RegisterPlatformProbes(s.probes)
	s.probes.RegisterProbe("queue.depth", func() any {
		return s.jobs.Len()
	})
	s.probes.RegisterProbe("sink.running", func() any {
		return s.Running()
	})
	return s
}

// Start builds a sink on port and starts it.
func Start(port int, opts ...Option) (*Sink, error) {
	cfg := DefaultConfig()
	cfg.Port = port
	s := New(cfg, opts...)
	if err := s.Start(); err != nil {
		return nil, err
	}
	return s, nil
}

// Start binds the loopback listener and launches the multiplexer goroutine.
// Bind or listen failures are returned; a process that cannot run without
// the sink should treat them as fatal.
func (s *Sink) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return api.ErrAlreadyRunning
	}

	ln, err := reactor.Listen(s.cfg.Port, s.cfg.Backlog)
	if err != nil {
		return errors.Wrap(err, "sink start")
	}

	s.ln = ln
	s.port = ln.Port()
	s.loopErr = nil
	s.stopping.Store(false)
	s.done = make(chan struct{})
	s.running = true

	go s.run(ln, s.done)

	s.log.Info("sink listening", "addr", s.addrLocked(), "poll_interval", s.cfg.PollInterval)
	return nil
}

// MustStart is Start that panics on failure.
func (s *Sink) MustStart() {
	if err := s.Start(); err != nil {
		panic(err)
	}
}

// Stop raises the stop flag, waits for the multiplexer goroutine to notice
// it (at most about one poll interval) and releases the listener. Queued
// jobs stay available to the consumer. Stop on a stopped sink is a no-op.
func (s *Sink) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return nil
	}

	s.stopping.Store(true)
	<-s.done
	s.running = false

	closeErr := s.ln.Close()
	s.ln = nil
	s.log.Info("sink stopped", "pending_jobs", s.jobs.Len())

	if s.loopErr != nil {
		return s.loopErr
	}
	return errors.Wrap(closeErr, "close listener")
}

// Running reports whether the multiplexer goroutine is active. It turns
// false as soon as the loop exits on its own, before Stop is called.
func (s *Sink) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		return false
	}
	select {
	case <-s.done:
		return false
	default:
		return true
	}
}

// Done returns a channel closed when the multiplexer goroutine exits, either
// through Stop or on a readiness failure. A stopped sink returns a closed
// channel.
func (s *Sink) Done() <-chan struct{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		ch := make(chan struct{})
		close(ch)
		return ch
	}
	return s.done
}

// Port returns the bound port once started, else the configured one.
func (s *Sink) Port() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.port
}

// Addr returns the loopback host:port.
func (s *Sink) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addrLocked()
}

func (s *Sink) addrLocked() string {
	return net.JoinHostPort("127.0.0.1", strconv.Itoa(s.port))
}

// WaitForJob blocks for at most timeout and reports whether a completed job
// is pending. It does not consume anything; a false result is not an error.
func (s *Sink) WaitForJob(timeout time.Duration) bool {
	return s.jobs.Wait(context.Background(), timeout)
}

// WaitForJobContext is WaitForJob that also returns when ctx is done.
func (s *Sink) WaitForJobContext(ctx context.Context, timeout time.Duration) bool {
	return s.jobs.Wait(ctx, timeout)
}

// TakeJob removes and returns the oldest completed job. The caller must have
// seen WaitForJob return true; an empty queue panics with api.ErrNoJob.
func (s *Sink) TakeJob() *api.Job {
	return s.jobs.Take()
}

// Pending returns the number of queued jobs.
func (s *Sink) Pending() int {
	return s.jobs.Len()
}

// Stats merges counters and debug probe output.
func (s *Sink) Stats() map[string]any {
	combined := s.metrics.GetSnapshot()
	for k, v := range s.probes.DumpState() {
		combined["debug."+k] = v
	}
	return combined
}

// RegisterDebugProbe adds a named probe to Stats output.
func (s *Sink) RegisterDebugProbe(name string, fn func() any) {
	s.probes.RegisterProbe(name, fn)
}

// Metrics exposes the counter registry.
func (s *Sink) Metrics() *control.MetricsRegistry {
	return s.metrics
}
