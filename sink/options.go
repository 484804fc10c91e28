// File: sink/options.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package sink

import (
	"log/slog"
	"time"

	"github.com/momentics/printsink/internal/config"
	"github.com/momentics/printsink/reactor"
)

// Config holds the sink parameters.
type Config struct {
	Port           int           // loopback TCP port; 0 picks an ephemeral one
	PollInterval   time.Duration // readiness wait bound; also bounds Stop latency
	ReadBufferSize int           // bytes read per ready connection per iteration
	Backlog        int           // listen(2) backlog
}

// DefaultConfig returns the raw-print defaults.
func DefaultConfig() *Config {
	return &Config{
		Port:           config.DefaultPort,
		PollInterval:   time.Second,
		ReadBufferSize: 4096,
		Backlog:        reactor.DefaultBacklog,
	}
}

// FromConfig converts the file-level sink section.
func FromConfig(c config.SinkConfig) *Config {
	return &Config{
		Port:           c.Port,
		PollInterval:   c.PollInterval,
		ReadBufferSize: c.ReadBufferSize,
		Backlog:        c.Backlog,
	}
}

// Option customizes a Sink at construction.
type Option func(*Sink)

// WithLogger sets the structured logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Sink) {
		if l != nil {
			s.log = l
		}
	}
}

// WithPollInterval overrides the readiness wait bound.
func WithPollInterval(d time.Duration) Option {
	return func(s *Sink) {
		s.cfg.PollInterval = d
	}
}

// WithReadBufferSize overrides the per-read chunk size.
func WithReadBufferSize(n int) Option {
	return func(s *Sink) {
		s.cfg.ReadBufferSize = n
	}
}

// WithBacklog overrides the listen backlog.
func WithBacklog(n int) Option {
	return func(s *Sink) {
		s.cfg.Backlog = n
	}
}

func (c *Config) normalize() {
	d := DefaultConfig()
	if c.PollInterval <= 0 {
		c.PollInterval = d.PollInterval
	}
	if c.ReadBufferSize <= 0 {
		c.ReadBufferSize = d.ReadBufferSize
	}
	if c.Backlog <= 0 {
		c.Backlog = d.Backlog
	}
}
