// File: cmd/printsink/main.go
// Package main
// Loopback raw-print sink: every TCP connection on the printer port becomes
// one job, written to the spool directory as a numbered file.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/afero"

	"github.com/momentics/printsink/internal/config"
	"github.com/momentics/printsink/internal/logging"
	"github.com/momentics/printsink/internal/spool"
	"github.com/momentics/printsink/internal/status"
	"github.com/momentics/printsink/sink"
)

func main() {
	configPath := flag.String("config", "", "path to YAML config file")
	port := flag.Int("port", -1, "loopback port to accept print jobs on (overrides config)")
	out := flag.String("out", "", "spool directory for printouts (overrides config)")
	poll := flag.Duration("poll", 0, "readiness poll interval (overrides config)")
	flag.Parse()

	cfg, err := loadConfig(*configPath, *port, *out, *poll)
	if err != nil {
		fmt.Fprintf(os.Stderr, "printsink: %v\n", err)
		os.Exit(2)
	}

	log := logging.New(cfg.Logging, os.Stderr)

	s := sink.New(sink.FromConfig(cfg.Sink), sink.WithLogger(log))
	if err := s.Start(); err != nil {
		// Nothing useful can run without the sink.
		log.Error("sink startup failed", "err", err)
		os.Exit(1)
	}

	var st *status.Server
	if cfg.Status.Port != 0 {
		st = status.NewServer(s, log)
		if err := st.Start(cfg.Status.Port); err != nil {
			log.Error("status endpoint disabled", "err", err)
			st = nil
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		select {
		case <-s.Done():
			log.Error("sink loop exited")
			stop()
		case <-ctx.Done():
		}
	}()

	writer := spool.NewWriter(afero.NewOsFs(), cfg.Spool, log)
	if err := writer.Run(ctx, s); err != nil {
		log.Error("spool stopped", "err", err)
	}

	if st != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := st.Shutdown(shutdownCtx); err != nil {
			log.Warn("status shutdown", "err", err)
		}
		cancel()
	}

	stopErr := s.Stop()
	if n := writer.Drain(s); n > 0 {
		log.Info("drained queued jobs", "count", n)
	}
	log.Info("shutting down", "printed", writer.Written())

	if stopErr != nil {
		log.Error("sink stop", "err", stopErr)
		os.Exit(1)
	}
}

// loadConfig applies defaults, then the file, then PRINTSINK_* variables,
// then explicit flags.
func loadConfig(path string, port int, out string, poll time.Duration) (*config.Config, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}
	if port >= 0 {
		cfg.Sink.Port = port
	}
	if out != "" {
		cfg.Spool.Dir = out
	}
	if poll > 0 {
		cfg.Sink.PollInterval = poll
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
