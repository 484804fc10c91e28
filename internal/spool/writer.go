// File: internal/spool/writer.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

// Package spool drains completed jobs from a sink and stores each printout
// as a numbered file.
package spool

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"

	"github.com/pkg/errors"
	"github.com/spf13/afero"

	"github.com/momentics/printsink/api"
	"github.com/momentics/printsink/internal/config"
	"github.com/momentics/printsink/internal/logging"
)

// Writer stores jobs under Dir as <prefix>-<seq><ext>, seq starting at 1.
type Writer struct {
	fs  afero.Fs
	cfg config.SpoolConfig
	log *slog.Logger

	mu      sync.Mutex
	seq     int // last sequence number written
	dirMade bool
}

// NewWriter returns a writer over fs. A nil logger discards output.
func NewWriter(fs afero.Fs, cfg config.SpoolConfig, log *slog.Logger) *Writer {
	if log == nil {
		log = logging.Discard()
	}
	return &Writer{fs: fs, cfg: cfg, log: log}
}

// Write stores job and returns the path it was written to.
func (w *Writer) Write(job *api.Job) (string, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.dirMade {
		if err := w.fs.MkdirAll(w.cfg.Dir, 0o755); err != nil {
			return "", errors.Wrapf(err, "create spool dir %s", w.cfg.Dir)
		}
		w.dirMade = true
	}

	next := w.seq + 1
	path := filepath.Join(w.cfg.Dir, fmt.Sprintf("%s-%06d%s", w.cfg.Prefix, next, w.cfg.Extension))

	if err := afero.WriteFile(w.fs, path, job.Bytes(), 0o644); err != nil {
		return "", errors.Wrapf(err, "write job %s", job.ID)
	}
	w.seq = next
	return path, nil
}

// Written returns how many files were produced. Failed writes do not
// consume a sequence number.
func (w *Writer) Written() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.seq
}

// Run polls src every PollInterval and writes each job it takes, until ctx
// is cancelled. A failed write is logged and the job is not retried.
func (w *Writer) Run(ctx context.Context, src api.JobSource) error {
	for {
		if ctx.Err() != nil {
			return nil
		}
		if !src.WaitForJobContext(ctx, w.cfg.PollInterval) {
			continue
		}

		job := src.TakeJob()
		path, err := w.Write(job)
		if err != nil {
			w.log.Error("spool write failed", "job", job.ID, "bytes", job.Len(), "err", err)
			continue
		}
		w.log.Info("printed", "job", job.ID, "path", path, "bytes", job.Len())
	}
}


// Drain writes every job src already holds without waiting for more and
// returns how many were written. It is meant for shutdown, after the
// producer has stopped.
func (w *Writer) Drain(src api.JobSource) int {
	n := 0
	for src.WaitForJob(0) {
		job := src.TakeJob()
		path, err := w.Write(job)
		if err != nil {
			w.log.Error("spool write failed", "job", job.ID, "bytes", job.Len(), "err", err)
			continue
		}
		n++
		w.log.Info("printed", "job", job.ID, "path", path, "bytes", job.Len())
	}
	return n
}
