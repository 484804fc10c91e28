// File: api/job.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package api

import (
	"time"

	"github.com/google/uuid"
)

// Job is the complete byte stream received on one connection, from accept
// to orderly close. A Job is immutable once queued.
type Job struct {
	ID       uuid.UUID
	Data     []byte
	Peer     string
	OpenedAt time.Time
	ClosedAt time.Time
}

// NewJob stamps a fresh ID on data received from peer.
func NewJob(data []byte, peer string, opened, closed time.Time) *Job {
	if data == nil {
		data = []byte{}
	}
	return &Job{
		ID:       uuid.New(),
		Data:     data,
		Peer:     peer,
		OpenedAt: opened,
		ClosedAt: closed,
	}
}

// Bytes returns the job payload. Callers must not modify it.
func (j *Job) Bytes() []byte { return j.Data }

// Len is the payload size in bytes.
func (j *Job) Len() int { return len(j.Data) }
