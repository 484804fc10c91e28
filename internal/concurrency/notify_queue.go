// File: internal/concurrency/notify_queue.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// FIFO hand-off between one producer and one consumer with a bounded wait.

package concurrency

import (
	"context"
	"sync"
	"time"

	"github.com/eapache/queue"

	"github.com/momentics/printsink/api"
)

// NotifyQueue is a FIFO whose non-empty state is mirrored by a level-triggered
// Event. Queue and event share one mutex: the queue is non-empty exactly
// when the event is raised.
type NotifyQueue[T any] struct {
	mu    sync.Mutex
	items *queue.Queue
	ready *Event
}

// NewNotifyQueue returns an empty queue with its event cleared.
func NewNotifyQueue[T any]() *NotifyQueue[T] {
	return &NotifyQueue[T]{
		items: queue.New(),
		ready: NewEvent(),
	}
}

// Push appends v and raises the event on the empty to non-empty transition.
func (q *NotifyQueue[T]) Push(v T) {
	q.mu.Lock()
	defer q.mu.Unlock()
	wasEmpty := q.items.Length() == 0
	q.items.Add(v)
	if wasEmpty {
		q.ready.Set()
	}
}

// Wait blocks until the event is raised, timeout elapses or ctx is done, then
// reports whether the queue is non-empty. A timeout <= 0 only samples the
// current state. Wait never removes anything.
func (q *NotifyQueue[T]) Wait(ctx context.Context, timeout time.Duration) bool {
	q.mu.Lock()
	ch := q.ready.C()
	q.mu.Unlock()

	if timeout > 0 {
		timer := time.NewTimer(timeout)
		defer timer.Stop()
		select {
		case <-ch:
		case <-timer.C:
		case <-ctx.Done():
		}
	}

	return q.Len() > 0
}

// Take removes and returns the oldest element, clearing the event when the
// queue drains. Take on an empty queue is a caller bug and panics.
func (q *NotifyQueue[T]) Take() T {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.items.Length() == 0 {
		panic(api.ErrNoJob)
	}
	v := q.items.Remove().(T)
	if q.items.Length() == 0 {
		q.ready.Reset()
	}
	return v
}

// Len returns the number of queued elements.
func (q *NotifyQueue[T]) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.items.Length()
}

// Signaled reports the event level; it always equals Len() > 0.
func (q *NotifyQueue[T]) Signaled() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.ready.IsSet()
}
