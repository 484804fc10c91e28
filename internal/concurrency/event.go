// File: internal/concurrency/event.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Manual-reset, level-triggered event.

package concurrency

// Event stays raised until explicitly reset, like a manual-reset OS event.
// Waiters select on C(). Event carries no lock of its own: Set, Reset, C and
// IsSet must be called under the owner's mutex.
type Event struct {
	ch     chan struct{}
	raised bool
}

// NewEvent returns an event in the cleared state.
func NewEvent() *Event {
	return &Event{ch: make(chan struct{})}
}

// Set raises the event, releasing every current and future waiter until Reset.
func (e *Event) Set() {
	if e.raised {
		return
	}
	e.raised = true
	close(e.ch)
}

// Reset clears the event. Waiters that already captured C() stay released.
func (e *Event) Reset() {
	if !e.raised {
		return
	}
	e.raised = false
	e.ch = make(chan struct{})
}

// IsSet reports the current level.
func (e *Event) IsSet() bool { return e.raised }

// C returns a channel that is closed while the event is raised.
func (e *Event) C() <-chan struct{} { return e.ch }
