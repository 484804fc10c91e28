// File: internal/concurrency/doc.go
// Package concurrency
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Synchronization primitives for handing completed jobs from the multiplexer
// goroutine to a consumer: a manual-reset Event and a mutex-guarded FIFO
// whose non-empty state drives that event.
package concurrency
