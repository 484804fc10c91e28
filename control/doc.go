// Package control
// Author: momentics <momentics@gmail.com>
//
// Runtime metrics and debug introspection layer for the print sink.
//
// Provides concurrent-safe state handling primitives including:
//   - Counters and gauges updated by the multiplexer goroutine
//   - Named debug probes evaluated on demand
//   - Platform probes registered at construction
package control
