// Copyright (c) 2025
// Author: momentics <momentics@gmail.com>

// Package sink implements a loopback "printer" that accepts raw print streams
// over TCP. Every connection's bytes, delimited only by the connection
// closing, become one Job handed to a single consumer through a FIFO with a
// bounded-wait poll.
//
// One goroutine owns the listening socket and every open connection and
// multiplexes them with a periodic readiness wait. The consumer only calls
// WaitForJob and TakeJob. A connection that fails with a read error is
// dropped together with the bytes it delivered; no job is produced for it.
package sink
