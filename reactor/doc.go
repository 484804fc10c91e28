// Copyright (c) 2025
// Author: momentics <momentics@gmail.com>

// Package reactor provides the loopback listening socket, raw connection
// reads and a bounded readiness wait over a dynamic descriptor set.
// Platform code is partitioned by build tags; unsupported platforms get a
// stub that reports api.ErrNotSupported.
package reactor
