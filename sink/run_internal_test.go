//go:build linux || darwin || freebsd || netbsd || openbsd || windows

package sink

import (
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/momentics/printsink/reactor"
)

func TestRun_WaitFailureEndsLoop(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Port = 0
	cfg.PollInterval = 20 * time.Millisecond
	s := New(cfg)

	failure := errors.New("poll broke")
	s.wait = func([]int, time.Duration) ([]reactor.Readiness, error) {
		return nil, failure
	}

	require.NoError(t, s.Start())

	select {
	case <-s.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("loop kept running after the readiness wait failed")
	}
	assert.False(t, s.Running())
	assert.Equal(t, false, s.Stats()["debug.sink.running"])

	err := s.Stop()
	require.Error(t, err)
	assert.True(t, errors.Is(err, failure))
	assert.False(t, s.Running())
}

func TestDone_ClosedWhenStopped(t *testing.T) {
	s := New(nil)
	select {
	case <-s.Done():
	default:
		t.Fatal("Done on a sink that never started should be closed")
	}
}
