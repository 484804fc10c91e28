//go:build linux || darwin || freebsd || netbsd || openbsd || windows

package reactor_test

import (
	"net"
	"strconv"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/momentics/printsink/api"
	"github.com/momentics/printsink/reactor"
)

func dial(t *testing.T, port int) net.Conn {
	t.Helper()
	c, err := net.Dial("tcp", net.JoinHostPort("127.0.0.1", strconv.Itoa(port)))
	require.NoError(t, err)
	return c
}

// waitFor polls until fd is reported or the deadline passes.
func waitFor(t *testing.T, fds []int, fd int) reactor.Readiness {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		ready, err := reactor.Wait(fds, 100*time.Millisecond)
		require.NoError(t, err)
		for _, r := range ready {
			if r.Fd == fd {
				return r
			}
		}
	}
	t.Fatalf("fd %d never became ready", fd)
	return reactor.Readiness{}
}

func TestListen_EphemeralPort(t *testing.T) {
	ln, err := reactor.Listen(0, 0)
	require.NoError(t, err)
	defer ln.Close()

	assert.Greater(t, ln.Port(), 0)
	assert.GreaterOrEqual(t, ln.Fd(), 0)
}

func TestListen_RejectsBadPort(t *testing.T) {
	_, err := reactor.Listen(70000, 0)
	require.Error(t, err)
	assert.True(t, errors.Is(err, api.ErrInvalidArgument))
}

func TestListen_PortInUse(t *testing.T) {
	ln, err := reactor.Listen(0, 0)
	require.NoError(t, err)
	defer ln.Close()

	_, err = reactor.Listen(ln.Port(), 0)
	assert.Error(t, err)
}

func TestWait_TimesOutWithoutTraffic(t *testing.T) {
	ln, err := reactor.Listen(0, 0)
	require.NoError(t, err)
	defer ln.Close()

	start := time.Now()
	ready, err := reactor.Wait([]int{ln.Fd()}, 150*time.Millisecond)
	require.NoError(t, err)
	assert.Empty(t, ready)
	assert.GreaterOrEqual(t, time.Since(start), 100*time.Millisecond)
}

func TestAcceptReadClose(t *testing.T) {
	ln, err := reactor.Listen(0, 0)
	require.NoError(t, err)
	defer ln.Close()

	_, err = ln.Accept()
	assert.ErrorIs(t, err, reactor.ErrWouldBlock, "nothing pending yet")

	client := dial(t, ln.Port())
	defer client.Close()

	r := waitFor(t, []int{ln.Fd()}, ln.Fd())
	assert.True(t, r.Readable)

	conn, err := ln.Accept()
	require.NoError(t, err)
	defer conn.Close()
	assert.Contains(t, conn.Peer(), "127.0.0.1:")

	_, err = client.Write([]byte("hello"))
	require.NoError(t, err)

	waitFor(t, []int{ln.Fd(), conn.Fd()}, conn.Fd())
	buf := make([]byte, 64)
	n, err := conn.Read(buf)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(buf[:n]))

	require.NoError(t, client.Close())
	waitFor(t, []int{conn.Fd()}, conn.Fd())
	n, err = conn.Read(buf)
	require.NoError(t, err)
	assert.Equal(t, 0, n, "orderly close reads zero bytes")
}

func TestWait_EmptySetHonoursTimeout(t *testing.T) {
	start := time.Now()
	ready, err := reactor.Wait(nil, 100*time.Millisecond)
	require.NoError(t, err)
	assert.Empty(t, ready)
	assert.GreaterOrEqual(t, time.Since(start), 80*time.Millisecond)
}
