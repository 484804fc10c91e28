//go:build linux || darwin || freebsd || netbsd || openbsd || windows

package spool_test

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/momentics/printsink/internal/spool"
	"github.com/momentics/printsink/sink"
)

func TestWriter_PrintsFromSink(t *testing.T) {
	s, err := sink.Start(0, sink.WithPollInterval(50*time.Millisecond))
	require.NoError(t, err)
	defer s.Stop()

	fs := afero.NewMemMapFs()
	w := spool.NewWriter(fs, testConfig(), nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Run(ctx, s)

	c, err := net.Dial("tcp", s.Addr())
	require.NoError(t, err)
	_, err = c.Write([]byte("%!PS-Adobe-3.0\nshowpage\n"))
	require.NoError(t, err)
	require.NoError(t, c.Close())

	require.Eventually(t, func() bool { return w.Written() == 1 }, 5*time.Second, 10*time.Millisecond)
	data, err := afero.ReadFile(fs, "/spool/page-000001.ps")
	require.NoError(t, err)
	assert.Equal(t, "%!PS-Adobe-3.0\nshowpage\n", string(data))
}
