package status_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/momentics/printsink/api"
	"github.com/momentics/printsink/internal/status"
)

type stubControl struct {
	stats map[string]any
}

func (s *stubControl) Stats() map[string]any                      { return s.stats }
func (s *stubControl) RegisterDebugProbe(name string, fn func() any) {}

func get(t *testing.T, h http.Handler, path string) (int, map[string]any) {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	var body map[string]any
	if rec.Code == http.StatusOK {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	}
	return rec.Code, body
}

func TestHealth(t *testing.T) {
	srv := status.NewServer(&stubControl{}, nil)
	code, body := get(t, srv.Handler(), "/healthz")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "ok", body["status"])
}

func TestStats(t *testing.T) {
	ctrl := &stubControl{stats: map[string]any{"jobs_completed": int64(3), "debug.queue.depth": 1}}
	srv := status.NewServer(ctrl, nil)

	code, body := get(t, srv.Handler(), "/stats")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, float64(3), body["jobs_completed"])
	assert.Equal(t, float64(1), body["debug.queue.depth"])
}

func TestUnknownRoute(t *testing.T) {
	srv := status.NewServer(&stubControl{}, nil)
	code, _ := get(t, srv.Handler(), "/jobs")
	assert.Equal(t, http.StatusNotFound, code)
}

func TestStartShutdown(t *testing.T) {
	srv := status.NewServer(&stubControl{stats: map[string]any{}}, nil)
	require.NoError(t, srv.Start(0))
	assert.ErrorIs(t, srv.Start(0), api.ErrAlreadyRunning)
	assert.Contains(t, srv.Addr(), "127.0.0.1:")

	resp, err := http.Get("http://" + srv.Addr() + "/healthz")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, srv.Shutdown(ctx))
	assert.NoError(t, srv.Shutdown(ctx), "second shutdown is a no-op")
}
