package logging_test

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/momentics/printsink/internal/config"
	"github.com/momentics/printsink/internal/logging"
)

func TestNew_JSON(t *testing.T) {
	var buf bytes.Buffer
	log := logging.New(config.LoggingConfig{Level: "info", Format: "json"}, &buf)

	log.Debug("hidden")
	log.Info("job queued", "bytes", 4)

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "job queued", rec["msg"])
	assert.Equal(t, float64(4), rec["bytes"])
}

func TestNew_TextDebug(t *testing.T) {
	var buf bytes.Buffer
	log := logging.New(config.LoggingConfig{Level: "debug", Format: "text"}, &buf)
	log.Debug("accept failed")
	assert.Contains(t, buf.String(), "msg=\"accept failed\"")
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, logging.ParseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, logging.ParseLevel("warn"))
	assert.Equal(t, slog.LevelError, logging.ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, logging.ParseLevel("bogus"))
}
