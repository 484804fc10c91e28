package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Precedence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "printsink.yaml")
	require.NoError(t, os.WriteFile(path, []byte("sink:\n  port: 9200\nspool:\n  dir: /from/file\n"), 0o644))
	t.Setenv("PRINTSINK_SPOOL_DIR", "/from/env")

	cfg, err := loadConfig(path, -1, "", 0)
	require.NoError(t, err)
	assert.Equal(t, 9200, cfg.Sink.Port)
	assert.Equal(t, "/from/env", cfg.Spool.Dir)

	cfg, err = loadConfig(path, 9300, "/from/flag", 250*time.Millisecond)
	require.NoError(t, err)
	assert.Equal(t, 9300, cfg.Sink.Port)
	assert.Equal(t, "/from/flag", cfg.Spool.Dir)
	assert.Equal(t, 250*time.Millisecond, cfg.Sink.PollInterval)
}

func TestLoadConfig_Invalid(t *testing.T) {
	_, err := loadConfig("", 70000, "", 0)
	assert.Error(t, err)
}
