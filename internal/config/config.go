// File: internal/config/config.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// YAML configuration with defaults, environment overrides and validation.

package config

import (
	"os"
	"strconv"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// DefaultPort is the raw-print port printers conventionally listen on.
const DefaultPort = 9100

type Config struct {
	Sink    SinkConfig    `yaml:"sink"`
	Spool   SpoolConfig   `yaml:"spool"`
	Status  StatusConfig  `yaml:"status"`
	Logging LoggingConfig `yaml:"logging"`
}

type SinkConfig struct {
	Port           int           `yaml:"port"`
	PollInterval   time.Duration `yaml:"poll_interval"`
	ReadBufferSize int           `yaml:"read_buffer_size"`
	Backlog        int           `yaml:"backlog"`
}

type SpoolConfig struct {
	Dir          string        `yaml:"dir"`
	Prefix       string        `yaml:"prefix"`
	Extension    string        `yaml:"extension"`
	PollInterval time.Duration `yaml:"poll_interval"`
}

// StatusConfig configures the loopback stats endpoint; port 0 disables it.
type StatusConfig struct {
	Port int `yaml:"port"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Sink: SinkConfig{
			Port:           DefaultPort,
			PollInterval:   time.Second,
			ReadBufferSize: 4096,
			Backlog:        10,
		},
		Spool: SpoolConfig{
			Dir:          "./spool",
			Prefix:       "job",
			Extension:    ".prn",
			PollInterval: time.Second,
		},
		Status: StatusConfig{
			Port: 0,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load reads configPath over the defaults. A missing file yields defaults.
func Load(configPath string) (*Config, error) {
	cfg := Default()
	if configPath == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, errors.Wrap(err, "failed to read config file")
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errors.Wrap(err, "failed to parse config file")
	}

	return cfg, nil
}

// ApplyEnv overrides fields from PRINTSINK_* variables. Malformed numeric
// values are reported rather than silently ignored.
func (c *Config) ApplyEnv() error {
	if v := os.Getenv("PRINTSINK_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return errors.Wrapf(err, "PRINTSINK_PORT %q", v)
		}
		c.Sink.Port = port
	}

	if v := os.Getenv("PRINTSINK_POLL_INTERVAL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return errors.Wrapf(err, "PRINTSINK_POLL_INTERVAL %q", v)
		}
		c.Sink.PollInterval = d
	}

	if v := os.Getenv("PRINTSINK_SPOOL_DIR"); v != "" {
		c.Spool.Dir = v
	}

	if v := os.Getenv("PRINTSINK_STATUS_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return errors.Wrapf(err, "PRINTSINK_STATUS_PORT %q", v)
		}
		c.Status.Port = port
	}

	if v := os.Getenv("PRINTSINK_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}

	if v := os.Getenv("PRINTSINK_LOG_FORMAT"); v != "" {
		c.Logging.Format = v
	}

	return nil
}

func (c *Config) Validate() error {
	if c.Sink.Port < 0 || c.Sink.Port > 65535 {
		return errors.Errorf("sink port must be between 0 and 65535, got %d", c.Sink.Port)
	}

	if c.Sink.PollInterval <= 0 {
		return errors.New("sink poll interval must be positive")
	}

	if c.Sink.ReadBufferSize < 1 {
		return errors.New("sink read buffer size must be at least 1")
	}

	if c.Sink.Backlog < 1 {
		return errors.New("sink backlog must be at least 1")
	}

	if c.Spool.Dir == "" {
		return errors.New("spool dir is required")
	}

	if c.Spool.PollInterval <= 0 {
		return errors.New("spool poll interval must be positive")
	}

	if c.Status.Port < 0 || c.Status.Port > 65535 {
		return errors.Errorf("status port must be between 0 and 65535, got %d", c.Status.Port)
	}

	if c.Status.Port != 0 && c.Status.Port == c.Sink.Port {
		return errors.Errorf("status port %d collides with sink port", c.Status.Port)
	}

	validLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}

	if !validLevels[c.Logging.Level] {
		return errors.Errorf("invalid log level: %s (valid: debug, info, warn, error)", c.Logging.Level)
	}

	validFormats := map[string]bool{
		"json": true,
		"text": true,
	}

	if !validFormats[c.Logging.Format] {
		return errors.Errorf("invalid log format: %s (valid: json, text)", c.Logging.Format)
	}

	return nil
}
