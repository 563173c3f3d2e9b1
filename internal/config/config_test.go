package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func validConfig() *Config {
	return &Config{
		HTTPPort:       8090,
		HTTPTimeout:    15 * time.Second,
		APIBase:        "http://localhost:8765",
		PollInterval:   1500 * time.Millisecond,
		PollTimeout:    10 * time.Minute,
		InfoTimeout:    60 * time.Second,
		SubmitTimeout:  60 * time.Second,
		StatusTimeout:  30 * time.Second,
		HealthTimeout:  10 * time.Second,
		CompletedGrace: 30 * time.Second,
		FailedGrace:    2 * time.Minute,
		BatchLimit:     5,
	}
}

func TestConfig_Validate(t *testing.T) {
	assert.NoError(t, validConfig().Validate())
}

func TestConfig_Validate_Errors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{name: "bad port", mutate: func(c *Config) { c.HTTPPort = 0 }},
		{name: "bad api base", mutate: func(c *Config) { c.APIBase = "not-a-url" }},
		{name: "api base without scheme", mutate: func(c *Config) { c.APIBase = "localhost:8765" }},
		{name: "zero poll interval", mutate: func(c *Config) { c.PollInterval = 0 }},
		{name: "timeout below interval", mutate: func(c *Config) { c.PollTimeout = time.Second; c.PollInterval = 2 * time.Second }},
		{name: "zero status budget", mutate: func(c *Config) { c.StatusTimeout = 0 }},
		{name: "zero grace", mutate: func(c *Config) { c.CompletedGrace = 0 }},
		{name: "zero batch limit", mutate: func(c *Config) { c.BatchLimit = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestLoad_AppliesDefaults(t *testing.T) {
	cfg, err := Load()
	assert.NoError(t, err)
	assert.Equal(t, 1500*time.Millisecond, cfg.PollInterval)
	assert.Equal(t, 10*time.Minute, cfg.PollTimeout)
	assert.Equal(t, "http://localhost:8765", cfg.APIBase)
}

func TestLoad_ReadsEnvironment(t *testing.T) {
	t.Setenv("DT_POLL_INTERVAL", "500ms")
	t.Setenv("DT_FAILED_GRACE", "45s")

	cfg, err := Load()
	assert.NoError(t, err)
	assert.Equal(t, 500*time.Millisecond, cfg.PollInterval)
	assert.Equal(t, 45*time.Second, cfg.FailedGrace)
}
