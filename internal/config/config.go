package config

import (
	"fmt"
	"net/url"
	"time"
)

// Config holds all application configuration settings.
type Config struct {
	Environment string `envconfig:"ENV" default:"development"`

	HTTPPort    int           `envconfig:"HTTP_PORT" default:"8090"`
	HTTPTimeout time.Duration `envconfig:"HTTP_TIMEOUT" default:"15s"`

	APIBase string `envconfig:"API_BASE" default:"http://localhost:8765"`

	PollInterval time.Duration `envconfig:"POLL_INTERVAL" default:"1500ms"`
	PollTimeout  time.Duration `envconfig:"POLL_TIMEOUT" default:"10m"`

	InfoTimeout   time.Duration `envconfig:"INFO_TIMEOUT" default:"60s"`
	SubmitTimeout time.Duration `envconfig:"SUBMIT_TIMEOUT" default:"60s"`
	StatusTimeout time.Duration `envconfig:"STATUS_TIMEOUT" default:"30s"`
	HealthTimeout time.Duration `envconfig:"HEALTH_TIMEOUT" default:"10s"`

	CompletedGrace time.Duration `envconfig:"COMPLETED_GRACE" default:"30s"`
	FailedGrace    time.Duration `envconfig:"FAILED_GRACE" default:"2m"`

	BatchLimit int `envconfig:"BATCH_LIMIT" default:"5"`

	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"30s"`

	LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat string `envconfig:"LOG_FORMAT" default:"json"`
}

// Validate checks the configuration for invalid or missing values.
// Returns an error describing the first invalid setting found.
func (c *Config) Validate() error {
	if c.HTTPPort <= 0 || c.HTTPPort > 65535 {
		return fmt.Errorf("invalid HTTP port: %d", c.HTTPPort)
	}

	u, err := url.Parse(c.APIBase)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("invalid API base URL: %q", c.APIBase)
	}

	if c.PollInterval <= 0 {
		return fmt.Errorf("poll interval must be positive: %s", c.PollInterval)
	}
	if c.PollTimeout <= c.PollInterval {
		return fmt.Errorf("poll timeout %s must exceed poll interval %s", c.PollTimeout, c.PollInterval)
	}

	if c.StatusTimeout <= 0 || c.InfoTimeout <= 0 || c.SubmitTimeout <= 0 || c.HealthTimeout <= 0 {
		return fmt.Errorf("all request budgets must be positive")
	}

	if c.CompletedGrace <= 0 || c.FailedGrace <= 0 {
		return fmt.Errorf("cleanup grace periods must be positive")
	}

	if c.BatchLimit <= 0 {
		return fmt.Errorf("batch limit must be positive: %d", c.BatchLimit)
	}

	return nil
}
