package config

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
)

// NotifydConfig holds the configuration for the notifyd daemon.
// Environment variables are parsed from the NOTIFYD_ prefix.
type NotifydConfig struct {
	HTTPPort int `envconfig:"HTTP_PORT" default:"8081"`

	// Registry storage. InMemory runs an ephemeral registry (dev, tests).
	DataDir  string `envconfig:"DATA_DIR" default:"data/notifyd"`
	InMemory bool   `envconfig:"IN_MEMORY" default:"false"`

	// ScanSpec is the cron expression (with seconds field) driving the
	// due-notification scan.
	ScanSpec string `envconfig:"SCAN_SPEC" default:"*/15 * * * * *"`

	// GrantPermission controls the answer to permission requests. Setting
	// it false exercises the denied path end to end.
	GrantPermission bool `envconfig:"GRANT_PERMISSION" default:"true"`

	// WebhookURL, when set, receives a POST for every fired notification.
	WebhookURL string `envconfig:"WEBHOOK_URL" default:""`

	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`
}

// NewNotifyd creates a NotifydConfig from NOTIFYD_-prefixed environment
// variables.
func NewNotifyd() (*NotifydConfig, error) {
	var cfg NotifydConfig
	if err := envconfig.Process("NOTIFYD", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment variables: %w", err)
	}
	if !cfg.InMemory && cfg.DataDir == "" {
		return nil, fmt.Errorf("NOTIFYD_DATA_DIR required unless NOTIFYD_IN_MEMORY=true")
	}
	return &cfg, nil
}

// GetHTTPAddr returns the HTTP server address.
func (c *NotifydConfig) GetHTTPAddr() string {
	return fmt.Sprintf(":%d", c.HTTPPort)
}
