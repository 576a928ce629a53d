package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/rs/zerolog/log"
)

// Config holds the configuration for the daymark service and the
// standalone reconciler. Environment variables are parsed from the
// DAYMARK_ prefix, e.g. DAYMARK_HTTP_PORT, DAYMARK_DB_DRIVER.
type Config struct {
	// HTTP Configuration
	HTTPPort int `envconfig:"HTTP_PORT" default:"8080"`

	// Storage: sqlite (default, local file) or postgres
	DBDriver    string `envconfig:"DB_DRIVER" default:"sqlite"`
	SQLitePath  string `envconfig:"SQLITE_PATH" default:"data/daymark.db"`
	PostgresDSN string `envconfig:"POSTGRES_DSN" default:""`

	// Notification daemon (notifyd). When disabled the service runs with
	// a no-op provider and every schedule call degrades to "not scheduled".
	NotifierURL          string `envconfig:"NOTIFIER_URL" default:"http://localhost:8081"`
	NotificationsEnabled bool   `envconfig:"NOTIFICATIONS_ENABLED" default:"true"`

	// ReconcileInterval drives the embedded schedule-repair pass; 0s disables it.
	ReconcileInterval time.Duration `envconfig:"RECONCILE_INTERVAL" default:"0s"`

	// HealthInterval is the probe cadence for background health checkers.
	HealthInterval time.Duration `envconfig:"HEALTH_INTERVAL" default:"30s"`

	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`
}

// ResolveDefaults validates the driver selection and its required settings.
func (c *Config) ResolveDefaults() error {
	switch c.DBDriver {
	case "sqlite":
		if c.SQLitePath == "" {
			return fmt.Errorf("DAYMARK_SQLITE_PATH required for sqlite driver")
		}
	case "postgres":
		if c.PostgresDSN == "" {
			return fmt.Errorf("DAYMARK_POSTGRES_DSN required for postgres driver")
		}
	default:
		return fmt.Errorf("unsupported DB_DRIVER: %s", c.DBDriver)
	}
	return nil
}

// New creates a Config by parsing DAYMARK_-prefixed environment variables.
func New() (*Config, error) {
	var cfg Config

	if err := envconfig.Process("DAYMARK", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment variables: %w", err)
	}

	if err := cfg.ResolveDefaults(); err != nil {
		return nil, err
	}

	log.Info().
		Str("db_driver", cfg.DBDriver).
		Int("port", cfg.HTTPPort).
		Str("notifier_url", cfg.NotifierURL).
		Bool("notifications_enabled", cfg.NotificationsEnabled).
		Dur("reconcile_interval", cfg.ReconcileInterval).
		Str("postgres_dsn_present", func() string {
			if cfg.PostgresDSN != "" {
				return "true"
			}
			return "false"
		}()).
		Msg("Configuration loaded")

	return &cfg, nil
}

// NewForTesting creates a config suitable for unit tests: in-memory
// sqlite and no notification daemon.
func NewForTesting() *Config {
	return &Config{
		HTTPPort:             8080,
		DBDriver:             "sqlite",
		SQLitePath:           ":memory:",
		NotifierURL:          "http://localhost:8081",
		NotificationsEnabled: false,
		HealthInterval:       30 * time.Second,
		LogLevel:             "info",
	}
}

// GetHTTPAddr returns the HTTP server address.
func (c *Config) GetHTTPAddr() string {
	return fmt.Sprintf(":%d", c.HTTPPort)
}
