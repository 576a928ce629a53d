package config

import (
	"os"
	"testing"
	"time"
)

func TestConfigLoad_Defaults(t *testing.T) {
	_ = os.Unsetenv("DAYMARK_HTTP_PORT")
	_ = os.Unsetenv("DAYMARK_DB_DRIVER")
	_ = os.Unsetenv("DAYMARK_NOTIFIER_URL")

	cfg, err := New()
	if err != nil {
		t.Fatalf("config load: %v", err)
	}
	if cfg.HTTPPort != 8080 || cfg.DBDriver != "sqlite" || cfg.SQLitePath != "data/daymark.db" {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if !cfg.NotificationsEnabled || cfg.NotifierURL != "http://localhost:8081" {
		t.Fatalf("unexpected notifier defaults: %+v", cfg)
	}
	if cfg.ReconcileInterval != 0 || cfg.HealthInterval != 30*time.Second {
		t.Fatalf("unexpected interval defaults: %+v", cfg)
	}
}

func TestConfigLoad_EnvOverride(t *testing.T) {
	_ = os.Setenv("DAYMARK_HTTP_PORT", "9999")
	_ = os.Setenv("DAYMARK_RECONCILE_INTERVAL", "5m")
	defer func() {
		_ = os.Unsetenv("DAYMARK_HTTP_PORT")
		_ = os.Unsetenv("DAYMARK_RECONCILE_INTERVAL")
	}()

	cfg, err := New()
	if err != nil {
		t.Fatalf("config load: %v", err)
	}
	if cfg.HTTPPort != 9999 {
		t.Fatalf("port env override failed, got %d", cfg.HTTPPort)
	}
	if cfg.ReconcileInterval != 5*time.Minute {
		t.Fatalf("reconcile interval override failed, got %s", cfg.ReconcileInterval)
	}
	if cfg.GetHTTPAddr() != ":9999" {
		t.Fatalf("unexpected addr: %s", cfg.GetHTTPAddr())
	}
}

func TestNotifydLoad_Defaults(t *testing.T) {
	_ = os.Unsetenv("NOTIFYD_HTTP_PORT")
	_ = os.Unsetenv("NOTIFYD_DATA_DIR")
	_ = os.Unsetenv("NOTIFYD_SCAN_SPEC")

	cfg, err := NewNotifyd()
	if err != nil {
		t.Fatalf("notifyd config load: %v", err)
	}
	if cfg.HTTPPort != 8081 || cfg.DataDir != "data/notifyd" || cfg.InMemory {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.ScanSpec != "*/15 * * * * *" || !cfg.GrantPermission {
		t.Fatalf("unexpected engine defaults: %+v", cfg)
	}
}

func TestNotifydLoad_RequiresDataDir(t *testing.T) {
	_ = os.Setenv("NOTIFYD_DATA_DIR", "")
	_ = os.Setenv("NOTIFYD_IN_MEMORY", "false")
	defer func() {
		_ = os.Unsetenv("NOTIFYD_DATA_DIR")
		_ = os.Unsetenv("NOTIFYD_IN_MEMORY")
	}()

	if _, err := NewNotifyd(); err == nil {
		t.Fatalf("expected error for empty data dir")
	}
}
