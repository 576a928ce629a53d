package config

import (
	"os"
	"testing"
)

func unsetDriverEnv() {
	_ = os.Unsetenv("DAYMARK_DB_DRIVER")
	_ = os.Unsetenv("DAYMARK_SQLITE_PATH")
	_ = os.Unsetenv("DAYMARK_POSTGRES_DSN")
}

func TestResolveDefaultsSQLite(t *testing.T) {
	unsetDriverEnv()
	defer unsetDriverEnv()

	cfg, err := New()
	if err != nil {
		t.Fatalf("config load: %v", err)
	}
	if cfg.DBDriver != "sqlite" || cfg.SQLitePath == "" {
		t.Fatalf("unexpected sqlite resolution: %s %s", cfg.DBDriver, cfg.SQLitePath)
	}
}

func TestResolveDefaultsPostgresRequiresDSN(t *testing.T) {
	unsetDriverEnv()
	_ = os.Setenv("DAYMARK_DB_DRIVER", "postgres")
	defer unsetDriverEnv()

	if _, err := New(); err == nil {
		t.Fatalf("expected error for postgres without DSN")
	}

	_ = os.Setenv("DAYMARK_POSTGRES_DSN", "postgres://user:pw@localhost:5432/daymark")
	cfg, err := New()
	if err != nil {
		t.Fatalf("config load: %v", err)
	}
	if cfg.DBDriver != "postgres" {
		t.Fatalf("override failed, got %s", cfg.DBDriver)
	}
}

func TestResolveDefaultsUnknownDriver(t *testing.T) {
	unsetDriverEnv()
	_ = os.Setenv("DAYMARK_DB_DRIVER", "bolt")
	defer unsetDriverEnv()

	if _, err := New(); err == nil {
		t.Fatalf("expected error for unsupported driver")
	}
}
