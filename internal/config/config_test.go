package config

import (
	"strings"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://marks@localhost/marks")
	for _, k := range []string{"HTTP_ADDR", "LOG_LEVEL", "ENV", "AUDIT_INTERVAL", "DB_TIMEOUT", "DB_MAX_CONNS"} {
		t.Setenv(k, "")
	}

	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.HTTPAddr != ":8080" || cfg.LogLevel != "info" || cfg.Env != "dev" {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.AuditInterval != 5*time.Minute || cfg.DBTimeout != 5*time.Second || cfg.DBMaxConns != 10 {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
}

func TestLoad_Errors(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("AUDIT_INTERVAL", "soon")
	t.Setenv("DB_MAX_CONNS", "many")

	_, err := Load()
	if err == nil {
		t.Fatal("expected error")
	}
	for _, want := range []string{"DATABASE_URL", "AUDIT_INTERVAL", "DB_MAX_CONNS"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error %q does not mention %s", err, want)
		}
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://marks@db/marks")
	t.Setenv("AUDIT_INTERVAL", "30s")
	t.Setenv("DB_MAX_CONNS", "4")
	t.Setenv("ENV", "prod")

	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.AuditInterval != 30*time.Second || cfg.DBMaxConns != 4 || cfg.Env != "prod" {
		t.Fatalf("overrides not applied: %+v", cfg)
	}
}
