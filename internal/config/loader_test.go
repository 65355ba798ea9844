package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadWritesDefaultConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plaggona.yaml")

	cfg, resolved, err := Load(nil, path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if resolved != path {
		t.Fatalf("resolved path = %q, want %q", resolved, path)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("default config not written: %v", err)
	}

	def := Default()
	if cfg.Addr != def.Addr || cfg.SessionTimeout != def.SessionTimeout || cfg.DefaultMaxUsers != def.DefaultMaxUsers {
		t.Fatalf("expected defaults, got %+v", cfg)
	}
}

func TestLoadFileAndEnvPrecedence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plaggona.yaml")
	body := []byte("addr: \":4000\"\nsession_timeout: 30s\ndefault_max_users: 4\n")
	if err := os.WriteFile(path, body, 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("PLAGGONA_DEFAULT_MAX_USERS", "6")

	cfg, _, err := Load(nil, path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Addr != ":4000" {
		t.Fatalf("addr = %q, want :4000", cfg.Addr)
	}
	if cfg.SessionTimeout != 30*time.Second {
		t.Fatalf("session timeout = %v, want 30s", cfg.SessionTimeout)
	}
	if cfg.DefaultMaxUsers != 6 {
		t.Fatalf("env must override file: default max users = %d", cfg.DefaultMaxUsers)
	}
	if cfg.SweepInterval != Default().SweepInterval {
		t.Fatalf("unset keys keep defaults: sweep interval = %v", cfg.SweepInterval)
	}
}

func TestUpdateFromOverridesNonZero(t *testing.T) {
	cfg := Default()
	cfg.UpdateFrom(Config{Addr: ":9000", LogLevel: "debug"})

	if cfg.Addr != ":9000" || cfg.LogLevel != "debug" {
		t.Fatalf("overrides not applied: %+v", cfg)
	}
	if cfg.ClientBuffer != Default().ClientBuffer {
		t.Fatalf("zero fields must not override: client buffer = %d", cfg.ClientBuffer)
	}
}
