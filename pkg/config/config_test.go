package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Port != 8080 || cfg.LogLevel != "info" {
		t.Errorf("unexpected defaults: %+v", cfg)
	}
	if cfg.Addr() != "0.0.0.0:8080" {
		t.Errorf("unexpected addr: %s", cfg.Addr())
	}
}

func TestLoadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := "port: 9090\nlog_level: debug\nshutdown_timeout: 10s\ncors_origins:\n  - http://localhost:3000\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Port != 9090 {
		t.Errorf("expected port 9090, got %d", cfg.Port)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("expected log level debug, got %s", cfg.LogLevel)
	}
	if cfg.ShutdownTimeout != 10*time.Second {
		t.Errorf("expected 10s shutdown timeout, got %v", cfg.ShutdownTimeout)
	}
	if len(cfg.CORSOrigins) != 1 || cfg.CORSOrigins[0] != "http://localhost:3000" {
		t.Errorf("unexpected cors origins: %v", cfg.CORSOrigins)
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("SIMPLEKP_PORT", "7777")
	t.Setenv("SIMPLEKP_LOG_LEVEL", "warn")

	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Port != 7777 {
		t.Errorf("env port override ignored: %d", cfg.Port)
	}
	if cfg.LogLevel != "warn" {
		t.Errorf("env log level override ignored: %s", cfg.LogLevel)
	}
}

func TestInvalidPortRejected(t *testing.T) {
	t.Setenv("SIMPLEKP_PORT", "70000")
	if _, err := Load(""); err == nil {
		t.Fatal("expected error for out-of-range port")
	}
}
