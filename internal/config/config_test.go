package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"SITEDECK_CONFIG", "SITEDECK_API_BASE", "API_TIMEOUT", "LISTEN_ADDR",
		"METRICS_ADDR", "LOG_LEVEL", "LOG_FORMAT", "PREFS_PATH", "NOTIFY_LIFETIME",
		"DASHBOARD_USER", "DASHBOARD_PASSWORD_BCRYPT", "MAX_UPLOAD_SIZE",
	} {
		t.Setenv(k, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.APIBase != DefaultAPIBase {
		t.Errorf("APIBase = %q", cfg.APIBase)
	}
	if cfg.APITimeout != 30*time.Second || cfg.NotifyLifetime != 5*time.Second {
		t.Errorf("unexpected durations: %v %v", cfg.APITimeout, cfg.NotifyLifetime)
	}
	if cfg.MaxUploadSize != 100*1024*1024 {
		t.Errorf("MaxUploadSize = %d", cfg.MaxUploadSize)
	}
	if cfg.GuardEnabled() {
		t.Error("guard should be off by default")
	}
}

func TestLoadFileThenEnv(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "sitedeck.yaml")
	data := []byte("api_base: http://localhost:3000\nlisten_addr: 0.0.0.0:9000\napi_timeout: 10s\nlog_level: debug\n")
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("SITEDECK_CONFIG", path)
	t.Setenv("LOG_LEVEL", "warn")
	t.Setenv("NOTIFY_LIFETIME", "2s")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.APIBase != "http://localhost:3000" || cfg.ListenAddr != "0.0.0.0:9000" {
		t.Errorf("file values not applied: %+v", cfg)
	}
	if cfg.APITimeout != 10*time.Second {
		t.Errorf("APITimeout = %v", cfg.APITimeout)
	}
	if cfg.LogLevel != "warn" {
		t.Errorf("env must override file, got %q", cfg.LogLevel)
	}
	if cfg.NotifyLifetime != 2*time.Second {
		t.Errorf("NotifyLifetime = %v", cfg.NotifyLifetime)
	}
}

func TestLoadBadValuesFallBack(t *testing.T) {
	clearEnv(t)
	t.Setenv("API_TIMEOUT", "soon")
	t.Setenv("MAX_UPLOAD_SIZE", "lots")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.APITimeout != 30*time.Second || cfg.MaxUploadSize != 100*1024*1024 {
		t.Errorf("expected fallbacks, got %v %d", cfg.APITimeout, cfg.MaxUploadSize)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"relative api base", func(c *Config) { c.APIBase = "/api" }},
		{"no listen addr", func(c *Config) { c.ListenAddr = "" }},
		{"user without hash", func(c *Config) { c.DashboardUser = "admin" }},
		{"zero timeout", func(c *Config) { c.APITimeout = 0 }},
		{"zero lifetime", func(c *Config) { c.NotifyLifetime = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Defaults()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	clearEnv(t)
	t.Setenv("SITEDECK_CONFIG", filepath.Join(t.TempDir(), "missing.yaml"))
	if _, err := Load(); err == nil {
		t.Error("expected error for missing config file")
	}
}
