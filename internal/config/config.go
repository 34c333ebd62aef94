// Package config loads configuration from an optional YAML file and
// environment variables.
package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultAPIBase is the hosted API the dashboard talks to.
const DefaultAPIBase = "https://neocities-api.vercel.app"

// Config holds sitedeck configuration.
type Config struct {
	// Remote API
	APIBase    string        `yaml:"api_base"`
	APITimeout time.Duration `yaml:"api_timeout"`

	// Server
	ListenAddr  string `yaml:"listen_addr"`
	MetricsAddr string `yaml:"metrics_addr"`

	// Logging
	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`

	// Preferences
	PrefsPath string `yaml:"prefs_path"`

	// Notifications
	NotifyLifetime time.Duration `yaml:"notify_lifetime"`

	// Dashboard access (optional; both must be set)
	DashboardUser           string `yaml:"dashboard_user"`
	DashboardPasswordBcrypt string `yaml:"dashboard_password_bcrypt"`

	// Uploads
	MaxUploadSize int64 `yaml:"max_upload_size"`
}

// Defaults returns the built-in configuration.
func Defaults() *Config {
	return &Config{
		APIBase:        DefaultAPIBase,
		APITimeout:     30 * time.Second,
		ListenAddr:     "127.0.0.1:8089",
		MetricsAddr:    "127.0.0.1:9099",
		LogLevel:       "info",
		LogFormat:      "console",
		PrefsPath:      defaultPrefsPath(),
		NotifyLifetime: 5 * time.Second,
		MaxUploadSize:  100 * 1024 * 1024, // 100MB default
	}
}

// Load reads the file named by SITEDECK_CONFIG (if any), then applies
// environment overrides.
func Load() (*Config, error) {
	cfg := Defaults()

	if path := os.Getenv("SITEDECK_CONFIG"); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}

	cfg.APIBase = envOr("SITEDECK_API_BASE", cfg.APIBase)
	cfg.APITimeout = envDuration("API_TIMEOUT", cfg.APITimeout)
	cfg.ListenAddr = envOr("LISTEN_ADDR", cfg.ListenAddr)
	cfg.MetricsAddr = envOr("METRICS_ADDR", cfg.MetricsAddr)
	cfg.LogLevel = envOr("LOG_LEVEL", cfg.LogLevel)
	cfg.LogFormat = envOr("LOG_FORMAT", cfg.LogFormat)
	cfg.PrefsPath = envOr("PREFS_PATH", cfg.PrefsPath)
	cfg.NotifyLifetime = envDuration("NOTIFY_LIFETIME", cfg.NotifyLifetime)
	cfg.DashboardUser = envOr("DASHBOARD_USER", cfg.DashboardUser)
	cfg.DashboardPasswordBcrypt = envOr("DASHBOARD_PASSWORD_BCRYPT", cfg.DashboardPasswordBcrypt)
	cfg.MaxUploadSize = envInt64("MAX_UPLOAD_SIZE", cfg.MaxUploadSize)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

// Validate checks the values that have no sensible fallback.
func (c *Config) Validate() error {
	u, err := url.Parse(c.APIBase)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("SITEDECK_API_BASE must be an absolute URL, got %q", c.APIBase)
	}
	if c.ListenAddr == "" {
		return fmt.Errorf("LISTEN_ADDR is required")
	}
	if (c.DashboardUser == "") != (c.DashboardPasswordBcrypt == "") {
		return fmt.Errorf("DASHBOARD_USER and DASHBOARD_PASSWORD_BCRYPT must be set together")
	}
	if c.APITimeout <= 0 {
		return fmt.Errorf("API_TIMEOUT must be positive")
	}
	if c.NotifyLifetime <= 0 {
		return fmt.Errorf("NOTIFY_LIFETIME must be positive")
	}
	return nil
}

// GuardEnabled reports whether the dashboard requires basic auth.
func (c *Config) GuardEnabled() bool {
	return c.DashboardUser != "" && c.DashboardPasswordBcrypt != ""
}

func defaultPrefsPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "sitedeck-prefs.db"
	}
	return filepath.Join(dir, "sitedeck", "prefs.db")
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt64(key string, fallback int64) int64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	i, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return fallback
	}
	return i
}

func envDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}
