// Listingscope - Airbnb Listings Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/listingscope

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// isolate points CONFIG_PATH and DOTENV_PATH at files that do not exist so
// that tests never pick up a developer's local configuration.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv(ConfigPathEnvVar, filepath.Join(dir, "absent.yaml"))
	t.Setenv(DotEnvPathEnvVar, filepath.Join(dir, "absent.env"))
	return dir
}

func TestDefaultConfig(t *testing.T) {
	cfg := defaultConfig()

	if cfg.Server.Port != 8501 {
		t.Errorf("Server.Port = %d, want 8501", cfg.Server.Port)
	}
	if cfg.Dataset.MaxBins != 40 {
		t.Errorf("Dataset.MaxBins = %d, want 40", cfg.Dataset.MaxBins)
	}
	if cfg.Dataset.RefreshInterval != 0 {
		t.Errorf("Dataset.RefreshInterval = %v, want 0", cfg.Dataset.RefreshInterval)
	}
	if cfg.Session.Store != "memory" {
		t.Errorf("Session.Store = %q, want memory", cfg.Session.Store)
	}
	if !cfg.Database.Enabled || cfg.Database.Path != "" {
		t.Errorf("expected in-memory DuckDB mirror by default, got %+v", cfg.Database)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestEnvTransformFunc(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"LISTINGS_SOURCE":    "dataset.source",
		"HTTP_PORT":          "server.port",
		"SESSION_STORE":      "session.store",
		"CORS_ORIGINS":       "security.cors_origins",
		"postgres_password":  "export.postgres_password",
		"PATH":               "",
		"UNRELATED_VARIABLE": "",
	}
	for in, want := range tests {
		if got := envTransformFunc(in); got != want {
			t.Errorf("envTransformFunc(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestLoadWithKoanfEnvVars(t *testing.T) {
	isolate(t)
	t.Setenv("LISTINGS_SOURCE", "https://data.insideairbnb.com/united-states/ca/san-francisco/listings.csv.gz")
	t.Setenv("HTTP_PORT", "9000")
	t.Setenv("DATASET_REFRESH_INTERVAL", "6h")
	t.Setenv("CORS_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := LoadWithKoanf()
	if err != nil {
		t.Fatalf("LoadWithKoanf: %v", err)
	}
	if !cfg.Dataset.IsRemote() {
		t.Error("expected remote dataset source")
	}
	if cfg.Server.Port != 9000 {
		t.Errorf("Server.Port = %d, want 9000", cfg.Server.Port)
	}
	if cfg.Dataset.RefreshInterval != 6*time.Hour {
		t.Errorf("RefreshInterval = %v, want 6h", cfg.Dataset.RefreshInterval)
	}
	if len(cfg.Security.CORSOrigins) != 2 || cfg.Security.CORSOrigins[1] != "https://b.example" {
		t.Errorf("CORSOrigins = %v", cfg.Security.CORSOrigins)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q, want debug", cfg.Logging.Level)
	}
}

func TestLoadWithKoanfConfigFileAndEnvOverride(t *testing.T) {
	dir := isolate(t)
	configPath := filepath.Join(dir, "config.yaml")
	content := `
dataset:
  source: /srv/listings.csv
  max_bins: 25
server:
  port: 8080
session:
  store: badger
  path: /srv/sessions
logging:
  level: warn
`
	if err := os.WriteFile(configPath, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv(ConfigPathEnvVar, configPath)
	t.Setenv("HTTP_PORT", "9999")

	cfg, err := LoadWithKoanf()
	if err != nil {
		t.Fatalf("LoadWithKoanf: %v", err)
	}
	if cfg.Dataset.Source != "/srv/listings.csv" || cfg.Dataset.MaxBins != 25 {
		t.Errorf("file values not applied: %+v", cfg.Dataset)
	}
	if cfg.Server.Port != 9999 {
		t.Errorf("env should override file: port = %d", cfg.Server.Port)
	}
	if cfg.Session.Store != "badger" || cfg.Session.Path != "/srv/sessions" {
		t.Errorf("unexpected session config: %+v", cfg.Session)
	}
	if cfg.Cache.Size != 256 {
		t.Errorf("defaults should survive file layer: cache size = %d", cfg.Cache.Size)
	}
}

func TestLoadDotEnv(t *testing.T) {
	dir := isolate(t)
	envPath := filepath.Join(dir, ".env")
	if err := os.WriteFile(envPath, []byte("HISTOGRAM_MAX_BINS=12\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv(DotEnvPathEnvVar, envPath)
	// Registers cleanup that restores the original state after godotenv sets it.
	t.Setenv("HISTOGRAM_MAX_BINS", "")
	os.Unsetenv("HISTOGRAM_MAX_BINS")

	cfg, err := LoadWithKoanf()
	if err != nil {
		t.Fatalf("LoadWithKoanf: %v", err)
	}
	if cfg.Dataset.MaxBins != 12 {
		t.Errorf("MaxBins = %d, want 12 from .env", cfg.Dataset.MaxBins)
	}
}

func TestLoadWithKoanfValidation(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr string
	}{
		{"bad port", map[string]string{"HTTP_PORT": "70000"}, "HTTP_PORT"},
		{"ftp source", map[string]string{"LISTINGS_SOURCE": "ftp://example.com/listings.csv"}, "LISTINGS_SOURCE"},
		{"bare host source", map[string]string{"LISTINGS_SOURCE": "https://example.com"}, "LISTINGS_SOURCE"},
		{"short refresh", map[string]string{"DATASET_REFRESH_INTERVAL": "10s"}, "DATASET_REFRESH_INTERVAL"},
		{"bins", map[string]string{"HISTOGRAM_MAX_BINS": "0"}, "HISTOGRAM_MAX_BINS"},
		{"session store", map[string]string{"SESSION_STORE": "redis"}, "SESSION_STORE"},
		{"badger without path", map[string]string{"SESSION_STORE": "badger", "SESSION_STORE_PATH": ""}, "SESSION_STORE_PATH"},
		{"page sizes", map[string]string{"API_DEFAULT_PAGE_SIZE": "50", "API_MAX_PAGE_SIZE": "10"}, "API_MAX_PAGE_SIZE"},
		{"wildcard cors in production", map[string]string{"ENVIRONMENT": "production"}, "CORS_ORIGINS"},
		{"log format", map[string]string{"LOG_FORMAT": "xml"}, "LOG_FORMAT"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			isolate(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := LoadWithKoanf()
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("expected error mentioning %s, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestRateLimitDisabledSkipsBounds(t *testing.T) {
	isolate(t)
	t.Setenv("DISABLE_RATE_LIMIT", "true")
	t.Setenv("RATE_LIMIT_REQUESTS", "0")

	cfg, err := LoadWithKoanf()
	if err != nil {
		t.Fatalf("LoadWithKoanf: %v", err)
	}
	if !cfg.Security.RateLimitDisabled {
		t.Error("expected rate limiting disabled")
	}
}

func TestExportDSN(t *testing.T) {
	t.Parallel()

	e := defaultConfig().Export
	e.PostgresPassword = "secret"
	want := "host=localhost port=5432 user=listingscope password=secret dbname=listingscope sslmode=disable"
	if got := e.DSN(); got != want {
		t.Errorf("DSN() = %q, want %q", got, want)
	}
}

func TestServerAddr(t *testing.T) {
	t.Parallel()

	s := ServerConfig{Host: "127.0.0.1", Port: 8501}
	if got := s.Addr(); got != "127.0.0.1:8501" {
		t.Errorf("Addr() = %q", got)
	}
}
