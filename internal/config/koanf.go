// Listingscope - Airbnb Listings Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/listingscope

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists config file locations in order of priority.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/listingscope/config.yaml",
	"/etc/listingscope/config.yml",
}

// ConfigPathEnvVar overrides the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

// DotEnvPathEnvVar overrides the .env file path.
const DotEnvPathEnvVar = "DOTENV_PATH"

func defaultConfig() *Config {
	return &Config{
		Dataset: DatasetConfig{
			Source:            "data/listings.csv",
			RefreshInterval:   0,
			FetchTimeout:      60 * time.Second,
			FetchMinInterval:  30 * time.Second,
			MaxBins:           40,
			TopNeighbourhoods: 0,
			MaxMapPoints:      0,
		},
		Server: ServerConfig{
			Port:            8501,
			Host:            "0.0.0.0",
			Timeout:         30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			Environment:     "development",
		},
		API: APIConfig{
			DefaultPageSize: 100,
			MaxPageSize:     1000,
		},
		Database: DatabaseConfig{
			Enabled:   true,
			Path:      "",
			MaxMemory: "512MB",
			Threads:   0,
		},
		Session: SessionConfig{
			Store: "memory",
			Path:  "/data/sessions",
			TTL:   24 * time.Hour,
		},
		Cache: CacheConfig{
			Size: 256,
			TTL:  10 * time.Minute,
		},
		Security: SecurityConfig{
			CORSOrigins:     []string{"*"},
			RateLimitReqs:   100,
			RateLimitWindow: time.Minute,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Export: ExportConfig{
			PostgresHost:    "localhost",
			PostgresPort:    5432,
			PostgresUser:    "listingscope",
			PostgresDB:      "listingscope",
			PostgresSSLMode: "disable",
			Table:           "listings",
			BatchSize:       500,
		},
	}
}

// LoadWithKoanf builds the configuration from three layers (defaults, YAML
// file, environment) and validates the result.
func LoadWithKoanf() (*Config, error) {
	if err := loadDotEnv(); err != nil {
		return nil, err
	}

	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if configPath := findConfigFile(); configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

// loadDotEnv populates the process environment from a .env file without
// overriding variables that are already set. A missing file is not an error.
func loadDotEnv() error {
	path := os.Getenv(DotEnvPathEnvVar)
	if path == "" {
		path = ".env"
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}
	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// sliceConfigPaths are parsed from comma-separated strings when set via env.
var sliceConfigPaths = []string{
	"security.cors_origins",
}

func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		strVal, ok := k.Get(path).(string)
		if !ok || strVal == "" {
			continue
		}
		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if err := k.Set(path, trimmed); err != nil {
			return fmt.Errorf("failed to set %s: %w", path, err)
		}
	}
	return nil
}

// envMappings maps environment variable names (lower-cased) to koanf paths.
var envMappings = map[string]string{
	"listings_source":            "dataset.source",
	"dataset_refresh_interval":   "dataset.refresh_interval",
	"dataset_fetch_timeout":      "dataset.fetch_timeout",
	"dataset_fetch_min_interval": "dataset.fetch_min_interval",
	"histogram_max_bins":         "dataset.max_bins",
	"top_neighbourhoods":         "dataset.top_neighbourhoods",
	"max_map_points":             "dataset.max_map_points",
	"http_port":                  "server.port",
	"http_host":                  "server.host",
	"http_timeout":               "server.timeout",
	"shutdown_timeout":           "server.shutdown_timeout",
	"environment":                "server.environment",
	"api_default_page_size":      "api.default_page_size",
	"api_max_page_size":          "api.max_page_size",
	"duckdb_enabled":             "database.enabled",
	"duckdb_path":                "database.path",
	"duckdb_max_memory":          "database.max_memory",
	"duckdb_threads":             "database.threads",
	"session_store":              "session.store",
	"session_store_path":         "session.path",
	"session_ttl":                "session.ttl",
	"view_cache_size":            "cache.size",
	"view_cache_ttl":             "cache.ttl",
	"cors_origins":               "security.cors_origins",
	"rate_limit_requests":        "security.rate_limit_reqs",
	"rate_limit_window":          "security.rate_limit_window",
	"disable_rate_limit":         "security.rate_limit_disabled",
	"log_level":                  "logging.level",
	"log_format":                 "logging.format",
	"log_caller":                 "logging.caller",
	"postgres_host":              "export.postgres_host",
	"postgres_port":              "export.postgres_port",
	"postgres_user":              "export.postgres_user",
	"postgres_password":          "export.postgres_password",
	"postgres_db":                "export.postgres_db",
	"postgres_sslmode":           "export.postgres_sslmode",
	"export_table":               "export.table",
	"export_batch_size":          "export.batch_size",
}

// envTransformFunc maps an environment variable to its koanf path.
// Unmapped variables return "" and are skipped.
//
//   - LISTINGS_SOURCE -> dataset.source
//   - HTTP_PORT -> server.port
//   - SESSION_STORE -> session.store
func envTransformFunc(key string) string {
	return envMappings[strings.ToLower(key)]
}
