// Listingscope - Airbnb Listings Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/listingscope

// Package config loads Listingscope configuration.
//
// Precedence, lowest to highest:
//
//  1. Built-in defaults (defaultConfig)
//  2. YAML file: $CONFIG_PATH, ./config.yaml, ./config.yml, /etc/listingscope/config.yaml
//  3. Environment variables, including any set by a .env file in the working directory
//
// Only the environment variables listed in envMappings are read; anything
// else in the environment is ignored.
package config

import (
	"fmt"
	"strings"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Dataset  DatasetConfig  `koanf:"dataset"`
	Server   ServerConfig   `koanf:"server"`
	API      APIConfig      `koanf:"api"`
	Database DatabaseConfig `koanf:"database"`
	Session  SessionConfig  `koanf:"session"`
	Cache    CacheConfig    `koanf:"cache"`
	Security SecurityConfig `koanf:"security"`
	Logging  LoggingConfig  `koanf:"logging"`
	Export   ExportConfig   `koanf:"export"`
}

// DatasetConfig describes where listings come from and how they are rendered.
type DatasetConfig struct {
	// Source is a local path or an http(s) URL. A ".gz" suffix or a gzip
	// Content-Encoding/Content-Type is decompressed transparently.
	Source string `koanf:"source"`

	// RefreshInterval reloads the source periodically; 0 loads once at startup.
	RefreshInterval time.Duration `koanf:"refresh_interval"`

	// FetchTimeout bounds one remote download.
	FetchTimeout time.Duration `koanf:"fetch_timeout"`

	// FetchMinInterval is the minimum spacing between remote downloads,
	// including manual reloads.
	FetchMinInterval time.Duration `koanf:"fetch_min_interval"`

	// MaxBins caps the price histogram bin count.
	MaxBins int `koanf:"max_bins"`

	// TopNeighbourhoods folds neighbourhoods beyond this rank into "Other"; 0 keeps all.
	TopNeighbourhoods int `koanf:"top_neighbourhoods"`

	// MaxMapPoints caps points returned for the map; 0 is unlimited.
	MaxMapPoints int `koanf:"max_map_points"`
}

// IsRemote reports whether Source is an http(s) URL.
func (d DatasetConfig) IsRemote() bool {
	s := strings.ToLower(d.Source)
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port            int           `koanf:"port"`
	Host            string        `koanf:"host"`
	Timeout         time.Duration `koanf:"timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
	Environment     string        `koanf:"environment"`
}

// Addr returns host:port for http.Server.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// APIConfig holds API pagination settings.
type APIConfig struct {
	DefaultPageSize int `koanf:"default_page_size"`
	MaxPageSize     int `koanf:"max_page_size"`
}

// DatabaseConfig controls the DuckDB analytics mirror.
type DatabaseConfig struct {
	Enabled bool `koanf:"enabled"`

	// Path of the DuckDB file; empty keeps the mirror in memory.
	Path      string `koanf:"path"`
	MaxMemory string `koanf:"max_memory"`
	Threads   int    `koanf:"threads"`
}

// SessionConfig selects where per-session criteria are stored.
type SessionConfig struct {
	// Store is "memory" or "badger".
	Store string `koanf:"store"`

	// Path is the Badger directory when Store is "badger".
	Path string `koanf:"path"`

	TTL time.Duration `koanf:"ttl"`
}

// CacheConfig sizes the rendered view cache.
type CacheConfig struct {
	Size int           `koanf:"size"`
	TTL  time.Duration `koanf:"ttl"`
}

// SecurityConfig holds CORS and rate limiting settings.
type SecurityConfig struct {
	CORSOrigins       []string      `koanf:"cors_origins"`
	RateLimitReqs     int           `koanf:"rate_limit_reqs"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
}

// LoggingConfig mirrors logging.Config for the koanf layers.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// ExportConfig configures the Postgres export sink used by listings-export.
type ExportConfig struct {
	PostgresHost     string `koanf:"postgres_host"`
	PostgresPort     int    `koanf:"postgres_port"`
	PostgresUser     string `koanf:"postgres_user"`
	PostgresPassword string `koanf:"postgres_password"`
	PostgresDB       string `koanf:"postgres_db"`
	PostgresSSLMode  string `koanf:"postgres_sslmode"`
	Table            string `koanf:"table"`
	BatchSize        int    `koanf:"batch_size"`
}

// DSN returns the lib/pq connection string.
func (e ExportConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		e.PostgresHost, e.PostgresPort, e.PostgresUser, e.PostgresPassword, e.PostgresDB, e.PostgresSSLMode)
}

// IsProduction reports whether the server runs in production mode.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Server.Environment, "production")
}

// Load reads configuration from defaults, config file and environment.
func Load() (*Config, error) {
	return LoadWithKoanf()
}
