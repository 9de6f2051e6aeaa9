// Listingscope - Airbnb Listings Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/listingscope

package config

import (
	"fmt"
	"strings"
	"time"
)

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateDataset(); err != nil {
		return err
	}
	if err := c.validateServer(); err != nil {
		return err
	}
	if err := c.validateAPI(); err != nil {
		return err
	}
	if err := c.validateSession(); err != nil {
		return err
	}
	if err := c.validateCache(); err != nil {
		return err
	}
	if err := c.validateSecurity(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateDataset() error {
	d := c.Dataset
	if strings.TrimSpace(d.Source) == "" {
		return fmt.Errorf("LISTINGS_SOURCE is required")
	}
	if d.IsRemote() {
		if err := validateSourceURL(d.Source, "LISTINGS_SOURCE"); err != nil {
			return err
		}
	}
	if d.RefreshInterval != 0 && d.RefreshInterval < time.Minute {
		return fmt.Errorf("DATASET_REFRESH_INTERVAL must be 0 (disabled) or at least 1m, got %s", d.RefreshInterval)
	}
	if d.FetchTimeout <= 0 {
		return fmt.Errorf("DATASET_FETCH_TIMEOUT must be positive")
	}
	if d.FetchMinInterval < 0 {
		return fmt.Errorf("DATASET_FETCH_MIN_INTERVAL must not be negative")
	}
	if d.MaxBins < 1 || d.MaxBins > 500 {
		return fmt.Errorf("HISTOGRAM_MAX_BINS must be between 1 and 500, got %d", d.MaxBins)
	}
	if d.TopNeighbourhoods < 0 {
		return fmt.Errorf("TOP_NEIGHBOURHOODS must not be negative")
	}
	if d.MaxMapPoints < 0 {
		return fmt.Errorf("MAX_MAP_POINTS must not be negative")
	}
	return nil
}

func (c *Config) validateServer() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("HTTP_PORT must be between 1 and 65535, got %d", c.Server.Port)
	}
	if c.Server.Timeout <= 0 {
		return fmt.Errorf("HTTP_TIMEOUT must be positive")
	}
	switch strings.ToLower(c.Server.Environment) {
	case "development", "staging", "production":
	default:
		return fmt.Errorf("ENVIRONMENT must be development, staging or production, got %q", c.Server.Environment)
	}
	return nil
}

func (c *Config) validateAPI() error {
	if c.API.DefaultPageSize < 1 {
		return fmt.Errorf("API_DEFAULT_PAGE_SIZE must be at least 1")
	}
	if c.API.MaxPageSize < c.API.DefaultPageSize {
		return fmt.Errorf("API_MAX_PAGE_SIZE (%d) must be >= API_DEFAULT_PAGE_SIZE (%d)", c.API.MaxPageSize, c.API.DefaultPageSize)
	}
	return nil
}

func (c *Config) validateSession() error {
	switch c.Session.Store {
	case "memory":
	case "badger":
		if c.Session.Path == "" {
			return fmt.Errorf("SESSION_STORE_PATH is required when SESSION_STORE=badger")
		}
	default:
		return fmt.Errorf("SESSION_STORE must be memory or badger, got %q", c.Session.Store)
	}
	if c.Session.TTL < time.Minute {
		return fmt.Errorf("SESSION_TTL must be at least 1m")
	}
	return nil
}

func (c *Config) validateCache() error {
	if c.Cache.Size < 0 {
		return fmt.Errorf("VIEW_CACHE_SIZE must not be negative")
	}
	if c.Cache.Size > 0 && c.Cache.TTL <= 0 {
		return fmt.Errorf("VIEW_CACHE_TTL must be positive when the cache is enabled")
	}
	return nil
}

func (c *Config) validateSecurity() error {
	if c.Security.RateLimitDisabled {
		return nil
	}
	if c.Security.RateLimitReqs < 1 || c.Security.RateLimitReqs > 100000 {
		return fmt.Errorf("RATE_LIMIT_REQUESTS must be between 1 and 100000, got %d", c.Security.RateLimitReqs)
	}
	if c.Security.RateLimitWindow < time.Second {
		return fmt.Errorf("RATE_LIMIT_WINDOW must be at least 1s")
	}
	if c.IsProduction() {
		for _, o := range c.Security.CORSOrigins {
			if o == "*" {
				return fmt.Errorf("CORS_ORIGINS must not contain * in production")
			}
		}
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch strings.ToLower(c.Logging.Level) {
	case "trace", "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("LOG_LEVEL must be one of trace, debug, info, warn, error; got %q", c.Logging.Level)
	}
	switch strings.ToLower(c.Logging.Format) {
	case "json", "console":
	default:
		return fmt.Errorf("LOG_FORMAT must be json or console, got %q", c.Logging.Format)
	}
	return nil
}
