// Listingscope - Airbnb Listings Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/listingscope

// Package logging provides the process-wide zerolog logger for Listingscope.
//
// All packages log through the helpers in this package rather than holding
// their own zerolog instances, so that a single Init call at startup controls
// level, format and caller reporting everywhere.
//
//	logging.Init(logging.Config{Level: "info", Format: "json"})
//	logging.Info().Str("source", path).Int("records", n).Msg("Dataset loaded")
//	logging.Ctx(ctx).Warn().Err(err).Msg("Render failed")
//
// Environment variables (read by internal/config, not here):
//   - LOG_LEVEL: trace, debug, info, warn, error (default: info)
//   - LOG_FORMAT: json, console (default: json)
//   - LOG_CALLER: true/false (default: false)
package logging

import (
	"io"
	"os"
	"strings"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
)

// Config holds logging configuration.
type Config struct {
	// Level is the minimum log level: trace, debug, info, warn, error, fatal, panic, disabled.
	Level string

	// Format is the output format: json or console.
	Format string

	// Caller includes caller file and line number in logs.
	Caller bool

	// Timestamp enables timestamps in log output.
	Timestamp bool

	// Fields are attached to every line, e.g. {"service": "listingscope"}.
	Fields map[string]string

	// Output is the writer for log output. Default: os.Stderr
	Output io.Writer
}

// DefaultConfig returns the default logging configuration.
func DefaultConfig() Config {
	return Config{
		Level:     "info",
		Format:    "json",
		Timestamp: true,
		Output:    os.Stderr,
	}
}

var global atomic.Pointer[zerolog.Logger]

//nolint:gochecknoinits // logging must work before Init is called
func init() {
	Init(DefaultConfig())
}

// Init (re)configures the global logger. Safe to call more than once and
// concurrently with logging calls.
func Init(cfg Config) {
	l := build(cfg)
	global.Store(&l)
}

func build(cfg Config) zerolog.Logger {
	if cfg.Output == nil {
		cfg.Output = os.Stderr
	}

	zerolog.SetGlobalLevel(parseLevel(cfg.Level))
	zerolog.TimeFieldFormat = time.RFC3339
	zerolog.TimestampFieldName = "time"
	zerolog.MessageFieldName = "message"

	output := cfg.Output
	if strings.EqualFold(cfg.Format, "console") {
		output = zerolog.ConsoleWriter{Out: cfg.Output, TimeFormat: "15:04:05"}
	}

	ctx := zerolog.New(output).With()
	if cfg.Timestamp {
		ctx = ctx.Timestamp()
	}
	if cfg.Caller {
		ctx = ctx.Caller()
	}
	if len(cfg.Fields) > 0 {
		fields := make(map[string]interface{}, len(cfg.Fields))
		for k, v := range cfg.Fields {
			fields[k] = v
		}
		ctx = ctx.Fields(fields)
	}
	return ctx.Logger()
}

// parseLevel maps a configured level name to zerolog. "warning" is accepted
// for warn; blank or unknown names fall back to info.
func parseLevel(level string) zerolog.Level {
	level = strings.ToLower(strings.TrimSpace(level))
	if level == "warning" {
		level = "warn"
	}
	l, err := zerolog.ParseLevel(level)
	if err != nil || l == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return l
}

// Logger returns the global logger instance.
func Logger() zerolog.Logger {
	return *global.Load()
}

// SetLogger replaces the global logger instance. Intended for tests.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func SetLogger(l zerolog.Logger) {
	global.Store(&l)
}

// With creates a child logger context from the global logger.
func With() zerolog.Context {
	return global.Load().With()
}

// Debug starts a new message with debug level.
func Debug() *zerolog.Event { return global.Load().Debug() }

// Info starts a new message with info level.
func Info() *zerolog.Event { return global.Load().Info() }

// Warn starts a new message with warning level.
func Warn() *zerolog.Event { return global.Load().Warn() }

// Error starts a new message with error level.
func Error() *zerolog.Event { return global.Load().Error() }

// Fatal starts a new message with fatal level; os.Exit(1) follows the write.
func Fatal() *zerolog.Event { return global.Load().Fatal() }

// Err starts an error level message carrying err.
func Err(err error) *zerolog.Event { return global.Load().Err(err) }

// GetLevel returns the current global log level.
func GetLevel() zerolog.Level {
	return zerolog.GlobalLevel()
}

// SetLevelString updates the global log level from a string.
func SetLevelString(level string) {
	zerolog.SetGlobalLevel(parseLevel(level))
}

// NewTestLogger creates a logger that writes JSON lines to w.
func NewTestLogger(w io.Writer) zerolog.Logger {
	return zerolog.New(w).With().Timestamp().Logger()
}
