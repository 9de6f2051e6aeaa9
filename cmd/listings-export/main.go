// Listingscope - Airbnb Listings Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/listingscope

// Command listings-export loads the configured listings source once, applies
// optional filter criteria, and writes the normalized rows to PostgreSQL or
// to a CSV file.
//
// Connection settings come from the same configuration layers as the server
// (POSTGRES_HOST, POSTGRES_DB, EXPORT_TABLE, EXPORT_BATCH_SIZE, ...).
//
//	listings-export -to postgres -prune
//	listings-export -to csv -out mission.csv -filter 'neighbourhood=Mission&price_max=300'
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tomtom215/listingscope/internal/config"
	"github.com/tomtom215/listingscope/internal/dataset"
	"github.com/tomtom215/listingscope/internal/export"
	"github.com/tomtom215/listingscope/internal/filter"
	"github.com/tomtom215/listingscope/internal/listings"
	"github.com/tomtom215/listingscope/internal/logging"
	"github.com/tomtom215/listingscope/internal/validation"
)

type options struct {
	to      string
	out     string
	filter  string
	prune   bool
	timeout time.Duration
}

func main() {
	var opts options
	flag.StringVar(&opts.to, "to", "postgres", "destination: postgres or csv")
	flag.StringVar(&opts.out, "out", "-", "CSV output path, - for stdout")
	flag.StringVar(&opts.filter, "filter", "", "filter criteria as a query string, e.g. room_type=Private+room&price_max=200")
	flag.BoolVar(&opts.prune, "prune", false, "delete Postgres rows from earlier loads")
	flag.DurationVar(&opts.timeout, "timeout", 10*time.Minute, "overall export timeout")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}
	logging.Init(logging.Config{
		Level:     cfg.Logging.Level,
		Format:    cfg.Logging.Format,
		Caller:    cfg.Logging.Caller,
		Timestamp: true,
		Fields:    map[string]string{"service": "listings-export"},
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, opts.timeout)
	defer cancel()

	if err := run(ctx, cfg, opts); err != nil {
		logging.Fatal().Err(err).Msg("Export failed")
	}
}

func run(ctx context.Context, cfg *config.Config, opts options) error {
	store := dataset.NewStore(dataset.NewSource(cfg.Dataset))
	snap, _, err := store.Reload(ctx)
	if err != nil {
		return fmt.Errorf("load %s: %w", cfg.Dataset.Source, err)
	}

	records, err := selectRecords(snap, opts.filter)
	if err != nil {
		return err
	}
	log := logging.With().
		Str("version", snap.Version()).
		Str("to", opts.to).
		Int("records", len(records)).
		Logger()

	start := time.Now()
	var written int
	switch opts.to {
	case "postgres":
		written, err = toPostgres(ctx, cfg.Export, snap.Version(), records, opts.prune)
	case "csv":
		written, err = toCSV(opts.out, records)
	default:
		return fmt.Errorf("unknown destination %q (want postgres or csv)", opts.to)
	}
	if err != nil {
		return err
	}
	log.Info().Int("written", written).Dur("duration", time.Since(start)).Msg("Export completed")
	return nil
}

// selectRecords returns the snapshot rows matching query, or all rows when
// query is empty.
func selectRecords(snap *dataset.Snapshot, query string) ([]listings.Record, error) {
	if query == "" {
		return snap.Records(), nil
	}
	values, err := url.ParseQuery(query)
	if err != nil {
		return nil, fmt.Errorf("parse -filter: %w", err)
	}
	c, err := filter.ParseQuery(values, filter.Default(snap.Options()))
	if err != nil {
		return nil, fmt.Errorf("parse -filter: %w", err)
	}
	if err := validation.ValidateStruct(c); err != nil {
		return nil, fmt.Errorf("invalid -filter: %w", err)
	}
	return filter.Apply(snap.Records(), c), nil
}

func toPostgres(ctx context.Context, cfg config.ExportConfig, version string, records []listings.Record, prune bool) (int, error) {
	pw, err := export.OpenPostgres(ctx, export.PostgresOptions{
		DSN:       cfg.DSN(),
		Table:     cfg.Table,
		BatchSize: cfg.BatchSize,
	})
	if err != nil {
		return 0, err
	}
	defer func() {
		if err := pw.Close(); err != nil {
			logging.Warn().Err(err).Msg("Error closing Postgres connection")
		}
	}()
	return pw.Write(ctx, version, records, prune)
}

func toCSV(path string, records []listings.Record) (n int, err error) {
	var w io.Writer = os.Stdout
	if path != "-" {
		f, createErr := os.Create(path) // #nosec G304 -- operator-supplied output path
		if createErr != nil {
			return 0, fmt.Errorf("create %s: %w", path, createErr)
		}
		defer func() {
			err = errors.Join(err, f.Close())
		}()
		w = f
	}
	return export.WriteCSV(w, records)
}
