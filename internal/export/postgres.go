// Listingscope - Airbnb Listings Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/listingscope

package export

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/lib/pq"

	"github.com/tomtom215/listingscope/internal/listings"
	"github.com/tomtom215/listingscope/internal/logging"
	"github.com/tomtom215/listingscope/internal/metrics"
)

// DefaultBatchSize is the number of rows per INSERT statement.
const DefaultBatchSize = 500

const postgresColumns = 12

var tableNamePattern = regexp.MustCompile(`^[a-z_][a-z0-9_]{0,62}$`)

// ErrInvalidTable is returned for table names outside [a-z_][a-z0-9_]*.
var ErrInvalidTable = errors.New("invalid export table name")

// PostgresWriter upserts listings into PostgreSQL.
type PostgresWriter struct {
	db        *sql.DB
	table     string
	batchSize int
}

// PostgresOptions configures OpenPostgres.
type PostgresOptions struct {
	DSN       string
	Table     string
	BatchSize int

	// ConnectAttempts bounds the startup ping loop; 0 means 10.
	ConnectAttempts int
	RetryDelay      time.Duration
}

// OpenPostgres connects, waits for the server to accept connections and
// creates the table if needed.
func OpenPostgres(ctx context.Context, opts PostgresOptions) (*PostgresWriter, error) {
	if !tableNamePattern.MatchString(opts.Table) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidTable, opts.Table)
	}
	if opts.BatchSize <= 0 {
		opts.BatchSize = DefaultBatchSize
	}
	if opts.ConnectAttempts <= 0 {
		opts.ConnectAttempts = 10
	}
	if opts.RetryDelay <= 0 {
		opts.RetryDelay = 2 * time.Second
	}

	db, err := sql.Open("postgres", opts.DSN)
	if err != nil {
		return nil, fmt.Errorf("postgres: open: %w", err)
	}

	for attempt := 1; attempt <= opts.ConnectAttempts; attempt++ {
		if err = db.PingContext(ctx); err == nil {
			break
		}
		logging.Debug().Err(err).Int("attempt", attempt).Msg("Postgres not ready")
		select {
		case <-ctx.Done():
			_ = db.Close()
			return nil, ctx.Err()
		case <-time.After(opts.RetryDelay):
		}
	}
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("postgres: ping failed after %d attempts: %w", opts.ConnectAttempts, err)
	}

	pw := &PostgresWriter{db: db, table: opts.Table, batchSize: opts.BatchSize}
	if err := pw.migrate(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("postgres: migrate: %w", err)
	}
	return pw, nil
}

func (pw *PostgresWriter) quotedTable() string {
	return pq.QuoteIdentifier(pw.table)
}

func (pw *PostgresWriter) migrate(ctx context.Context) error {
	t := pw.quotedTable()
	idx := func(col string) string {
		return fmt.Sprintf(`CREATE INDEX IF NOT EXISTS %s ON %s (%s);`,
			pq.QuoteIdentifier("idx_"+pw.table+"_"+col), t, col)
	}

	_, err := pw.db.ExecContext(ctx, fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			id                  TEXT PRIMARY KEY,
			name                TEXT NOT NULL DEFAULT '',
			neighbourhood       TEXT NOT NULL,
			neighbourhood_group TEXT NOT NULL DEFAULT '',
			property_type       TEXT NOT NULL DEFAULT '',
			room_type           TEXT NOT NULL,
			price               NUMERIC(12,2) NOT NULL,
			latitude            DOUBLE PRECISION,
			longitude           DOUBLE PRECISION,
			rating              NUMERIC(4,2),
			rating_bucket       TEXT NOT NULL DEFAULT '',
			snapshot_version    TEXT NOT NULL,
			exported_at         TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);
		%s
		%s
		%s`, t, idx("neighbourhood"), idx("room_type"), idx("price")))
	return err
}

// Write upserts records in batches inside one transaction. Rows sharing an
// id keep the last occurrence. When prune is set, rows from other snapshot
// versions are deleted afterwards so the table mirrors exactly this load.
func (pw *PostgresWriter) Write(ctx context.Context, version string, records []listings.Record, prune bool) (written int, err error) {
	rows := dedupeByID(records)

	tx, err := pw.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("postgres: begin: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	for lo := 0; lo < len(rows); lo += pw.batchSize {
		hi := min(lo+pw.batchSize, len(rows))
		if err = pw.upsertBatch(ctx, tx, version, rows[lo:hi]); err != nil {
			return written, err
		}
		written = hi
	}

	if prune {
		// #nosec G201 -- table name validated and quoted
		if _, err = tx.ExecContext(ctx, fmt.Sprintf(`DELETE FROM %s WHERE snapshot_version <> $1`, pw.quotedTable()), version); err != nil {
			return written, fmt.Errorf("postgres: prune: %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return 0, fmt.Errorf("postgres: commit: %w", err)
	}
	metrics.ExportRowsTotal.WithLabelValues("postgres").Add(float64(written))
	return written, nil
}

func (pw *PostgresWriter) upsertBatch(ctx context.Context, tx *sql.Tx, version string, batch []listings.Record) error {
	valueStrings := make([]string, 0, len(batch))
	valueArgs := make([]interface{}, 0, len(batch)*postgresColumns)

	for i := range batch {
		r := &batch[i]
		base := i * postgresColumns
		ph := make([]string, postgresColumns)
		for j := range ph {
			ph[j] = fmt.Sprintf("$%d", base+j+1)
		}
		valueStrings = append(valueStrings, "("+strings.Join(ph, ",")+")")

		var lat, lon, rating sql.NullFloat64
		if r.HasLocation {
			lat = sql.NullFloat64{Float64: r.Latitude, Valid: true}
			lon = sql.NullFloat64{Float64: r.Longitude, Valid: true}
		}
		if r.HasRating {
			rating = sql.NullFloat64{Float64: r.Rating, Valid: true}
		}
		valueArgs = append(valueArgs,
			r.ID, r.Name, r.Neighbourhood, r.NeighbourhoodGroup, r.PropertyType, r.RoomType,
			r.Price, lat, lon, rating, r.RatingBucket, version)
	}

	// #nosec G201 -- table name validated and quoted, values are bound
	query := fmt.Sprintf(`
		INSERT INTO %s (id, name, neighbourhood, neighbourhood_group, property_type, room_type,
			price, latitude, longitude, rating, rating_bucket, snapshot_version)
		VALUES %s
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			neighbourhood = EXCLUDED.neighbourhood,
			neighbourhood_group = EXCLUDED.neighbourhood_group,
			property_type = EXCLUDED.property_type,
			room_type = EXCLUDED.room_type,
			price = EXCLUDED.price,
			latitude = EXCLUDED.latitude,
			longitude = EXCLUDED.longitude,
			rating = EXCLUDED.rating,
			rating_bucket = EXCLUDED.rating_bucket,
			snapshot_version = EXCLUDED.snapshot_version,
			exported_at = NOW()`, pw.quotedTable(), strings.Join(valueStrings, ","))

	if _, err := tx.ExecContext(ctx, query, valueArgs...); err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) {
			return fmt.Errorf("postgres: upsert batch (%s %s): %w", pqErr.Code, pqErr.Code.Name(), err)
		}
		return fmt.Errorf("postgres: upsert batch: %w", err)
	}
	return nil
}

// dedupeByID keeps the last record for each id, preserving first-seen order.
func dedupeByID(records []listings.Record) []listings.Record {
	pos := make(map[string]int, len(records))
	out := make([]listings.Record, 0, len(records))
	for _, r := range records {
		if i, ok := pos[r.ID]; ok {
			out[i] = r
			continue
		}
		pos[r.ID] = len(out)
		out = append(out, r)
	}
	return out
}

// Count returns the number of rows in the export table.
func (pw *PostgresWriter) Count(ctx context.Context) (int, error) {
	var n int
	// #nosec G201 -- table name validated and quoted
	err := pw.db.QueryRowContext(ctx, fmt.Sprintf(`SELECT count(*) FROM %s`, pw.quotedTable())).Scan(&n)
	return n, err
}

// Close closes the connection pool.
func (pw *PostgresWriter) Close() error {
	return pw.db.Close()
}
