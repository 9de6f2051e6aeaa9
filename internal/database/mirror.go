// Listingscope - Airbnb Listings Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/listingscope

package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/tomtom215/listingscope/internal/listings"
	"github.com/tomtom215/listingscope/internal/logging"
	"github.com/tomtom215/listingscope/internal/metrics"
)

// insertBatchSize is the number of rows per multi-row INSERT.
const insertBatchSize = 500

const listingColumns = 11

// ReplaceListings swaps the mirrored rows for records in one transaction.
// Readers see either the old or the new snapshot, never a mix.
func (db *DB) ReplaceListings(ctx context.Context, version string, records []listings.Record) (err error) {
	start := time.Now()
	defer func() { metrics.RecordDBQuery("replace_listings", time.Since(start), err) }()

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin mirror transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, `DELETE FROM listings`); err != nil {
		return fmt.Errorf("clear listings: %w", err)
	}

	for lo := 0; lo < len(records); lo += insertBatchSize {
		hi := min(lo+insertBatchSize, len(records))
		if err = insertBatch(ctx, tx, records[lo:hi]); err != nil {
			return err
		}
	}

	if _, err = tx.ExecContext(ctx, `
		INSERT INTO mirror_state (singleton, snapshot_version, row_count, synced_at)
		VALUES (1, ?, ?, ?)
		ON CONFLICT (singleton) DO UPDATE SET
			snapshot_version = excluded.snapshot_version,
			row_count = excluded.row_count,
			synced_at = excluded.synced_at`,
		version, len(records), time.Now().UTC()); err != nil {
		return fmt.Errorf("update mirror state: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit mirror transaction: %w", err)
	}

	db.mu.Lock()
	db.version = version
	db.mu.Unlock()

	logging.Debug().Str("version", version).Int("rows", len(records)).Dur("duration", time.Since(start)).Msg("Analytics mirror synced")
	return nil
}

func insertBatch(ctx context.Context, tx *sql.Tx, batch []listings.Record) error {
	if len(batch) == 0 {
		return nil
	}

	placeholder := "(" + strings.TrimSuffix(strings.Repeat("?, ", listingColumns), ", ") + ")"
	var query strings.Builder
	query.WriteString(`INSERT INTO listings (id, name, neighbourhood, neighbourhood_group, property_type, room_type, price, latitude, longitude, rating, rating_bucket) VALUES `)

	args := make([]interface{}, 0, len(batch)*listingColumns)
	for i := range batch {
		if i > 0 {
			query.WriteString(", ")
		}
		query.WriteString(placeholder)

		r := &batch[i]
		var lat, lon, rating sql.NullFloat64
		if r.HasLocation {
			lat = sql.NullFloat64{Float64: r.Latitude, Valid: true}
			lon = sql.NullFloat64{Float64: r.Longitude, Valid: true}
		}
		if r.HasRating {
			rating = sql.NullFloat64{Float64: r.Rating, Valid: true}
		}
		args = append(args,
			r.ID, r.Name, r.Neighbourhood, r.NeighbourhoodGroup, r.PropertyType, r.RoomType,
			r.Price, lat, lon, rating, r.RatingBucket)
	}

	if _, err := tx.ExecContext(ctx, query.String(), args...); err != nil {
		return fmt.Errorf("insert listings batch: %w", err)
	}
	return nil
}

// Count returns the number of mirrored rows.
func (db *DB) Count(ctx context.Context) (int, error) {
	var n int
	if err := db.conn.QueryRowContext(ctx, `SELECT count(*) FROM listings`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count listings: %w", err)
	}
	return n, nil
}
