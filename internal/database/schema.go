// Listingscope - Airbnb Listings Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/listingscope

package database

import (
	"context"
	"fmt"
)

// listings mirrors listings.Record. id is not a key: exports occasionally
// repeat ids and the mirror keeps every normalized row.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS listings (
		id VARCHAR NOT NULL,
		name VARCHAR,
		neighbourhood VARCHAR NOT NULL,
		neighbourhood_group VARCHAR,
		property_type VARCHAR,
		room_type VARCHAR NOT NULL,
		price DOUBLE NOT NULL,
		latitude DOUBLE,
		longitude DOUBLE,
		rating DOUBLE,
		rating_bucket VARCHAR
	);`,
	`CREATE TABLE IF NOT EXISTS mirror_state (
		singleton INTEGER PRIMARY KEY,
		snapshot_version VARCHAR NOT NULL,
		row_count INTEGER NOT NULL,
		synced_at TIMESTAMP NOT NULL
	);`,
}

func (db *DB) createTables(ctx context.Context) error {
	for _, stmt := range schemaStatements {
		if _, err := db.conn.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to create schema: %w", err)
		}
	}

	// A file-backed mirror survives restarts; recover the version it holds.
	var version string
	err := db.conn.QueryRowContext(ctx, `SELECT snapshot_version FROM mirror_state WHERE singleton = 1`).Scan(&version)
	if err == nil {
		db.mu.Lock()
		db.version = version
		db.mu.Unlock()
	}
	return nil
}
