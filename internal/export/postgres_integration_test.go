// Listingscope - Airbnb Listings Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/listingscope

//go:build integration

package export

import (
	"context"
	"testing"
	"time"

	"github.com/tomtom215/listingscope/internal/listings"
	"github.com/tomtom215/listingscope/internal/testinfra"
)

func TestPostgresWriterIntegration(t *testing.T) {
	pg := testinfra.StartPostgres(t)

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	pw, err := OpenPostgres(ctx, PostgresOptions{DSN: pg.DSN, Table: "listings", BatchSize: 1})
	if err != nil {
		t.Fatalf("OpenPostgres: %v", err)
	}
	defer pw.Close()

	n, err := pw.Write(ctx, "v1", sampleRecords(), false)
	if err != nil || n != 2 {
		t.Fatalf("Write(v1) = %d, %v", n, err)
	}

	// Upsert one existing id and prune the other.
	updated := []listings.Record{sampleRecords()[0]}
	updated[0].Price = 99
	if _, err := pw.Write(ctx, "v2", updated, true); err != nil {
		t.Fatalf("Write(v2): %v", err)
	}

	count, err := pw.Count(ctx)
	if err != nil || count != 1 {
		t.Fatalf("Count() = %d, %v; want 1", count, err)
	}

	var price float64
	var version string
	if err := pw.db.QueryRowContext(ctx, `SELECT price, snapshot_version FROM listings WHERE id = '1'`).Scan(&price, &version); err != nil {
		t.Fatalf("select: %v", err)
	}
	if price != 99 || version != "v2" {
		t.Errorf("row = %v/%s, want 99/v2", price, version)
	}
}
