// Listingscope - Airbnb Listings Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/listingscope

package export

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/tomtom215/listingscope/internal/listings"
)

func sampleRecords() []listings.Record {
	return []listings.Record{
		{ID: "1", Name: "Loft, sunny", Neighbourhood: "Mission", PropertyType: "Entire loft", RoomType: "Entire home/apt",
			Price: 120.5, Latitude: 37.76, Longitude: -122.42, HasLocation: true, Rating: 4.9, HasRating: true, RatingBucket: "(4-5]"},
		{ID: "2", Name: `Room "A"`, Neighbourhood: listings.NotListed, PropertyType: "Private room", RoomType: "Private room", Price: 85},
	}
}

func TestWriteCSVLoadsBack(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	n, err := WriteCSV(&buf, sampleRecords())
	if err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}
	if n != 2 {
		t.Errorf("WriteCSV() = %d, want 2", n)
	}

	records, report, err := listings.Load(&buf)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if report.Malformed != 0 || len(report.MissingColumns) != 0 {
		t.Errorf("unexpected report: %+v", report)
	}
	if len(records) != 2 {
		t.Fatalf("len(records) = %d, want 2", len(records))
	}

	want := sampleRecords()
	for i := range want {
		got := records[i]
		if got.ID != want[i].ID || got.Name != want[i].Name || got.Price != want[i].Price ||
			got.Neighbourhood != want[i].Neighbourhood || got.HasLocation != want[i].HasLocation ||
			got.HasRating != want[i].HasRating || got.RatingBucket != want[i].RatingBucket {
			t.Errorf("record %d = %+v, want %+v", i, got, want[i])
		}
	}
}

func TestWriteCSVEmpty(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	if _, err := WriteCSV(&buf, nil); err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}
	if got := strings.TrimSpace(buf.String()); got != strings.Join(CSVHeader, ",") {
		t.Errorf("empty export = %q, want header only", got)
	}
}

func TestDedupeByID(t *testing.T) {
	t.Parallel()

	in := []listings.Record{
		{ID: "a", Price: 1},
		{ID: "b", Price: 2},
		{ID: "a", Price: 3},
	}
	out := dedupeByID(in)
	if len(out) != 2 {
		t.Fatalf("len = %d, want 2", len(out))
	}
	if out[0].ID != "a" || out[0].Price != 3 || out[1].ID != "b" {
		t.Errorf("dedupeByID() = %+v", out)
	}
}

func TestOpenPostgresRejectsTableName(t *testing.T) {
	t.Parallel()

	for _, table := range []string{"", "Listings", "listings; drop table x", "1listings"} {
		_, err := OpenPostgres(context.Background(), PostgresOptions{DSN: "host=invalid", Table: table})
		if !errors.Is(err, ErrInvalidTable) {
			t.Errorf("OpenPostgres(table=%q) error = %v, want ErrInvalidTable", table, err)
		}
	}
}
