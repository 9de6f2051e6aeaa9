// Listingscope - Airbnb Listings Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/listingscope

package dataset

import (
	"time"

	"github.com/tomtom215/listingscope/internal/filter"
	"github.com/tomtom215/listingscope/internal/listings"
)

// Snapshot is one immutable, fully normalized load of the dataset.
// It satisfies dashboard.Source.
type Snapshot struct {
	records  []listings.Record
	options  filter.Options
	report   listings.LoadReport
	version  string
	source   string
	loadedAt time.Time
}

// NewSnapshot wraps already-normalized records. Callers must not modify
// records afterwards.
func NewSnapshot(records []listings.Record, report listings.LoadReport, source, version string, loadedAt time.Time) *Snapshot {
	if records == nil {
		records = []listings.Record{}
	}
	return &Snapshot{
		records:  records,
		options:  filter.BuildOptions(records),
		report:   report,
		version:  version,
		source:   source,
		loadedAt: loadedAt,
	}
}

// Records returns the normalized rows. The slice is shared; treat it as read-only.
func (s *Snapshot) Records() []listings.Record { return s.records }

// Options returns the filter choices observed in this snapshot.
func (s *Snapshot) Options() filter.Options { return s.options }

// Report returns the load diagnostics.
func (s *Snapshot) Report() listings.LoadReport { return s.report }

// Version identifies this snapshot. It changes on every successful reload.
func (s *Snapshot) Version() string { return s.version }

// Source names where the snapshot was read from.
func (s *Snapshot) Source() string { return s.source }

// LoadedAt is when the snapshot was published.
func (s *Snapshot) LoadedAt() time.Time { return s.loadedAt }

// Info summarizes a snapshot for health and reload responses.
type Info struct {
	Version          string    `json:"version"`
	Source           string    `json:"source"`
	LoadedAt         time.Time `json:"loaded_at"`
	Rows             int       `json:"rows"`
	Loaded           int       `json:"loaded"`
	Malformed        int       `json:"malformed"`
	InvalidLocations int       `json:"invalid_locations"`
	MissingColumns   []string  `json:"missing_columns,omitempty"`
}

// Info returns the snapshot summary.
func (s *Snapshot) Info() Info {
	return Info{
		Version:          s.version,
		Source:           s.source,
		LoadedAt:         s.loadedAt,
		Rows:             s.report.Rows,
		Loaded:           s.report.Loaded,
		Malformed:        s.report.Malformed,
		InvalidLocations: s.report.InvalidLocations,
		MissingColumns:   s.report.MissingColumns,
	}
}
