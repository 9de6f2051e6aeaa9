// Listingscope - Airbnb Listings Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/listingscope

package listings

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Column names as published in Inside Airbnb listings exports.
const (
	ColID                 = "id"
	ColName               = "name"
	ColNeighbourhood      = "neighbourhood_cleansed"
	ColNeighbourhoodGroup = "neighbourhood_group_cleansed"
	ColPropertyType       = "property_type"
	ColRoomType           = "room_type"
	ColPrice              = "price"
	ColLatitude           = "latitude"
	ColLongitude          = "longitude"
	ColRating             = "review_scores_rating"
)

// RequiredColumns must be present for a load to succeed.
var RequiredColumns = []string{ColPrice, ColRoomType}

// OptionalColumns degrade individual views when absent.
var OptionalColumns = []string{
	ColID, ColName, ColNeighbourhood, ColNeighbourhoodGroup,
	ColPropertyType, ColLatitude, ColLongitude, ColRating,
}

// columnAliases maps a canonical column to older export names.
var columnAliases = map[string][]string{
	ColNeighbourhood:      {"neighbourhood"},
	ColNeighbourhoodGroup: {"neighbourhood_group"},
}

// maxMalformedSamples bounds LoadReport.Samples.
const maxMalformedSamples = 20

// MalformedSample is a JSON-friendly summary of a dropped row.
type MalformedSample struct {
	Line   int    `json:"line"`
	ID     string `json:"id"`
	Field  string `json:"field"`
	Value  string `json:"value"`
	Reason string `json:"reason"`
}

// LoadReport summarizes one load.
type LoadReport struct {
	Rows             int               `json:"rows"`
	Loaded           int               `json:"loaded"`
	Malformed        int               `json:"malformed"`
	InvalidLocations int               `json:"invalid_locations"`
	MissingColumns   []string          `json:"missing_columns"`
	Samples          []MalformedSample `json:"malformed_samples,omitempty"`
}

// HasColumn reports whether col was present in the source header.
func (r LoadReport) HasColumn(col string) bool {
	for _, m := range r.MissingColumns {
		if m == col {
			return false
		}
	}
	return true
}

// HasLocations reports whether both coordinate columns were present.
func (r LoadReport) HasLocations() bool {
	return r.HasColumn(ColLatitude) && r.HasColumn(ColLongitude)
}

// HasRatings reports whether the rating column was present.
func (r LoadReport) HasRatings() bool {
	return r.HasColumn(ColRating)
}

// header maps canonical column names to field positions.
type header map[string]int

func parseHeader(fields []string) (header, []string, error) {
	byName := make(map[string]int, len(fields))
	for i, f := range fields {
		name := strings.ToLower(strings.TrimSpace(f))
		if i == 0 {
			name = strings.TrimPrefix(name, "\ufeff")
		}
		if _, dup := byName[name]; !dup {
			byName[name] = i
		}
	}

	h := make(header)
	lookup := func(col string) bool {
		if idx, ok := byName[col]; ok {
			h[col] = idx
			return true
		}
		for _, alias := range columnAliases[col] {
			if idx, ok := byName[alias]; ok {
				h[col] = idx
				return true
			}
		}
		return false
	}

	var missingRequired []string
	for _, col := range RequiredColumns {
		if !lookup(col) {
			missingRequired = append(missingRequired, col)
		}
	}
	if len(missingRequired) > 0 {
		return nil, nil, &MissingColumnError{Columns: missingRequired}
	}

	var missing []string
	for _, col := range OptionalColumns {
		if !lookup(col) {
			missing = append(missing, col)
		}
	}
	return h, missing, nil
}

func (h header) get(fields []string, col string) string {
	idx, ok := h[col]
	if !ok || idx >= len(fields) {
		return ""
	}
	return fields[idx]
}

// Load reads a listings CSV and returns the normalized records in source
// order. Malformed rows are dropped and counted; missing optional columns
// are reported, not fatal.
func Load(r io.Reader) ([]Record, LoadReport, error) {
	var report LoadReport

	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.ReuseRecord = true

	first, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, report, ErrEmptySource
	}
	if err != nil {
		return nil, report, fmt.Errorf("read header: %w", err)
	}

	h, missing, err := parseHeader(first)
	if err != nil {
		return nil, report, err
	}
	report.MissingColumns = missing
	if report.MissingColumns == nil {
		report.MissingColumns = []string{}
	}

	records := make([]Record, 0, 1024)
	for {
		fields, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, report, fmt.Errorf("read row %d: %w", report.Rows+2, err)
		}
		report.Rows++
		line, _ := cr.FieldPos(0)

		row := RawRow{
			Line:               line,
			ID:                 h.get(fields, ColID),
			Name:               h.get(fields, ColName),
			Neighbourhood:      h.get(fields, ColNeighbourhood),
			NeighbourhoodGroup: h.get(fields, ColNeighbourhoodGroup),
			PropertyType:       h.get(fields, ColPropertyType),
			RoomType:           h.get(fields, ColRoomType),
			Price:              h.get(fields, ColPrice),
			Latitude:           h.get(fields, ColLatitude),
			Longitude:          h.get(fields, ColLongitude),
			Rating:             h.get(fields, ColRating),
		}

		rec, err := Normalize(row)
		if err != nil {
			report.Malformed++
			var mre *MalformedRecordError
			if errors.As(err, &mre) && len(report.Samples) < maxMalformedSamples {
				report.Samples = append(report.Samples, MalformedSample{
					Line:   mre.Line,
					ID:     mre.ID,
					Field:  mre.Field,
					Value:  mre.Value,
					Reason: mre.Err.Error(),
				})
			}
			continue
		}
		if !rec.HasLocation && report.HasLocations() {
			report.InvalidLocations++
		}
		records = append(records, rec)
	}

	report.Loaded = len(records)
	return records, report, nil
}
