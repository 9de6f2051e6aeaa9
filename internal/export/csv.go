// Listingscope - Airbnb Listings Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/listingscope

package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/tomtom215/listingscope/internal/listings"
	"github.com/tomtom215/listingscope/internal/metrics"
)

// CSVHeader is the column order written by WriteCSV.
var CSVHeader = []string{
	listings.ColID,
	listings.ColName,
	listings.ColNeighbourhood,
	listings.ColNeighbourhoodGroup,
	listings.ColPropertyType,
	listings.ColRoomType,
	listings.ColPrice,
	listings.ColLatitude,
	listings.ColLongitude,
	listings.ColRating,
}

// WriteCSV writes a header and one row per record. Missing coordinates and
// ratings are written as empty cells.
func WriteCSV(w io.Writer, records []listings.Record) (int, error) {
	cw := csv.NewWriter(w)
	if err := cw.Write(CSVHeader); err != nil {
		return 0, fmt.Errorf("write csv header: %w", err)
	}

	row := make([]string, len(CSVHeader))
	for i := range records {
		r := &records[i]
		row[0] = r.ID
		row[1] = r.Name
		row[2] = r.Neighbourhood
		row[3] = r.NeighbourhoodGroup
		row[4] = r.PropertyType
		row[5] = r.RoomType
		row[6] = strconv.FormatFloat(r.Price, 'f', 2, 64)
		row[7], row[8], row[9] = "", "", ""
		if r.HasLocation {
			row[7] = strconv.FormatFloat(r.Latitude, 'f', -1, 64)
			row[8] = strconv.FormatFloat(r.Longitude, 'f', -1, 64)
		}
		if r.HasRating {
			row[9] = strconv.FormatFloat(r.Rating, 'f', -1, 64)
		}
		if err := cw.Write(row); err != nil {
			return i, fmt.Errorf("write csv row %d: %w", i+1, err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return len(records), fmt.Errorf("flush csv: %w", err)
	}
	metrics.ExportRowsTotal.WithLabelValues("csv").Add(float64(len(records)))
	return len(records), nil
}
