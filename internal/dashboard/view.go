// Listingscope - Airbnb Listings Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/listingscope

// Package dashboard builds the complete dashboard view for a criteria set.
//
// Render is a pure function of (dataset, criteria): the HTTP handlers and the
// WebSocket channel call it whenever criteria change, and nothing else holds
// dashboard state.
package dashboard

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/tomtom215/listingscope/internal/aggregate"
	"github.com/tomtom215/listingscope/internal/filter"
	"github.com/tomtom215/listingscope/internal/listings"
)

// DefaultRowLimit is the number of table rows included when Options.Limit is zero.
const DefaultRowLimit = 100

// Source is the immutable dataset a view is rendered from.
type Source interface {
	Records() []listings.Record
	Options() filter.Options
	Report() listings.LoadReport
	Version() string
}

// Options tunes a render without affecting which records match.
type Options struct {
	MaxBins           int
	Offset            int
	Limit             int
	TopNeighbourhoods int
	MaxMapPoints      int
}

// MapPoint is one listing plotted on the map.
type MapPoint struct {
	ID        string  `json:"id"`
	Name      string  `json:"name,omitempty"`
	Latitude  float64 `json:"lat"`
	Longitude float64 `json:"lon"`
	Price     float64 `json:"price"`
	RoomType  string  `json:"room_type"`
}

// View is everything the front end needs to draw the dashboard.
type View struct {
	DatasetVersion      string                         `json:"dataset_version"`
	Criteria            filter.Criteria                `json:"criteria"`
	Summary             string                         `json:"summary"`
	Total               int                            `json:"total"`
	Matched             int                            `json:"matched"`
	Empty               bool                           `json:"empty"`
	EmptyMessage        string                         `json:"empty_message,omitempty"`
	RoomTypeMeans       []aggregate.RoomTypeMean       `json:"room_type_means"`
	Histogram           []aggregate.Bin                `json:"price_histogram"`
	Neighbourhoods      []aggregate.NeighbourhoodCount `json:"neighbourhoods"`
	RatingsAvailable    bool                           `json:"ratings_available"`
	RatingDistributions []aggregate.RatingDistribution `json:"rating_distributions"`
	MapAvailable        bool                           `json:"map_available"`
	MapPoints           []MapPoint                     `json:"map_points"`
	MapTruncated        bool                           `json:"map_truncated,omitempty"`
	Rows                []listings.Record              `json:"rows"`
	Offset              int                            `json:"offset"`
	Limit               int                            `json:"limit"`
	Warnings            []string                       `json:"warnings"`
}

// EmptyResultMessage is shown instead of charts when nothing matches.
const EmptyResultMessage = "No listings match the selected filters."

// Render builds the view for c with default options.
func Render(src Source, c filter.Criteria) View {
	return RenderWith(src, c, Options{})
}

// RenderWith builds the view for c.
func RenderWith(src Source, c filter.Criteria, opts Options) View {
	c = c.Normalized()
	all := src.Records()
	report := src.Report()
	matched := filter.Apply(all, c)

	v := View{
		DatasetVersion:   src.Version(),
		Criteria:         c,
		Summary:          Summary(c, len(matched), len(all)),
		Total:            len(all),
		Matched:          len(matched),
		Empty:            len(matched) == 0,
		RoomTypeMeans:    aggregate.RoomTypeMeans(matched),
		Histogram:        aggregate.PriceHistogram(matched, opts.MaxBins),
		Neighbourhoods:   aggregate.TopNeighbourhoods(aggregate.CountByNeighbourhood(matched), opts.TopNeighbourhoods),
		RatingsAvailable: report.HasRatings(),
		MapAvailable:     report.HasLocations(),
		MapPoints:        []MapPoint{},
		Warnings:         Warnings(report),
	}
	if v.Empty {
		v.EmptyMessage = EmptyResultMessage
	}

	if v.RatingsAvailable {
		v.RatingDistributions = aggregate.PriceByRatingBucket(matched)
	} else {
		v.RatingDistributions = []aggregate.RatingDistribution{}
	}

	if v.MapAvailable {
		v.MapPoints, v.MapTruncated = MapPoints(matched, opts.MaxMapPoints)
	}

	v.Rows, v.Offset, v.Limit = Page(matched, opts.Offset, opts.Limit)
	return v
}

// MapPoints returns the located records as map points, at most limit of
// them when limit > 0. The second result reports truncation.
func MapPoints(records []listings.Record, limit int) ([]MapPoint, bool) {
	points := make([]MapPoint, 0, len(records))
	for i := range records {
		r := &records[i]
		if !r.HasLocation {
			continue
		}
		if limit > 0 && len(points) == limit {
			return points, true
		}
		points = append(points, MapPoint{
			ID:        r.ID,
			Name:      r.Name,
			Latitude:  r.Latitude,
			Longitude: r.Longitude,
			Price:     r.Price,
			RoomType:  r.RoomType,
		})
	}
	return points, false
}

// Page slices records for the data table. A non-positive limit uses
// DefaultRowLimit; an offset past the end yields no rows.
func Page(records []listings.Record, offset, limit int) ([]listings.Record, int, int) {
	if limit <= 0 {
		limit = DefaultRowLimit
	}
	if offset < 0 {
		offset = 0
	}
	if offset >= len(records) {
		return []listings.Record{}, offset, limit
	}
	end := offset + limit
	if end > len(records) {
		end = len(records)
	}
	return records[offset:end], offset, limit
}

// Summary renders the one-line description of the active criteria, e.g.
// "Showing 42 of 7000 listings for Private room in Mission, priced between $50 and $500".
func Summary(c filter.Criteria, matched, total int) string {
	c = c.Normalized()

	what := "all room types"
	if c.RoomType != filter.All {
		what = c.RoomType
	}
	if c.PropertyType != filter.All {
		what += " (" + c.PropertyType + ")"
	}

	where := "all neighbourhoods"
	switch {
	case c.Neighbourhood != filter.All && c.NeighbourhoodGroup != filter.All:
		where = c.Neighbourhood + ", " + c.NeighbourhoodGroup
	case c.Neighbourhood != filter.All:
		where = c.Neighbourhood
	case c.NeighbourhoodGroup != filter.All:
		where = c.NeighbourhoodGroup
	}

	return fmt.Sprintf("Showing %d of %d listings for %s in %s, priced between %s and %s",
		matched, total, what, where, FormatPrice(c.PriceMin), FormatPrice(c.PriceMax))
}

// FormatPrice renders a price as dollars, dropping a zero fraction.
func FormatPrice(p float64) string {
	s := strconv.FormatFloat(p, 'f', 2, 64)
	return "$" + strings.TrimSuffix(s, ".00")
}

// Warnings describes the degraded views implied by a load report.
func Warnings(report listings.LoadReport) []string {
	warnings := []string{}
	if !report.HasLocations() {
		warnings = append(warnings, "map unavailable: latitude/longitude columns missing")
	}
	if !report.HasRatings() {
		warnings = append(warnings, "rating distribution unavailable: review_scores_rating column missing")
	}
	if report.Malformed > 0 {
		warnings = append(warnings, fmt.Sprintf("%d of %d rows dropped: unparsable price", report.Malformed, report.Rows))
	}
	for _, col := range report.MissingColumns {
		switch col {
		case listings.ColLatitude, listings.ColLongitude, listings.ColRating:
			continue
		}
		warnings = append(warnings, "column missing: "+col)
	}
	return warnings
}
