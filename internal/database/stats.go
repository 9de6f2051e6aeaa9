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

	"github.com/tomtom215/listingscope/internal/database/query"
	"github.com/tomtom215/listingscope/internal/filter"
	"github.com/tomtom215/listingscope/internal/metrics"
)

// GroupBy names a categorical column the mirror can summarize by.
type GroupBy string

// Supported groupings. Values double as column names and are the only
// identifiers ever interpolated into SQL.
const (
	GroupByNeighbourhood      GroupBy = "neighbourhood"
	GroupByNeighbourhoodGroup GroupBy = "neighbourhood_group"
	GroupByRoomType           GroupBy = "room_type"
	GroupByPropertyType       GroupBy = "property_type"
)

// ParseGroupBy validates a grouping name. Empty means neighbourhood.
func ParseGroupBy(s string) (GroupBy, error) {
	switch g := GroupBy(strings.TrimSpace(s)); g {
	case "":
		return GroupByNeighbourhood, nil
	case GroupByNeighbourhood, GroupByNeighbourhoodGroup, GroupByRoomType, GroupByPropertyType:
		return g, nil
	default:
		return "", fmt.Errorf("unsupported group_by %q", s)
	}
}

// GroupStats is the price profile of one group of listings.
type GroupStats struct {
	Group        string   `json:"group"`
	Count        int      `json:"count"`
	MeanPrice    float64  `json:"mean_price"`
	MedianPrice  float64  `json:"median_price"`
	P25Price     float64  `json:"p25_price"`
	P75Price     float64  `json:"p75_price"`
	MinPrice     float64  `json:"min_price"`
	MaxPrice     float64  `json:"max_price"`
	MeanRating   *float64 `json:"mean_rating,omitempty"`
	RatedCount   int      `json:"rated_count"`
	WithLocation int      `json:"with_location"`
}

// Summary returns per-group price statistics for listings matching c,
// ordered by count descending then group name.
func (db *DB) Summary(ctx context.Context, groupBy GroupBy, c filter.Criteria) (_ []GroupStats, err error) {
	if _, err := ParseGroupBy(string(groupBy)); err != nil {
		return nil, err
	}
	if db.Version() == "" {
		return nil, ErrNotSynced
	}

	start := time.Now()
	defer func() { metrics.RecordDBQuery("summary_"+string(groupBy), time.Since(start), err) }()

	where, args := buildCriteriaConditions(c)
	col := string(groupBy)

	// #nosec G201 -- col comes from the GroupBy allow-list, values are bound
	stmt := fmt.Sprintf(`
		SELECT
			coalesce(%[1]s, '') AS grp,
			count(*) AS n,
			avg(price),
			median(price),
			quantile_cont(price, 0.25),
			quantile_cont(price, 0.75),
			min(price),
			max(price),
			avg(rating),
			count(rating),
			count(latitude)
		FROM listings
		%[2]s
		GROUP BY grp
		ORDER BY n DESC, grp ASC`, col, where)

	rows, err := db.conn.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("summary query: %w", err)
	}
	defer closeWithLog(rows, "rows")

	var out []GroupStats
	for rows.Next() {
		var gs GroupStats
		var meanRating sql.NullFloat64
		if err = rows.Scan(&gs.Group, &gs.Count, &gs.MeanPrice, &gs.MedianPrice, &gs.P25Price, &gs.P75Price,
			&gs.MinPrice, &gs.MaxPrice, &meanRating, &gs.RatedCount, &gs.WithLocation); err != nil {
			return nil, fmt.Errorf("scan summary row: %w", err)
		}
		if meanRating.Valid {
			v := meanRating.Float64
			gs.MeanRating = &v
		}
		out = append(out, gs)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate summary rows: %w", err)
	}
	if out == nil {
		out = []GroupStats{}
	}
	return out, nil
}

// buildCriteriaConditions renders c as a parameterized WHERE clause with
// the same semantics as filter.Criteria.Matches.
func buildCriteriaConditions(c filter.Criteria) (string, []interface{}) {
	c = c.Normalized()
	return query.NewWhereBuilder().
		AddEquals("property_type", c.PropertyType, filter.All).
		AddEquals("room_type", c.RoomType, filter.All).
		AddEquals("neighbourhood", c.Neighbourhood, filter.All).
		AddEquals("neighbourhood_group", c.NeighbourhoodGroup, filter.All).
		AddRange("price", c.PriceMin, c.PriceMax).
		BuildWithPrefix()
}
