// Listingscope - Airbnb Listings Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/listingscope

// Package filter selects listings matching a set of user criteria.
//
// Criteria combine categorical equality constraints with an inclusive price
// range. A categorical field set to All (or left empty) imposes no
// constraint. Apply is a pure function: it never mutates its input and
// returns matches in input order.
package filter

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/goccy/go-json"

	"github.com/tomtom215/listingscope/internal/listings"
)

// All disables a categorical criterion.
const All = "All"

// Query parameter names accepted by ParseQuery.
const (
	ParamPropertyType       = "property_type"
	ParamRoomType           = "room_type"
	ParamNeighbourhood      = "neighbourhood"
	ParamNeighbourhoodGroup = "neighbourhood_group"
	ParamPriceMin           = "price_min"
	ParamPriceMax           = "price_max"
)

// Criteria is the active filter selection.
type Criteria struct {
	PropertyType       string  `json:"property_type" validate:"max=200"`
	RoomType           string  `json:"room_type" validate:"max=200"`
	Neighbourhood      string  `json:"neighbourhood" validate:"max=200"`
	NeighbourhoodGroup string  `json:"neighbourhood_group" validate:"max=200"`
	PriceMin           float64 `json:"price_min" validate:"gte=0"`
	PriceMax           float64 `json:"price_max" validate:"gte=0,gtefield=PriceMin"`

	// An open bound follows the observed price edge of whatever snapshot
	// the criteria are clamped against, so a reload that widens the range
	// widens the selection too.
	PriceMinOpen bool `json:"price_min_open"`
	PriceMaxOpen bool `json:"price_max_open"`
}

// Default returns criteria that match every record described by opts.
func Default(opts Options) Criteria {
	return Criteria{
		PropertyType:       All,
		RoomType:           All,
		Neighbourhood:      All,
		NeighbourhoodGroup: All,
		PriceMin:           opts.Price.Min,
		PriceMax:           opts.Price.Max,
		PriceMinOpen:       true,
		PriceMaxOpen:       true,
	}
}

func isAll(v string) bool {
	return v == "" || v == All
}

func canonical(v string) string {
	v = strings.TrimSpace(v)
	if v == "" || strings.EqualFold(v, All) {
		return All
	}
	return v
}

// Normalized returns c with whitespace trimmed and empty categorical
// fields replaced by All.
func (c Criteria) Normalized() Criteria {
	c.PropertyType = canonical(c.PropertyType)
	c.RoomType = canonical(c.RoomType)
	c.Neighbourhood = canonical(c.Neighbourhood)
	c.NeighbourhoodGroup = canonical(c.NeighbourhoodGroup)
	return c
}

// Clamp resolves the price bounds against the observed range of opts.
//
// Open bounds move to the observed edges first, but never past an explicit
// bound. A range that misses the observed one entirely is kept as given, so
// it still selects nothing. Otherwise each bound is pulled into the observed
// range, and a bound that ends up on an edge becomes open. The result always
// has PriceMin <= PriceMax.
func (c Criteria) Clamp(opts Options) Criteria {
	lo, hi := opts.Price.Min, opts.Price.Max
	if c.PriceMinOpen {
		c.PriceMin = lo
	}
	if c.PriceMaxOpen {
		c.PriceMax = hi
	}
	if c.PriceMin > c.PriceMax {
		switch {
		case c.PriceMinOpen && !c.PriceMaxOpen:
			c.PriceMin = c.PriceMax
		case c.PriceMaxOpen && !c.PriceMinOpen:
			c.PriceMax = c.PriceMin
		default:
			c.PriceMin, c.PriceMax = c.PriceMax, c.PriceMin
		}
	}

	if c.PriceMin > hi || c.PriceMax < lo {
		return c
	}
	c.PriceMinOpen = c.PriceMin <= lo
	if c.PriceMinOpen {
		c.PriceMin = lo
	}
	c.PriceMaxOpen = c.PriceMax >= hi
	if c.PriceMaxOpen {
		c.PriceMax = hi
	}
	return c
}

// Merge overlays the JSON fields present in data onto c. A price bound
// named in data stops following the observed range.
func (c Criteria) Merge(data []byte) (Criteria, error) {
	if len(data) == 0 {
		return c, nil
	}
	var named struct {
		PriceMin *float64 `json:"price_min"`
		PriceMax *float64 `json:"price_max"`
	}
	if err := json.Unmarshal(data, &named); err != nil {
		return c, err
	}
	next := c
	if err := json.Unmarshal(data, &next); err != nil {
		return c, err
	}
	if named.PriceMin != nil {
		next.PriceMinOpen = false
	}
	if named.PriceMax != nil {
		next.PriceMaxOpen = false
	}
	return next, nil
}

// Matches reports whether r satisfies every active criterion.
func (c Criteria) Matches(r listings.Record) bool {
	if !isAll(c.PropertyType) && r.PropertyType != c.PropertyType {
		return false
	}
	if !isAll(c.RoomType) && r.RoomType != c.RoomType {
		return false
	}
	if !isAll(c.Neighbourhood) && r.Neighbourhood != c.Neighbourhood {
		return false
	}
	if !isAll(c.NeighbourhoodGroup) && r.NeighbourhoodGroup != c.NeighbourhoodGroup {
		return false
	}
	return r.Price >= c.PriceMin && r.Price <= c.PriceMax
}

// Key returns a stable string identifying c, suitable as a cache key.
func (c Criteria) Key() string {
	n := c.Normalized()
	return fmt.Sprintf("pt=%s|rt=%s|nb=%s|ng=%s|min=%s|max=%s|open=%t,%t",
		url.QueryEscape(n.PropertyType),
		url.QueryEscape(n.RoomType),
		url.QueryEscape(n.Neighbourhood),
		url.QueryEscape(n.NeighbourhoodGroup),
		strconv.FormatFloat(n.PriceMin, 'g', -1, 64),
		strconv.FormatFloat(n.PriceMax, 'g', -1, 64),
		n.PriceMinOpen, n.PriceMaxOpen)
}

// Label returns the display value of a categorical field.
func Label(v string) string {
	if isAll(v) {
		return All
	}
	return v
}

// ParseQuery overlays query parameters onto base. Parameters that are
// absent keep the base value.
func ParseQuery(q url.Values, base Criteria) (Criteria, error) {
	c := base
	if q.Has(ParamPropertyType) {
		c.PropertyType = q.Get(ParamPropertyType)
	}
	if q.Has(ParamRoomType) {
		c.RoomType = q.Get(ParamRoomType)
	}
	if q.Has(ParamNeighbourhood) {
		c.Neighbourhood = q.Get(ParamNeighbourhood)
	}
	if q.Has(ParamNeighbourhoodGroup) {
		c.NeighbourhoodGroup = q.Get(ParamNeighbourhoodGroup)
	}
	if s := strings.TrimSpace(q.Get(ParamPriceMin)); s != "" {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return base, fmt.Errorf("invalid %s %q: %w", ParamPriceMin, s, err)
		}
		c.PriceMin = v
		c.PriceMinOpen = false
	}
	if s := strings.TrimSpace(q.Get(ParamPriceMax)); s != "" {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return base, fmt.Errorf("invalid %s %q: %w", ParamPriceMax, s, err)
		}
		c.PriceMax = v
		c.PriceMaxOpen = false
	}
	return c.Normalized(), nil
}
