// Listingscope - Airbnb Listings Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/listingscope

package filter

import (
	"sort"

	"github.com/tomtom215/listingscope/internal/listings"
)

// Apply returns the records matching c, preserving input order.
// The result is never nil; an empty slice means nothing matched.
func Apply(records []listings.Record, c Criteria) []listings.Record {
	out := make([]listings.Record, 0, len(records)/4)
	for i := range records {
		if c.Matches(records[i]) {
			out = append(out, records[i])
		}
	}
	return out
}

// Count returns the number of records matching c without copying them.
func Count(records []listings.Record, c Criteria) int {
	n := 0
	for i := range records {
		if c.Matches(records[i]) {
			n++
		}
	}
	return n
}

// PriceRange is an inclusive price interval.
type PriceRange struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Options lists the selectable values observed in a dataset.
type Options struct {
	PropertyTypes       []string   `json:"property_types"`
	RoomTypes           []string   `json:"room_types"`
	Neighbourhoods      []string   `json:"neighbourhoods"`
	NeighbourhoodGroups []string   `json:"neighbourhood_groups"`
	Price               PriceRange `json:"price"`
}

// BuildOptions collects sorted distinct categorical values and the
// observed price range. Blank values are not offered as choices.
func BuildOptions(records []listings.Record) Options {
	pt := make(map[string]struct{})
	rt := make(map[string]struct{})
	nb := make(map[string]struct{})
	ng := make(map[string]struct{})

	var opts Options
	for i := range records {
		r := &records[i]
		addNonEmpty(pt, r.PropertyType)
		addNonEmpty(rt, r.RoomType)
		addNonEmpty(nb, r.Neighbourhood)
		addNonEmpty(ng, r.NeighbourhoodGroup)
		if i == 0 || r.Price < opts.Price.Min {
			opts.Price.Min = r.Price
		}
		if i == 0 || r.Price > opts.Price.Max {
			opts.Price.Max = r.Price
		}
	}

	opts.PropertyTypes = sortedKeys(pt)
	opts.RoomTypes = sortedKeys(rt)
	opts.Neighbourhoods = sortedKeys(nb)
	opts.NeighbourhoodGroups = sortedKeys(ng)
	return opts
}

func addNonEmpty(set map[string]struct{}, v string) {
	if v != "" {
		set[v] = struct{}{}
	}
}

func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
