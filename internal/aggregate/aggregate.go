// Listingscope - Airbnb Listings Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/listingscope

// Package aggregate reduces a filtered listing set into the chart tables
// shown on the dashboard.
//
// Every function is a pure reduction. An empty input yields an empty (non-nil)
// result and never an error.
package aggregate

import (
	"sort"

	"github.com/tomtom215/listingscope/internal/listings"
)

// RoomTypeMean is the average nightly price of one room type.
type RoomTypeMean struct {
	RoomType  string  `json:"room_type"`
	MeanPrice float64 `json:"mean_price"`
	Count     int     `json:"count"`
}

// NeighbourhoodCount is the number of listings in one neighbourhood.
type NeighbourhoodCount struct {
	Neighbourhood string `json:"neighbourhood"`
	Count         int    `json:"count"`
}

// MeanPriceByRoomType returns the arithmetic mean price per room type.
// Room types without records are absent from the result.
func MeanPriceByRoomType(records []listings.Record) map[string]float64 {
	out := make(map[string]float64)
	for _, m := range RoomTypeMeans(records) {
		out[m.RoomType] = m.MeanPrice
	}
	return out
}

// RoomTypeMeans is MeanPriceByRoomType as a slice ordered by room type,
// with the record count behind each mean.
func RoomTypeMeans(records []listings.Record) []RoomTypeMean {
	type acc struct {
		sum float64
		n   int
	}
	groups := make(map[string]*acc)
	for i := range records {
		r := &records[i]
		a, ok := groups[r.RoomType]
		if !ok {
			a = &acc{}
			groups[r.RoomType] = a
		}
		a.sum += r.Price
		a.n++
	}

	out := make([]RoomTypeMean, 0, len(groups))
	for rt, a := range groups {
		out = append(out, RoomTypeMean{RoomType: rt, MeanPrice: a.sum / float64(a.n), Count: a.n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].RoomType < out[j].RoomType })
	return out
}

// CountByNeighbourhood counts records per neighbourhood, ordered by count
// descending and then by name. The counts sum to len(records).
func CountByNeighbourhood(records []listings.Record) []NeighbourhoodCount {
	counts := make(map[string]int)
	for i := range records {
		counts[records[i].Neighbourhood]++
	}

	out := make([]NeighbourhoodCount, 0, len(counts))
	for n, c := range counts {
		out = append(out, NeighbourhoodCount{Neighbourhood: n, Count: c})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Neighbourhood < out[j].Neighbourhood
	})
	return out
}

// TopNeighbourhoods truncates a CountByNeighbourhood result to n entries,
// folding the remainder into a single "Other" row. n <= 0 returns counts
// unchanged.
func TopNeighbourhoods(counts []NeighbourhoodCount, n int) []NeighbourhoodCount {
	if n <= 0 || len(counts) <= n {
		return counts
	}
	out := make([]NeighbourhoodCount, 0, n+1)
	out = append(out, counts[:n]...)
	other := 0
	for _, c := range counts[n:] {
		other += c.Count
	}
	return append(out, NeighbourhoodCount{Neighbourhood: "Other", Count: other})
}
