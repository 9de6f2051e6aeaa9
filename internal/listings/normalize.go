// Listingscope - Airbnb Listings Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/listingscope

package listings

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// priceNoise matches currency symbols, thousands separators and whitespace.
var priceNoise = regexp.MustCompile(`[$,\s]`)

// RatingBuckets lists the rating bucket labels in ascending order.
var RatingBuckets = []string{"(0-1]", "(1-2]", "(2-3]", "(3-4]", "(4-5]"}

const (
	// MinRating and MaxRating bound the review score scale.
	MinRating = 0.0
	MaxRating = 5.0
)

// ParsePrice converts a currency string such as "$1,200.00" into a
// non-negative float. An already numeric string parses to itself.
func ParsePrice(s string) (float64, error) {
	cleaned := priceNoise.ReplaceAllString(s, "")
	if cleaned == "" {
		return 0, fmt.Errorf("%w: empty", ErrMalformedPrice)
	}
	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrMalformedPrice, s)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%w: non-finite %q", ErrMalformedPrice, s)
	}
	if v < 0 {
		return 0, fmt.Errorf("%w: negative %q", ErrMalformedPrice, s)
	}
	return v, nil
}

// NormalizeNeighbourhood trims s and substitutes NotListed for blank or NaN
// values. Applying it twice yields the same result as applying it once.
func NormalizeNeighbourhood(s string) string {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, "nan") {
		return NotListed
	}
	return s
}

// BucketRating returns the label of the right-closed bucket holding r.
// A rating of exactly 0 falls in the first bucket. Ratings outside
// [MinRating, MaxRating] have no bucket.
func BucketRating(r float64) (string, bool) {
	if math.IsNaN(r) || r < MinRating || r > MaxRating {
		return "", false
	}
	idx := int(math.Ceil(r)) - 1
	if idx < 0 {
		idx = 0
	}
	return RatingBuckets[idx], true
}

// BucketIndex returns the position of label in RatingBuckets, or -1.
func BucketIndex(label string) int {
	for i, b := range RatingBuckets {
		if b == label {
			return i
		}
	}
	return -1
}

// ParseCoordinate parses a latitude (maxAbs 90) or longitude (maxAbs 180).
func ParseCoordinate(s string, maxAbs float64) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("%w: empty", ErrMalformedCoordinate)
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.Abs(v) > maxAbs {
		return 0, fmt.Errorf("%w: %q", ErrMalformedCoordinate, s)
	}
	return v, nil
}

// cleanText trims and collapses internal whitespace.
func cleanText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// Normalize converts one raw row into a Record. A price that cannot be
// parsed yields a *MalformedRecordError. Coordinate and rating problems
// never fail the row; they only clear HasLocation or HasRating.
func Normalize(row RawRow) (Record, error) {
	rec := Record{
		ID:                 strings.TrimSpace(row.ID),
		Name:               cleanText(row.Name),
		Neighbourhood:      NormalizeNeighbourhood(row.Neighbourhood),
		NeighbourhoodGroup: cleanText(row.NeighbourhoodGroup),
		PropertyType:       cleanText(row.PropertyType),
		RoomType:           cleanText(row.RoomType),
	}
	if rec.ID == "" {
		rec.ID = "line-" + strconv.Itoa(row.Line)
	}

	price, err := ParsePrice(row.Price)
	if err != nil {
		return Record{}, &MalformedRecordError{Line: row.Line, ID: rec.ID, Field: ColPrice, Value: row.Price, Err: err}
	}
	rec.Price = price

	lat, latErr := ParseCoordinate(row.Latitude, 90)
	lon, lonErr := ParseCoordinate(row.Longitude, 180)
	if latErr == nil && lonErr == nil {
		rec.Latitude, rec.Longitude, rec.HasLocation = lat, lon, true
	}

	if s := strings.TrimSpace(row.Rating); s != "" {
		if r, err := strconv.ParseFloat(s, 64); err == nil {
			if bucket, ok := BucketRating(r); ok {
				rec.Rating, rec.HasRating, rec.RatingBucket = r, true, bucket
			}
		}
	}

	return rec, nil
}
