// Listingscope - Airbnb Listings Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/listingscope

package aggregate

import (
	"math"
	"sort"

	"github.com/tomtom215/listingscope/internal/listings"
)

// BoxStats is the five-number summary behind a boxplot.
type BoxStats struct {
	Count  int     `json:"count"`
	Min    float64 `json:"min"`
	Q1     float64 `json:"q1"`
	Median float64 `json:"median"`
	Q3     float64 `json:"q3"`
	Max    float64 `json:"max"`
	Mean   float64 `json:"mean"`
}

// RatingDistribution holds the prices that fall in one rating bucket.
type RatingDistribution struct {
	Bucket string    `json:"bucket"`
	Prices []float64 `json:"prices"`
	Stats  BoxStats  `json:"stats"`
}

// PriceByRatingBucket groups prices by rating bucket, in bucket order.
// Records without a bucket are skipped and empty buckets are omitted.
// Prices keep the input order of their records.
func PriceByRatingBucket(records []listings.Record) []RatingDistribution {
	byBucket := make([][]float64, len(listings.RatingBuckets))
	for i := range records {
		idx := listings.BucketIndex(records[i].RatingBucket)
		if idx < 0 {
			continue
		}
		byBucket[idx] = append(byBucket[idx], records[i].Price)
	}

	out := make([]RatingDistribution, 0, len(byBucket))
	for i, prices := range byBucket {
		if len(prices) == 0 {
			continue
		}
		out = append(out, RatingDistribution{
			Bucket: listings.RatingBuckets[i],
			Prices: prices,
			Stats:  Summarize(prices),
		})
	}
	return out
}

// Summarize computes BoxStats using linearly interpolated quantiles.
// values is not modified. An empty input returns the zero BoxStats.
func Summarize(values []float64) BoxStats {
	if len(values) == 0 {
		return BoxStats{}
	}
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	var sum float64
	for _, v := range sorted {
		sum += v
	}

	return BoxStats{
		Count:  len(sorted),
		Min:    sorted[0],
		Q1:     Quantile(sorted, 0.25),
		Median: Quantile(sorted, 0.5),
		Q3:     Quantile(sorted, 0.75),
		Max:    sorted[len(sorted)-1],
		Mean:   sum / float64(len(sorted)),
	}
}

// Quantile returns the q-quantile (0..1) of an ascending slice using
// linear interpolation between closest ranks.
func Quantile(sorted []float64, q float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	if q <= 0 {
		return sorted[0]
	}
	if q >= 1 {
		return sorted[len(sorted)-1]
	}
	pos := q * float64(len(sorted)-1)
	lower := int(math.Floor(pos))
	upper := int(math.Ceil(pos))
	if lower == upper {
		return sorted[lower]
	}
	frac := pos - float64(lower)
	return sorted[lower] + frac*(sorted[upper]-sorted[lower])
}
