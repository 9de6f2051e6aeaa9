// Listingscope - Airbnb Listings Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/listingscope

package aggregate

import (
	"math"

	"github.com/tomtom215/listingscope/internal/listings"
)

// DefaultMaxBins is the histogram bin limit used when none is given.
const DefaultMaxBins = 40

// Bin is one equal-width histogram bucket. Bins cover [Lower, Upper) except
// the last, which also includes Upper.
type Bin struct {
	Lower float64 `json:"lower"`
	Upper float64 `json:"upper"`
	Count int     `json:"count"`
}

// edgeEpsilon absorbs float error for prices sitting on a bin edge.
const edgeEpsilon = 1e-9

// niceMultipliers are the mantissas tried for a bin width.
var niceMultipliers = []float64{1, 2, 2.5, 5}

// PriceHistogram bins record prices into at most maxBins equal-width bins
// whose width is a round number (1, 2, 2.5 or 5 times a power of ten) and
// whose edges are multiples of that width. A maxBins <= 0 uses
// DefaultMaxBins. When every price is identical a single bin is returned.
func PriceHistogram(records []listings.Record, maxBins int) []Bin {
	if len(records) == 0 {
		return []Bin{}
	}
	if maxBins <= 0 {
		maxBins = DefaultMaxBins
	}

	lo, hi := records[0].Price, records[0].Price
	for i := range records {
		p := records[i].Price
		if p < lo {
			lo = p
		}
		if p > hi {
			hi = p
		}
	}
	if lo == hi {
		return []Bin{{Lower: lo, Upper: hi, Count: len(records)}}
	}

	step, start, n := niceBins(lo, hi, maxBins)
	bins := make([]Bin, n)
	for i := range bins {
		bins[i].Lower = start + float64(i)*step
		bins[i].Upper = start + float64(i+1)*step
	}
	for i := range records {
		idx := int(math.Floor((records[i].Price-start)/step + edgeEpsilon))
		if idx < 0 {
			idx = 0
		}
		if idx >= n {
			idx = n - 1
		}
		bins[idx].Count++
	}
	return bins
}

// niceBins picks the smallest round step producing at most maxBins bins
// aligned to multiples of the step, covering [lo, hi].
func niceBins(lo, hi float64, maxBins int) (step, start float64, n int) {
	raw := (hi - lo) / float64(maxBins)
	exp := math.Floor(math.Log10(raw))
	for {
		base := math.Pow(10, exp)
		for _, m := range niceMultipliers {
			step = m * base
			if step < raw {
				continue
			}
			start = math.Floor(lo/step) * step
			end := math.Ceil(hi/step) * step
			if end <= hi {
				// hi sits exactly on an edge; the closed last bin holds it.
				end = hi
			}
			n = int(math.Round((end - start) / step))
			if n < 1 {
				n = 1
			}
			if n <= maxBins {
				return step, start, n
			}
		}
		exp++
	}
}
