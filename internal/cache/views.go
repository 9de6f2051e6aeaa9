// Listingscope - Airbnb Listings Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/listingscope

package cache

import (
	"strconv"
	"strings"
	"time"

	"github.com/tomtom215/listingscope/internal/dashboard"
	"github.com/tomtom215/listingscope/internal/filter"
	"github.com/tomtom215/listingscope/internal/metrics"
)

// ViewCache memoizes rendered dashboard views.
//
// Keys include the snapshot version, so a reload makes every older entry
// unreachable; Purge reclaims them eagerly.
type ViewCache struct {
	lru *LRU[dashboard.View]
}

// NewViewCache creates a ViewCache. A non-positive size disables caching.
func NewViewCache(size int, ttl time.Duration) *ViewCache {
	if size <= 0 {
		return &ViewCache{}
	}
	return &ViewCache{lru: NewLRU[dashboard.View](size, ttl)}
}

// Render returns the cached view for (src, c, opts) or renders and stores it.
func (v *ViewCache) Render(src dashboard.Source, c filter.Criteria, opts dashboard.Options) (dashboard.View, bool) {
	if v == nil || v.lru == nil {
		return dashboard.RenderWith(src, c, opts), false
	}

	key := ViewKey(src.Version(), c, opts)
	if view, ok := v.lru.Get(key); ok {
		metrics.RecordCacheLookup(true)
		return view, true
	}
	metrics.RecordCacheLookup(false)

	view := dashboard.RenderWith(src, c, opts)
	v.lru.Add(key, view)
	metrics.CacheEntries.Set(float64(v.lru.Len()))
	return view, false
}

// Purge drops every entry. It is registered as a dataset reload listener.
func (v *ViewCache) Purge() {
	if v == nil || v.lru == nil {
		return
	}
	v.lru.Clear()
	metrics.CacheEntries.Set(0)
}

// Len returns the number of cached views.
func (v *ViewCache) Len() int {
	if v == nil || v.lru == nil {
		return 0
	}
	return v.lru.Len()
}

// ViewKey identifies one render of one snapshot.
func ViewKey(version string, c filter.Criteria, opts dashboard.Options) string {
	var b strings.Builder
	b.WriteString(version)
	b.WriteByte('|')
	b.WriteString(c.Key())
	for _, n := range []int{opts.MaxBins, opts.Offset, opts.Limit, opts.TopNeighbourhoods, opts.MaxMapPoints} {
		b.WriteByte('|')
		b.WriteString(strconv.Itoa(n))
	}
	return b.String()
}
