// Listingscope - Airbnb Listings Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/listingscope

package middleware

import (
	"net/http"
	"strings"

	"github.com/klauspost/compress/gzhttp"
	"github.com/klauspost/compress/gzip"
)

// CompressionMinSize is the smallest response body that gets gzipped.
// Small envelopes such as health checks are sent as-is.
const CompressionMinSize = 256

var gzipWrapper = mustGzipWrapper()

func mustGzipWrapper() func(http.Handler) http.HandlerFunc {
	wrap, err := gzhttp.NewWrapper(
		gzhttp.MinSize(CompressionMinSize),
		gzhttp.CompressionLevel(gzip.DefaultCompression),
	)
	if err != nil {
		panic("middleware: invalid gzip options: " + err.Error())
	}
	return wrap
}

// Compression middleware gzips responses for clients that accept it.
// WebSocket upgrades and HEAD requests pass through untouched.
func Compression(next http.HandlerFunc) http.HandlerFunc {
	compressed := gzipWrapper(next)
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodHead || strings.EqualFold(r.Header.Get("Upgrade"), "websocket") {
			next(w, r)
			return
		}
		compressed(w, r)
	}
}
