// Listingscope - Airbnb Listings Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/listingscope

package config

import (
	"fmt"
	"net/url"
)

// validateSourceURL checks a remote dataset URL: http(s) scheme, a host,
// and a path naming the file. Query strings are allowed for signed URLs.
func validateSourceURL(rawURL, fieldName string) error {
	parsedURL, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("%s failed to parse URL: %w", fieldName, err)
	}
	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return fmt.Errorf("%s scheme must be http or https, got: %s", fieldName, parsedURL.Scheme)
	}
	if parsedURL.Host == "" {
		return fmt.Errorf("%s host is required", fieldName)
	}
	if parsedURL.Path == "" || parsedURL.Path == "/" {
		return fmt.Errorf("%s must point at a file, got bare host %s", fieldName, parsedURL.Host)
	}
	return nil
}
