// Listingscope - Airbnb Listings Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/listingscope

package database

import (
	"errors"
	"testing"
)

type trackingCloser struct {
	err    error
	closed bool
}

func (c *trackingCloser) Close() error {
	c.closed = true
	return c.err
}

func TestCloseHelpers(t *testing.T) {
	t.Parallel()

	for _, closeErr := range []error{nil, errors.New("already closed")} {
		c := &trackingCloser{err: closeErr}
		closeWithLog(c, "rows")
		if !c.closed {
			t.Error("closeWithLog did not close")
		}

		c = &trackingCloser{err: closeErr}
		closeQuietly(c)
		if !c.closed {
			t.Error("closeQuietly did not close")
		}
	}

	// nil closers are ignored
	closeWithLog(nil, "rows")
	closeQuietly(nil)
}
