// Listingscope - Airbnb Listings Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/listingscope

package listings

import (
	"errors"
	"fmt"
)

var (
	// ErrMalformedRecord marks a row that could not be normalized.
	ErrMalformedRecord = errors.New("malformed record")

	// ErrMalformedPrice is returned by ParsePrice for unusable input.
	ErrMalformedPrice = errors.New("malformed price")

	// ErrMalformedCoordinate is returned by ParseCoordinate for unusable input.
	ErrMalformedCoordinate = errors.New("malformed coordinate")

	// ErrMissingColumn marks a header without a required column.
	ErrMissingColumn = errors.New("missing column")

	// ErrEmptySource is returned when the source has no header row.
	ErrEmptySource = errors.New("empty source")
)

// MalformedRecordError describes a dropped row.
// errors.Is matches both ErrMalformedRecord and the field-level cause.
type MalformedRecordError struct {
	Line  int
	ID    string
	Field string
	Value string
	Err   error
}

func (e *MalformedRecordError) Error() string {
	return fmt.Sprintf("line %d (id %q): %s %q: %v", e.Line, e.ID, e.Field, e.Value, e.Err)
}

// Unwrap exposes both the sentinel and the underlying cause.
func (e *MalformedRecordError) Unwrap() []error {
	return []error{ErrMalformedRecord, e.Err}
}

// MissingColumnError reports a column absent from the header.
type MissingColumnError struct {
	Columns []string
}

func (e *MissingColumnError) Error() string {
	return fmt.Sprintf("missing required columns: %v", e.Columns)
}

func (e *MissingColumnError) Unwrap() error {
	return ErrMissingColumn
}
