// Listingscope - Airbnb Listings Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/listingscope

package listings

import (
	"errors"
	"math"
	"strconv"
	"testing"
)

func TestParsePrice(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		input   string
		want    float64
		wantErr bool
	}{
		{"thousands separator", "$1,200.00", 1200, false},
		{"plain dollars", "$85", 85, false},
		{"zero", "$0", 0, false},
		{"already numeric", "1200", 1200, false},
		{"whitespace", " $ 42.50 ", 42.5, false},
		{"empty", "", 0, true},
		{"symbol only", "$", 0, true},
		{"text", "call for price", 0, true},
		{"negative", "-$10", 0, true},
		{"nan", "NaN", 0, true},
		{"inf", "Inf", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := ParsePrice(tt.input)
			if tt.wantErr {
				if !errors.Is(err, ErrMalformedPrice) {
					t.Fatalf("ParsePrice(%q) error = %v, want ErrMalformedPrice", tt.input, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParsePrice(%q) unexpected error: %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("ParsePrice(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestParsePriceExampleSequence(t *testing.T) {
	t.Parallel()

	inputs := []string{"$1,200.00", "$85", "$0"}
	want := []float64{1200, 85, 0}
	for i, in := range inputs {
		got, err := ParsePrice(in)
		if err != nil {
			t.Fatalf("ParsePrice(%q): %v", in, err)
		}
		if got != want[i] {
			t.Errorf("ParsePrice(%q) = %v, want %v", in, got, want[i])
		}
	}
}

func TestParsePriceIdempotent(t *testing.T) {
	t.Parallel()

	for _, in := range []string{"$1,200.00", "$85", "$0", "$99.99", "12345.678"} {
		first, err := ParsePrice(in)
		if err != nil {
			t.Fatalf("ParsePrice(%q): %v", in, err)
		}
		second, err := ParsePrice(strconv.FormatFloat(first, 'f', -1, 64))
		if err != nil {
			t.Fatalf("re-parse of %v: %v", first, err)
		}
		if first != second {
			t.Errorf("price not idempotent: %v then %v", first, second)
		}
	}
}

func TestNormalizeNeighbourhood(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input string
		want  string
	}{
		{"", NotListed},
		{"   ", NotListed},
		{"nan", NotListed},
		{"NaN", NotListed},
		{" Mission ", "Mission"},
		{NotListed, NotListed},
	}
	for _, tt := range tests {
		got := NormalizeNeighbourhood(tt.input)
		if got != tt.want {
			t.Errorf("NormalizeNeighbourhood(%q) = %q, want %q", tt.input, got, tt.want)
		}
		if again := NormalizeNeighbourhood(got); again != got {
			t.Errorf("NormalizeNeighbourhood not idempotent for %q: %q then %q", tt.input, got, again)
		}
	}
}

func TestBucketRating(t *testing.T) {
	t.Parallel()

	tests := []struct {
		rating float64
		want   string
		ok     bool
	}{
		{0.0, "(0-1]", true},
		{0.5, "(0-1]", true},
		{1.0, "(0-1]", true},
		{1.01, "(1-2]", true},
		{2.0, "(1-2]", true},
		{3.5, "(3-4]", true},
		{4.0, "(3-4]", true},
		{4.87, "(4-5]", true},
		{5.0, "(4-5]", true},
		{-0.1, "", false},
		{5.01, "", false},
		{97, "", false},
		{math.NaN(), "", false},
	}
	for _, tt := range tests {
		got, ok := BucketRating(tt.rating)
		if got != tt.want || ok != tt.ok {
			t.Errorf("BucketRating(%v) = (%q, %v), want (%q, %v)", tt.rating, got, ok, tt.want, tt.ok)
		}
	}
}

func TestBucketIndex(t *testing.T) {
	t.Parallel()

	if got := BucketIndex("(2-3]"); got != 2 {
		t.Errorf("BucketIndex((2-3]) = %d, want 2", got)
	}
	if got := BucketIndex("(5-6]"); got != -1 {
		t.Errorf("BucketIndex unknown = %d, want -1", got)
	}
}

func TestNormalize(t *testing.T) {
	t.Parallel()

	t.Run("complete row", func(t *testing.T) {
		t.Parallel()
		rec, err := Normalize(RawRow{
			Line: 2, ID: "958", Name: "  Bright   flat ", Neighbourhood: "Western Addition",
			NeighbourhoodGroup: "", PropertyType: "Entire rental unit", RoomType: "Entire home/apt",
			Price: "$1,200.00", Latitude: "37.77", Longitude: "-122.43", Rating: "4.87",
		})
		if err != nil {
			t.Fatalf("Normalize: %v", err)
		}
		if rec.Price != 1200 || rec.Name != "Bright flat" {
			t.Errorf("unexpected record: %+v", rec)
		}
		if !rec.HasLocation || rec.Latitude != 37.77 || rec.Longitude != -122.43 {
			t.Errorf("expected location, got %+v", rec)
		}
		if !rec.HasRating || rec.RatingBucket != "(4-5]" {
			t.Errorf("expected rating bucket (4-5], got %+v", rec)
		}
	})

	t.Run("malformed price", func(t *testing.T) {
		t.Parallel()
		_, err := Normalize(RawRow{Line: 7, ID: "x1", RoomType: "Private room", Price: "n/a"})
		if !errors.Is(err, ErrMalformedRecord) || !errors.Is(err, ErrMalformedPrice) {
			t.Fatalf("expected malformed record error, got %v", err)
		}
		var mre *MalformedRecordError
		if !errors.As(err, &mre) || mre.Line != 7 || mre.Field != ColPrice {
			t.Errorf("unexpected error detail: %+v", mre)
		}
	})

	t.Run("bad coordinates keep the row", func(t *testing.T) {
		t.Parallel()
		rec, err := Normalize(RawRow{Line: 3, RoomType: "Private room", Price: "$50", Latitude: "abc", Longitude: "-122.4"})
		if err != nil {
			t.Fatalf("Normalize: %v", err)
		}
		if rec.HasLocation {
			t.Error("expected HasLocation=false")
		}
		if rec.ID != "line-3" {
			t.Errorf("expected synthesized id, got %q", rec.ID)
		}
		if rec.Neighbourhood != NotListed {
			t.Errorf("expected sentinel neighbourhood, got %q", rec.Neighbourhood)
		}
	})

	t.Run("out of range latitude", func(t *testing.T) {
		t.Parallel()
		rec, err := Normalize(RawRow{RoomType: "Private room", Price: "$50", Latitude: "95", Longitude: "10"})
		if err != nil {
			t.Fatalf("Normalize: %v", err)
		}
		if rec.HasLocation {
			t.Error("expected HasLocation=false for latitude 95")
		}
	})
}
