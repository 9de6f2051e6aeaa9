// Listingscope - Airbnb Listings Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/listingscope

package filter

import (
	"math/rand"
	"net/url"
	"testing"

	"github.com/tomtom215/listingscope/internal/listings"
)

func testRecords() []listings.Record {
	return []listings.Record{
		{ID: "1", PropertyType: "Entire loft", RoomType: "Entire home/apt", Neighbourhood: "Mission", NeighbourhoodGroup: "East", Price: 250},
		{ID: "2", PropertyType: "Private room in home", RoomType: "Private room", Neighbourhood: "Mission", NeighbourhoodGroup: "East", Price: 85},
		{ID: "3", PropertyType: "Entire condo", RoomType: "Entire home/apt", Neighbourhood: "SoMa", NeighbourhoodGroup: "Central", Price: 500},
		{ID: "4", PropertyType: "Private room in home", RoomType: "Private room", Neighbourhood: listings.NotListed, Price: 50},
		{ID: "5", PropertyType: "Shared room in home", RoomType: "Shared room", Neighbourhood: "Castro", NeighbourhoodGroup: "Central", Price: 0},
	}
}

func ids(records []listings.Record) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r.ID
	}
	return out
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestApply(t *testing.T) {
	t.Parallel()

	records := testRecords()
	full := Default(BuildOptions(records))

	tests := []struct {
		name   string
		mutate func(c *Criteria)
		want   []string
	}{
		{"identity", func(c *Criteria) {}, []string{"1", "2", "3", "4", "5"}},
		{"room type", func(c *Criteria) { c.RoomType = "Private room" }, []string{"2", "4"}},
		{"property type is applied", func(c *Criteria) { c.PropertyType = "Entire condo" }, []string{"3"}},
		{"neighbourhood sentinel", func(c *Criteria) { c.Neighbourhood = listings.NotListed }, []string{"4"}},
		{"neighbourhood group", func(c *Criteria) { c.NeighbourhoodGroup = "Central" }, []string{"3", "5"}},
		{"inclusive price bounds", func(c *Criteria) { c.PriceMin, c.PriceMax = 85, 250 }, []string{"1", "2"}},
		{"conjunction", func(c *Criteria) {
			c.RoomType = "Entire home/apt"
			c.Neighbourhood = "Mission"
			c.PriceMax = 300
		}, []string{"1"}},
		{"empty string means all", func(c *Criteria) { c.RoomType = "" }, []string{"1", "2", "3", "4", "5"}},
		{"no match", func(c *Criteria) { c.RoomType = "Hotel room" }, []string{}},
		{"inverted range matches nothing", func(c *Criteria) { c.PriceMin, c.PriceMax = 400, 100 }, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			c := full
			tt.mutate(&c)
			got := Apply(records, c)
			if got == nil {
				t.Fatal("Apply must return a non-nil slice")
			}
			if !equalStrings(ids(got), tt.want) {
				t.Errorf("Apply() ids = %v, want %v", ids(got), tt.want)
			}
			if n := Count(records, c); n != len(tt.want) {
				t.Errorf("Count() = %d, want %d", n, len(tt.want))
			}
		})
	}
}

func TestApplyPreservesOrderProperty(t *testing.T) {
	t.Parallel()

	rng := rand.New(rand.NewSource(42))
	roomTypes := []string{"Entire home/apt", "Private room", "Shared room", "Hotel room"}
	records := make([]listings.Record, 500)
	for i := range records {
		records[i] = listings.Record{
			ID:       string(rune('a'+i%26)) + string(rune('0'+i%10)),
			RoomType: roomTypes[rng.Intn(len(roomTypes))],
			Price:    float64(rng.Intn(1000)),
		}
	}

	for trial := 0; trial < 50; trial++ {
		lo := float64(rng.Intn(600))
		c := Criteria{RoomType: roomTypes[rng.Intn(len(roomTypes))], PriceMin: lo, PriceMax: lo + float64(rng.Intn(400))}
		got := Apply(records, c)

		// Every output record must appear in the input after the previous one.
		pos := 0
		for _, g := range got {
			for pos < len(records) && records[pos] != g {
				pos++
			}
			if pos == len(records) {
				t.Fatalf("trial %d: output is not a subsequence of input", trial)
			}
			pos++
		}
	}
}

func TestApplyDoesNotMutateInput(t *testing.T) {
	t.Parallel()

	records := testRecords()
	before := ids(records)
	_ = Apply(records, Criteria{RoomType: "Private room", PriceMax: 100})
	if !equalStrings(before, ids(records)) {
		t.Error("Apply mutated its input")
	}
}

func TestBuildOptions(t *testing.T) {
	t.Parallel()

	opts := BuildOptions(testRecords())
	if opts.Price.Min != 0 || opts.Price.Max != 500 {
		t.Errorf("unexpected price range %+v", opts.Price)
	}
	if !equalStrings(opts.RoomTypes, []string{"Entire home/apt", "Private room", "Shared room"}) {
		t.Errorf("unexpected room types %v", opts.RoomTypes)
	}
	if !equalStrings(opts.NeighbourhoodGroups, []string{"Central", "East"}) {
		t.Errorf("blank groups must be skipped, got %v", opts.NeighbourhoodGroups)
	}
	if !equalStrings(opts.Neighbourhoods, []string{"Castro", "Mission", listings.NotListed, "SoMa"}) {
		t.Errorf("unexpected neighbourhoods %v", opts.Neighbourhoods)
	}

	empty := BuildOptions(nil)
	if empty.Price.Min != 0 || empty.Price.Max != 0 || len(empty.RoomTypes) != 0 {
		t.Errorf("unexpected options for empty input %+v", empty)
	}
}

func TestCriteriaKeyAndNormalized(t *testing.T) {
	t.Parallel()

	a := Criteria{RoomType: " Private room ", PriceMin: 10, PriceMax: 20}
	b := Criteria{PropertyType: "all", RoomType: "Private room", Neighbourhood: All, NeighbourhoodGroup: "", PriceMin: 10, PriceMax: 20}
	if a.Key() != b.Key() {
		t.Errorf("equivalent criteria produced different keys: %q vs %q", a.Key(), b.Key())
	}
	c := b
	c.PriceMax = 21
	if c.Key() == b.Key() {
		t.Error("different price bounds must produce different keys")
	}
	if n := a.Normalized(); n.PropertyType != All || n.RoomType != "Private room" {
		t.Errorf("unexpected normalized criteria %+v", n)
	}
}

func TestClamp(t *testing.T) {
	t.Parallel()

	opts := Options{Price: PriceRange{Min: 10, Max: 300}}
	tests := []struct {
		name             string
		in               Criteria
		wantMin, wantMax float64
		wantOpen         [2]bool
	}{
		{"wider than observed", Criteria{PriceMin: 0, PriceMax: 1000}, 10, 300, [2]bool{true, true}},
		{"inside", Criteria{PriceMin: 50, PriceMax: 60}, 50, 60, [2]bool{false, false}},
		{"explicit edge opens", Criteria{PriceMin: 50, PriceMax: 300}, 50, 300, [2]bool{false, true}},
		{"entirely above", Criteria{PriceMin: 1000, PriceMax: 2000}, 1000, 2000, [2]bool{false, false}},
		{"entirely below", Criteria{PriceMin: 1, PriceMax: 5}, 1, 5, [2]bool{false, false}},
		{"above with open max", Criteria{PriceMin: 1000, PriceMax: 2000, PriceMaxOpen: true}, 1000, 1000, [2]bool{false, true}},
		{"open bounds follow edges", Criteria{PriceMin: 40, PriceMax: 200, PriceMinOpen: true, PriceMaxOpen: true}, 10, 300, [2]bool{true, true}},
		{"open min past explicit max", Criteria{PriceMin: 0, PriceMax: 5, PriceMinOpen: true}, 5, 5, [2]bool{true, false}},
		{"inverted input", Criteria{PriceMin: 200, PriceMax: 50}, 50, 200, [2]bool{false, false}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := tt.in.Clamp(opts)
			if got.PriceMin > got.PriceMax {
				t.Fatalf("Clamp produced an inverted range %v > %v", got.PriceMin, got.PriceMax)
			}
			if got.PriceMin != tt.wantMin || got.PriceMax != tt.wantMax {
				t.Errorf("Clamp = [%v, %v], want [%v, %v]", got.PriceMin, got.PriceMax, tt.wantMin, tt.wantMax)
			}
			if open := [2]bool{got.PriceMinOpen, got.PriceMaxOpen}; open != tt.wantOpen {
				t.Errorf("open bounds = %v, want %v", open, tt.wantOpen)
			}
		})
	}
}

func TestClampFollowsWiderRange(t *testing.T) {
	t.Parallel()

	before := Default(Options{Price: PriceRange{Min: 40, Max: 200}})
	after := before.Clamp(Options{Price: PriceRange{Min: 40, Max: 900}})
	if after.PriceMax != 900 {
		t.Errorf("default criteria should widen with the data, got max %v", after.PriceMax)
	}

	capped := before
	capped.PriceMax, capped.PriceMaxOpen = 150, false
	if got := capped.Clamp(Options{Price: PriceRange{Min: 40, Max: 900}}); got.PriceMax != 150 || !got.PriceMinOpen {
		t.Errorf("explicit bound should hold across reloads, got %+v", got)
	}
}

func TestMerge(t *testing.T) {
	t.Parallel()

	base := Default(Options{Price: PriceRange{Min: 40, Max: 200}})

	got, err := base.Merge([]byte(`{"room_type":"Private room"}`))
	if err != nil {
		t.Fatalf("Merge: %v", err)
	}
	if got.RoomType != "Private room" || !got.PriceMinOpen || !got.PriceMaxOpen {
		t.Errorf("merge without prices should keep open bounds, got %+v", got)
	}

	got, err = base.Merge([]byte(`{"price_max":120}`))
	if err != nil {
		t.Fatalf("Merge: %v", err)
	}
	if got.PriceMax != 120 || got.PriceMaxOpen || !got.PriceMinOpen {
		t.Errorf("a named bound should close, got %+v", got)
	}

	if same, err := base.Merge(nil); err != nil || same != base {
		t.Errorf("empty merge = %+v, %v", same, err)
	}
	if _, err := base.Merge([]byte(`{"price_min":"low"}`)); err == nil {
		t.Error("expected error for a non-numeric bound")
	}
}

func TestParseQuery(t *testing.T) {
	t.Parallel()

	base := Criteria{PropertyType: All, RoomType: All, Neighbourhood: All, NeighbourhoodGroup: All, PriceMin: 0, PriceMax: 500}

	q := url.Values{}
	q.Set(ParamRoomType, "Private room")
	q.Set(ParamPriceMin, "50")
	got, err := ParseQuery(q, base)
	if err != nil {
		t.Fatalf("ParseQuery: %v", err)
	}
	if got.RoomType != "Private room" || got.PriceMin != 50 || got.PriceMax != 500 || got.Neighbourhood != All {
		t.Errorf("unexpected criteria %+v", got)
	}

	open := Default(Options{Price: PriceRange{Min: 0, Max: 500}})
	if got, _ := ParseQuery(q, open); got.PriceMinOpen || !got.PriceMaxOpen {
		t.Errorf("only the named bound should close, got %+v", got)
	}

	bad := url.Values{}
	bad.Set(ParamPriceMax, "lots")
	if _, err := ParseQuery(bad, base); err == nil {
		t.Error("expected error for non-numeric price_max")
	}
}
