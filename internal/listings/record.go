// Listingscope - Airbnb Listings Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/listingscope

package listings

// NotListed replaces a blank or missing neighbourhood.
const NotListed = "Not Listed"

// Record is one normalized listing.
type Record struct {
	ID                 string  `json:"id"`
	Name               string  `json:"name,omitempty"`
	Neighbourhood      string  `json:"neighbourhood"`
	NeighbourhoodGroup string  `json:"neighbourhood_group,omitempty"`
	PropertyType       string  `json:"property_type"`
	RoomType           string  `json:"room_type"`
	Price              float64 `json:"price"`
	Latitude           float64 `json:"latitude,omitempty"`
	Longitude          float64 `json:"longitude,omitempty"`
	HasLocation        bool    `json:"has_location"`
	Rating             float64 `json:"rating,omitempty"`
	HasRating          bool    `json:"has_rating"`
	RatingBucket       string  `json:"rating_bucket,omitempty"`
}

// RawRow holds the string fields of one CSV row before normalization.
// Line is the 1-based line number in the source, used in error reports.
type RawRow struct {
	Line               int
	ID                 string
	Name               string
	Neighbourhood      string
	NeighbourhoodGroup string
	PropertyType       string
	RoomType           string
	Price              string
	Latitude           string
	Longitude          string
	Rating             string
}
