// SPDX-FileCopyrightText: The RealWeatherApp Authors
//
// SPDX-License-Identifier: MIT

// Package geocode resolves coordinates into human-readable place names
// and place names into coordinates.
package geocode

import (
	"context"

	"github.com/wmarchant13/RealWeatherApp/internal/geobus"
)

// Address is a reverse-geocoded place.
type Address struct {
	AddressFound bool
	CacheHit     bool
	Latitude     float64
	Longitude    float64
	DisplayName  string
	Country      string
	State        string
	Municipality string
	CityDistrict string
	Postcode     string
	City         string
	Suburb       string
	Street       string
	HouseNumber  string
}

// Geocoder converts between coordinates and addresses.
type Geocoder interface {
	Name() string
	Reverse(ctx context.Context, coords geobus.Coordinate) (Address, error)
	Search(ctx context.Context, place string) (geobus.Coordinate, error)
}
