// SPDX-FileCopyrightText: The RealWeatherApp Authors
//
// SPDX-License-Identifier: MIT

package geobus

// GeolocationState tracks the last known geolocation coordinates and accuracy values.
// It provides functionality to detect changes in geolocation data.
type GeolocationState struct {
	last     Coordinate
	haveLast bool
}

// Update stores the given coordinate as the last seen state.
func (s *GeolocationState) Update(new Coordinate) {
	s.last = new
	s.haveLast = true
}

// HasChanged reports whether the given coordinate differs from the last
// seen state. The first observation always counts as a change; accuracy
// changes alone do not.
func (s *GeolocationState) HasChanged(new Coordinate) bool {
	if !s.haveLast {
		return true
	}
	return s.last.Lat != new.Lat || s.last.Lon != new.Lon
}
