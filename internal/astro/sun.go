// SPDX-FileCopyrightText: The RealWeatherApp Authors
//
// SPDX-License-Identifier: MIT

package astro

import (
	"math"
	"time"
)

// Position holds the horizontal coordinates of the sun for an observer.
type Position struct {
	// ElevationDeg is the angle above the horizon in degrees (-90 to 90).
	ElevationDeg float64
	// AzimuthDeg is measured clockwise from North in degrees (0 to 360).
	AzimuthDeg float64
}

// SunPosition computes the sun's elevation and azimuth for the given
// geographic coordinate and UTC instant. The function is total over all
// finite inputs; all trigonometric intermediates are bounded or clamped.
//
// Neither nutation nor atmospheric refraction is applied. The ~1 degree
// accuracy tier is intentional and must be preserved so that the derived
// sky colors stay reproducible.
func SunPosition(latDeg, lonDeg float64, t time.Time) Position {
	jd, T := JulianDay(t)

	// Mean longitude and mean anomaly of the sun
	l0 := normalize360(280.46646 + 36000.76983*T + 0.0003032*T*T)
	m := 357.52911 + 35999.05029*T - 0.0001537*T*T
	mRad := degToRad(m)

	// Equation of center
	c := (1.914602-0.004817*T-0.000014*T*T)*math.Sin(mRad) +
		(0.019993-0.000101*T)*math.Sin(2*mRad) +
		0.000289*math.Sin(3*mRad)

	trueLong := l0 + c
	trueLongRad := degToRad(trueLong)

	// Obliquity of the ecliptic
	eps := degToRad(23.439291 - 0.0130042*T)

	// Equatorial coordinates
	dec := math.Asin(math.Sin(trueLongRad) * math.Sin(eps))
	ra := radToDeg(math.Atan2(math.Cos(eps)*math.Sin(trueLongRad), math.Cos(trueLongRad)))
	ra = normalize360(ra)

	// Hour angle from local sidereal time
	ha := localSiderealTime(jd, t, lonDeg) - ra
	for ha > 180 {
		ha -= 360
	}
	for ha <= -180 {
		ha += 360
	}
	haRad := degToRad(ha)
	latRad := degToRad(latDeg)

	cosZenith := math.Sin(latRad)*math.Sin(dec) +
		math.Cos(latRad)*math.Cos(dec)*math.Cos(haRad)
	if cosZenith > 1 {
		cosZenith = 1
	} else if cosZenith < -1 {
		cosZenith = -1
	}
	elevation := 90 - radToDeg(math.Acos(cosZenith))

	azimuth := radToDeg(math.Atan2(math.Sin(haRad),
		math.Cos(haRad)*math.Sin(latRad)-math.Tan(dec)*math.Cos(latRad)))
	azimuth = normalize360(azimuth + 180)

	return Position{ElevationDeg: elevation, AzimuthDeg: azimuth}
}

// localSiderealTime returns the local sidereal time in degrees for the
// given Julian day, instant and observer longitude.
func localSiderealTime(jd float64, t time.Time, lonDeg float64) float64 {
	// The quadratic and cubic GMST terms use centuries measured from the
	// preceding UTC midnight, not from the instant itself.
	utc := t.UTC()
	midnight := time.Date(utc.Year(), utc.Month(), utc.Day(), 0, 0, 0, 0, time.UTC)
	jd0, _ := JulianDay(midnight)
	t0 := (jd0 - J2000) / julianCentury

	gmst := 280.46061837 +
		360.98564736629*(jd-J2000) +
		0.000387933*t0*t0 -
		t0*t0*t0/38710000.0

	return normalize360(gmst + lonDeg)
}
