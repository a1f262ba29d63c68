// SPDX-FileCopyrightText: The RealWeatherApp Authors
//
// SPDX-License-Identifier: MIT

// Package astro implements the solar position math that drives the sky
// gradient theming. The formulas are a low-precision solar ephemeris
// (accurate to roughly a degree), which is sufficient for picking
// background colors but not for navigation.
package astro

import (
	"math"
	"time"
)

const (
	// J2000 is the Julian day of the J2000.0 epoch (2000-01-01 12:00 UTC).
	J2000 = 2451545.0
	// julianCentury is the number of days in a Julian century.
	julianCentury = 36525.0
)

// JulianDay converts a UTC instant to its Julian day number and the number
// of Julian centuries since J2000.0.
func JulianDay(t time.Time) (jd, T float64) {
	t = t.UTC()

	year := float64(t.Year())
	month := float64(t.Month())
	day := float64(t.Day())

	dayFrac := (float64(t.Hour()) +
		float64(t.Minute())/60 +
		float64(t.Second())/3600 +
		float64(t.Nanosecond())/3600e9) / 24.0

	// January and February count as months 13 and 14 of the previous year.
	if month <= 2 {
		year--
		month += 12
	}

	a := math.Floor(year / 100)
	b := 2 - a + math.Floor(a/4)

	jd = math.Floor(365.25*(year+4716)) +
		math.Floor(30.6001*(month+1)) +
		day + dayFrac + b - 1524.5
	T = (jd - J2000) / julianCentury

	return jd, T
}

func degToRad(deg float64) float64 {
	return deg * math.Pi / 180
}

func radToDeg(rad float64) float64 {
	return rad * 180 / math.Pi
}

// normalize360 wraps an angle into [0, 360).
func normalize360(deg float64) float64 {
	deg = math.Mod(deg, 360)
	if deg < 0 {
		deg += 360
	}
	return deg
}
