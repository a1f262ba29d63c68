// SPDX-FileCopyrightText: The RealWeatherApp Authors
//
// SPDX-License-Identifier: MIT

package astro

import (
	"time"

	"github.com/nathan-osman/go-sunrise"
)

// SunTimes holds the local sunrise and sunset instants for one day. It is
// captured once per successful weather fetch and treated as a read-only
// snapshot by every render tick until replaced.
type SunTimes struct {
	Sunrise time.Time
	Sunset  time.Time
}

// NewSunTimes builds a SunTimes from provider-supplied epoch seconds and a
// provider-supplied UTC offset. A zero offsetSeconds with haveOffset false
// substitutes the device's local timezone.
func NewSunTimes(sunriseEpoch, sunsetEpoch int64, offsetSeconds int, haveOffset bool) SunTimes {
	loc := time.Local
	if haveOffset {
		loc = time.FixedZone("provider", offsetSeconds)
	}
	return SunTimes{
		Sunrise: time.Unix(sunriseEpoch, 0).In(loc),
		Sunset:  time.Unix(sunsetEpoch, 0).In(loc),
	}
}

// ComputeSunTimes calculates sunrise and sunset for the coordinate on the
// given date. It is used when the weather provider does not deliver sun
// times of its own.
func ComputeSunTimes(latDeg, lonDeg float64, date time.Time) SunTimes {
	rise, set := sunrise.SunriseSunset(latDeg, lonDeg, date.Year(), date.Month(), date.Day())
	return SunTimes{Sunrise: rise, Sunset: set}
}

// IsZero reports whether no sun times have been captured yet.
func (st SunTimes) IsZero() bool {
	return st.Sunrise.IsZero() && st.Sunset.IsZero()
}

// DayFraction returns the normalized progress of now between sunrise and
// sunset, clamped to [0, 1]. A degenerate interval (sunset at or before
// sunrise) deterministically yields the fixed midpoint 0.5 so downstream
// phase selection never divides by zero.
func (st SunTimes) DayFraction(now time.Time) float64 {
	if !st.Sunset.After(st.Sunrise) {
		return 0.5
	}
	frac := now.Sub(st.Sunrise).Seconds() / st.Sunset.Sub(st.Sunrise).Seconds()
	if frac < 0 {
		return 0
	}
	if frac > 1 {
		return 1
	}
	return frac
}
