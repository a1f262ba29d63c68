// SPDX-FileCopyrightText: The RealWeatherApp Authors
//
// SPDX-License-Identifier: MIT

// Package conv holds the closed-form unit conversions fed directly from
// weather provider fields.
package conv

import "math"

// Magnus-Tetens coefficients for dew point over water.
const (
	magnusA = 17.27
	magnusB = 237.7
)

// compassLabels are the 16 compass points, starting at North and moving
// clockwise in 22.5 degree steps.
var compassLabels = [16]string{
	"N", "NNE", "NE", "ENE", "E", "ESE", "SE", "SSE",
	"S", "SSW", "SW", "WSW", "W", "WNW", "NW", "NNW",
}

// DewPointF returns the dew point in Fahrenheit for a temperature in
// Fahrenheit and a relative humidity percentage, using the Magnus-Tetens
// approximation. The result is undefined for humidityPct <= 0 (the
// logarithm has a singularity there); callers must validate upstream.
func DewPointF(tempF, humidityPct float64) float64 {
	tempC := (tempF - 32) * 5 / 9
	gamma := magnusA*tempC/(magnusB+tempC) + math.Log(humidityPct/100)
	dewC := magnusB * gamma / (magnusA - gamma)
	return dewC*9/5 + 32
}

// WindCompass buckets a wind direction in degrees into one of the 16
// compass labels. Any finite value is accepted; the direction wraps.
func WindCompass(degrees float64) string {
	idx := int(math.Round(degrees/22.5)) % 16
	if idx < 0 {
		idx += 16
	}
	return compassLabels[idx]
}
