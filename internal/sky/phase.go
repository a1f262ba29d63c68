// SPDX-FileCopyrightText: The RealWeatherApp Authors
//
// SPDX-License-Identifier: MIT

// Package sky turns a solar elevation and day progress into a two-stop
// background gradient. All functions are pure; the package holds no state
// between render ticks.
package sky

// Phase describes which part of the daily light cycle the sky is in.
type Phase int

const (
	Night Phase = iota
	Dawn
	MorningRamp
	ApproachingMidday
	EarlyEvening
	Sunset
)

// civilTwilight is the solar elevation in degrees below which the sky is
// treated as fully night.
const civilTwilight = -6.0

// Day-fraction boundaries between the daylight phases.
const (
	morningEnd = 0.25
	middayEnd  = 0.55
	eveningEnd = 0.80
)

func (p Phase) String() string {
	switch p {
	case Night:
		return "night"
	case Dawn:
		return "dawn"
	case MorningRamp:
		return "morning"
	case ApproachingMidday:
		return "midday"
	case EarlyEvening:
		return "early-evening"
	case Sunset:
		return "sunset"
	}
	return "unknown"
}

// Classify maps a solar elevation and a day fraction (0 = sunrise,
// 1 = sunset) to the current phase and an intra-phase blend factor in
// [0, 1]. It is a total function: every elevation/fraction combination
// resolves to a phase and the blend is always clamped.
func Classify(elevationDeg, dayFraction float64) (Phase, float64) {
	switch {
	case elevationDeg <= civilTwilight:
		return Night, 0
	case elevationDeg < 0:
		return Dawn, clamp01((elevationDeg - civilTwilight) / -civilTwilight)
	}

	switch {
	case dayFraction < morningEnd:
		return MorningRamp, clamp01(dayFraction / morningEnd)
	case dayFraction < middayEnd:
		return ApproachingMidday, clamp01((dayFraction - morningEnd) / (middayEnd - morningEnd))
	case dayFraction < eveningEnd:
		return EarlyEvening, clamp01((dayFraction - middayEnd) / (eveningEnd - middayEnd))
	}
	return Sunset, clamp01((dayFraction - eveningEnd) / (1 - eveningEnd))
}

func clamp01(f float64) float64 {
	if f < 0 {
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}
