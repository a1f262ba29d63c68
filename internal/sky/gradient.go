// SPDX-FileCopyrightText: The RealWeatherApp Authors
//
// SPDX-License-Identifier: MIT

package sky

// Gradient is a two-stop vertical background gradient, consumed
// immediately by the rendering side and never cached here.
type Gradient struct {
	Top    RGB
	Bottom RGB
}

// Anchor colors for the daily light cycle. Each phase interpolates
// between a pair of these.
var (
	anchorNight        = RGB{R: 0.039, G: 0.063, B: 0.161}
	anchorSunrise      = RGB{R: 0.949, G: 0.541, B: 0.294}
	anchorMorning      = RGB{R: 0.620, G: 0.831, B: 0.961}
	anchorMidday       = RGB{R: 0.341, G: 0.627, B: 0.878}
	anchorEarlyEvening = RGB{R: 0.878, G: 0.627, B: 0.314}
	anchorSunset       = RGB{R: 0.788, G: 0.310, B: 0.208}
)

const (
	// bottomBias pushes the bottom stop further along the anchor pair
	// than the top stop, so the horizon leads the sky.
	bottomBias = 0.15
	// horizonDarken is applied to the bottom stop as a final step.
	horizonDarken = 0.05
	// fallbackDarken is the flat darkening of the far stop in the
	// coordinate-less fallback gradient.
	fallbackDarken = 0.20
)

// anchors returns the from/to anchor pair for a phase.
func anchors(p Phase) (from, to RGB) {
	switch p {
	case Dawn:
		return anchorNight, anchorSunrise
	case MorningRamp:
		return anchorSunrise, anchorMorning
	case ApproachingMidday:
		return anchorMorning, anchorMidday
	case EarlyEvening:
		return anchorMidday, anchorEarlyEvening
	case Sunset:
		return anchorEarlyEvening, anchorSunset
	}
	return anchorNight, anchorNight
}

// Compose builds the background gradient for a classified phase and blend
// factor. The bottom stop is biased further along the anchor pair and
// blended slightly toward black to emulate horizon darkening. Each bottom
// channel is capped at the matching top channel, so the horizon never
// outshines the sky even when the anchor pair brightens along the bias
// direction, as it does in the early evening.
func Compose(phase Phase, blend float64) Gradient {
	from, to := anchors(phase)

	bottomBlend := blend + bottomBias
	if bottomBlend > 1 {
		bottomBlend = 1
	}

	top := Lerp(from, to, blend)
	return Gradient{
		Top:    top,
		Bottom: CapAt(Darken(Lerp(from, to, bottomBlend), horizonDarken), top),
	}
}

// ComposeElapsed is the fallback gradient used when no coordinate is
// available: a warm-cool-warm sweep driven purely by the elapsed fraction
// between sunrise and sunset, with the far stop darkened by a flat 20%.
func ComposeElapsed(frac float64) Gradient {
	frac = clamp01(frac)

	var near RGB
	if frac < 0.5 {
		near = Lerp(anchorSunrise, anchorMidday, frac*2)
	} else {
		near = Lerp(anchorMidday, anchorSunrise, (frac-0.5)*2)
	}

	return Gradient{
		Top:    near,
		Bottom: Darken(near, fallbackDarken),
	}
}
