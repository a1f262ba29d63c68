// SPDX-FileCopyrightText: The RealWeatherApp Authors
//
// SPDX-License-Identifier: MIT

package sky

import (
	"fmt"
	"math"
)

// RGB is a color with channels in [0, 1].
type RGB struct {
	R float64
	G float64
	B float64
}

// Lerp interpolates per channel between a and b. The factor is
// deliberately not clamped here: the gradient composer extrapolates by
// calling it with min(1, f+offset) to bias the bottom stop.
func Lerp(a, b RGB, f float64) RGB {
	return RGB{
		R: a.R + (b.R-a.R)*f,
		G: a.G + (b.G-a.G)*f,
		B: a.B + (b.B-a.B)*f,
	}
}

// Darken blends the color toward black by the given factor.
func Darken(c RGB, f float64) RGB {
	return Lerp(c, RGB{}, f)
}

// CapAt caps each channel of c at the matching channel of limit.
func CapAt(c, limit RGB) RGB {
	return RGB{
		R: math.Min(c.R, limit.R),
		G: math.Min(c.G, limit.G),
		B: math.Min(c.B, limit.B),
	}
}

// Hex renders the color as a #rrggbb string for the display consumer.
// Channels are clamped so extrapolated values still format cleanly.
func (c RGB) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", channelByte(c.R), channelByte(c.G), channelByte(c.B))
}

func channelByte(v float64) uint8 {
	if v < 0 {
		v = 0
	}
	if v > 1 {
		v = 1
	}
	return uint8(math.Round(v * 255))
}
