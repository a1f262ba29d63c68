// SPDX-FileCopyrightText: The RealWeatherApp Authors
//
// SPDX-License-Identifier: MIT

package sky

import (
	"math"
	"testing"
)

func TestLerp(t *testing.T) {
	a := RGB{R: 0.2, G: 0.4, B: 0.6}
	b := RGB{R: 0.8, G: 0.6, B: 0.1}

	t.Run("identical colors are a fixed point for any factor", func(t *testing.T) {
		for _, f := range []float64{-1, 0, 0.37, 1, 2.5} {
			if got := Lerp(a, a, f); got != a {
				t.Errorf("expected %v for factor %f, got %v", a, f, got)
			}
		}
	})
	t.Run("factor zero returns the first color", func(t *testing.T) {
		if got := Lerp(a, b, 0); got != a {
			t.Errorf("expected %v, got %v", a, got)
		}
	})
	t.Run("factor one returns the second color", func(t *testing.T) {
		if got := Lerp(a, b, 1); got != b {
			t.Errorf("expected %v, got %v", b, got)
		}
	})
	t.Run("midpoint averages the channels", func(t *testing.T) {
		got := Lerp(a, b, 0.5)
		want := RGB{R: 0.5, G: 0.5, B: 0.35}
		if math.Abs(got.R-want.R) > 1e-9 || math.Abs(got.G-want.G) > 1e-9 ||
			math.Abs(got.B-want.B) > 1e-9 {
			t.Errorf("expected %v, got %v", want, got)
		}
	})
}

func TestDarken(t *testing.T) {
	c := RGB{R: 1, G: 0.5, B: 0.2}
	got := Darken(c, 0.2)
	if math.Abs(got.R-0.8) > 1e-9 || math.Abs(got.G-0.4) > 1e-9 || math.Abs(got.B-0.16) > 1e-9 {
		t.Errorf("expected channels scaled by 0.8, got %v", got)
	}
}

func TestCapAt(t *testing.T) {
	c := RGB{R: 0.9, G: 0.3, B: 0.5}
	limit := RGB{R: 0.4, G: 0.6, B: 0.5}
	got := CapAt(c, limit)
	want := RGB{R: 0.4, G: 0.3, B: 0.5}
	if got != want {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestRGB_Hex(t *testing.T) {
	tests := []struct {
		name string
		c    RGB
		want string
	}{
		{"black", RGB{}, "#000000"},
		{"white", RGB{R: 1, G: 1, B: 1}, "#ffffff"},
		{"mid gray", RGB{R: 0.5, G: 0.5, B: 0.5}, "#808080"},
		{"out of range clamps", RGB{R: 1.5, G: -0.3, B: 0.2}, "#ff0033"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.c.Hex(); got != tc.want {
				t.Errorf("expected %s, got %s", tc.want, got)
			}
		})
	}
}

func TestCompose(t *testing.T) {
	t.Run("night gradient uses the night anchor for both stops", func(t *testing.T) {
		g := Compose(Night, 0)
		if g.Top != anchorNight {
			t.Errorf("expected night anchor on top, got %v", g.Top)
		}
		if g.Bottom.R > g.Top.R || g.Bottom.G > g.Top.G || g.Bottom.B > g.Top.B {
			t.Error("expected bottom stop to be darkened")
		}
	})
	t.Run("bottom stop is darkened near the midday anchor", func(t *testing.T) {
		// Buffalo at summer solstice local solar noon: elevation is well
		// above 65 degrees, day fraction sits right on the midday ramp.
		phase, blend := Classify(70.5, 0.499)
		if phase != ApproachingMidday {
			t.Fatalf("expected midday ramp phase, got %s", phase)
		}
		g := Compose(phase, blend)
		if g.Bottom.R > g.Top.R || g.Bottom.G > g.Top.G || g.Bottom.B > g.Top.B {
			t.Errorf("expected bottom channels <= top channels, got top=%v bottom=%v", g.Top, g.Bottom)
		}
	})
	t.Run("bottom stop never outshines the top in the early evening", func(t *testing.T) {
		// Just past solar noon the anchor pair brightens toward the
		// horizon, so the bottom bias alone would push the red channel
		// above the top stop.
		phase, blend := Classify(66, 0.56)
		if phase != EarlyEvening {
			t.Fatalf("expected early evening phase, got %s", phase)
		}
		g := Compose(phase, blend)
		if g.Bottom.R > g.Top.R || g.Bottom.G > g.Top.G || g.Bottom.B > g.Top.B {
			t.Errorf("expected bottom channels <= top channels, got top=%v bottom=%v", g.Top, g.Bottom)
		}
	})
	t.Run("dawn gradient sits between the night and sunrise anchors", func(t *testing.T) {
		g := Compose(Dawn, 0.5)
		if g.Top.R <= anchorNight.R || g.Top.R >= anchorSunrise.R {
			t.Errorf("expected top red channel between anchors, got %f", g.Top.R)
		}
	})
	t.Run("full blend clamps the bottom bias", func(t *testing.T) {
		g := Compose(Sunset, 1)
		want := Darken(anchorSunset, horizonDarken)
		if g.Bottom != want {
			t.Errorf("expected bottom to be the darkened sunset anchor, got %v", g.Bottom)
		}
	})
}

func TestComposeElapsed(t *testing.T) {
	t.Run("far stop is darkened by a flat factor", func(t *testing.T) {
		for _, frac := range []float64{0, 0.25, 0.5, 0.75, 1} {
			g := ComposeElapsed(frac)
			want := Darken(g.Top, fallbackDarken)
			if g.Bottom != want {
				t.Errorf("expected far stop darkened 20%% at fraction %f, got %v", frac, g.Bottom)
			}
		}
	})
	t.Run("sweep is warm at the edges and cool in the middle", func(t *testing.T) {
		start := ComposeElapsed(0)
		mid := ComposeElapsed(0.5)
		end := ComposeElapsed(1)
		if start.Top != anchorSunrise || end.Top != anchorSunrise {
			t.Error("expected warm anchor at sunrise and sunset")
		}
		if mid.Top != anchorMidday {
			t.Errorf("expected cool anchor at midday, got %v", mid.Top)
		}
	})
	t.Run("out-of-range fractions clamp", func(t *testing.T) {
		if ComposeElapsed(-0.5) != ComposeElapsed(0) {
			t.Error("expected negative fraction to clamp to 0")
		}
		if ComposeElapsed(1.5) != ComposeElapsed(1) {
			t.Error("expected fraction above 1 to clamp to 1")
		}
	})
}
