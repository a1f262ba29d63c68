// SPDX-FileCopyrightText: The RealWeatherApp Authors
//
// SPDX-License-Identifier: MIT

package sky

import (
	"math"
	"testing"
)

func TestClassify(t *testing.T) {
	t.Run("elevation buckets classify correctly", func(t *testing.T) {
		tests := []struct {
			name      string
			elevation float64
			fraction  float64
			want      Phase
		}{
			{"deep night", -40, 0.5, Night},
			{"exactly at civil twilight", -6, 0.5, Night},
			{"just above civil twilight", -5.999, 0.5, Dawn},
			{"just below horizon", -0.001, 0.5, Dawn},
			{"early day fraction", 5, 0.1, MorningRamp},
			{"mid-morning boundary", 20, 0.25, ApproachingMidday},
			{"afternoon", 40, 0.6, EarlyEvening},
			{"late day", 5, 0.85, Sunset},
			{"day fraction one", 1, 1.0, Sunset},
		}
		for _, tc := range tests {
			t.Run(tc.name, func(t *testing.T) {
				phase, blend := Classify(tc.elevation, tc.fraction)
				if phase != tc.want {
					t.Errorf("expected phase %s, got %s", tc.want, phase)
				}
				if blend < 0 || blend > 1 {
					t.Errorf("expected blend in [0,1], got %f", blend)
				}
			})
		}
	})
	t.Run("blend just above the night threshold is near zero", func(t *testing.T) {
		_, blend := Classify(-5.999, 0.5)
		if math.Abs(blend-0.0001666) > 1e-4 {
			t.Errorf("expected blend near 0.00017, got %f", blend)
		}
	})
	t.Run("phase sequence is non-decreasing over the day fraction", func(t *testing.T) {
		prev := MorningRamp
		prevBlend := 0.0
		for frac := 0.0; frac <= 1.0; frac += 0.001 {
			phase, blend := Classify(10, frac)
			if phase < prev {
				t.Fatalf("phase regressed from %s to %s at fraction %f", prev, phase, frac)
			}
			if phase == prev && blend < prevBlend-1e-9 {
				t.Fatalf("blend regressed within %s at fraction %f: %f < %f", phase, frac, blend, prevBlend)
			}
			if phase != prev && blend > 0.01 {
				t.Fatalf("blend not continuous at %s boundary (fraction %f): starts at %f", phase, frac, blend)
			}
			prev, prevBlend = phase, blend
		}
	})
	t.Run("blend approaches one at each phase boundary", func(t *testing.T) {
		boundaries := []float64{0.25, 0.55, 0.80, 1.0}
		for _, b := range boundaries {
			_, blend := Classify(10, b-1e-9)
			if blend < 0.99 {
				t.Errorf("expected blend near 1 just below boundary %f, got %f", b, blend)
			}
		}
	})
}
