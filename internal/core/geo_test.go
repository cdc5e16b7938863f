package core

import (
	"math"
	"testing"
)

func TestDistanceKnownPairs(t *testing.T) {
	tests := []struct {
		name                   string
		lat1, lng1, lat2, lng2 float64
		want                   float64 // meters
		tolerance              float64
	}{
		{
			name: "same point",
			lat1: 10, lng1: 10, lat2: 10, lng2: 10,
			want: 0, tolerance: 0.001,
		},
		{
			name: "one degree longitude at the equator",
			lat1: 0, lng1: 0, lat2: 0, lng2: 1,
			want: 111194.93, tolerance: 1,
		},
		{
			name: "one degree latitude",
			lat1: 45, lng1: 7, lat2: 46, lng2: 7,
			want: 111194.93, tolerance: 1,
		},
		{
			name: "small offset near 10,10",
			lat1: 10, lng1: 10, lat2: 10.001, lng2: 10.001,
			want: 156.06, tolerance: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Distance(tt.lat1, tt.lng1, tt.lat2, tt.lng2)
			if math.Abs(got-tt.want) > tt.tolerance {
				t.Fatalf("Distance() = %.3f, want %.3f (±%.3f)", got, tt.want, tt.tolerance)
			}
		})
	}
}

func TestDistanceSymmetry(t *testing.T) {
	a := Distance(48.8566, 2.3522, 51.5074, -0.1278)
	b := Distance(51.5074, -0.1278, 48.8566, 2.3522)
	if math.Abs(a-b) > 0.0001 {
		t.Fatalf("distance not symmetric: %f vs %f", a, b)
	}
	if a < 300000 || a > 400000 {
		t.Fatalf("Paris-London distance out of plausible range: %f", a)
	}
}
