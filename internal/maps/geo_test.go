package maps

import (
	"math"
	"testing"

	"codrive/internal/types"
)

func TestHaversineMeters_KnownDistances(t *testing.T) {
	tests := []struct {
		name      string
		a, b      types.Point
		want      float64
		tolerance float64
	}{
		{
			name:      "same point",
			a:         types.Point{Lat: 52.5200, Lng: 13.4050},
			b:         types.Point{Lat: 52.5200, Lng: 13.4050},
			want:      0,
			tolerance: 0.5,
		},
		{
			name:      "Berlin Hbf to Alexanderplatz (~3km)",
			a:         types.Point{Lat: 52.5251, Lng: 13.3694},
			b:         types.Point{Lat: 52.5219, Lng: 13.4132},
			want:      2990,
			tolerance: 150,
		},
		{
			name:      "Berlin to Munich (~504km)",
			a:         types.Point{Lat: 52.5200, Lng: 13.4050},
			b:         types.Point{Lat: 48.1351, Lng: 11.5820},
			want:      504000,
			tolerance: 5000,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := HaversineMeters(tt.a, tt.b)
			if math.Abs(got-tt.want) > tt.tolerance {
				t.Errorf("HaversineMeters() = %f, want %f (±%f)", got, tt.want, tt.tolerance)
			}
		})
	}
}

func TestHaversineMeters_Symmetric(t *testing.T) {
	a := types.Point{Lat: 50.1109, Lng: 8.6821}
	b := types.Point{Lat: 50.9375, Lng: 6.9603}
	if d1, d2 := HaversineMeters(a, b), HaversineMeters(b, a); math.Abs(d1-d2) > 1e-6 {
		t.Errorf("asymmetric: %f vs %f", d1, d2)
	}
}
