package cityfill

import (
	"math"
	"testing"
)

func TestDistanceMeters(t *testing.T) {
	tests := []struct {
		name string
		a, b Point
		want float64
		tol  float64
	}{
		{"identical", Point{30.2672, -97.7431}, Point{30.2672, -97.7431}, 0, 0},
		{"one degree of latitude", Point{0, 0}, Point{1, 0}, EarthRadiusMeters * math.Pi / 180, 1e-6},
		{"austin to dallas", Point{30.2672, -97.7431}, Point{32.7767, -96.7970}, 293095.07, 1},
		{"new york to los angeles", Point{40.7128, -74.0060}, Point{34.0522, -118.2437}, 3935746.25, 1},
		{"antipodes", Point{0, 0}, Point{0, 180}, EarthRadiusMeters * math.Pi, 1e-6},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DistanceMeters(tt.a, tt.b)
			if math.Abs(got-tt.want) > tt.tol {
				t.Errorf("DistanceMeters = %v, want %v ± %v", got, tt.want, tt.tol)
			}
		})
	}
}

func TestDistanceMetersSymmetric(t *testing.T) {
	points := []Point{
		{24.5, -81.8}, {47.6, -122.3}, {41.2, -112.5}, {0, 0}, {-33.9, 151.2}, {64.8, -147.7},
	}
	for _, a := range points {
		for _, b := range points {
			ab, ba := DistanceMeters(a, b), DistanceMeters(b, a)
			if ab < 0 {
				t.Errorf("DistanceMeters(%v, %v) = %v, want >= 0", a, b, ab)
			}
			if math.Abs(ab-ba) > 1e-6 {
				t.Errorf("DistanceMeters not symmetric for %v, %v: %v vs %v", a, b, ab, ba)
			}
		}
	}
}
