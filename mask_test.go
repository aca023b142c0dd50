package cityfill

import (
	"strings"
	"testing"

	"github.com/paulmach/orb"
)

// squareWithHole is lon/lat [0,10]² with a hole over [4,6]².
func squareWithHole() orb.Polygon {
	return orb.Polygon{
		{{0, 0}, {10, 0}, {10, 10}, {0, 10}, {0, 0}},
		{{4, 4}, {6, 4}, {6, 6}, {4, 6}, {4, 4}},
	}
}

func TestLandMaskContains(t *testing.T) {
	m := NewLandMask(orb.MultiPolygon{
		squareWithHole(),
		{{{20, 20}, {30, 20}, {25, 30}}}, // open triangle
	})

	tests := []struct {
		name string
		p    Point
		want bool
	}{
		{"inside square", Point{Lat: 2, Lon: 2}, true},
		{"in hole", Point{Lat: 5, Lon: 5}, false},
		{"between hole and edge", Point{Lat: 5, Lon: 8}, true},
		{"outside everything", Point{Lat: 15, Lon: 15}, false},
		{"inside triangle", Point{Lat: 22, Lon: 25}, true},
		{"triangle bbox but outside", Point{Lat: 29, Lon: 21}, false},
		{"lat/lon not swapped", Point{Lat: 25, Lon: 22}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := m.Contains(tt.p); got != tt.want {
				t.Errorf("Contains(%v) = %v, want %v", tt.p, got, tt.want)
			}
		})
	}
	if m.Len() != 2 {
		t.Errorf("Len = %d, want 2", m.Len())
	}
}

func TestNilLandMaskContainsEverything(t *testing.T) {
	var m *LandMask
	for _, p := range []Point{{0, 0}, {89, 179}, {-45, -100}} {
		if !m.Contains(p) {
			t.Errorf("nil mask Contains(%v) = false", p)
		}
	}
	if m.Len() != 0 {
		t.Errorf("nil mask Len = %d", m.Len())
	}
}

func TestEmptyLandMaskContainsNothing(t *testing.T) {
	m := NewLandMask(nil)
	if m.Contains(Point{0, 0}) {
		t.Error("empty mask contains a point")
	}
}

func TestLoadLandMask(t *testing.T) {
	square := `[[[0,0],[10,0],[10,10],[0,10],[0,0]],[[4,4],[6,4],[6,6],[4,6],[4,4]]]`
	tests := []struct {
		name string
		json string
	}{
		{"polygon", `{"type":"Polygon","coordinates":` + square + `}`},
		{"multipolygon", `{"type":"MultiPolygon","coordinates":[` + square + `]}`},
		{"feature", `{"type":"Feature","properties":{},"geometry":{"type":"Polygon","coordinates":` + square + `}}`},
		{"feature collection", `{"type":"FeatureCollection","features":[
			{"type":"Feature","properties":{},"geometry":{"type":"Point","coordinates":[50,50]}},
			{"type":"Feature","properties":{},"geometry":{"type":"Polygon","coordinates":` + square + `}}]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := LoadLandMask(strings.NewReader(tt.json))
			if err != nil {
				t.Fatalf("LoadLandMask: %v", err)
			}
			if !m.Contains(Point{Lat: 1, Lon: 1}) {
				t.Error("corner point not contained")
			}
			if m.Contains(Point{Lat: 5, Lon: 5}) {
				t.Error("hole point contained")
			}
			if m.Contains(Point{Lat: 50, Lon: 50}) {
				t.Error("non-polygon geometry treated as land")
			}
		})
	}
}

func TestLoadLandMaskErrors(t *testing.T) {
	tests := []struct {
		name string
		json string
	}{
		{"not json", `not json`},
		{"no polygons", `{"type":"Point","coordinates":[1,2]}`},
		{"empty collection", `{"type":"FeatureCollection","features":[]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := LoadLandMask(strings.NewReader(tt.json)); err == nil {
				t.Error("expected an error")
			}
		})
	}
}

func TestReferenceMask(t *testing.T) {
	m, err := LoadReferenceMask("")
	if err != nil {
		t.Fatalf("LoadReferenceMask: %v", err)
	}
	for _, tt := range knownPoints {
		if got := m.Contains(tt.p); got != tt.land {
			t.Errorf("Contains(%s) = %v, want %v", tt.name, got, tt.land)
		}
	}
}
