package cityfill

import (
	"errors"
	"math"
	"math/rand"
	"reflect"
	"testing"

	"github.com/paulmach/orb"
)

func TestBuildCoverageGridUnmasked(t *testing.T) {
	g, err := BuildCoverageGrid(GridConfig{LatMin: 0, LatMax: 1, LonMin: 10, LonMax: 11, StepDeg: 0.25}, nil)
	if err != nil {
		t.Fatalf("BuildCoverageGrid: %v", err)
	}
	// Both edges are inclusive: 5 x 5.
	if g.Len() != 25 {
		t.Fatalf("Len = %d, want 25", g.Len())
	}
	if g.Points[0] != (Point{Lat: 0, Lon: 10}) {
		t.Errorf("first point = %v", g.Points[0])
	}
	last := g.Points[g.Len()-1]
	if math.Abs(last.Lat-1) > 1e-9 || math.Abs(last.Lon-11) > 1e-9 {
		t.Errorf("last point = %v, want (1, 11)", last)
	}

	var sum float64
	for i, p := range g.Points {
		want := math.Cos(p.Lat * math.Pi / 180)
		if math.Abs(g.Weights[i]-want) > 1e-12 {
			t.Errorf("weight %d = %v, want %v", i, g.Weights[i], want)
		}
		sum += g.Weights[i]
	}
	if math.Abs(g.TotalWeight-sum) > 1e-9 {
		t.Errorf("TotalWeight = %v, want %v", g.TotalWeight, sum)
	}
}

func TestBuildCoverageGridMasked(t *testing.T) {
	mask := NewLandMask(orb.MultiPolygon{squareWithHole()})
	g, err := BuildCoverageGrid(GridConfig{LatMin: 0, LatMax: 10, LonMin: 0, LonMax: 10, StepDeg: 1}, mask)
	if err != nil {
		t.Fatalf("BuildCoverageGrid: %v", err)
	}
	if g.Len() == 0 || g.Len() >= 121 {
		t.Fatalf("Len = %d, want some but not all of 121", g.Len())
	}
	for _, p := range g.Points {
		if !mask.Contains(p) {
			t.Errorf("grid kept %v outside the mask", p)
		}
	}
}

func TestBuildCoverageGridInvalid(t *testing.T) {
	tests := []struct {
		name string
		cfg  GridConfig
	}{
		{"zero step", GridConfig{LatMax: 1, LonMax: 1, StepDeg: 0}},
		{"negative step", GridConfig{LatMax: 1, LonMax: 1, StepDeg: -0.5}},
		{"NaN step", GridConfig{LatMax: 1, LonMax: 1, StepDeg: math.NaN()}},
		{"inverted lat", GridConfig{LatMin: 2, LatMax: 1, LonMax: 1, StepDeg: 0.5}},
		{"inverted lon", GridConfig{LatMax: 1, LonMin: 2, LonMax: 1, StepDeg: 0.5}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := BuildCoverageGrid(tt.cfg, nil)
			if !errors.Is(err, ErrInvalidGrid) {
				t.Errorf("err = %v, want ErrInvalidGrid", err)
			}
		})
	}
}

func TestNewCoverageGridValidation(t *testing.T) {
	if _, err := NewCoverageGrid([]Point{{0, 0}}, nil); !errors.Is(err, ErrInvalidGrid) {
		t.Errorf("length mismatch: err = %v", err)
	}
	if _, err := NewCoverageGrid([]Point{{0, 0}}, []float64{-1}); !errors.Is(err, ErrInvalidGrid) {
		t.Errorf("negative weight: err = %v", err)
	}
	g, err := NewCoverageGrid(nil, nil)
	if err != nil {
		t.Fatalf("empty grid: %v", err)
	}
	if g.TotalWeight != 0 || g.Within(Point{0, 0}, 1e7) != nil {
		t.Error("empty grid should have no weight and no samples")
	}
}

func TestReferenceGrid(t *testing.T) {
	mask, err := LoadReferenceMask("")
	if err != nil {
		t.Fatalf("LoadReferenceMask: %v", err)
	}
	g, err := BuildCoverageGrid(ReferenceGridConfig(), mask)
	if err != nil {
		t.Fatalf("BuildCoverageGrid: %v", err)
	}
	if g.Len() < 10000 || g.Len() > 16000 {
		t.Errorf("reference grid has %d samples", g.Len())
	}
	for _, p := range g.Points {
		if p.Lat < 24 || p.Lat > 49.5+1e-9 || p.Lon < -125 || p.Lon > -66+1e-9 {
			t.Fatalf("sample %v outside the reference box", p)
		}
	}
}

// bruteWithin is the linear scan the spatial index must agree with.
func bruteWithin(points []Point, center Point, radius float64) []int {
	var out []int
	for i, p := range points {
		if DistanceMeters(center, p) <= radius {
			out = append(out, i)
		}
	}
	return out
}

func TestPointIndexMatchesLinearScan(t *testing.T) {
	g, err := BuildCoverageGrid(GridConfig{LatMin: 24, LatMax: 49.5, LonMin: -125, LonMax: -66, StepDeg: 0.5}, nil)
	if err != nil {
		t.Fatalf("BuildCoverageGrid: %v", err)
	}
	rng := rand.New(rand.NewSource(7))
	radii := []float64{0, 1000, 100_000, 180_000, 300_000, 2_000_000}

	for i := 0; i < 60; i++ {
		center := Point{Lat: 20 + rng.Float64()*35, Lon: -130 + rng.Float64()*70}
		radius := radii[i%len(radii)]
		got := g.Within(center, radius)
		want := bruteWithin(g.Points, center, radius)
		if !reflect.DeepEqual(got, want) {
			t.Fatalf("Within(%v, %v): got %d indices, want %d", center, radius, len(got), len(want))
		}
	}
}

func TestPointIndexEdgeOfCircle(t *testing.T) {
	points := []Point{{0, 0}, {0, 1}, {0, 2}}
	x := newPointIndex(points)
	edge := DistanceMeters(points[0], points[1])

	if got := x.within(points[0], edge); !reflect.DeepEqual(got, []int{0, 1}) {
		t.Errorf("within(edge) = %v, want [0 1]", got)
	}
	if got := x.within(points[0], math.Nextafter(edge, 0)); !reflect.DeepEqual(got, []int{0}) {
		t.Errorf("within(just short) = %v, want [0]", got)
	}
	if got := x.within(points[0], -1); got != nil {
		t.Errorf("negative radius = %v, want nil", got)
	}
}
