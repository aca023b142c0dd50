package cityfill

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidGrid is returned when a grid configuration cannot produce samples.
var ErrInvalidGrid = errors.New("invalid grid configuration")

// gridEdgeTolerance lets the last row and column land on the max edge
// despite accumulated floating point error in the step loop.
const gridEdgeTolerance = 1e-9

// GridConfig describes the lat/lon rectangle sampled by a CoverageGrid.
type GridConfig struct {
	LatMin, LatMax float64
	LonMin, LonMax float64
	StepDeg        float64
}

// ReferenceGridConfig returns the grid used by the quiz: the contiguous
// United States at a quarter degree.
func ReferenceGridConfig() GridConfig {
	return GridConfig{
		LatMin:  24.0,
		LatMax:  49.5,
		LonMin:  -125.0,
		LonMax:  -66.0,
		StepDeg: 0.25,
	}
}

func (c GridConfig) validate() error {
	if !(c.StepDeg > 0) {
		return fmt.Errorf("%w: step %v must be positive", ErrInvalidGrid, c.StepDeg)
	}
	if c.LatMin > c.LatMax || c.LonMin > c.LonMax {
		return fmt.Errorf("%w: empty box [%v,%v]x[%v,%v]", ErrInvalidGrid, c.LatMin, c.LatMax, c.LonMin, c.LonMax)
	}
	return nil
}

// CoverageGrid is the discretized region over which coverage is measured:
// sample points restricted to land, each weighted by the relative area of
// its degree cell. It is never modified after construction.
type CoverageGrid struct {
	Points      []Point
	Weights     []float64
	TotalWeight float64

	index *pointIndex
}

// BuildCoverageGrid samples cfg's rectangle at cfg.StepDeg, keeping the
// points mask contains. A nil mask keeps every point.
//
// Each sample is weighted by cos(lat): a degree cell's east-west extent
// shrinks toward the poles.
func BuildCoverageGrid(cfg GridConfig, mask *LandMask) (*CoverageGrid, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	var points []Point
	var weights []float64
	for lat := cfg.LatMin; lat <= cfg.LatMax+gridEdgeTolerance; lat += cfg.StepDeg {
		w := math.Max(0, math.Cos(lat*math.Pi/180))
		for lon := cfg.LonMin; lon <= cfg.LonMax+gridEdgeTolerance; lon += cfg.StepDeg {
			p := Point{Lat: lat, Lon: lon}
			if mask.Contains(p) {
				points = append(points, p)
				weights = append(weights, w)
			}
		}
	}
	return NewCoverageGrid(points, weights)
}

// NewCoverageGrid builds a grid from explicit samples. Weights must be
// parallel to points and non-negative.
func NewCoverageGrid(points []Point, weights []float64) (*CoverageGrid, error) {
	if len(points) != len(weights) {
		return nil, fmt.Errorf("%w: %d points but %d weights", ErrInvalidGrid, len(points), len(weights))
	}
	g := &CoverageGrid{
		Points:  points,
		Weights: weights,
	}
	for i, w := range weights {
		if w < 0 || math.IsNaN(w) {
			return nil, fmt.Errorf("%w: weight %d is %v", ErrInvalidGrid, i, w)
		}
		g.TotalWeight += w
	}
	g.index = newPointIndex(points)
	return g, nil
}

// Len returns the number of samples.
func (g *CoverageGrid) Len() int {
	return len(g.Points)
}

// Within returns, in ascending order, the indices of samples within radius
// meters of center.
func (g *CoverageGrid) Within(center Point, radius float64) []int {
	return g.index.within(center, radius)
}
