package cityfill

import (
	"sort"

	"github.com/golang/geo/s1"
	"github.com/golang/geo/s2"
)

// coveringMaxCells bounds the number of cells used to approximate a circle.
// More cells mean a tighter covering and fewer exact distance checks.
const coveringMaxCells = 16

// capSlack widens the query cap slightly so that points sitting exactly on
// the circle's edge are never lost to rounding between the chord-angle cap
// and the haversine distance used for the exact test. About 6 cm.
const capSlack = s1.Angle(1e-8)

// pointIndex is a read-only spatial index over a slice of points. Points are
// stored in leaf-cell order so every cell of a covering maps to a contiguous
// range.
type pointIndex struct {
	points []Point
	cells  []s2.CellID // sorted
	ids    []int       // ids[i] is the point index of cells[i]
}

func newPointIndex(points []Point) *pointIndex {
	order := make([]int, len(points))
	cells := make([]s2.CellID, len(points))
	for i, p := range points {
		order[i] = i
		cells[i] = s2.CellIDFromLatLng(p.latLng())
	}
	sort.Slice(order, func(a, b int) bool {
		return cells[order[a]] < cells[order[b]]
	})

	x := &pointIndex{
		points: points,
		cells:  make([]s2.CellID, len(points)),
		ids:    order,
	}
	for i, idx := range order {
		x.cells[i] = cells[idx]
	}
	return x
}

// within returns, in ascending order, the indices of all points whose
// great-circle distance to center is at most radius meters. The result is
// exactly what a linear scan with DistanceMeters would return.
func (x *pointIndex) within(center Point, radius float64) []int {
	if x == nil || len(x.points) == 0 || radius < 0 {
		return nil
	}

	angle := s1.Angle(radius/EarthRadiusMeters) + capSlack
	region := s2.CapFromCenterAngle(s2.PointFromLatLng(center.latLng()), angle)
	coverer := s2.NewRegionCoverer()
	coverer.MaxCells = coveringMaxCells

	var out []int
	for _, cell := range coverer.Covering(region) {
		lo, hi := cell.RangeMin(), cell.RangeMax()
		start := sort.Search(len(x.cells), func(i int) bool { return x.cells[i] >= lo })
		for i := start; i < len(x.cells) && x.cells[i] <= hi; i++ {
			idx := x.ids[i]
			if DistanceMeters(center, x.points[idx]) <= radius {
				out = append(out, idx)
			}
		}
	}
	sort.Ints(out)
	return out
}
