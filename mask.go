package cityfill

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// LandMask answers whether a point lies on land, using a multipolygon
// boundary whose polygons carry holes after their outer ring.
//
// A nil *LandMask contains every point, which is how "no boundary data"
// is expressed.
type LandMask struct {
	polys  []orb.Polygon
	bounds []orb.Bound
}

// NewLandMask indexes the polygons of mp by bounding box.
func NewLandMask(mp orb.MultiPolygon) *LandMask {
	m := &LandMask{
		polys:  make([]orb.Polygon, 0, len(mp)),
		bounds: make([]orb.Bound, 0, len(mp)),
	}
	for _, poly := range mp {
		if len(poly) == 0 {
			continue
		}
		b := poly[0].Bound()
		for _, hole := range poly[1:] {
			b = b.Union(hole.Bound())
		}
		m.polys = append(m.polys, poly)
		m.bounds = append(m.bounds, b)
	}
	return m
}

// LoadLandMask reads a GeoJSON Polygon, MultiPolygon, Feature or
// FeatureCollection and builds a mask from every polygonal geometry in it.
// Coordinates are (lon, lat) as GeoJSON requires.
func LoadLandMask(r io.Reader) (*LandMask, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading boundary: %w", err)
	}

	var head struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return nil, fmt.Errorf("decoding boundary: %w", err)
	}

	var geoms []orb.Geometry
	switch strings.ToLower(head.Type) {
	case "featurecollection":
		fc, err := geojson.UnmarshalFeatureCollection(data)
		if err != nil {
			return nil, fmt.Errorf("decoding feature collection: %w", err)
		}
		for _, f := range fc.Features {
			geoms = append(geoms, f.Geometry)
		}
	case "feature":
		f, err := geojson.UnmarshalFeature(data)
		if err != nil {
			return nil, fmt.Errorf("decoding feature: %w", err)
		}
		geoms = append(geoms, f.Geometry)
	default:
		g, err := geojson.UnmarshalGeometry(data)
		if err != nil {
			return nil, fmt.Errorf("decoding geometry: %w", err)
		}
		geoms = append(geoms, g.Geometry())
	}

	var mp orb.MultiPolygon
	for _, g := range geoms {
		switch v := g.(type) {
		case orb.Polygon:
			mp = append(mp, v)
		case orb.MultiPolygon:
			mp = append(mp, v...)
		}
	}
	if len(mp) == 0 {
		return nil, fmt.Errorf("boundary has no polygons")
	}
	return NewLandMask(mp), nil
}

// Contains reports whether p is inside any polygon and outside all of that
// polygon's holes.
//
// Ray-casting parity is applied to rings as given; self-intersecting or
// degenerate rings produce whatever parity says.
func (m *LandMask) Contains(p Point) bool {
	if m == nil {
		return true
	}
	pt := orb.Point{p.Lon, p.Lat}
	for i, poly := range m.polys {
		if !m.bounds[i].Contains(pt) {
			continue
		}
		if polygonContains(poly, pt) {
			return true
		}
	}
	return false
}

// Len returns the number of indexed polygons.
func (m *LandMask) Len() int {
	if m == nil {
		return 0
	}
	return len(m.polys)
}

func polygonContains(poly orb.Polygon, pt orb.Point) bool {
	if !ringContains(poly[0], pt) {
		return false
	}
	for _, hole := range poly[1:] {
		if ringContains(hole, pt) {
			return false
		}
	}
	return true
}

// ringContains is the even-odd ray casting test. The ring may or may not
// repeat its first vertex at the end.
func ringContains(ring orb.Ring, pt orb.Point) bool {
	x, y := pt[0], pt[1]
	inside := false
	for i, j := 0, len(ring)-1; i < len(ring); j, i = i, i+1 {
		xi, yi := ring[i][0], ring[i][1]
		xj, yj := ring[j][0], ring[j][1]
		if (yi > y) != (yj > y) && x < (xj-xi)*(y-yi)/(yj-yi)+xi {
			inside = !inside
		}
	}
	return inside
}
