package cityfill

import (
	"github.com/golang/geo/s2"
)

// EarthRadiusMeters is the mean Earth radius used for every distance in the
// quiz. Distances are computed on a sphere; the ellipsoid is ignored, which
// is well inside the tolerance of the smallest circle (100 km).
const EarthRadiusMeters = 6_371_000

// Point is a geographic position in degrees.
type Point struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// latLng converts the point to an s2.LatLng.
func (p Point) latLng() s2.LatLng {
	return s2.LatLngFromDegrees(p.Lat, p.Lon)
}

// DistanceMeters returns the great-circle distance between a and b.
//
// s2.LatLng.Distance implements the haversine formula, so the result is
// symmetric, zero for identical points and never negative.
func DistanceMeters(a, b Point) float64 {
	return a.latLng().Distance(b.latLng()).Radians() * EarthRadiusMeters
}
