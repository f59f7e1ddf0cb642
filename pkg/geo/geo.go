// Package geo provides geodesic primitives for working with latitude/longitude
// coordinates: great-circle distance, point-to-segment distance, and polyline
// encoding, decoding, and sampling.
package geo

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidLocation indicates coordinates outside the valid
// latitude/longitude ranges.
var ErrInvalidLocation = errors.New("invalid location coordinates")

// EarthRadiusKM is the mean Earth radius used for great-circle math.
const EarthRadiusKM = 6371.0

// Point is a geographic coordinate.
type Point struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Validate checks that the point lies within valid coordinate ranges.
func (p Point) Validate() error {
	if p.Lat < -90 || p.Lat > 90 {
		return fmt.Errorf("%w: latitude %f out of range [-90, 90]", ErrInvalidLocation, p.Lat)
	}
	if p.Lon < -180 || p.Lon > 180 {
		return fmt.Errorf("%w: longitude %f out of range [-180, 180]", ErrInvalidLocation, p.Lon)
	}
	return nil
}

// Distance returns the great-circle distance between two points in kilometers,
// using the haversine formula.
func Distance(a, b Point) float64 {
	lat1 := a.Lat * math.Pi / 180
	lat2 := b.Lat * math.Pi / 180
	dLat := (b.Lat - a.Lat) * math.Pi / 180
	dLon := (b.Lon - a.Lon) * math.Pi / 180

	sinLat := math.Sin(dLat / 2)
	sinLon := math.Sin(dLon / 2)

	h := sinLat*sinLat + math.Cos(lat1)*math.Cos(lat2)*sinLon*sinLon
	return 2 * EarthRadiusKM * math.Asin(math.Sqrt(h))
}

// PointSegmentDistance returns the distance in kilometers from point p to the
// segment between a and b. The segment is projected onto a local tangent plane
// around its midpoint, which is accurate to well under a meter at the sub-10km
// segment lengths produced by routing polylines.
func PointSegmentDistance(p, a, b Point) float64 {
	midLat := (a.Lat + b.Lat) / 2 * math.Pi / 180
	cosLat := math.Cos(midLat)

	// Equirectangular projection: x east, y north, in kilometers.
	ax, ay := project(a, cosLat)
	bx, by := project(b, cosLat)
	px, py := project(p, cosLat)

	dx := bx - ax
	dy := by - ay

	segLenSq := dx*dx + dy*dy
	if segLenSq == 0 {
		return Distance(p, a)
	}

	// Clamp the projection of p onto the segment to its endpoints.
	t := ((px-ax)*dx + (py-ay)*dy) / segLenSq
	t = math.Max(0, math.Min(1, t))

	cx := ax + t*dx
	cy := ay + t*dy

	return math.Hypot(px-cx, py-cy)
}

func project(p Point, cosLat float64) (x, y float64) {
	x = p.Lon * math.Pi / 180 * cosLat * EarthRadiusKM
	y = p.Lat * math.Pi / 180 * EarthRadiusKM
	return x, y
}
