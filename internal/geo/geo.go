// Package geo holds the spherical-earth math used by proximity search.
//
// Distances use the haversine formula on a sphere with the IUGG mean Earth radius.
// Results are reproducible to the bit for a given pair of points, which a database's
// internal geo index does not guarantee.
package geo

import "math"

// EarthRadiusMeters is the IUGG mean Earth radius.
const EarthRadiusMeters = 6_371_008.8

const degToRad = math.Pi / 180

// DistanceMeters returns the great-circle distance between two lat/lon points.
func DistanceMeters(lat1, lon1, lat2, lon2 float64) float64 {
	lat1Rad := lat1 * degToRad
	lat2Rad := lat2 * degToRad
	dLat := (lat2 - lat1) * degToRad
	dLon := (lon2 - lon1) * degToRad

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1Rad)*math.Cos(lat2Rad)*
			math.Sin(dLon/2)*math.Sin(dLon/2)
	// rounding can push a a hair above 1 for antipodal points
	a = math.Min(1, math.Max(0, a))
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return EarthRadiusMeters * c
}

// BoundingBox is an inclusive lat/lon rectangle. When WrapsLon is set the longitude
// range crosses the antimeridian and a point matches if lon >= MinLon OR lon <= MaxLon.
type BoundingBox struct {
	MinLat, MaxLat float64
	MinLon, MaxLon float64
	WrapsLon       bool
}

// boxSlackDeg widens boxes slightly so float rounding never drops a point on the edge.
const boxSlackDeg = 1e-9

// BoundingBoxAround returns a box that contains every point within radiusMeters of
// (lat, lon) on the sphere. It may contain more; it never contains fewer.
func BoundingBoxAround(lat, lon, radiusMeters float64) BoundingBox {
	whole := BoundingBox{MinLat: -90, MaxLat: 90, MinLon: -180, MaxLon: 180}
	if radiusMeters < 0 || math.IsNaN(radiusMeters) {
		radiusMeters = 0
	}
	angular := radiusMeters / EarthRadiusMeters
	if angular >= math.Pi {
		return whole
	}

	dLat := angular/degToRad + boxSlackDeg
	minLat, maxLat := lat-dLat, lat+dLat
	if minLat <= -90 || maxLat >= 90 {
		// a pole lies inside the circle: every longitude is reachable
		return BoundingBox{MinLat: math.Max(minLat, -90), MaxLat: math.Min(maxLat, 90), MinLon: -180, MaxLon: 180}
	}

	// widest longitude span of a spherical cap (Matuschek)
	ratio := math.Sin(angular) / math.Cos(lat*degToRad)
	if ratio >= 1 {
		return BoundingBox{MinLat: minLat, MaxLat: maxLat, MinLon: -180, MaxLon: 180}
	}
	dLon := math.Asin(ratio)/degToRad + boxSlackDeg
	box := BoundingBox{MinLat: minLat, MaxLat: maxLat, MinLon: lon - dLon, MaxLon: lon + dLon}

	switch {
	case box.MinLon < -180:
		box.MinLon += 360
		box.WrapsLon = true
	case box.MaxLon > 180:
		box.MaxLon -= 360
		box.WrapsLon = true
	}
	return box
}

// Contains reports whether the point lies in the box.
func (b BoundingBox) Contains(lat, lon float64) bool {
	if lat < b.MinLat || lat > b.MaxLat {
		return false
	}
	if b.WrapsLon {
		return lon >= b.MinLon || lon <= b.MaxLon
	}
	return lon >= b.MinLon && lon <= b.MaxLon
}
