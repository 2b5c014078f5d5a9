package geospatial

import (
	"math"

	"github.com/samirrijal/fencekeeper/internal/core/domain"
)

const earthRadiusMeters = 6371008.8

// Haversine calculates the great-circle distance in meters between two points.
func Haversine(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := toRad(lat2 - lat1)
	dLon := toRad(lon2 - lon1)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(lat1))*math.Cos(toRad(lat2))*
			math.Sin(dLon/2)*math.Sin(dLon/2)

	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return earthRadiusMeters * c
}

// Distance is Haversine over [lng, lat] pairs.
func Distance(a, b domain.Coordinates) float64 {
	return Haversine(a.Lat(), a.Lng(), b.Lat(), b.Lng())
}

// CircleContains reports whether p lies within radiusMeters of center.
// The boundary is inclusive.
func CircleContains(center domain.Coordinates, radiusMeters float64, p domain.Coordinates) bool {
	return Distance(center, p) <= radiusMeters
}

func toRad(deg float64) float64 {
	return deg * math.Pi / 180
}
