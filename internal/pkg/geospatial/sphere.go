package geospatial

import (
	"github.com/golang/geo/s1"
	"github.com/golang/geo/s2"
	"github.com/samirrijal/fencekeeper/internal/core/domain"
)

// boundaryTolerance treats points within about a centimetre of an edge as
// on the boundary.
var boundaryTolerance = s1.Angle(0.01 / earthRadiusMeters)

// PolygonCovers reports whether the ring covers p on the sphere: inside or on
// the boundary. Edges are great-circle arcs, not planar segments. The ring
// may be open or closed; its orientation does not matter, the smaller of the
// two regions it bounds is taken as the interior.
func PolygonCovers(ring []domain.Coordinates, p domain.Coordinates) bool {
	pts := loopPoints(ring)
	if len(pts) < 3 {
		return false
	}
	target := toPoint(p)

	for i := range pts {
		a, b := pts[i], pts[(i+1)%len(pts)]
		if s2.DistanceFromSegment(target, a, b) <= boundaryTolerance {
			return true
		}
	}

	loop := s2.LoopFromPoints(pts)
	loop.Normalize()
	return loop.ContainsPoint(target)
}

func loopPoints(ring []domain.Coordinates) []s2.Point {
	n := len(ring)
	if n > 1 && ring[0] == ring[n-1] {
		n--
	}
	pts := make([]s2.Point, 0, n)
	for i := 0; i < n; i++ {
		pt := toPoint(ring[i])
		if len(pts) > 0 && pts[len(pts)-1] == pt {
			continue
		}
		pts = append(pts, pt)
	}
	return pts
}

func toPoint(c domain.Coordinates) s2.Point {
	return s2.PointFromLatLng(s2.LatLngFromDegrees(c.Lat(), c.Lng()))
}
