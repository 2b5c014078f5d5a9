package domain

import (
	"fmt"
	"math"
)

// SRID of every stored geography (WGS 84).
const SRID = 4326

// Coordinates is a [longitude, latitude] pair, always in that order.
type Coordinates [2]float64

// Lng returns the longitude.
func (c Coordinates) Lng() float64 { return c[0] }

// Lat returns the latitude.
func (c Coordinates) Lat() float64 { return c[1] }

// Validate checks that the pair is finite and inside the WGS 84 ranges.
func (c Coordinates) Validate() error {
	for _, v := range c {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: [%g, %g]", ErrInvalidCoordinates, c[0], c[1])
		}
	}
	if c[0] < -180 || c[0] > 180 || c[1] < -90 || c[1] > 90 {
		return fmt.Errorf("%w: [%g, %g]", ErrInvalidCoordinates, c[0], c[1])
	}
	return nil
}

// RoutePath is an ordered sequence of coordinates.
type RoutePath []Coordinates

// ShapeType is the closed set of zone geometries.
type ShapeType string

const (
	ShapePolygon ShapeType = "polygon"
	ShapeCircle  ShapeType = "circle"
)

// ParseShapeType maps untrusted input onto the closed set.
func ParseShapeType(s string) (ShapeType, error) {
	switch ShapeType(s) {
	case ShapePolygon:
		return ShapePolygon, nil
	case ShapeCircle:
		return ShapeCircle, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidShapeType, s)
	}
}
