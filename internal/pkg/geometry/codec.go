// Package geometry converts zone shapes between client coordinate arrays,
// well-known text for writes and GeoJSON for reads.
package geometry

import (
	"fmt"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/encoding/wkt"
	"github.com/paulmach/orb/geojson"
	"github.com/samirrijal/fencekeeper/internal/core/domain"
)

// EncodeForStorage validates the vertices for the shape and produces the
// storage expression. Polygon rings are closed if the input is open.
func EncodeForStorage(shape domain.ShapeType, vertices []domain.Coordinates) (domain.GeoExpression, error) {
	for _, v := range vertices {
		if err := v.Validate(); err != nil {
			return domain.GeoExpression{}, err
		}
	}
	switch shape {
	case domain.ShapePolygon:
		ring, err := CloseRing(vertices)
		if err != nil {
			return domain.GeoExpression{}, err
		}
		return domain.GeoExpression{WKT: wkt.MarshalString(toPolygon(ring)), Repair: true}, nil
	case domain.ShapeCircle:
		switch len(vertices) {
		case 0:
			return domain.GeoExpression{}, domain.ErrMissingCenterPoint
		case 1:
			return ToPointExpression(vertices[0]), nil
		default:
			return domain.GeoExpression{}, domain.ErrAmbiguousCenterPoint
		}
	default:
		return domain.GeoExpression{}, fmt.Errorf("%w: %q", domain.ErrInvalidShapeType, shape)
	}
}

// ToPointExpression builds a single point expression for ad-hoc comparisons.
func ToPointExpression(c domain.Coordinates) domain.GeoExpression {
	return domain.GeoExpression{WKT: wkt.MarshalString(orb.Point{c.Lng(), c.Lat()})}
}

// CloseRing returns the ring with its first vertex repeated last. A ring that
// is already closed is returned as a copy without a second closing vertex.
func CloseRing(vertices []domain.Coordinates) ([]domain.Coordinates, error) {
	open := len(vertices)
	if open > 1 && vertices[0] == vertices[open-1] {
		open--
	}
	if open < 3 {
		return nil, fmt.Errorf("%w: got %d", domain.ErrInsufficientPolygonVertices, open)
	}
	ring := make([]domain.Coordinates, open, open+1)
	copy(ring, vertices[:open])
	return append(ring, ring[0]), nil
}

// DecodeFromStorage turns stored GeoJSON back into client vertices. Polygons
// keep only the outer ring of their first polygonal part; circles yield their
// center. Absent geometry decodes to an empty slice.
func DecodeFromStorage(shape domain.ShapeType, geoJSON []byte) ([]domain.Coordinates, error) {
	switch shape {
	case domain.ShapePolygon:
		parts, err := DecodePolygonParts(geoJSON)
		if err != nil {
			return nil, err
		}
		if len(parts) == 0 {
			return []domain.Coordinates{}, nil
		}
		return parts[0], nil
	case domain.ShapeCircle:
		if isNull(geoJSON) {
			return []domain.Coordinates{}, nil
		}
		geom, err := unmarshal(geoJSON)
		if err != nil {
			return nil, err
		}
		p, ok := geom.(orb.Point)
		if !ok {
			return nil, fmt.Errorf("%w: %s for %s", domain.ErrGeometryMismatch, geom.GeoJSONType(), shape)
		}
		return []domain.Coordinates{{p.Lon(), p.Lat()}}, nil
	default:
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidShapeType, shape)
	}
}

// DecodePolygonParts returns the outer ring of every polygonal part of a
// stored polygon zone. A repaired self-intersecting ring can be stored as a
// MultiPolygon, and rows written before repair output was normalized can hold
// a GeometryCollection; non-polygonal members of a collection are ignored.
func DecodePolygonParts(geoJSON []byte) ([][]domain.Coordinates, error) {
	if isNull(geoJSON) {
		return nil, nil
	}
	geom, err := unmarshal(geoJSON)
	if err != nil {
		return nil, err
	}
	var parts [][]domain.Coordinates
	if !collectPolygons(geom, &parts) {
		return nil, fmt.Errorf("%w: %s for %s", domain.ErrGeometryMismatch, geom.GeoJSONType(), domain.ShapePolygon)
	}
	return parts, nil
}

// collectPolygons appends the outer rings found in g and reports whether g
// may hold polygons at all.
func collectPolygons(g orb.Geometry, parts *[][]domain.Coordinates) bool {
	switch t := g.(type) {
	case orb.Polygon:
		if len(t) > 0 && len(t[0]) > 0 {
			*parts = append(*parts, fromRing(t[0]))
		}
	case orb.MultiPolygon:
		for _, p := range t {
			collectPolygons(p, parts)
		}
	case orb.Collection:
		for _, member := range t {
			collectPolygons(member, parts)
		}
	default:
		return false
	}
	return true
}

func unmarshal(geoJSON []byte) (orb.Geometry, error) {
	g, err := geojson.UnmarshalGeometry(geoJSON)
	if err != nil {
		return nil, fmt.Errorf("decode geojson: %w", err)
	}
	return g.Geometry(), nil
}

// DecodePoint decodes a GeoJSON point. Absent geometry returns nil.
func DecodePoint(geoJSON []byte) (*domain.Coordinates, error) {
	if isNull(geoJSON) {
		return nil, nil
	}
	geom, err := unmarshal(geoJSON)
	if err != nil {
		return nil, err
	}
	p, ok := geom.(orb.Point)
	if !ok {
		return nil, fmt.Errorf("%w: expected Point, got %s", domain.ErrGeometryMismatch, geom.GeoJSONType())
	}
	return &domain.Coordinates{p.Lon(), p.Lat()}, nil
}

func isNull(b []byte) bool {
	return len(b) == 0 || string(b) == "null"
}

func toPolygon(ring []domain.Coordinates) orb.Polygon {
	r := make(orb.Ring, len(ring))
	for i, c := range ring {
		r[i] = orb.Point{c.Lng(), c.Lat()}
	}
	return orb.Polygon{r}
}

func fromRing(r orb.Ring) []domain.Coordinates {
	out := make([]domain.Coordinates, len(r))
	for i, p := range r {
		out[i] = domain.Coordinates{p.Lon(), p.Lat()}
	}
	return out
}
