package geometry

import (
	"fmt"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/samirrijal/fencekeeper/internal/core/domain"
)

// Feature properties read by FeatureToZoneInput.
const (
	PropName        = "name"
	PropDescription = "description"
	PropRuleID      = "ruleId"
	PropRadius      = "radius"
)

// FeatureToZoneInput maps a GeoJSON feature onto a zone. Polygons keep their
// outer ring; points become circles and need a "radius" property in meters.
func FeatureToZoneInput(f *geojson.Feature) (domain.ZoneInput, error) {
	if f == nil || f.Geometry == nil {
		return domain.ZoneInput{}, fmt.Errorf("%w: feature has no geometry", domain.ErrInvalidShapeType)
	}

	in := domain.ZoneInput{
		Name:        f.Properties.MustString(PropName, ""),
		Description: f.Properties.MustString(PropDescription, ""),
	}
	if _, ok := f.Properties[PropRuleID]; ok {
		rule := int64(f.Properties.MustFloat64(PropRuleID, 0))
		in.RuleID = &rule
	}

	switch g := f.Geometry.(type) {
	case orb.Polygon:
		in.ShapeType = string(domain.ShapePolygon)
		if len(g) > 0 {
			in.Vertices = fromRing(g[0])
		}
	case orb.Point:
		in.ShapeType = string(domain.ShapeCircle)
		in.Vertices = []domain.Coordinates{{g.Lon(), g.Lat()}}
		in.RadiusMeters = f.Properties.MustFloat64(PropRadius, 0)
	default:
		return domain.ZoneInput{}, fmt.Errorf("%w: %s feature", domain.ErrInvalidShapeType, f.Geometry.GeoJSONType())
	}
	return in, nil
}
