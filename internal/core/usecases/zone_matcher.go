package usecases

import (
	"context"

	"github.com/samirrijal/fencekeeper/internal/core/domain"
	"github.com/samirrijal/fencekeeper/internal/pkg/geospatial"
)

// ZoneLister returns the decoded zones of a merchant.
type ZoneLister interface {
	List(ctx context.Context, merchantID string) ([]domain.Zone, error)
}

// LocalZoneMatcher implements ports.ZoneMatcher in process, on the sphere,
// over the merchant's (usually cached) zone list.
type LocalZoneMatcher struct {
	zones ZoneLister
}

// NewLocalZoneMatcher creates a new LocalZoneMatcher.
func NewLocalZoneMatcher(zones ZoneLister) *LocalZoneMatcher {
	return &LocalZoneMatcher{zones: zones}
}

// Match returns the first zone covering point, or nil.
func (m *LocalZoneMatcher) Match(ctx context.Context, merchantID string, point domain.Coordinates) (*domain.ZoneMatch, error) {
	zones, err := m.zones.List(ctx, merchantID)
	if err != nil {
		return nil, err
	}
	for _, z := range zones {
		if ZoneCovers(z, point) {
			return &domain.ZoneMatch{ZoneID: z.ID, RuleID: z.RuleID}, nil
		}
	}
	return nil, nil
}

// ZoneCovers applies the shape-specific membership test. Boundaries are
// inclusive for both shapes. A split polygon covers the point when any of its
// parts does.
func ZoneCovers(z domain.Zone, point domain.Coordinates) bool {
	switch z.ShapeType {
	case domain.ShapePolygon:
		if len(z.Coverage) == 0 {
			return geospatial.PolygonCovers(z.Vertices, point)
		}
		for _, part := range z.Coverage {
			if geospatial.PolygonCovers(part, point) {
				return true
			}
		}
		return false
	case domain.ShapeCircle:
		if len(z.Vertices) != 1 {
			return false
		}
		return geospatial.CircleContains(z.Vertices[0], z.RadiusMeters, point)
	default:
		return false
	}
}
