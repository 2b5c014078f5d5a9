package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/samirrijal/fencekeeper/internal/core/domain"
	"github.com/samirrijal/fencekeeper/internal/pkg/geometry"
)

// ZoneMatcher implements ports.ZoneMatcher with PostGIS geography predicates:
// ST_Covers for polygons, ST_DWithin against the radius for circles.
type ZoneMatcher struct {
	db *DB
}

// NewZoneMatcher creates a new ZoneMatcher.
func NewZoneMatcher(db *DB) *ZoneMatcher {
	return &ZoneMatcher{db: db}
}

// Match returns the first zone of the merchant covering point, or nil.
func (m *ZoneMatcher) Match(ctx context.Context, merchantID string, point domain.Coordinates) (*domain.ZoneMatch, error) {
	pt := geometry.ToPointExpression(point)
	var match domain.ZoneMatch
	err := m.db.Pool.QueryRow(ctx, `
		SELECT id, rule_id
		FROM fences
		WHERE merchant_id = $1
		  AND geometry IS NOT NULL
		  AND (
		    (shape_type = 'polygon' AND ST_Covers(geometry, `+pt.SQL("$2")+`))
		    OR (shape_type = 'circle' AND ST_DWithin(geometry, `+pt.SQL("$2")+`, radius))
		  )
		LIMIT 1
	`, merchantID, pt.WKT).Scan(&match.ZoneID, &match.RuleID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &match, nil
}
