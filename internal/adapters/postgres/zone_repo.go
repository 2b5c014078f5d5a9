package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/samirrijal/fencekeeper/internal/core/domain"
	"github.com/samirrijal/fencekeeper/internal/core/ports"
)

const zoneColumns = `id, merchant_id, fence_name, COALESCE(fence_desc, ''), rule_id, shape_type,
		       COALESCE(radius, 0), ST_AsGeoJSON(geometry), created_at, updated_at`

// ZoneRepo implements ports.ZoneRepository with pgx.
type ZoneRepo struct {
	db *DB
}

// NewZoneRepo creates a new ZoneRepo.
func NewZoneRepo(db *DB) *ZoneRepo {
	return &ZoneRepo{db: db}
}

// Create inserts a zone. The geometry WKT is bound, never inlined.
func (r *ZoneRepo) Create(ctx context.Context, rec ports.ZoneRecord) (*ports.StoredZone, error) {
	coords, err := json.Marshal(rec.Vertices)
	if err != nil {
		return nil, err
	}
	row := r.db.Pool.QueryRow(ctx, `
		INSERT INTO fences (merchant_id, fence_name, fence_desc, rule_id, shape_type, radius, coordinates_json, geometry)
		VALUES ($1, $2, $3, $4, $5, $6, $7, `+rec.Geometry.SQL("$8")+`)
		RETURNING `+zoneColumns,
		rec.MerchantID, rec.Name, rec.Description, rec.RuleID, string(rec.ShapeType),
		rec.RadiusMeters, coords, rec.Geometry.WKT)
	return scanZone(row)
}

// Update replaces every column of a zone owned by rec.MerchantID.
func (r *ZoneRepo) Update(ctx context.Context, id int64, rec ports.ZoneRecord) (*ports.StoredZone, error) {
	coords, err := json.Marshal(rec.Vertices)
	if err != nil {
		return nil, err
	}
	row := r.db.Pool.QueryRow(ctx, `
		UPDATE fences
		SET fence_name = $3, fence_desc = $4, rule_id = $5, shape_type = $6, radius = $7,
		    coordinates_json = $8, geometry = `+rec.Geometry.SQL("$9")+`, updated_at = now()
		WHERE id = $1 AND merchant_id = $2
		RETURNING `+zoneColumns,
		id, rec.MerchantID, rec.Name, rec.Description, rec.RuleID, string(rec.ShapeType),
		rec.RadiusMeters, coords, rec.Geometry.WKT)
	z, err := scanZone(row)
	if err != nil {
		return nil, notFound(err, domain.ErrZoneNotFound)
	}
	return z, nil
}

// Delete removes a zone owned by merchantID.
func (r *ZoneRepo) Delete(ctx context.Context, merchantID string, id int64) error {
	tag, err := r.db.Pool.Exec(ctx, `DELETE FROM fences WHERE id = $1 AND merchant_id = $2`, id, merchantID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrZoneNotFound
	}
	return nil
}

// GetByID returns a zone owned by merchantID.
func (r *ZoneRepo) GetByID(ctx context.Context, merchantID string, id int64) (*ports.StoredZone, error) {
	row := r.db.Pool.QueryRow(ctx, `
		SELECT `+zoneColumns+`
		FROM fences WHERE id = $1 AND merchant_id = $2
	`, id, merchantID)
	z, err := scanZone(row)
	if err != nil {
		return nil, notFound(err, domain.ErrZoneNotFound)
	}
	return z, nil
}

// ListByMerchant returns every zone of the merchant ordered by id.
func (r *ZoneRepo) ListByMerchant(ctx context.Context, merchantID string) ([]ports.StoredZone, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT `+zoneColumns+`
		FROM fences WHERE merchant_id = $1
		ORDER BY id
	`, merchantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	zones := []ports.StoredZone{}
	for rows.Next() {
		z, err := scanZone(rows)
		if err != nil {
			return nil, err
		}
		zones = append(zones, *z)
	}
	return zones, rows.Err()
}

func scanZone(row pgx.Row) (*ports.StoredZone, error) {
	var (
		z     ports.StoredZone
		shape string
	)
	if err := row.Scan(
		&z.ID, &z.MerchantID, &z.Name, &z.Description, &z.RuleID, &shape,
		&z.RadiusMeters, &z.GeoJSON, &z.CreatedAt, &z.UpdatedAt,
	); err != nil {
		return nil, err
	}
	st, err := domain.ParseShapeType(shape)
	if err != nil {
		return nil, fmt.Errorf("zone %d: %w", z.ID, err)
	}
	z.ShapeType = st
	return &z, nil
}
