package postgres

import (
	"context"

	"github.com/samirrijal/fencekeeper/internal/core/domain"
)

// MerchantRepo implements ports.MerchantRepository with pgx.
type MerchantRepo struct {
	db *DB
}

// NewMerchantRepo creates a new MerchantRepo.
func NewMerchantRepo(db *DB) *MerchantRepo {
	return &MerchantRepo{db: db}
}

// GetCenter returns the merchant's center location as GeoJSON.
func (r *MerchantRepo) GetCenter(ctx context.Context, merchantID string) ([]byte, error) {
	var center []byte
	err := r.db.Pool.QueryRow(ctx, `
		SELECT ST_AsGeoJSON(center_location) FROM merchants WHERE id = $1
	`, merchantID).Scan(&center)
	if err != nil {
		return nil, notFound(err, domain.ErrMerchantNotFound)
	}
	return center, nil
}

// Upsert inserts the merchant or replaces its name and center location.
func (r *MerchantRepo) Upsert(ctx context.Context, merchantID, name string, center domain.GeoExpression) error {
	_, err := r.db.Pool.Exec(ctx, `
		INSERT INTO merchants (id, name, center_location)
		VALUES ($1, $2, `+center.SQL("$3")+`)
		ON CONFLICT (id) DO UPDATE
		SET name = EXCLUDED.name, center_location = EXCLUDED.center_location
	`, merchantID, name, center.WKT)
	return err
}
