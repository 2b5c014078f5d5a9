package ports

import (
	"context"

	"github.com/samirrijal/fencekeeper/internal/core/domain"
)

// ZoneRecord is a zone row ready for storage. Geometry is always produced by
// the geometry codec from the record's shape and vertices.
type ZoneRecord struct {
	MerchantID   string
	Name         string
	Description  string
	RuleID       *int64
	ShapeType    domain.ShapeType
	Vertices     []domain.Coordinates
	RadiusMeters float64
	Geometry     domain.GeoExpression
}

// StoredZone is a zone row as read back, with geometry still in GeoJSON.
type StoredZone struct {
	domain.Zone
	GeoJSON []byte
}

// ZoneRepository persists delivery zones. Every method is scoped by merchant;
// a zone owned by another merchant behaves as missing.
type ZoneRepository interface {
	Create(ctx context.Context, rec ZoneRecord) (*StoredZone, error)
	Update(ctx context.Context, id int64, rec ZoneRecord) (*StoredZone, error)
	Delete(ctx context.Context, merchantID string, id int64) error
	GetByID(ctx context.Context, merchantID string, id int64) (*StoredZone, error)
	ListByMerchant(ctx context.Context, merchantID string) ([]StoredZone, error)
}

// ZoneMatcher finds the first zone of a merchant that accepts a point.
// A nil match with a nil error means no zone accepts it.
type ZoneMatcher interface {
	Match(ctx context.Context, merchantID string, point domain.Coordinates) (*domain.ZoneMatch, error)
}

// OrderRepository persists orders.
type OrderRepository interface {
	Create(ctx context.Context, order *domain.Order) error
	GetByID(ctx context.Context, merchantID, id string) (*domain.Order, error)
	List(ctx context.Context, merchantID string, q domain.OrderListQuery) (*domain.PaginatedOrders, error)
}

// RuleRepository reads delivery rules.
type RuleRepository interface {
	List(ctx context.Context) ([]domain.DeliveryRule, error)
}

// MerchantRepository reads merchant settings.
type MerchantRepository interface {
	// GetCenter returns the center location as GeoJSON, nil when unset.
	GetCenter(ctx context.Context, merchantID string) ([]byte, error)
	// Upsert creates the merchant or replaces its name and center.
	Upsert(ctx context.Context, merchantID, name string, center domain.GeoExpression) error
}
