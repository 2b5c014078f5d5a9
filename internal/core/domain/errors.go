package domain

import "errors"

// Geometry errors.
var (
	ErrInvalidShapeType            = errors.New("unsupported shape type")
	ErrMissingCenterPoint          = errors.New("circle requires a center point")
	ErrAmbiguousCenterPoint        = errors.New("circle requires exactly one center point")
	ErrInsufficientPolygonVertices = errors.New("polygon requires at least 3 vertices")
	ErrInvalidCoordinates          = errors.New("coordinates out of range")
	ErrInvalidRadius               = errors.New("circle radius must be greater than 0")
	ErrGeometryMismatch            = errors.New("stored geometry does not match shape type")
)

// Validation errors.
var (
	ErrInvalidZone       = errors.New("invalid zone")
	ErrInvalidOrder      = errors.New("invalid order")
	ErrInvalidSortColumn = errors.New("invalid sort column")
	ErrInvalidPagination = errors.New("invalid pagination parameters")
	ErrInvalidStatus     = errors.New("invalid order status")
	ErrMissingMerchant   = errors.New("merchant identity is required")
)

// Lookup errors. A record owned by another merchant is reported as missing.
var (
	ErrZoneNotFound     = errors.New("zone not found")
	ErrOrderNotFound    = errors.New("order not found")
	ErrMerchantNotFound = errors.New("merchant not found")
)

// ErrOutsideDeliveryRange is a business outcome, not a fault.
var ErrOutsideDeliveryRange = errors.New("recipient address is outside of the delivery range")
