package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Zone is a merchant-defined delivery fence tied to a delivery rule.
type Zone struct {
	ID           int64         `json:"id"`
	MerchantID   string        `json:"merchantId"`
	Name         string        `json:"fenceName"`
	Description  string        `json:"fenceDesc,omitempty"`
	RuleID       *int64        `json:"ruleId"`
	ShapeType    ShapeType     `json:"shapeType"`
	Vertices     []Coordinates `json:"coordinates"`
	RadiusMeters float64       `json:"radius"`
	CreatedAt    time.Time     `json:"createdAt"`
	UpdatedAt    time.Time     `json:"updatedAt"`

	// Coverage holds the outer ring of every stored polygonal part when a
	// repaired polygon was split. Vertices is always the first part. It is
	// used for matching only and never sent to clients.
	Coverage [][]Coordinates `json:"-"`
}

// ZoneInput is the full representation accepted by create and update.
// Update is a full replace: nothing is carried over from the stored record.
type ZoneInput struct {
	Name         string        `json:"fenceName"`
	Description  string        `json:"fenceDesc"`
	RuleID       *int64        `json:"ruleId"`
	ShapeType    string        `json:"shapeType"`
	Vertices     []Coordinates `json:"coordinates"`
	RadiusMeters float64       `json:"radius"`
}

// Validate checks the invariants that do not depend on geometry encoding.
func (in ZoneInput) Validate() (ShapeType, error) {
	if strings.TrimSpace(in.Name) == "" {
		return "", fmt.Errorf("%w: fenceName is required", ErrInvalidZone)
	}
	shape, err := ParseShapeType(in.ShapeType)
	if err != nil {
		return "", err
	}
	for _, c := range in.Vertices {
		if err := c.Validate(); err != nil {
			return "", err
		}
	}
	switch shape {
	case ShapeCircle:
		if in.RadiusMeters <= 0 {
			return "", ErrInvalidRadius
		}
		if len(in.Vertices) > 1 {
			return "", ErrAmbiguousCenterPoint
		}
	case ShapePolygon:
		if in.RadiusMeters < 0 {
			return "", ErrInvalidRadius
		}
	}
	return shape, nil
}

// ZoneEventOp names a zone mutation.
type ZoneEventOp string

const (
	ZoneCreated ZoneEventOp = "created"
	ZoneUpdated ZoneEventOp = "updated"
	ZoneDeleted ZoneEventOp = "deleted"
)

// ZoneEvent is published after every zone mutation.
type ZoneEvent struct {
	MerchantID string      `json:"merchantId"`
	ZoneID     int64       `json:"zoneId"`
	Op         ZoneEventOp `json:"op"`
	At         time.Time   `json:"at"`
}

// ZoneMatch is the zone that accepted a point.
type ZoneMatch struct {
	ZoneID int64
	RuleID *int64
}

// DeliveryRule is an opaque delivery-time rule referenced by zones and orders.
type DeliveryRule struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Logic int    `json:"logic"`
}

// DeliveryCheck is the outcome of a delivery range evaluation.
type DeliveryCheck struct {
	Deliverable bool   `json:"isDeliverable"`
	RuleID      *int64 `json:"ruleId"`
	Message     string `json:"message"`
}

// MerchantConfig holds the merchant's map center.
type MerchantConfig struct {
	MerchantID string      `json:"merchantId"`
	Location   Coordinates `json:"location"`
}

// OrderStatus is the lifecycle state of an order.
type OrderStatus string

const (
	OrderPending   OrderStatus = "pending"
	OrderPickedUp  OrderStatus = "pickedUp"
	OrderShipping  OrderStatus = "shipping"
	OrderArrived   OrderStatus = "arrived"
	OrderDelivered OrderStatus = "delivered"
	OrderCancelled OrderStatus = "cancelled"
)

// ParseOrderStatus maps untrusted input onto the known statuses.
func ParseOrderStatus(s string) (OrderStatus, error) {
	switch st := OrderStatus(s); st {
	case OrderPending, OrderPickedUp, OrderShipping, OrderArrived, OrderDelivered, OrderCancelled:
		return st, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidStatus, s)
}

// Order is a delivery order. RecipientCoords and RuleID never change after creation.
type Order struct {
	ID               string          `json:"id"`
	UserID           string          `json:"userId"`
	MerchantID       string          `json:"merchantId"`
	CreateTime       time.Time       `json:"createTime"`
	Amount           decimal.Decimal `json:"amount"`
	Status           OrderStatus     `json:"status"`
	RecipientName    string          `json:"recipientName"`
	RecipientAddress string          `json:"recipientAddress"`
	RecipientCoords  Coordinates     `json:"recipientCoords"`
	LastUpdateTime   *time.Time      `json:"lastUpdateTime,omitempty"`
	CurrentPosition  *Coordinates    `json:"currentPosition,omitempty"`
	RoutePath        RoutePath       `json:"routePath,omitempty"`
	IsAbnormal       bool            `json:"isAbnormal"`
	AbnormalReason   string          `json:"abnormalReason,omitempty"`
	RuleID           *int64          `json:"ruleId"`
}

// CreateOrderInput is the client-supplied part of a new order.
type CreateOrderInput struct {
	UserID           string          `json:"userId"`
	Amount           decimal.Decimal `json:"amount"`
	RecipientName    string          `json:"recipientName"`
	RecipientAddress string          `json:"recipientAddress"`
	RecipientCoords  Coordinates     `json:"recipientCoords"`
}

// Validate checks the order input.
func (in CreateOrderInput) Validate() error {
	var errs []string
	if strings.TrimSpace(in.UserID) == "" {
		errs = append(errs, "userId is required")
	}
	if !in.Amount.IsPositive() {
		errs = append(errs, "amount must be greater than 0")
	}
	if len([]rune(strings.TrimSpace(in.RecipientName))) < 2 {
		errs = append(errs, "recipientName must be at least 2 characters")
	}
	if len([]rune(strings.TrimSpace(in.RecipientAddress))) < 5 {
		errs = append(errs, "recipientAddress must be at least 5 characters")
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidOrder, strings.Join(errs, "; "))
	}
	return in.RecipientCoords.Validate()
}
