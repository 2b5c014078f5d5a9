package usecases

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/samirrijal/fencekeeper/internal/core/domain"
	"github.com/samirrijal/fencekeeper/internal/core/ports"
	"github.com/samirrijal/fencekeeper/internal/pkg/metrics"
	"github.com/samirrijal/fencekeeper/internal/pkg/telemetry"
)

// OrderService handles order creation and listing.
type OrderService struct {
	orders   ports.OrderRepository
	delivery *DeliveryService
	events   ports.EventPublisher
	now      func() time.Time
}

// NewOrderService creates a new OrderService. events may be nil.
func NewOrderService(orders ports.OrderRepository, delivery *DeliveryService, events ports.EventPublisher) *OrderService {
	return &OrderService{orders: orders, delivery: delivery, events: events, now: time.Now}
}

// Create accepts an order only if its recipient is inside one of the
// merchant's zones. The matched zone's rule is stamped on the order.
func (s *OrderService) Create(ctx context.Context, merchantID string, in domain.CreateOrderInput) (_ *domain.Order, err error) {
	if merchantID == "" {
		return nil, domain.ErrMissingMerchant
	}
	if err := in.Validate(); err != nil {
		metrics.OrdersRejected.WithLabelValues("invalid").Inc()
		return nil, err
	}

	ctx, span := telemetry.StartSpan(ctx, "OrderService.Create", merchantID)
	defer func() { telemetry.EndSpan(span, err) }()

	check, err := s.delivery.Check(ctx, merchantID, in.RecipientCoords)
	if err != nil {
		return nil, err
	}
	if !check.Deliverable {
		metrics.OrdersRejected.WithLabelValues("outside_range").Inc()
		return nil, domain.ErrOutsideDeliveryRange
	}

	order := &domain.Order{
		ID:               uuid.NewString(),
		UserID:           in.UserID,
		MerchantID:       merchantID,
		CreateTime:       s.now().UTC(),
		Amount:           in.Amount,
		Status:           domain.OrderPending,
		RecipientName:    in.RecipientName,
		RecipientAddress: in.RecipientAddress,
		RecipientCoords:  in.RecipientCoords,
		RuleID:           check.RuleID,
	}
	if err := s.orders.Create(ctx, order); err != nil {
		return nil, err
	}
	metrics.OrdersCreated.Inc()

	if s.events != nil {
		if err := s.events.PublishOrderCreated(ctx, order); err != nil {
			slog.WarnContext(ctx, "publish order created failed", "order_id", order.ID, "error", err)
		}
	}
	return order, nil
}

// Get returns an order of the merchant.
func (s *OrderService) Get(ctx context.Context, merchantID, id string) (*domain.Order, error) {
	if merchantID == "" {
		return nil, domain.ErrMissingMerchant
	}
	if _, err := uuid.Parse(id); err != nil {
		return nil, domain.ErrOrderNotFound
	}
	return s.orders.GetByID(ctx, merchantID, id)
}

// List returns one page of the merchant's orders.
func (s *OrderService) List(ctx context.Context, merchantID string, q domain.OrderListQuery) (_ *domain.PaginatedOrders, err error) {
	if merchantID == "" {
		return nil, domain.ErrMissingMerchant
	}
	q, err = NormalizeOrderListQuery(q)
	if err != nil {
		return nil, err
	}

	ctx, span := telemetry.StartSpan(ctx, "OrderService.List", merchantID)
	defer func() { telemetry.EndSpan(span, err) }()

	return s.orders.List(ctx, merchantID, q)
}

// NormalizeOrderListQuery fills defaults and rejects out-of-range paging or
// an unknown status. The sort column is checked where the query is built.
func NormalizeOrderListQuery(q domain.OrderListQuery) (domain.OrderListQuery, error) {
	if q.Page == 0 {
		q.Page = 1
	}
	if q.PageSize == 0 {
		q.PageSize = domain.DefaultPageSize
	}
	if q.Page < 1 || q.PageSize < 1 || q.PageSize > domain.MaxPageSize {
		return q, domain.ErrInvalidPagination
	}
	if q.Status != "" {
		if _, err := domain.ParseOrderStatus(q.Status); err != nil {
			return q, err
		}
	}
	if q.SortBy == "" {
		q.SortBy = domain.SortByCreateTime
	}
	q.SortDirection = string(domain.NormalizeSortDirection(q.SortDirection))
	return q, nil
}
