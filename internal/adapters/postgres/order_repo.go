package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/samirrijal/fencekeeper/internal/core/domain"
	"github.com/samirrijal/fencekeeper/internal/pkg/geometry"
)

// OrderRepo implements ports.OrderRepository with pgx.
type OrderRepo struct {
	db *DB
}

// NewOrderRepo creates a new OrderRepo.
func NewOrderRepo(db *DB) *OrderRepo {
	return &OrderRepo{db: db}
}

// Create inserts a new order.
func (r *OrderRepo) Create(ctx context.Context, o *domain.Order) error {
	point := geometry.ToPointExpression(o.RecipientCoords)
	_, err := r.db.Pool.Exec(ctx, `
		INSERT INTO orders (id, user_id, merchant_id, amount, status, rule_id,
		                    recipient_name, recipient_address, recipient_coords, create_time)
		VALUES ($1, $2, $3, $4::numeric, $5, $6, $7, $8, `+point.SQL("$9")+`, $10)
	`, o.ID, o.UserID, o.MerchantID, o.Amount.String(), string(o.Status), o.RuleID,
		o.RecipientName, o.RecipientAddress, point.WKT, o.CreateTime)
	return err
}

// GetByID returns an order owned by merchantID.
func (r *OrderRepo) GetByID(ctx context.Context, merchantID, id string) (*domain.Order, error) {
	row := r.db.Pool.QueryRow(ctx, `
		SELECT `+orderColumns+`
		FROM orders WHERE id = $1 AND merchant_id = $2
	`, id, merchantID)
	o, err := scanOrder(row)
	if err != nil {
		return nil, notFound(err, domain.ErrOrderNotFound)
	}
	return o, nil
}

// List runs the count and page queries in one read-only snapshot so the
// total and the page agree.
func (r *OrderRepo) List(ctx context.Context, merchantID string, q domain.OrderListQuery) (_ *domain.PaginatedOrders, err error) {
	stmts, err := BuildOrderListQuery(q, merchantID)
	if err != nil {
		return nil, err
	}

	tx, err := r.db.Pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.RepeatableRead, AccessMode: pgx.ReadOnly})
	if err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	var total int
	if err = tx.QueryRow(ctx, stmts.CountSQL, stmts.FilterArgs...).Scan(&total); err != nil {
		return nil, fmt.Errorf("count orders: %w", err)
	}

	rows, err := tx.Query(ctx, stmts.DataSQL, stmts.DataArgs...)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	orders := []domain.Order{}
	for rows.Next() {
		o, scanErr := scanOrder(rows)
		if scanErr != nil {
			rows.Close()
			return nil, scanErr
		}
		orders = append(orders, *o)
	}
	rows.Close()
	if err = rows.Err(); err != nil {
		return nil, err
	}

	if err = tx.Commit(ctx); err != nil {
		return nil, err
	}

	return &domain.PaginatedOrders{
		Orders:      orders,
		TotalCount:  total,
		CurrentPage: stmts.Page,
		PageSize:    stmts.PageSize,
	}, nil
}

func scanOrder(row pgx.Row) (*domain.Order, error) {
	var (
		o                      domain.Order
		amount, status         string
		coords, position, path []byte
		lastUpdate             *time.Time
	)
	if err := row.Scan(
		&o.ID, &o.UserID, &o.MerchantID, &o.CreateTime, &amount, &status,
		&o.RecipientName, &o.RecipientAddress,
		&coords, &position, &path,
		&lastUpdate, &o.IsAbnormal, &o.AbnormalReason, &o.RuleID,
	); err != nil {
		return nil, err
	}

	var err error
	if o.Amount, err = decimal.NewFromString(amount); err != nil {
		return nil, fmt.Errorf("order %s amount: %w", o.ID, err)
	}
	o.Status = domain.OrderStatus(status)
	o.LastUpdateTime = lastUpdate

	recipient, err := geometry.DecodePoint(coords)
	if err != nil {
		return nil, fmt.Errorf("order %s recipient: %w", o.ID, err)
	}
	if recipient != nil {
		o.RecipientCoords = *recipient
	}
	if o.CurrentPosition, err = geometry.DecodePoint(position); err != nil {
		return nil, fmt.Errorf("order %s position: %w", o.ID, err)
	}
	if len(path) > 0 && string(path) != "null" {
		if err := json.Unmarshal(path, &o.RoutePath); err != nil {
			return nil, fmt.Errorf("order %s route: %w", o.ID, err)
		}
	}
	return &o, nil
}
