package postgres

import (
	"fmt"
	"strings"

	"github.com/samirrijal/fencekeeper/internal/core/domain"
)

// orderSortColumns maps API sort fields to columns. Only these column names
// ever reach an ORDER BY clause.
var orderSortColumns = map[string]string{
	domain.SortByCreateTime:    "create_time",
	domain.SortByAmount:        "amount",
	domain.SortByStatus:        "status",
	domain.SortByRecipientName: "recipient_name",
}

const orderColumns = `id::text, user_id, merchant_id, create_time, amount::text, status,
		       recipient_name, recipient_address,
		       ST_AsGeoJSON(recipient_coords), ST_AsGeoJSON(current_position), route_path,
		       last_update_time, is_abnormal, COALESCE(abnormal_reason, ''), rule_id`

// OrderListStatements is a count query and a page query sharing one filter.
// DataArgs is FilterArgs followed by LIMIT and OFFSET.
type OrderListStatements struct {
	CountSQL   string
	DataSQL    string
	FilterArgs []any
	DataArgs   []any
	Page       int
	PageSize   int
	Offset     int
	Direction  domain.SortDirection
}

// BuildOrderListQuery builds the parameterized statements for one page of a
// merchant's orders. User input only ever reaches the SQL as bound
// parameters; the sort column comes from a fixed table.
func BuildOrderListQuery(q domain.OrderListQuery, merchantID string) (*OrderListStatements, error) {
	if merchantID == "" {
		return nil, domain.ErrMissingMerchant
	}
	if q.Page < 1 || q.PageSize < 1 || q.PageSize > domain.MaxPageSize {
		return nil, domain.ErrInvalidPagination
	}

	sortBy := q.SortBy
	if sortBy == "" {
		sortBy = domain.SortByCreateTime
	}
	column, ok := orderSortColumns[sortBy]
	if !ok {
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidSortColumn, sortBy)
	}
	dir := domain.NormalizeSortDirection(q.SortDirection)

	args := []any{merchantID}
	conds := []string{"merchant_id = $1"}

	if q.UserID != "" {
		args = append(args, q.UserID)
		conds = append(conds, fmt.Sprintf("user_id = $%d", len(args)))
	}
	if q.Status != "" {
		args = append(args, q.Status)
		conds = append(conds, fmt.Sprintf("status = $%d", len(args)))
	}
	if q.SearchQuery != "" {
		args = append(args, "%"+escapeLike(q.SearchQuery)+"%")
		n := len(args)
		conds = append(conds, fmt.Sprintf("(recipient_name ILIKE $%d OR recipient_address ILIKE $%d)", n, n))
	}

	where := strings.Join(conds, " AND ")
	offset := (q.Page - 1) * q.PageSize

	dataArgs := make([]any, len(args), len(args)+2)
	copy(dataArgs, args)
	dataArgs = append(dataArgs, q.PageSize, offset)

	return &OrderListStatements{
		CountSQL: "SELECT COUNT(*) FROM orders WHERE " + where,
		DataSQL: fmt.Sprintf("SELECT %s FROM orders WHERE %s ORDER BY %s %s, id %s LIMIT $%d OFFSET $%d",
			orderColumns, where, column, dir, dir, len(args)+1, len(args)+2),
		FilterArgs: args,
		DataArgs:   dataArgs,
		Page:       q.Page,
		PageSize:   q.PageSize,
		Offset:     offset,
		Direction:  dir,
	}, nil
}

// escapeLike escapes LIKE metacharacters so the search term matches literally.
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
