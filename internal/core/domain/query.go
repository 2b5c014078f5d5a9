package domain

import "strings"

// Page size limits for order listings.
const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// Sort fields accepted on the wire.
const (
	SortByCreateTime    = "createTime"
	SortByAmount        = "amount"
	SortByStatus        = "status"
	SortByRecipientName = "recipientName"
)

// SortDirection is either ASC or DESC.
type SortDirection string

const (
	SortAsc  SortDirection = "ASC"
	SortDesc SortDirection = "DESC"
)

// NormalizeSortDirection returns ASC only for a case-insensitive "asc";
// anything else, padded values included, is DESC.
func NormalizeSortDirection(s string) SortDirection {
	if strings.EqualFold(s, string(SortAsc)) {
		return SortAsc
	}
	return SortDesc
}

// OrderListQuery is built per request and never persisted.
type OrderListQuery struct {
	Page          int    `json:"page"`
	PageSize      int    `json:"pageSize"`
	UserID        string `json:"userId,omitempty"`
	Status        string `json:"status,omitempty"`
	SearchQuery   string `json:"searchQuery,omitempty"`
	SortBy        string `json:"sortBy,omitempty"`
	SortDirection string `json:"sortDirection,omitempty"`
}

// Offset is the number of rows skipped before the requested page.
func (q OrderListQuery) Offset() int {
	return (q.Page - 1) * q.PageSize
}

// PaginatedOrders is one page of orders plus the total under the same filter.
type PaginatedOrders struct {
	Orders      []Order `json:"orders"`
	TotalCount  int     `json:"totalCount"`
	CurrentPage int     `json:"currentPage"`
	PageSize    int     `json:"pageSize"`
}
