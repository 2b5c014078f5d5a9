package usecases_test

import (
	"context"
	"sync"

	"github.com/samirrijal/fencekeeper/internal/core/domain"
	"github.com/samirrijal/fencekeeper/internal/core/ports"
)

// --- Mock ZoneRepository ---

type mockZoneRepo struct {
	createFn  func(ctx context.Context, rec ports.ZoneRecord) (*ports.StoredZone, error)
	updateFn  func(ctx context.Context, id int64, rec ports.ZoneRecord) (*ports.StoredZone, error)
	deleteFn  func(ctx context.Context, merchantID string, id int64) error
	getByIDFn func(ctx context.Context, merchantID string, id int64) (*ports.StoredZone, error)
	listFn    func(ctx context.Context, merchantID string) ([]ports.StoredZone, error)
}

func (m *mockZoneRepo) Create(ctx context.Context, rec ports.ZoneRecord) (*ports.StoredZone, error) {
	if m.createFn != nil {
		return m.createFn(ctx, rec)
	}
	return nil, nil
}

func (m *mockZoneRepo) Update(ctx context.Context, id int64, rec ports.ZoneRecord) (*ports.StoredZone, error) {
	if m.updateFn != nil {
		return m.updateFn(ctx, id, rec)
	}
	return nil, domain.ErrZoneNotFound
}

func (m *mockZoneRepo) Delete(ctx context.Context, merchantID string, id int64) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, merchantID, id)
	}
	return nil
}

func (m *mockZoneRepo) GetByID(ctx context.Context, merchantID string, id int64) (*ports.StoredZone, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, merchantID, id)
	}
	return nil, domain.ErrZoneNotFound
}

func (m *mockZoneRepo) ListByMerchant(ctx context.Context, merchantID string) ([]ports.StoredZone, error) {
	if m.listFn != nil {
		return m.listFn(ctx, merchantID)
	}
	return nil, nil
}

// --- Mock CacheService ---

type mockCache struct {
	mu   sync.Mutex
	data map[string][]byte
	dels []string
}

func newMockCache() *mockCache {
	return &mockCache{data: map[string][]byte{}}
}

func (m *mockCache) Get(ctx context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.data[key]
	if !ok {
		return nil, ports.ErrCacheMiss
	}
	return b, nil
}

func (m *mockCache) Set(ctx context.Context, key string, value []byte, ttl int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

func (m *mockCache) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	m.dels = append(m.dels, key)
	return nil
}

// --- Mock EventPublisher ---

type mockPublisher struct {
	zoneEvents []domain.ZoneEvent
	orders     []domain.Order
	err        error
}

func (m *mockPublisher) PublishZoneEvent(ctx context.Context, event *domain.ZoneEvent) error {
	m.zoneEvents = append(m.zoneEvents, *event)
	return m.err
}

func (m *mockPublisher) PublishOrderCreated(ctx context.Context, order *domain.Order) error {
	m.orders = append(m.orders, *order)
	return m.err
}

// --- Mock ZoneMatcher ---

type mockMatcher struct {
	matchFn func(ctx context.Context, merchantID string, p domain.Coordinates) (*domain.ZoneMatch, error)
}

func (m *mockMatcher) Match(ctx context.Context, merchantID string, p domain.Coordinates) (*domain.ZoneMatch, error) {
	if m.matchFn != nil {
		return m.matchFn(ctx, merchantID, p)
	}
	return nil, nil
}

// --- Mock OrderRepository ---

type mockOrderRepo struct {
	createFn  func(ctx context.Context, o *domain.Order) error
	getByIDFn func(ctx context.Context, merchantID, id string) (*domain.Order, error)
	listFn    func(ctx context.Context, merchantID string, q domain.OrderListQuery) (*domain.PaginatedOrders, error)
}

func (m *mockOrderRepo) Create(ctx context.Context, o *domain.Order) error {
	if m.createFn != nil {
		return m.createFn(ctx, o)
	}
	return nil
}

func (m *mockOrderRepo) GetByID(ctx context.Context, merchantID, id string) (*domain.Order, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, merchantID, id)
	}
	return nil, domain.ErrOrderNotFound
}

func (m *mockOrderRepo) List(ctx context.Context, merchantID string, q domain.OrderListQuery) (*domain.PaginatedOrders, error) {
	if m.listFn != nil {
		return m.listFn(ctx, merchantID, q)
	}
	return &domain.PaginatedOrders{CurrentPage: q.Page, PageSize: q.PageSize}, nil
}

// --- Mock RuleRepository / MerchantRepository ---

type mockRuleRepo struct {
	rules []domain.DeliveryRule
	err   error
}

func (m *mockRuleRepo) List(ctx context.Context) ([]domain.DeliveryRule, error) {
	return m.rules, m.err
}

type mockMerchantRepo struct {
	getCenterFn func(ctx context.Context, merchantID string) ([]byte, error)
	upserted    []domain.GeoExpression
	upsertErr   error
}

func (m *mockMerchantRepo) Upsert(ctx context.Context, merchantID, name string, center domain.GeoExpression) error {
	m.upserted = append(m.upserted, center)
	return m.upsertErr
}

func (m *mockMerchantRepo) GetCenter(ctx context.Context, merchantID string) ([]byte, error) {
	if m.getCenterFn != nil {
		return m.getCenterFn(ctx, merchantID)
	}
	return nil, domain.ErrMerchantNotFound
}

func int64Ptr(v int64) *int64 { return &v }
