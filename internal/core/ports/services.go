package ports

import (
	"context"
	"errors"

	"github.com/samirrijal/fencekeeper/internal/core/domain"
)

// EventPublisher publishes domain events to a message broker.
type EventPublisher interface {
	PublishZoneEvent(ctx context.Context, event *domain.ZoneEvent) error
	PublishOrderCreated(ctx context.Context, order *domain.Order) error
}

// EventSubscriber subscribes to domain events from a message broker.
type EventSubscriber interface {
	SubscribeZoneEvents(ctx context.Context, handler func(ctx context.Context, event *domain.ZoneEvent) error) error
	SubscribeMerchantFeed(ctx context.Context, merchantID string, handler func(subject string, data []byte)) (func(), error)
}

// ErrCacheMiss is returned by CacheService.Get for an absent key.
var ErrCacheMiss = errors.New("cache miss")

// CacheService provides read-through caching. Get returns ErrCacheMiss when
// the key is absent.
type CacheService interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttlSeconds int) error
	Delete(ctx context.Context, key string) error
}
