package http

import (
	"time"

	"github.com/nats-io/nats.go"
	"github.com/samirrijal/fencekeeper/internal/adapters/postgres"
	"github.com/samirrijal/fencekeeper/internal/adapters/valkey"
	"github.com/samirrijal/fencekeeper/internal/core/ports"
	"github.com/samirrijal/fencekeeper/internal/core/usecases"
)

// Dependencies holds all services needed by HTTP handlers.
type Dependencies struct {
	Zones     *usecases.ZoneService
	Delivery  *usecases.DeliveryService
	Orders    *usecases.OrderService
	Rules     *usecases.RuleService
	Merchants *usecases.MerchantService

	// Feed relays merchant events to WebSocket clients. Optional.
	Feed  ports.EventSubscriber
	NATS  *nats.Conn
	DB    *postgres.DB
	Cache *valkey.Cache

	// DefaultMerchantID is used when a request carries no merchant header.
	DefaultMerchantID string
	RequestTimeout    time.Duration
}

func (d *Dependencies) timeout() time.Duration {
	if d.RequestTimeout <= 0 {
		return 15 * time.Second
	}
	return d.RequestTimeout
}
