package valkey

import (
	"context"
	"fmt"
	"time"

	"github.com/samirrijal/fencekeeper/internal/core/ports"
	"github.com/valkey-io/valkey-go"
)

// KeyPrefix namespaces every key written by the service so several
// deployments can share one Valkey.
const KeyPrefix = "fencekeeper:"

// Cache stores serialized zone lists. It implements ports.CacheService.
type Cache struct {
	client valkey.Client
}

// New connects to addr. Client-side caching is disabled: zone lists are
// evicted explicitly on fence events, and tracking would double that work.
func New(addr string) (*Cache, error) {
	client, err := valkey.NewClient(valkey.ClientOption{
		InitAddress:  []string{addr},
		DisableCache: true,
	})
	if err != nil {
		return nil, fmt.Errorf("valkey connect %s: %w", addr, err)
	}
	return &Cache{client: client}, nil
}

// Key returns the namespaced form of key.
func Key(key string) string {
	return KeyPrefix + key
}

// Get returns ports.ErrCacheMiss for an absent key.
func (c *Cache) Get(ctx context.Context, key string) ([]byte, error) {
	b, err := c.client.Do(ctx, c.client.B().Get().Key(Key(key)).Build()).AsBytes()
	switch {
	case valkey.IsValkeyNil(err):
		return nil, ports.ErrCacheMiss
	case err != nil:
		return nil, fmt.Errorf("valkey get %s: %w", key, err)
	}
	return b, nil
}

// Set stores value for ttlSeconds. A non-positive TTL is rejected so a zone
// list can never outlive a missed eviction forever.
func (c *Cache) Set(ctx context.Context, key string, value []byte, ttlSeconds int) error {
	if ttlSeconds <= 0 {
		return fmt.Errorf("valkey set %s: ttl must be positive", key)
	}
	cmd := c.client.B().Set().Key(Key(key)).Value(valkey.BinaryString(value)).
		Ex(time.Duration(ttlSeconds) * time.Second).Build()
	if err := c.client.Do(ctx, cmd).Error(); err != nil {
		return fmt.Errorf("valkey set %s: %w", key, err)
	}
	return nil
}

// Delete evicts key. Deleting an absent key is not an error.
func (c *Cache) Delete(ctx context.Context, key string) error {
	if err := c.client.Do(ctx, c.client.B().Del().Key(Key(key)).Build()).Error(); err != nil {
		return fmt.Errorf("valkey del %s: %w", key, err)
	}
	return nil
}

// Ping is used by the readiness probe.
func (c *Cache) Ping(ctx context.Context) error {
	return c.client.Do(ctx, c.client.B().Ping().Build()).Error()
}

// Close releases the client.
func (c *Cache) Close() {
	c.client.Close()
}
