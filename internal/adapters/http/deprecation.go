package http

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
)

// DeprecatedRoute describes a route kept only for older clients.
type DeprecatedRoute struct {
	SunsetDate  time.Time // Date when the route will be removed
	Alternative string    // Successor route (optional)
}

// DeprecationMiddleware adds Deprecation, Sunset, Link and Warning headers.
// Mount it on the deprecated route only.
func DeprecationMiddleware(d DeprecatedRoute) fiber.Handler {
	sunset := d.SunsetDate.UTC().Format(time.RFC1123)
	return func(c *fiber.Ctx) error {
		// RFC 8594
		c.Set("Deprecation", "true")
		c.Set("Sunset", sunset)

		if d.Alternative != "" {
			c.Set("Link", fmt.Sprintf(`<%s>; rel="successor-version"`, d.Alternative))
		}

		days := time.Until(d.SunsetDate).Hours() / 24
		if days < 0 {
			days = 0
		}
		c.Set("Warning", fmt.Sprintf(`299 - "Deprecated API, will sunset in %.0f days"`, days))

		return c.Next()
	}
}
