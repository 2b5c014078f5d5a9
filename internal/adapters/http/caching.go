package http

import (
	"strings"

	"github.com/gofiber/fiber/v2"
)

type cacheRule struct {
	prefix string
	exact  bool
	value  string
}

// First match wins. Merchant-scoped data is never stored by shared caches;
// fences, orders and delivery checks change with every write.
var cacheRules = []cacheRule{
	{prefix: "/v1/health", exact: true, value: "public, max-age=10"},
	{prefix: "/v1/ready", exact: true, value: "no-cache"},
	{prefix: "/metrics", exact: true, value: "no-cache"},
	{prefix: "/graphql", exact: true, value: "private, max-age=0"},
	{prefix: "/docs", value: "public, max-age=3600"},
	{prefix: "/v1/delivery-rules", value: "public, max-age=300"},
	{prefix: "/v1/merchant/", value: "private, max-age=60"},
	{prefix: "/v1/", value: "private, no-store"},
}

// CachingMiddleware sets Cache-Control on GET responses that did not set one.
func CachingMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		err := c.Next()

		if c.Method() != fiber.MethodGet || c.GetRespHeader(fiber.HeaderCacheControl) != "" {
			return err
		}
		if v := cacheControlFor(c.Path()); v != "" {
			c.Set(fiber.HeaderCacheControl, v)
		}
		return err
	}
}

func cacheControlFor(path string) string {
	for _, r := range cacheRules {
		if (r.exact && path == r.prefix) || (!r.exact && strings.HasPrefix(path, r.prefix)) {
			return r.value
		}
	}
	return ""
}
