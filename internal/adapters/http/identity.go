package http

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/samirrijal/fencekeeper/internal/core/domain"
)

// HeaderMerchantID carries the caller's merchant identity.
const HeaderMerchantID = "X-Merchant-ID"

const merchantLocal = "merchant_id"

// MerchantIdentityMiddleware resolves the caller's merchant from the
// X-Merchant-ID header, falling back to defaultID. Requests without an
// identity are rejected with 401.
func MerchantIdentityMiddleware(defaultID string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := strings.TrimSpace(c.Get(HeaderMerchantID))
		if id == "" {
			id = defaultID
		}
		if id == "" {
			return errUnauthorized(c, domain.ErrMissingMerchant.Error())
		}
		c.Locals(merchantLocal, id)

		ctx := c.UserContext()
		c.SetUserContext(WithLogger(ctx, LoggerFromCtx(ctx).With("merchant_id", id)))
		return c.Next()
	}
}

// merchantID returns the identity stored by MerchantIdentityMiddleware.
func merchantID(c *fiber.Ctx) string {
	id, _ := c.Locals(merchantLocal).(string)
	return id
}
