package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/fiber/v2/middleware/timeout"
	"github.com/gofiber/websocket/v2"
	"github.com/samirrijal/fencekeeper/internal/pkg/metrics"
)

// legacyCheckSunset is when /v1/orders/check-delivery goes away.
var legacyCheckSunset = time.Date(2027, time.June, 30, 0, 0, 0, 0, time.UTC)

// SetupRoutes registers all REST, GraphQL, and WebSocket routes.
func SetupRoutes(app *fiber.App, deps *Dependencies) {
	// Prometheus metrics
	app.Use(metrics.Middleware())
	app.Get("/metrics", metrics.Handler())

	app.Use(compress.New(compress.Config{
		Level: compress.LevelBestSpeed,
	}))

	app.Use(requestid.New())
	app.Use(RequestIDLogMiddleware())
	app.Use(AccessLogMiddleware())

	// Rate limiting: 120 requests per minute per IP
	app.Use(limiter.New(limiter.Config{
		Max:        120,
		Expiration: 1 * time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return newError(c, fiber.StatusTooManyRequests, "rate_limited", "too many requests, please try again later")
		},
	}))

	// Security headers + API version
	app.Use(func(c *fiber.Ctx) error {
		c.Set("X-Content-Type-Options", "nosniff")
		c.Set("X-Frame-Options", "DENY")
		c.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		c.Set("X-API-Version", "1.0.0")
		return c.Next()
	})

	app.Use(ETagMiddleware())
	app.Use(CachingMiddleware())

	// Health & readiness (no timeout, no identity)
	app.Get("/v1/health", HealthHandler(deps))
	app.Get("/v1/ready", ReadyHandler(deps))

	SetupDocs(app, DefaultSpecPath)

	identity := MerchantIdentityMiddleware(deps.DefaultMerchantID)
	wrap := func(h fiber.Handler) fiber.Handler {
		return timeout.NewWithContext(h, deps.timeout())
	}

	v1 := app.Group("/v1", identity)

	v1.Get("/fences", wrap(ListFencesHandler(deps)))
	v1.Post("/fences", wrap(CreateFenceHandler(deps)))
	v1.Get("/fences/:id", wrap(GetFenceHandler(deps)))
	v1.Put("/fences/:id", wrap(UpdateFenceHandler(deps)))
	v1.Delete("/fences/:id", wrap(DeleteFenceHandler(deps)))

	v1.Get("/delivery-rules", wrap(ListDeliveryRulesHandler(deps)))
	v1.Get("/merchant/config", wrap(MerchantConfigHandler(deps)))
	v1.Get("/delivery/check", wrap(DeliveryCheckHandler(deps)))

	// Registered before /orders/:id so the literal segment wins.
	v1.Get("/orders/check-delivery",
		DeprecationMiddleware(DeprecatedRoute{SunsetDate: legacyCheckSunset, Alternative: "/v1/delivery/check"}),
		wrap(DeliveryCheckHandler(deps)),
	)
	v1.Post("/orders", wrap(CreateOrderHandler(deps)))
	v1.Get("/orders", wrap(ListOrdersHandler(deps)))
	v1.Get("/orders/:id", wrap(GetOrderHandler(deps)))

	app.Post("/graphql", identity, GraphQLHandler(deps))

	// WebSocket live feed of the caller's fence and order events
	app.Use("/ws", identity, func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws", websocket.New(WebSocketHandler(deps.Feed)))
}
