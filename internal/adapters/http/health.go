package http

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
)

// Version is reported by the health endpoint. Set with -ldflags.
var Version = "dev"

// HealthHandler is the liveness probe. It never touches a dependency.
func HealthHandler(deps *Dependencies) fiber.Handler {
	startedAt := time.Now()

	return func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "healthy",
			"service": "fencekeeper-api",
			"uptime":  time.Since(startedAt).Round(time.Second).String(),
			"version": Version,
		})
	}
}

type readinessProbe struct {
	name     string
	required bool
	check    func(ctx context.Context) string
}

func readinessProbes(deps *Dependencies) []readinessProbe {
	return []readinessProbe{
		{name: "database", required: true, check: func(ctx context.Context) string {
			if deps.DB == nil {
				return "not configured"
			}
			if err := deps.DB.Ping(ctx); err != nil {
				return "error: " + err.Error()
			}
			return "ok"
		}},
		{name: "nats", check: func(context.Context) string {
			switch {
			case deps.NATS == nil:
				return "not configured"
			case !deps.NATS.IsConnected():
				return "disconnected"
			}
			return "ok"
		}},
		{name: "cache", check: func(ctx context.Context) string {
			if deps.Cache == nil {
				return "not configured"
			}
			if err := deps.Cache.Ping(ctx); err != nil {
				return "error: " + err.Error()
			}
			return "ok"
		}},
	}
}

// ReadyHandler reports 503 only when the database is unreachable. Without
// NATS or the cache, fence events and zone caching are skipped but delivery
// checks still answer.
func ReadyHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), 3*time.Second)
		defer cancel()

		checks := make(map[string]string)
		ready := true
		for _, p := range readinessProbes(deps) {
			res := p.check(ctx)
			checks[p.name] = res
			if p.required && res != "ok" {
				ready = false
			}
		}

		if !ready {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
				"status": "not ready",
				"checks": checks,
			})
		}
		return c.JSON(fiber.Map{"status": "ready", "checks": checks})
	}
}
