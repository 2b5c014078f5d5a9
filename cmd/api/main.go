package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/nats-io/nats.go"

	"github.com/samirrijal/fencekeeper/internal/adapters/http"
	natsadapter "github.com/samirrijal/fencekeeper/internal/adapters/nats"
	"github.com/samirrijal/fencekeeper/internal/adapters/postgres"
	"github.com/samirrijal/fencekeeper/internal/adapters/valkey"
	"github.com/samirrijal/fencekeeper/internal/core/ports"
	"github.com/samirrijal/fencekeeper/internal/core/usecases"
	"github.com/samirrijal/fencekeeper/internal/pkg/config"
	"github.com/samirrijal/fencekeeper/internal/pkg/logging"
	"github.com/samirrijal/fencekeeper/internal/pkg/metrics"
	"github.com/samirrijal/fencekeeper/internal/pkg/telemetry"
)

func main() {
	cfg, err := config.Load("fencekeeper-api")
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	logging.Setup(cfg.Log.Level, cfg.Log.Format)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Telemetry
	if cfg.Telemetry.Enabled {
		shutdown, err := telemetry.InitTracer(ctx, cfg.Telemetry.ServiceName, cfg.Telemetry.TempoAddr)
		if err != nil {
			slog.Warn("telemetry init failed", "error", err)
		} else {
			defer shutdown()
		}
	}

	// Database
	db, err := postgres.New(ctx, cfg.Database.DSN(), cfg.Database.MaxConns)
	if err != nil {
		slog.Error("database unavailable", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	// Cache (optional)
	var cacheSvc ports.CacheService
	cache, err := valkey.New(cfg.Valkey.Addr)
	if err != nil {
		slog.Warn("valkey unavailable, zone cache disabled", "error", err)
	} else {
		cacheSvc = cache
		defer cache.Close()
	}

	// NATS (optional): publisher for domain events, subscriber for cache
	// eviction and the WebSocket feed.
	var (
		publisher  ports.EventPublisher
		subscriber *natsadapter.Subscriber
		feed       ports.EventSubscriber
		natsConn   *nats.Conn
	)
	pub, err := natsadapter.NewPublisher(cfg.NATS.URL)
	if err != nil {
		slog.Warn("nats unavailable, events disabled", "error", err)
	} else {
		defer pub.Close()
		publisher = pub
		natsConn = pub.Conn()

		subscriber, err = natsadapter.NewSubscriber(cfg.NATS.URL)
		if err != nil {
			slog.Warn("nats subscriber unavailable", "error", err)
		} else {
			defer subscriber.Close()
			feed = subscriber
		}
	}

	// Repos
	zoneRepo := postgres.NewZoneRepo(db)
	orderRepo := postgres.NewOrderRepo(db)
	ruleRepo := postgres.NewRuleRepo(db)
	merchantRepo := postgres.NewMerchantRepo(db)

	// Use cases
	zoneSvc := usecases.NewZoneService(zoneRepo, cacheSvc, publisher, cfg.Delivery.ZoneCacheTTL)

	var matcher ports.ZoneMatcher
	switch cfg.Delivery.Evaluator {
	case config.EvaluatorLocal:
		matcher = usecases.NewLocalZoneMatcher(zoneSvc)
	default:
		matcher = postgres.NewZoneMatcher(db)
	}
	deliverySvc := usecases.NewDeliveryService(matcher, cfg.Delivery.Evaluator)
	orderSvc := usecases.NewOrderService(orderRepo, deliverySvc, publisher)

	if subscriber != nil {
		if err := subscriber.SubscribeZoneEvents(ctx, zoneSvc.HandleZoneEvent); err != nil {
			slog.Warn("zone event subscription failed", "error", err)
		}
	}

	deps := &http.Dependencies{
		Zones:             zoneSvc,
		Delivery:          deliverySvc,
		Orders:            orderSvc,
		Rules:             usecases.NewRuleService(ruleRepo),
		Merchants:         usecases.NewMerchantService(merchantRepo),
		Feed:              feed,
		NATS:              natsConn,
		DB:                db,
		Cache:             cache,
		DefaultMerchantID: cfg.Merchant.DefaultID,
		RequestTimeout:    time.Duration(cfg.Server.RequestTimeout) * time.Second,
	}

	// DB pool gauges
	go func() {
		ticker := time.NewTicker(15 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if st := db.Stat(); st != nil {
					metrics.UpdateDBPoolMetrics(st)
				}
			case <-ctx.Done():
				return
			}
		}
	}()

	// Fiber
	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		BodyLimit:    1024 * 1024, // 1 MB max request body
		AppName:      "Fencekeeper API",
	})
	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.Server.AllowOrigins,
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, " + http.HeaderMerchantID,
		AllowCredentials: false,
		MaxAge:           3600,
	}))

	http.SetupRoutes(app, deps)

	// Graceful shutdown
	go func() {
		addr := fmt.Sprintf(":%d", cfg.Server.Port)
		slog.Info("API server starting", "addr", addr, "evaluator", cfg.Delivery.Evaluator)
		if err := app.Listen(addr); err != nil {
			slog.Error("listen failed", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	slog.Info("shutdown signal received, draining connections...", "signal", sig.String())

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		slog.Error("forced shutdown", "error", err)
	}

	slog.Info("server stopped")
}
