package config

import (
	"strings"
	"testing"
)

func validConfig() Config {
	return Config{
		Server:   ServerConfig{Port: 8080, ReadTimeout: 10, WriteTimeout: 10, RequestTimeout: 15},
		Database: DatabaseConfig{Host: "db", Port: 5432, User: "fk", DBName: "fencekeeper", SSLMode: "disable"},
		NATS:     NATSConfig{URL: "nats://nats:4222"},
		Valkey:   ValkeyConfig{Addr: "valkey:6379"},
		Delivery: DeliveryConfig{Evaluator: EvaluatorPostGIS, ZoneCacheTTL: 300},
	}
}

func TestValidate_OK(t *testing.T) {
	cfg := validConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidate_AggregatesErrors(t *testing.T) {
	cfg := validConfig()
	cfg.Server.Port = 0
	cfg.Database.Host = ""
	cfg.Delivery.Evaluator = "planar"

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error")
	}
	for _, want := range []string{"server.port", "database.host", "delivery.evaluator"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("expected %q in %v", want, err)
		}
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("FENCEKEEPER_DELIVERY_EVALUATOR", "local")
	t.Setenv("FENCEKEEPER_MERCHANT_DEFAULT_ID", "dev-merchant")
	t.Setenv("FENCEKEEPER_SERVER_PORT", "9090")

	cfg, err := Load("fencekeeper-test")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Delivery.Evaluator != EvaluatorLocal {
		t.Errorf("expected local evaluator, got %s", cfg.Delivery.Evaluator)
	}
	if cfg.Merchant.DefaultID != "dev-merchant" {
		t.Errorf("expected default merchant, got %q", cfg.Merchant.DefaultID)
	}
	if cfg.Server.Port != 9090 {
		t.Errorf("expected port 9090, got %d", cfg.Server.Port)
	}
	if cfg.Telemetry.ServiceName != "fencekeeper-test" {
		t.Errorf("unexpected service name %q", cfg.Telemetry.ServiceName)
	}
}

func TestDSN(t *testing.T) {
	d := DatabaseConfig{Host: "db", Port: 5432, User: "u", Password: "p", DBName: "fk", SSLMode: "require"}
	if got := d.DSN(); got != "postgres://u:p@db:5432/fk?sslmode=require" {
		t.Errorf("unexpected dsn %s", got)
	}
}
