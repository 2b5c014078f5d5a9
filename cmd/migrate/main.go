package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/samirrijal/fencekeeper/internal/adapters/postgres"
	"github.com/samirrijal/fencekeeper/internal/pkg/config"
	"github.com/samirrijal/fencekeeper/internal/pkg/logging"
)

// Applied in order by "up"; "down" runs the .down.sql files in reverse.
var migrations = []struct {
	up   string
	down string
}{
	{up: "migrations/001_init_extensions.sql"},
	{up: "migrations/002_core_tables.sql", down: "migrations/002_core_tables.down.sql"},
}

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "usage: migrate <up|down>")
		os.Exit(2)
	}

	cfg, err := config.Load("fencekeeper-migrate")
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	logging.Setup(cfg.Log.Level, cfg.Log.Format)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	db, err := postgres.New(ctx, cfg.Database.DSN(), 2)
	if err != nil {
		slog.Error("db connect failed", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	switch os.Args[1] {
	case "up":
		for _, m := range migrations {
			if err := apply(ctx, db, m.up); err != nil {
				slog.Error("migration failed", "file", m.up, "error", err)
				os.Exit(1)
			}
		}
	case "down":
		for i := len(migrations) - 1; i >= 0; i-- {
			if migrations[i].down == "" {
				continue
			}
			if err := apply(ctx, db, migrations[i].down); err != nil {
				slog.Error("migration failed", "file", migrations[i].down, "error", err)
				os.Exit(1)
			}
		}
	default:
		slog.Error("unknown command", "command", os.Args[1])
		os.Exit(2)
	}

	slog.Info("migrations applied", "direction", os.Args[1])
}

func apply(ctx context.Context, db *postgres.DB, file string) error {
	data, err := os.ReadFile(file)
	if err != nil {
		return fmt.Errorf("read %s: %w", file, err)
	}
	if _, err := db.Pool.Exec(ctx, string(data)); err != nil {
		return fmt.Errorf("exec %s: %w", file, err)
	}
	slog.Info("applied", "file", file)
	return nil
}
