package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/paulmach/orb/geojson"

	"github.com/samirrijal/fencekeeper/internal/adapters/postgres"
	"github.com/samirrijal/fencekeeper/internal/core/domain"
	"github.com/samirrijal/fencekeeper/internal/core/usecases"
	"github.com/samirrijal/fencekeeper/internal/pkg/config"
	"github.com/samirrijal/fencekeeper/internal/pkg/geometry"
	"github.com/samirrijal/fencekeeper/internal/pkg/logging"
)

// ---------------------------------------------------------------------------
// Manifest types
// ---------------------------------------------------------------------------

type Manifest struct {
	Source    string          `json:"source"`
	Merchants []MerchantEntry `json:"merchants"`
}

// MerchantEntry names one merchant and the GeoJSON FeatureCollection holding
// its fences. Fences may be a local path or an http(s) URL.
type MerchantEntry struct {
	ID     string             `json:"id"`
	Name   string             `json:"name"`
	Center domain.Coordinates `json:"center"`
	Fences string             `json:"fences"`
}

// ---------------------------------------------------------------------------
// Main
// ---------------------------------------------------------------------------

func main() {
	cfg, err := config.Load("fencekeeper-ingestor")
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	logging.Setup(cfg.Log.Level, cfg.Log.Format)

	ctx := context.Background()

	db, err := postgres.New(ctx, cfg.Database.DSN(), 8)
	if err != nil {
		slog.Error("db connect failed", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	manifestPath := "manifest.json"
	if len(os.Args) > 1 {
		manifestPath = os.Args[1]
	}

	data, err := os.ReadFile(manifestPath)
	if err != nil {
		slog.Error("read manifest", "path", manifestPath, "error", err)
		os.Exit(1)
	}

	var manifest Manifest
	if err := json.Unmarshal(data, &manifest); err != nil {
		slog.Error("parse manifest", "path", manifestPath, "error", err)
		os.Exit(1)
	}

	slog.Info("fence ingestor starting", "merchants", len(manifest.Merchants), "source", manifest.Source)

	// Optional CLI arg: comma-separated merchant ids.
	idFilter := map[string]bool{}
	if len(os.Args) > 2 {
		for _, s := range strings.Split(os.Args[2], ",") {
			idFilter[strings.TrimSpace(s)] = true
		}
	}

	imp := &importer{
		merchants: usecases.NewMerchantService(postgres.NewMerchantRepo(db)),
		zones:     usecases.NewZoneService(postgres.NewZoneRepo(db), nil, nil, 0),
		client:    &http.Client{Timeout: 60 * time.Second},
	}

	var wg sync.WaitGroup
	sem := make(chan struct{}, 4) // max 4 merchants in flight

	var mu sync.Mutex
	failed := 0

	for _, m := range manifest.Merchants {
		if len(idFilter) > 0 && !idFilter[m.ID] {
			continue
		}

		wg.Add(1)
		go func(m MerchantEntry) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			if err := imp.importMerchant(ctx, m); err != nil {
				slog.Error("merchant import failed", "merchant_id", m.ID, "error", err)
				mu.Lock()
				failed++
				mu.Unlock()
			}
		}(m)
	}

	wg.Wait()
	if failed > 0 {
		slog.Error("ingestion finished with failures", "failed", failed)
		os.Exit(1)
	}
	slog.Info("ingestion complete")
}

// ---------------------------------------------------------------------------
// Per-merchant import
// ---------------------------------------------------------------------------

type importer struct {
	merchants *usecases.MerchantService
	zones     *usecases.ZoneService
	client    *http.Client
}

func (imp *importer) importMerchant(ctx context.Context, m MerchantEntry) error {
	if strings.TrimSpace(m.ID) == "" {
		return errors.New("merchant id is required")
	}
	log := slog.With("merchant_id", m.ID)

	if err := imp.merchants.Register(ctx, m.ID, m.Name, m.Center); err != nil {
		return fmt.Errorf("register merchant: %w", err)
	}

	raw, err := imp.fetch(ctx, m.Fences)
	if err != nil {
		return fmt.Errorf("load fences: %w", err)
	}

	fc, err := geojson.UnmarshalFeatureCollection(raw)
	if err != nil {
		return fmt.Errorf("parse fences: %w", err)
	}

	created, skipped := 0, 0
	for i, f := range fc.Features {
		in, err := geometry.FeatureToZoneInput(f)
		if err != nil {
			log.Warn("skipping feature", "index", i, "error", err)
			skipped++
			continue
		}
		zone, err := imp.zones.Create(ctx, m.ID, in)
		if err != nil {
			if isInputError(err) {
				log.Warn("skipping feature", "index", i, "name", in.Name, "error", err)
				skipped++
				continue
			}
			return fmt.Errorf("create fence %q: %w", in.Name, err)
		}
		log.Debug("fence created", "zone_id", zone.ID, "name", zone.Name, "shape", zone.ShapeType)
		created++
	}

	log.Info("merchant imported", "created", created, "skipped", skipped)
	return nil
}

// fetch reads a local file or downloads an http(s) URL.
func (imp *importer) fetch(ctx context.Context, src string) ([]byte, error) {
	if !strings.HasPrefix(src, "http://") && !strings.HasPrefix(src, "https://") {
		return os.ReadFile(src)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, src, nil)
	if err != nil {
		return nil, err
	}
	resp, err := imp.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP %d for %s", resp.StatusCode, src)
	}
	return io.ReadAll(resp.Body)
}

func isInputError(err error) bool {
	for _, target := range []error{
		domain.ErrInvalidZone,
		domain.ErrInvalidShapeType,
		domain.ErrMissingCenterPoint,
		domain.ErrAmbiguousCenterPoint,
		domain.ErrInsufficientPolygonVertices,
		domain.ErrInvalidCoordinates,
		domain.ErrInvalidRadius,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
