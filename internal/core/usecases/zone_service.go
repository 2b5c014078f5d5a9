package usecases

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/samirrijal/fencekeeper/internal/core/domain"
	"github.com/samirrijal/fencekeeper/internal/core/ports"
	"github.com/samirrijal/fencekeeper/internal/pkg/geometry"
	"github.com/samirrijal/fencekeeper/internal/pkg/metrics"
	"github.com/samirrijal/fencekeeper/internal/pkg/telemetry"
)

// ZoneService owns the lifecycle of delivery zones.
type ZoneService struct {
	zones    ports.ZoneRepository
	cache    ports.CacheService
	events   ports.EventPublisher
	cacheTTL int
}

// NewZoneService creates a new ZoneService. cache and events may be nil.
func NewZoneService(zones ports.ZoneRepository, cache ports.CacheService, events ports.EventPublisher, cacheTTLSeconds int) *ZoneService {
	if cacheTTLSeconds <= 0 {
		cacheTTLSeconds = 300
	}
	return &ZoneService{zones: zones, cache: cache, events: events, cacheTTL: cacheTTLSeconds}
}

// ZoneCacheKey is the cache key of a merchant's zone list.
func ZoneCacheKey(merchantID string) string {
	return "zones:merchant:" + merchantID
}

// Create validates and stores a new zone.
func (s *ZoneService) Create(ctx context.Context, merchantID string, in domain.ZoneInput) (_ *domain.Zone, err error) {
	ctx, span := telemetry.StartSpan(ctx, "ZoneService.Create", merchantID)
	defer func() { telemetry.EndSpan(span, err) }()

	rec, err := buildZoneRecord(merchantID, in)
	if err != nil {
		return nil, err
	}
	stored, err := s.zones.Create(ctx, rec)
	if err != nil {
		return nil, err
	}
	s.afterMutation(ctx, merchantID, stored.ID, domain.ZoneCreated)
	return decodeZone(stored)
}

// Update replaces every field of an existing zone. Fields missing from in
// are not carried over.
func (s *ZoneService) Update(ctx context.Context, merchantID string, id int64, in domain.ZoneInput) (_ *domain.Zone, err error) {
	ctx, span := telemetry.StartSpan(ctx, "ZoneService.Update", merchantID)
	defer func() { telemetry.EndSpan(span, err) }()

	rec, err := buildZoneRecord(merchantID, in)
	if err != nil {
		return nil, err
	}
	stored, err := s.zones.Update(ctx, id, rec)
	if err != nil {
		return nil, err
	}
	s.afterMutation(ctx, merchantID, id, domain.ZoneUpdated)
	return decodeZone(stored)
}

// Delete removes a zone.
func (s *ZoneService) Delete(ctx context.Context, merchantID string, id int64) (err error) {
	ctx, span := telemetry.StartSpan(ctx, "ZoneService.Delete", merchantID)
	defer func() { telemetry.EndSpan(span, err) }()

	if merchantID == "" {
		return domain.ErrMissingMerchant
	}
	if err := s.zones.Delete(ctx, merchantID, id); err != nil {
		return err
	}
	s.afterMutation(ctx, merchantID, id, domain.ZoneDeleted)
	return nil
}

// GetByID returns a single zone.
func (s *ZoneService) GetByID(ctx context.Context, merchantID string, id int64) (*domain.Zone, error) {
	if merchantID == "" {
		return nil, domain.ErrMissingMerchant
	}
	stored, err := s.zones.GetByID(ctx, merchantID, id)
	if err != nil {
		return nil, err
	}
	return decodeZone(stored)
}

// List returns every zone of the merchant, served from cache when possible.
func (s *ZoneService) List(ctx context.Context, merchantID string) (_ []domain.Zone, err error) {
	if merchantID == "" {
		return nil, domain.ErrMissingMerchant
	}

	cacheKey := ZoneCacheKey(merchantID)
	if s.cache != nil {
		if data, err := s.cache.Get(ctx, cacheKey); err == nil {
			if zones, err := decodeZoneCache(data); err == nil {
				metrics.CacheHits.WithLabelValues("zones").Inc()
				return zones, nil
			}
		}
		metrics.CacheMisses.WithLabelValues("zones").Inc()
	}

	ctx, span := telemetry.StartSpan(ctx, "ZoneService.List", merchantID)
	defer func() { telemetry.EndSpan(span, err) }()

	stored, err := s.zones.ListByMerchant(ctx, merchantID)
	if err != nil {
		return nil, err
	}
	zones := make([]domain.Zone, 0, len(stored))
	for i := range stored {
		z, err := decodeZone(&stored[i])
		if err != nil {
			return nil, fmt.Errorf("zone %d: %w", stored[i].ID, err)
		}
		zones = append(zones, *z)
	}

	if s.cache != nil {
		if data, err := encodeZoneCache(zones); err == nil {
			_ = s.cache.Set(ctx, cacheKey, data, s.cacheTTL)
		}
	}
	return zones, nil
}

// HandleZoneEvent evicts the cached zone list of the event's merchant.
func (s *ZoneService) HandleZoneEvent(ctx context.Context, event *domain.ZoneEvent) error {
	if s.cache == nil || event.MerchantID == "" {
		return nil
	}
	return s.cache.Delete(ctx, ZoneCacheKey(event.MerchantID))
}

func (s *ZoneService) afterMutation(ctx context.Context, merchantID string, id int64, op domain.ZoneEventOp) {
	metrics.ZoneMutations.WithLabelValues(string(op)).Inc()

	if s.cache != nil {
		if err := s.cache.Delete(ctx, ZoneCacheKey(merchantID)); err != nil {
			slog.WarnContext(ctx, "zone cache eviction failed", "merchant_id", merchantID, "error", err)
		}
	}
	if s.events != nil {
		event := &domain.ZoneEvent{MerchantID: merchantID, ZoneID: id, Op: op, At: time.Now().UTC()}
		if err := s.events.PublishZoneEvent(ctx, event); err != nil {
			slog.WarnContext(ctx, "publish zone event failed", "zone_id", id, "op", op, "error", err)
		}
	}
}

// buildZoneRecord validates input and derives the storage geometry from it.
// Nothing reaches storage if the geometry cannot be encoded.
func buildZoneRecord(merchantID string, in domain.ZoneInput) (ports.ZoneRecord, error) {
	if merchantID == "" {
		return ports.ZoneRecord{}, domain.ErrMissingMerchant
	}
	shape, err := in.Validate()
	if err != nil {
		return ports.ZoneRecord{}, err
	}
	expr, err := geometry.EncodeForStorage(shape, in.Vertices)
	if err != nil {
		return ports.ZoneRecord{}, err
	}
	radius := in.RadiusMeters
	if shape == domain.ShapePolygon {
		radius = 0
	}
	return ports.ZoneRecord{
		MerchantID:   merchantID,
		Name:         in.Name,
		Description:  in.Description,
		RuleID:       in.RuleID,
		ShapeType:    shape,
		Vertices:     in.Vertices,
		RadiusMeters: radius,
		Geometry:     expr,
	}, nil
}

func decodeZone(stored *ports.StoredZone) (*domain.Zone, error) {
	z := stored.Zone
	if z.ShapeType != domain.ShapePolygon {
		vertices, err := geometry.DecodeFromStorage(z.ShapeType, stored.GeoJSON)
		if err != nil {
			return nil, err
		}
		z.Vertices = vertices
		return &z, nil
	}

	parts, err := geometry.DecodePolygonParts(stored.GeoJSON)
	if err != nil {
		return nil, err
	}
	z.Vertices = []domain.Coordinates{}
	z.Coverage = nil
	if len(parts) > 0 {
		z.Vertices = parts[0]
	}
	if len(parts) > 1 {
		z.Coverage = parts
	}
	return &z, nil
}

// cachedZone keeps Coverage in the cached zone list; the API shape of
// domain.Zone leaves it out.
type cachedZone struct {
	domain.Zone
	Coverage [][]domain.Coordinates `json:"coverage,omitempty"`
}

func encodeZoneCache(zones []domain.Zone) ([]byte, error) {
	out := make([]cachedZone, len(zones))
	for i, z := range zones {
		out[i] = cachedZone{Zone: z, Coverage: z.Coverage}
	}
	return json.Marshal(out)
}

func decodeZoneCache(data []byte) ([]domain.Zone, error) {
	var cached []cachedZone
	if err := json.Unmarshal(data, &cached); err != nil {
		return nil, err
	}
	zones := make([]domain.Zone, len(cached))
	for i, c := range cached {
		zones[i] = c.Zone
		zones[i].Coverage = c.Coverage
	}
	return zones, nil
}
