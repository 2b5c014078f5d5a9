package usecases_test

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/samirrijal/fencekeeper/internal/core/domain"
	"github.com/samirrijal/fencekeeper/internal/core/ports"
	"github.com/samirrijal/fencekeeper/internal/core/usecases"
)

const squareGeoJSON = `{"type":"Polygon","coordinates":[[[0,0],[0,1],[1,1],[1,0],[0,0]]]}`

func storedFrom(id int64, rec ports.ZoneRecord, geoJSON string) *ports.StoredZone {
	return &ports.StoredZone{
		Zone: domain.Zone{
			ID:           id,
			MerchantID:   rec.MerchantID,
			Name:         rec.Name,
			Description:  rec.Description,
			RuleID:       rec.RuleID,
			ShapeType:    rec.ShapeType,
			RadiusMeters: rec.RadiusMeters,
		},
		GeoJSON: []byte(geoJSON),
	}
}

func TestZoneService_Create_Polygon(t *testing.T) {
	var got ports.ZoneRecord
	repo := &mockZoneRepo{
		createFn: func(ctx context.Context, rec ports.ZoneRecord) (*ports.StoredZone, error) {
			got = rec
			return storedFrom(7, rec, squareGeoJSON), nil
		},
	}
	cache := newMockCache()
	pub := &mockPublisher{}
	svc := usecases.NewZoneService(repo, cache, pub, 60)

	zone, err := svc.Create(context.Background(), "m-1", domain.ZoneInput{
		Name:      "Downtown",
		RuleID:    int64Ptr(3),
		ShapeType: "polygon",
		Vertices:  []domain.Coordinates{{0, 0}, {0, 1}, {1, 1}, {1, 0}},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.MerchantID != "m-1" {
		t.Errorf("expected merchant m-1, got %s", got.MerchantID)
	}
	if !got.Geometry.Repair || got.Geometry.WKT == "" {
		t.Errorf("expected repaired polygon expression, got %+v", got.Geometry)
	}
	if zone.ID != 7 || len(zone.Vertices) != 5 {
		t.Errorf("unexpected zone %+v", zone)
	}
	if len(cache.dels) != 1 || cache.dels[0] != "zones:merchant:m-1" {
		t.Errorf("expected cache eviction, got %v", cache.dels)
	}
	if len(pub.zoneEvents) != 1 || pub.zoneEvents[0].Op != domain.ZoneCreated {
		t.Errorf("expected created event, got %+v", pub.zoneEvents)
	}
}

func TestZoneService_Create_InvalidGeometryNeverPersists(t *testing.T) {
	repo := &mockZoneRepo{
		createFn: func(ctx context.Context, rec ports.ZoneRecord) (*ports.StoredZone, error) {
			t.Fatal("repository must not be called")
			return nil, nil
		},
	}
	svc := usecases.NewZoneService(repo, nil, nil, 0)

	tests := []struct {
		name string
		in   domain.ZoneInput
		want error
	}{
		{"bad shape", domain.ZoneInput{Name: "z", ShapeType: "square"}, domain.ErrInvalidShapeType},
		{"circle no center", domain.ZoneInput{Name: "z", ShapeType: "circle", RadiusMeters: 10}, domain.ErrMissingCenterPoint},
		{"circle no radius", domain.ZoneInput{Name: "z", ShapeType: "circle", Vertices: []domain.Coordinates{{1, 1}}}, domain.ErrInvalidRadius},
		{"short polygon", domain.ZoneInput{Name: "z", ShapeType: "polygon", Vertices: []domain.Coordinates{{0, 0}, {1, 1}}}, domain.ErrInsufficientPolygonVertices},
		{"no name", domain.ZoneInput{ShapeType: "polygon"}, domain.ErrInvalidZone},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(context.Background(), "m-1", tt.in)
			if !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestZoneService_Update_FullReplace(t *testing.T) {
	repo := &mockZoneRepo{
		updateFn: func(ctx context.Context, id int64, rec ports.ZoneRecord) (*ports.StoredZone, error) {
			if rec.Description != "" || rec.RuleID != nil {
				t.Errorf("omitted fields must not be carried over, got %+v", rec)
			}
			if rec.ShapeType != domain.ShapeCircle || rec.RadiusMeters != 500 {
				t.Errorf("unexpected record %+v", rec)
			}
			return storedFrom(id, rec, `{"type":"Point","coordinates":[2,3]}`), nil
		},
	}
	pub := &mockPublisher{}
	svc := usecases.NewZoneService(repo, nil, pub, 0)

	zone, err := svc.Update(context.Background(), "m-1", 9, domain.ZoneInput{
		Name: "Ring", ShapeType: "circle", Vertices: []domain.Coordinates{{2, 3}}, RadiusMeters: 500,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if zone.Vertices[0] != (domain.Coordinates{2, 3}) {
		t.Errorf("unexpected center %v", zone.Vertices)
	}
	if len(pub.zoneEvents) != 1 || pub.zoneEvents[0].ZoneID != 9 || pub.zoneEvents[0].Op != domain.ZoneUpdated {
		t.Errorf("unexpected events %+v", pub.zoneEvents)
	}
}

func TestZoneService_ForeignZoneIsNotFound(t *testing.T) {
	repo := &mockZoneRepo{
		deleteFn: func(ctx context.Context, merchantID string, id int64) error {
			return domain.ErrZoneNotFound
		},
	}
	pub := &mockPublisher{}
	svc := usecases.NewZoneService(repo, nil, pub, 0)

	if _, err := svc.GetByID(context.Background(), "m-2", 1); !errors.Is(err, domain.ErrZoneNotFound) {
		t.Errorf("expected ErrZoneNotFound, got %v", err)
	}
	if err := svc.Delete(context.Background(), "m-2", 1); !errors.Is(err, domain.ErrZoneNotFound) {
		t.Errorf("expected ErrZoneNotFound, got %v", err)
	}
	if len(pub.zoneEvents) != 0 {
		t.Error("failed delete must not publish")
	}
}

func TestZoneService_MissingMerchant(t *testing.T) {
	svc := usecases.NewZoneService(&mockZoneRepo{}, nil, nil, 0)
	if _, err := svc.List(context.Background(), ""); !errors.Is(err, domain.ErrMissingMerchant) {
		t.Errorf("expected ErrMissingMerchant, got %v", err)
	}
}

func TestZoneService_List_UsesCache(t *testing.T) {
	calls := 0
	repo := &mockZoneRepo{
		listFn: func(ctx context.Context, merchantID string) ([]ports.StoredZone, error) {
			calls++
			rec := ports.ZoneRecord{MerchantID: merchantID, Name: "A", ShapeType: domain.ShapePolygon}
			return []ports.StoredZone{*storedFrom(1, rec, squareGeoJSON)}, nil
		},
	}
	cache := newMockCache()
	svc := usecases.NewZoneService(repo, cache, nil, 60)

	for i := 0; i < 2; i++ {
		zones, err := svc.List(context.Background(), "m-1")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(zones) != 1 || len(zones[0].Vertices) != 5 {
			t.Fatalf("unexpected zones %+v", zones)
		}
	}
	if calls != 1 {
		t.Errorf("expected one repository call, got %d", calls)
	}

	if err := svc.HandleZoneEvent(context.Background(), &domain.ZoneEvent{MerchantID: "m-1"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := svc.List(context.Background(), "m-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 2 {
		t.Errorf("expected reload after eviction, got %d calls", calls)
	}
}

func TestZoneService_PublishFailureDoesNotFailMutation(t *testing.T) {
	repo := &mockZoneRepo{
		createFn: func(ctx context.Context, rec ports.ZoneRecord) (*ports.StoredZone, error) {
			return storedFrom(1, rec, squareGeoJSON), nil
		},
	}
	pub := &mockPublisher{err: errors.New("nats down")}
	svc := usecases.NewZoneService(repo, nil, pub, 0)

	_, err := svc.Create(context.Background(), "m-1", domain.ZoneInput{
		Name: "A", ShapeType: "polygon", Vertices: []domain.Coordinates{{0, 0}, {0, 1}, {1, 1}},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// Self-intersecting rings as PostGIS repairs them.
const (
	spikeCollectionGeoJSON = `{"type":"GeometryCollection","geometries":[` +
		`{"type":"Polygon","coordinates":[[[0,0],[0,1],[1,1],[1,0],[0,0]]]},` +
		`{"type":"LineString","coordinates":[[1,1],[2,2]]}]}`
	bowTieGeoJSON = `{"type":"MultiPolygon","coordinates":[` +
		`[[[0,0],[0.5,0.5],[0,1],[0,0]]],` +
		`[[[1,0],[1,1],[0.5,0.5],[1,0]]]]}`
)

func TestZoneService_Create_RepairedCollectionDecodes(t *testing.T) {
	repo := &mockZoneRepo{
		createFn: func(ctx context.Context, rec ports.ZoneRecord) (*ports.StoredZone, error) {
			return storedFrom(9, rec, spikeCollectionGeoJSON), nil
		},
		listFn: func(ctx context.Context, merchantID string) ([]ports.StoredZone, error) {
			rec := ports.ZoneRecord{MerchantID: merchantID, Name: "Spike", ShapeType: domain.ShapePolygon}
			sq := ports.ZoneRecord{MerchantID: merchantID, Name: "Square", ShapeType: domain.ShapePolygon}
			return []ports.StoredZone{*storedFrom(9, rec, spikeCollectionGeoJSON), *storedFrom(10, sq, squareGeoJSON)}, nil
		},
	}
	svc := usecases.NewZoneService(repo, nil, nil, 0)

	zone, err := svc.Create(context.Background(), "m-1", domain.ZoneInput{
		Name: "Spike", ShapeType: "polygon",
		Vertices: []domain.Coordinates{{0, 0}, {0, 1}, {1, 1}, {2, 2}, {1, 1}, {1, 0}},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(zone.Vertices) != 5 {
		t.Errorf("expected the polygon member's ring, got %v", zone.Vertices)
	}

	zones, err := svc.List(context.Background(), "m-1")
	if err != nil || len(zones) != 2 {
		t.Fatalf("expected both zones, got %d, %v", len(zones), err)
	}

	match, err := usecases.NewLocalZoneMatcher(svc).Match(context.Background(), "m-1", domain.Coordinates{0.5, 0.5})
	if err != nil || match == nil {
		t.Errorf("expected a match, got %+v, %v", match, err)
	}
}

func TestZoneService_SplitPolygonMatchesEveryPart(t *testing.T) {
	repo := &mockZoneRepo{
		listFn: func(ctx context.Context, merchantID string) ([]ports.StoredZone, error) {
			rec := ports.ZoneRecord{MerchantID: merchantID, Name: "Bow tie", ShapeType: domain.ShapePolygon}
			return []ports.StoredZone{*storedFrom(1, rec, bowTieGeoJSON)}, nil
		},
	}
	cache := newMockCache()
	svc := usecases.NewZoneService(repo, cache, nil, 60)
	m := usecases.NewLocalZoneMatcher(svc)

	// The second round is served from the cache.
	for round := 0; round < 2; round++ {
		for _, p := range []domain.Coordinates{{0.1, 0.5}, {0.9, 0.5}} {
			match, err := m.Match(context.Background(), "m-1", p)
			if err != nil {
				t.Fatalf("round %d: unexpected error: %v", round, err)
			}
			if match == nil || match.ZoneID != 1 {
				t.Errorf("round %d: expected %v inside zone 1, got %+v", round, p, match)
			}
		}
		if match, _ := m.Match(context.Background(), "m-1", domain.Coordinates{0.5, 0.9}); match != nil {
			t.Errorf("round %d: point between the lobes must not match, got %+v", round, match)
		}
	}

	zones, err := svc.List(context.Background(), "m-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(zones[0].Vertices) != 4 || zones[0].Vertices[1] != (domain.Coordinates{0.5, 0.5}) {
		t.Errorf("expected the first lobe as vertices, got %v", zones[0].Vertices)
	}
	body, _ := json.Marshal(zones[0])
	if strings.Contains(string(body), "coverage") || strings.Contains(string(body), "Coverage") {
		t.Errorf("coverage must not reach clients: %s", body)
	}
}
