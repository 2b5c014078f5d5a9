package usecases_test

import (
	"context"
	"errors"
	"testing"

	"github.com/samirrijal/fencekeeper/internal/core/domain"
	"github.com/samirrijal/fencekeeper/internal/core/usecases"
)

type staticLister []domain.Zone

func (l staticLister) List(ctx context.Context, merchantID string) ([]domain.Zone, error) {
	return l, nil
}

func TestDeliveryService_Check_WithinCircle(t *testing.T) {
	zones := staticLister{{
		ID: 1, RuleID: int64Ptr(4), ShapeType: domain.ShapeCircle,
		Vertices: []domain.Coordinates{{116.397, 39.909}}, RadiusMeters: 1000,
	}}
	svc := usecases.NewDeliveryService(usecases.NewLocalZoneMatcher(zones), "local")

	res, err := svc.Check(context.Background(), "m-1", domain.Coordinates{116.397, 39.909})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.Deliverable || res.RuleID == nil || *res.RuleID != 4 {
		t.Errorf("expected deliverable with rule 4, got %+v", res)
	}
	if res.Message != usecases.MsgWithinRange {
		t.Errorf("unexpected message %q", res.Message)
	}
}

func TestDeliveryService_Check_OutsideCircle(t *testing.T) {
	zones := staticLister{{
		ID: 1, RuleID: int64Ptr(4), ShapeType: domain.ShapeCircle,
		Vertices: []domain.Coordinates{{116.397, 39.909}}, RadiusMeters: 1,
	}}
	svc := usecases.NewDeliveryService(usecases.NewLocalZoneMatcher(zones), "local")

	res, err := svc.Check(context.Background(), "m-1", domain.Coordinates{116.397, 39.999})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Deliverable || res.RuleID != nil {
		t.Errorf("expected not deliverable with null rule, got %+v", res)
	}
	if res.Message != usecases.MsgOutsideRange {
		t.Errorf("unexpected message %q", res.Message)
	}
}

func TestDeliveryService_Check_PolygonWithNullRule(t *testing.T) {
	zones := staticLister{
		{ID: 1, ShapeType: domain.ShapePolygon, Vertices: []domain.Coordinates{{0, 0}, {0, 1}, {1, 1}, {1, 0}, {0, 0}}},
	}
	svc := usecases.NewDeliveryService(usecases.NewLocalZoneMatcher(zones), "local")

	res, err := svc.Check(context.Background(), "m-1", domain.Coordinates{0.5, 0.5})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.Deliverable || res.RuleID != nil {
		t.Errorf("expected deliverable with null rule, got %+v", res)
	}
}

func TestDeliveryService_Check_PassesMerchant(t *testing.T) {
	matcher := &mockMatcher{
		matchFn: func(ctx context.Context, merchantID string, p domain.Coordinates) (*domain.ZoneMatch, error) {
			if merchantID != "m-9" {
				t.Errorf("expected merchant m-9, got %s", merchantID)
			}
			return nil, nil
		},
	}
	svc := usecases.NewDeliveryService(matcher, "postgis")
	if _, err := svc.Check(context.Background(), "m-9", domain.Coordinates{1, 1}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestDeliveryService_Check_Errors(t *testing.T) {
	boom := errors.New("connection reset")
	svc := usecases.NewDeliveryService(&mockMatcher{
		matchFn: func(ctx context.Context, merchantID string, p domain.Coordinates) (*domain.ZoneMatch, error) {
			return nil, boom
		},
	}, "postgis")

	if _, err := svc.Check(context.Background(), "m-1", domain.Coordinates{1, 1}); !errors.Is(err, boom) {
		t.Errorf("expected storage error to propagate, got %v", err)
	}
	if _, err := svc.Check(context.Background(), "m-1", domain.Coordinates{200, 1}); !errors.Is(err, domain.ErrInvalidCoordinates) {
		t.Errorf("expected ErrInvalidCoordinates, got %v", err)
	}
	if _, err := svc.Check(context.Background(), "", domain.Coordinates{1, 1}); !errors.Is(err, domain.ErrMissingMerchant) {
		t.Errorf("expected ErrMissingMerchant, got %v", err)
	}
}

func TestLocalZoneMatcher_FirstMatch(t *testing.T) {
	zones := staticLister{
		{ID: 1, ShapeType: domain.ShapeCircle, Vertices: []domain.Coordinates{{50, 50}}, RadiusMeters: 10},
		{ID: 2, RuleID: int64Ptr(1), ShapeType: domain.ShapeCircle, Vertices: []domain.Coordinates{{0, 0}}, RadiusMeters: 5000},
		{ID: 3, RuleID: int64Ptr(2), ShapeType: domain.ShapeCircle, Vertices: []domain.Coordinates{{0, 0}}, RadiusMeters: 9000},
	}
	m := usecases.NewLocalZoneMatcher(zones)

	match, err := m.Match(context.Background(), "m-1", domain.Coordinates{0.01, 0.01})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if match == nil || (match.ZoneID != 2 && match.ZoneID != 3) {
		t.Errorf("expected one of the overlapping zones, got %+v", match)
	}
}

func TestZoneCovers_MalformedCircle(t *testing.T) {
	z := domain.Zone{ShapeType: domain.ShapeCircle, RadiusMeters: 100}
	if usecases.ZoneCovers(z, domain.Coordinates{0, 0}) {
		t.Error("circle without a center must not match")
	}
}
