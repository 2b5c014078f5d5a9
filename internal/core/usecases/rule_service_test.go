package usecases_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/samirrijal/fencekeeper/internal/core/domain"
	"github.com/samirrijal/fencekeeper/internal/core/usecases"
)

func TestRuleService_List(t *testing.T) {
	svc := usecases.NewRuleService(&mockRuleRepo{rules: []domain.DeliveryRule{{ID: 1, Name: "30 min", Logic: 30}}})
	rules, err := svc.List(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rules) != 1 || rules[0].Name != "30 min" {
		t.Errorf("unexpected rules %+v", rules)
	}
}

func TestRuleService_List_EmptyIsNotNil(t *testing.T) {
	rules, err := usecases.NewRuleService(&mockRuleRepo{}).List(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rules == nil {
		t.Error("expected empty slice, got nil")
	}
}

func TestMerchantService_GetConfig(t *testing.T) {
	svc := usecases.NewMerchantService(&mockMerchantRepo{
		getCenterFn: func(ctx context.Context, merchantID string) ([]byte, error) {
			return []byte(`{"type":"Point","coordinates":[-2.935,43.263]}`), nil
		},
	})
	cfg, err := svc.GetConfig(context.Background(), "m-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Location != (domain.Coordinates{-2.935, 43.263}) {
		t.Errorf("unexpected location %v", cfg.Location)
	}
}

func TestMerchantService_GetConfig_NotFound(t *testing.T) {
	svc := usecases.NewMerchantService(&mockMerchantRepo{})
	if _, err := svc.GetConfig(context.Background(), "nobody"); !errors.Is(err, domain.ErrMerchantNotFound) {
		t.Errorf("expected ErrMerchantNotFound, got %v", err)
	}
}

func TestMerchantService_Register(t *testing.T) {
	repo := &mockMerchantRepo{}
	svc := usecases.NewMerchantService(repo)

	if err := svc.Register(context.Background(), "m-1", "Shop", domain.Coordinates{-2.935, 43.263}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(repo.upserted) != 1 || !strings.HasPrefix(repo.upserted[0].WKT, "POINT") || !strings.Contains(repo.upserted[0].WKT, "43.263") {
		t.Errorf("unexpected upserts %+v", repo.upserted)
	}

	if err := svc.Register(context.Background(), "", "Shop", domain.Coordinates{0, 0}); !errors.Is(err, domain.ErrMissingMerchant) {
		t.Errorf("expected ErrMissingMerchant, got %v", err)
	}
	if err := svc.Register(context.Background(), "m-1", "Shop", domain.Coordinates{0, 100}); !errors.Is(err, domain.ErrInvalidCoordinates) {
		t.Errorf("expected ErrInvalidCoordinates, got %v", err)
	}
	if len(repo.upserted) != 1 {
		t.Errorf("invalid input must not reach storage, got %d upserts", len(repo.upserted))
	}
}
