package usecases

import (
	"context"
	"fmt"
	"strings"

	"github.com/samirrijal/fencekeeper/internal/core/domain"
	"github.com/samirrijal/fencekeeper/internal/core/ports"
	"github.com/samirrijal/fencekeeper/internal/pkg/geometry"
)

// MerchantService reads and registers merchant settings.
type MerchantService struct {
	merchants ports.MerchantRepository
}

// NewMerchantService creates a new MerchantService.
func NewMerchantService(merchants ports.MerchantRepository) *MerchantService {
	return &MerchantService{merchants: merchants}
}

// GetConfig returns the merchant's map center. An unset center is reported
// as [0, 0].
func (s *MerchantService) GetConfig(ctx context.Context, merchantID string) (*domain.MerchantConfig, error) {
	if merchantID == "" {
		return nil, domain.ErrMissingMerchant
	}
	raw, err := s.merchants.GetCenter(ctx, merchantID)
	if err != nil {
		return nil, err
	}
	center, err := geometry.DecodePoint(raw)
	if err != nil {
		return nil, err
	}
	cfg := &domain.MerchantConfig{MerchantID: merchantID}
	if center != nil {
		cfg.Location = *center
	}
	return cfg, nil
}

// Register creates the merchant or replaces its name and map center.
func (s *MerchantService) Register(ctx context.Context, merchantID, name string, center domain.Coordinates) error {
	if strings.TrimSpace(merchantID) == "" {
		return domain.ErrMissingMerchant
	}
	if err := center.Validate(); err != nil {
		return err
	}
	if err := s.merchants.Upsert(ctx, merchantID, name, geometry.ToPointExpression(center)); err != nil {
		return fmt.Errorf("upsert merchant %s: %w", merchantID, err)
	}
	return nil
}
