package usecases

import (
	"context"

	"github.com/samirrijal/fencekeeper/internal/core/domain"
	"github.com/samirrijal/fencekeeper/internal/core/ports"
)

// RuleService exposes delivery rules. Rules are never interpreted here.
type RuleService struct {
	rules ports.RuleRepository
}

// NewRuleService creates a new RuleService.
func NewRuleService(rules ports.RuleRepository) *RuleService {
	return &RuleService{rules: rules}
}

// List returns all delivery rules ordered by id.
func (s *RuleService) List(ctx context.Context) ([]domain.DeliveryRule, error) {
	rules, err := s.rules.List(ctx)
	if err != nil {
		return nil, err
	}
	if rules == nil {
		rules = []domain.DeliveryRule{}
	}
	return rules, nil
}
