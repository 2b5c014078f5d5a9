package postgres

import (
	"context"

	"github.com/samirrijal/fencekeeper/internal/core/domain"
)

// RuleRepo implements ports.RuleRepository with pgx.
type RuleRepo struct {
	db *DB
}

// NewRuleRepo creates a new RuleRepo.
func NewRuleRepo(db *DB) *RuleRepo {
	return &RuleRepo{db: db}
}

// List returns all delivery rules.
func (r *RuleRepo) List(ctx context.Context) ([]domain.DeliveryRule, error) {
	rows, err := r.db.Pool.Query(ctx, `SELECT id, name, logic FROM delivery_rules ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	rules := []domain.DeliveryRule{}
	for rows.Next() {
		var dr domain.DeliveryRule
		if err := rows.Scan(&dr.ID, &dr.Name, &dr.Logic); err != nil {
			return nil, err
		}
		rules = append(rules, dr)
	}
	return rules, rows.Err()
}
