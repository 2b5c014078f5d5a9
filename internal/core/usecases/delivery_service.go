package usecases

import (
	"context"
	"time"

	"github.com/samirrijal/fencekeeper/internal/core/domain"
	"github.com/samirrijal/fencekeeper/internal/core/ports"
	"github.com/samirrijal/fencekeeper/internal/pkg/metrics"
	"github.com/samirrijal/fencekeeper/internal/pkg/telemetry"
)

// Delivery check messages.
const (
	MsgWithinRange  = "Address is within delivery range."
	MsgOutsideRange = "Address is outside delivery range."
)

// DeliveryService evaluates whether a point falls inside any of a
// merchant's zones.
type DeliveryService struct {
	matcher   ports.ZoneMatcher
	evaluator string
}

// NewDeliveryService creates a new DeliveryService. evaluator labels metrics.
func NewDeliveryService(matcher ports.ZoneMatcher, evaluator string) *DeliveryService {
	return &DeliveryService{matcher: matcher, evaluator: evaluator}
}

// Check returns whether point is deliverable for the merchant and, if so,
// the rule of the first zone that accepted it. Among overlapping zones the
// winner is unspecified.
func (s *DeliveryService) Check(ctx context.Context, merchantID string, point domain.Coordinates) (_ *domain.DeliveryCheck, err error) {
	if merchantID == "" {
		return nil, domain.ErrMissingMerchant
	}
	if err := point.Validate(); err != nil {
		return nil, err
	}

	ctx, span := telemetry.StartSpan(ctx, "DeliveryService.Check", merchantID)
	defer func() { telemetry.EndSpan(span, err) }()

	start := time.Now()
	match, err := s.matcher.Match(ctx, merchantID, point)
	metrics.ZoneEvaluationDuration.WithLabelValues(s.evaluator).Observe(time.Since(start).Seconds())
	if err != nil {
		return nil, err
	}

	if match == nil {
		metrics.DeliveryChecks.WithLabelValues("outside").Inc()
		return &domain.DeliveryCheck{Deliverable: false, RuleID: nil, Message: MsgOutsideRange}, nil
	}
	metrics.DeliveryChecks.WithLabelValues("within").Inc()
	return &domain.DeliveryCheck{Deliverable: true, RuleID: match.RuleID, Message: MsgWithinRange}, nil
}
