package ports

import (
	"context"
	"dispatch-route-service/internal/domain"
)

// Port: a boundary for persisting dispatch decisions.
type DecisionRepository interface {
	SaveDecision(ctx context.Context, d *domain.DispatchDecision) error
	// Return the most recent decisions, newest first.
	ListDecisions(ctx context.Context, limit int) ([]*domain.DispatchDecision, error)
}
