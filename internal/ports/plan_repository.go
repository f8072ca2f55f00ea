package ports

import (
	"context"

	"cycling-route-service/internal/domain"
)

// PlanRepository is the persistence boundary for finished route plans.
type PlanRepository interface {
	// Save stores the plan, replacing any existing plan with the same id.
	Save(ctx context.Context, plan *domain.RoutePlan) error

	// GetByID returns the stored plan or ErrPlanNotFound.
	GetByID(ctx context.Context, id string) (*domain.RoutePlan, error)

	// ListRecent returns up to limit plans, newest first.
	ListRecent(ctx context.Context, limit int) ([]*domain.RoutePlan, error)
}
