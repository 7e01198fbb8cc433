package query

import (
	"context"
	"fmt"

	"github.com/givebridge/distribution/internal/plan/domain"
)

// GetPlanQuery represents the query to get a plan by ID
type GetPlanQuery struct {
	ID uint
}

// GetPlanHandler handles get plan query
type GetPlanHandler struct {
	store domain.Store
}

// NewGetPlanHandler creates a new get plan handler
func NewGetPlanHandler(store domain.Store) *GetPlanHandler {
	return &GetPlanHandler{store: store}
}

// Handle executes the get plan query
func (h *GetPlanHandler) Handle(ctx context.Context, q GetPlanQuery) (*domain.DistributionPlan, error) {
	if q.ID == 0 {
		return nil, fmt.Errorf("invalid plan id")
	}

	return h.store.FindByID(ctx, q.ID)
}
