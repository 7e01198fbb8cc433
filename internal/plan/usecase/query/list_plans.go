package query

import (
	"context"

	"github.com/givebridge/distribution/internal/plan/domain"
)

// ListPlansQuery represents the query to list plans
type ListPlansQuery struct {
	Filter domain.ListFilter
}

// ListPlansHandler handles list plans query
type ListPlansHandler struct {
	store domain.Store
}

// NewListPlansHandler creates a new list plans handler
func NewListPlansHandler(store domain.Store) *ListPlansHandler {
	return &ListPlansHandler{store: store}
}

// Handle executes the list plans query
func (h *ListPlansHandler) Handle(ctx context.Context, q ListPlansQuery) ([]domain.DistributionPlan, error) {
	filter := q.Filter
	if filter.Limit <= 0 || filter.Limit > 100 {
		filter.Limit = 50
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}

	return h.store.List(ctx, filter)
}
