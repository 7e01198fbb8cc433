package query

import (
	"context"

	"github.com/givebridge/distribution/internal/plan/domain"
)

// ListLogsQuery represents the query to list distribution logs
type ListLogsQuery struct {
	Filter domain.LogFilter
}

// ListLogsHandler handles list logs query
type ListLogsHandler struct {
	store domain.Store
}

// NewListLogsHandler creates a new list logs handler
func NewListLogsHandler(store domain.Store) *ListLogsHandler {
	return &ListLogsHandler{store: store}
}

// Handle executes the list logs query
func (h *ListLogsHandler) Handle(ctx context.Context, q ListLogsQuery) ([]domain.DistributionLog, error) {
	filter := q.Filter
	if filter.Limit <= 0 || filter.Limit > 200 {
		filter.Limit = 100
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}

	return h.store.Logs(ctx, filter)
}
