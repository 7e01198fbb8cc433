package query

import (
	"context"
	"fmt"

	"github.com/givebridge/distribution/internal/inventory/domain"
)

// GetStatsQuery represents the query to get inventory statistics
type GetStatsQuery struct{}

// GetStatsHandler handles get stats query
type GetStatsHandler struct {
	repo domain.InventoryRepository
}

// NewGetStatsHandler creates a new get stats handler
func NewGetStatsHandler(repo domain.InventoryRepository) *GetStatsHandler {
	return &GetStatsHandler{repo: repo}
}

// Handle executes the get stats query
func (h *GetStatsHandler) Handle(ctx context.Context, _ GetStatsQuery) (*domain.InventoryStats, error) {
	stats, err := h.repo.Stats(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get inventory stats: %w", err)
	}

	return stats, nil
}
