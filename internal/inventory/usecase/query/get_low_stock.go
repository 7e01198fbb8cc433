package query

import (
	"context"

	"github.com/givebridge/distribution/internal/inventory/domain"
)

// GetLowStockQuery represents the query to list records at or below a stock
// threshold
type GetLowStockQuery struct {
	Threshold int
}

// GetLowStockHandler handles get low stock query
type GetLowStockHandler struct {
	repo domain.InventoryRepository
}

// NewGetLowStockHandler creates a new get low stock handler
func NewGetLowStockHandler(repo domain.InventoryRepository) *GetLowStockHandler {
	return &GetLowStockHandler{repo: repo}
}

// Handle executes the get low stock query
func (h *GetLowStockHandler) Handle(ctx context.Context, q GetLowStockQuery) ([]domain.InventoryRecord, error) {
	threshold := q.Threshold
	if threshold <= 0 {
		threshold = domain.LowStockThreshold
	}

	return h.repo.FindLowStock(ctx, threshold)
}
