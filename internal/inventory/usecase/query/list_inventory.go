package query

import (
	"context"

	"github.com/givebridge/distribution/internal/inventory/domain"
)

// ListInventoryQuery represents the query to list inventory records
type ListInventoryQuery struct {
	Limit       int
	Offset      int
	Allocatable bool
}

// ListInventoryHandler handles list inventory query
type ListInventoryHandler struct {
	repo domain.InventoryRepository
}

// NewListInventoryHandler creates a new list inventory handler
func NewListInventoryHandler(repo domain.InventoryRepository) *ListInventoryHandler {
	return &ListInventoryHandler{repo: repo}
}

// Handle executes the list inventory query
func (h *ListInventoryHandler) Handle(ctx context.Context, q ListInventoryQuery) ([]domain.InventoryRecord, error) {
	if q.Allocatable {
		return h.repo.FindAllocatable(ctx)
	}

	if q.Limit <= 0 || q.Limit > 100 {
		q.Limit = 50
	}
	if q.Offset < 0 {
		q.Offset = 0
	}

	return h.repo.FindAll(ctx, q.Limit, q.Offset)
}
