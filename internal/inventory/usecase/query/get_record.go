package query

import (
	"context"
	"fmt"

	"github.com/givebridge/distribution/internal/inventory/domain"
)

// GetRecordQuery represents the query to get an inventory record by ID
type GetRecordQuery struct {
	ID uint
}

// GetRecordHandler handles get record query
type GetRecordHandler struct {
	repo domain.InventoryRepository
}

// NewGetRecordHandler creates a new get record handler
func NewGetRecordHandler(repo domain.InventoryRepository) *GetRecordHandler {
	return &GetRecordHandler{repo: repo}
}

// Handle executes the get record query
func (h *GetRecordHandler) Handle(ctx context.Context, q GetRecordQuery) (*domain.InventoryRecord, error) {
	if q.ID == 0 {
		return nil, fmt.Errorf("invalid record id")
	}

	record, err := h.repo.FindByID(ctx, q.ID)
	if err != nil {
		return nil, err
	}

	return record, nil
}
