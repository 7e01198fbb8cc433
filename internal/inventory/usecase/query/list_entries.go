package query

import (
	"context"
	"fmt"

	"github.com/givebridge/distribution/internal/inventory/domain"
)

// ListEntriesQuery represents the query to list ledger entries for a record
type ListEntriesQuery struct {
	RecordID uint
	Limit    int
	Offset   int
}

// ListEntriesHandler handles list entries query
type ListEntriesHandler struct {
	repo domain.InventoryRepository
}

// NewListEntriesHandler creates a new list entries handler
func NewListEntriesHandler(repo domain.InventoryRepository) *ListEntriesHandler {
	return &ListEntriesHandler{repo: repo}
}

// Handle executes the list entries query
func (h *ListEntriesHandler) Handle(ctx context.Context, q ListEntriesQuery) ([]domain.LedgerEntry, error) {
	if q.RecordID == 0 {
		return nil, fmt.Errorf("invalid record id")
	}

	if q.Limit <= 0 || q.Limit > 200 {
		q.Limit = 100
	}
	if q.Offset < 0 {
		q.Offset = 0
	}

	return h.repo.Entries(ctx, q.RecordID, q.Limit, q.Offset)
}
