package command

import (
	"context"
	"fmt"

	"github.com/givebridge/distribution/internal/inventory/domain"
)

// ReceiveStockCommand represents the command to move inbound stock into the
// allocatable pool once the goods physically arrive.
type ReceiveStockCommand struct {
	RecordID  uint
	Quantity  int
	Reference string
}

// ReceiveStockHandler handles receive stock command
type ReceiveStockHandler struct {
	repo domain.InventoryRepository
}

// NewReceiveStockHandler creates a new receive stock handler
func NewReceiveStockHandler(repo domain.InventoryRepository) *ReceiveStockHandler {
	return &ReceiveStockHandler{repo: repo}
}

// Handle executes the receive stock command
func (h *ReceiveStockHandler) Handle(ctx context.Context, cmd ReceiveStockCommand) (*domain.InventoryRecord, error) {
	if cmd.RecordID == 0 {
		return nil, fmt.Errorf("record_id is required")
	}

	if cmd.Quantity <= 0 {
		return nil, fmt.Errorf("quantity must be positive")
	}

	record, err := h.repo.Receive(ctx, cmd.RecordID, cmd.Quantity, cmd.Reference)
	if err != nil {
		if domain.IsInsufficientStock(err) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to receive stock: %w", err)
	}

	return record, nil
}
