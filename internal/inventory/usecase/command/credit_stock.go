package command

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/givebridge/distribution/internal/inventory/domain"
)

// CreditStockCommand represents the command to book donated stock into the
// ledger. Received controls whether the stock lands in the available pool or
// the inbound pool.
type CreditStockCommand struct {
	ItemName  string
	Category  string
	Location  string
	Quantity  int
	Value     decimal.Decimal
	Received  bool
	Reference string
}

// CreditStockHandler handles credit stock command
type CreditStockHandler struct {
	repo domain.InventoryRepository
}

// NewCreditStockHandler creates a new credit stock handler
func NewCreditStockHandler(repo domain.InventoryRepository) *CreditStockHandler {
	return &CreditStockHandler{repo: repo}
}

// Handle executes the credit stock command
func (h *CreditStockHandler) Handle(ctx context.Context, cmd CreditStockCommand) (*domain.InventoryRecord, error) {
	if cmd.ItemName == "" {
		return nil, fmt.Errorf("item_name is required")
	}

	if cmd.Quantity <= 0 {
		return nil, fmt.Errorf("quantity must be positive")
	}

	if cmd.Value.IsNegative() {
		return nil, fmt.Errorf("value cannot be negative")
	}

	if cmd.Location == "" {
		cmd.Location = "main"
	}

	record, err := h.repo.Credit(ctx, cmd.ItemName, cmd.Category, cmd.Location, cmd.Quantity, cmd.Value, cmd.Received, cmd.Reference)
	if err != nil {
		return nil, fmt.Errorf("failed to credit stock: %w", err)
	}

	return record, nil
}
