package command

import (
	"context"
	"fmt"

	"github.com/givebridge/distribution/internal/inventory/domain"
)

// UpdateStatusCommand represents the command to override a record's status.
// Only the bazaar diversion is caller-set; passing any quantity-derived
// status re-derives it from the current quantities instead.
type UpdateStatusCommand struct {
	RecordID uint
	Status   domain.ItemStatus
}

// UpdateStatusHandler handles update status command
type UpdateStatusHandler struct {
	repo domain.InventoryRepository
}

// NewUpdateStatusHandler creates a new update status handler
func NewUpdateStatusHandler(repo domain.InventoryRepository) *UpdateStatusHandler {
	return &UpdateStatusHandler{repo: repo}
}

// Handle executes the update status command
func (h *UpdateStatusHandler) Handle(ctx context.Context, cmd UpdateStatusCommand) error {
	if cmd.RecordID == 0 {
		return fmt.Errorf("record_id is required")
	}

	status := cmd.Status
	switch {
	case status == domain.StatusBazaar:
	case status.QuantityDerived():
		record, err := h.repo.FindByID(ctx, cmd.RecordID)
		if err != nil {
			return err
		}
		status = domain.DeriveStatus(record.QuantityAvailable)
	default:
		return fmt.Errorf("status %q cannot be set directly", cmd.Status)
	}

	if err := h.repo.UpdateStatus(ctx, cmd.RecordID, status); err != nil {
		return fmt.Errorf("failed to update status: %w", err)
	}

	return nil
}
