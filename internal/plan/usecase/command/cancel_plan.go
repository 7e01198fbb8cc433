package command

import (
	"context"
	"fmt"

	"github.com/givebridge/distribution/internal/plan/domain"
)

// CancelPlanCommand represents the command to cancel a draft or approved
// plan. Rejection of a draft during review is the same transition with a
// reason attached.
type CancelPlanCommand struct {
	PlanID      uint
	Reason      string
	CancelledBy string
}

// CancelPlanHandler handles cancel plan command
type CancelPlanHandler struct {
	store domain.Store
}

// NewCancelPlanHandler creates a new cancel plan handler
func NewCancelPlanHandler(store domain.Store) *CancelPlanHandler {
	return &CancelPlanHandler{store: store}
}

// Handle executes the cancel plan command. Every reservation the plan holds
// is released back to the available pool in the same transaction.
func (h *CancelPlanHandler) Handle(ctx context.Context, cmd CancelPlanCommand) (*domain.DistributionPlan, error) {
	if cmd.PlanID == 0 {
		return nil, fmt.Errorf("plan_id is required")
	}

	var plan *domain.DistributionPlan
	err := h.store.InTx(ctx, func(tx domain.Tx) error {
		var err error
		plan, err = tx.PlanForUpdate(cmd.PlanID)
		if err != nil {
			return err
		}

		if !plan.Status.CanTransition(domain.StatusCancelled) {
			return &domain.InvalidTransitionError{PlanID: plan.ID, From: plan.Status, To: domain.StatusCancelled}
		}

		for _, item := range plan.Items {
			record, err := tx.RecordForUpdate(item.InventoryRecordID)
			if err != nil {
				return err
			}
			entry, err := record.Release(item.Quantity)
			if err != nil {
				return err
			}
			entry.Reference = plan.Reference
			if err := tx.SaveRecord(record, entry); err != nil {
				return err
			}
		}

		plan.Status = domain.StatusCancelled
		plan.CancelReason = cmd.Reason
		return tx.SavePlan(plan)
	})
	if err != nil {
		return nil, err
	}

	return plan, nil
}
