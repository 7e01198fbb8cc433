package command

import (
	"context"
	"errors"
	"fmt"
	"time"

	inventorydomain "github.com/givebridge/distribution/internal/inventory/domain"
	"github.com/givebridge/distribution/internal/plan/domain"
	requestdomain "github.com/givebridge/distribution/internal/request/domain"
)

// ExecutePlanCommand represents the command to execute an approved plan
type ExecutePlanCommand struct {
	PlanID     uint
	ExecutedBy string
}

// ExecutePlanHandler handles execute plan command
type ExecutePlanHandler struct {
	store domain.Store
}

// NewExecutePlanHandler creates a new execute plan handler
func NewExecutePlanHandler(store domain.Store) *ExecutePlanHandler {
	return &ExecutePlanHandler{store: store}
}

// Handle executes the plan: reserved stock is consumed from the ledger, a
// distribution log row is written per item, the underlying request flips to
// Fulfilled and the plan lands in Completed. The whole run is one
// transaction; a failure on any item rolls back every prior consumption and
// log row, leaving the plan in Approved.
func (h *ExecutePlanHandler) Handle(ctx context.Context, cmd ExecutePlanCommand) (*domain.DistributionPlan, error) {
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

		if !plan.Status.CanTransition(domain.StatusOngoing) {
			return &domain.InvalidTransitionError{PlanID: plan.ID, From: plan.Status, To: domain.StatusOngoing}
		}

		now := time.Now()
		plan.Status = domain.StatusOngoing
		if err := tx.SavePlan(plan); err != nil {
			return err
		}

		for _, item := range plan.Items {
			record, err := tx.RecordForUpdate(item.InventoryRecordID)
			if err != nil {
				return err
			}

			entry, err := record.Consume(item.Quantity)
			if err != nil {
				var insufficient *inventorydomain.InsufficientStockError
				if errors.As(err, &insufficient) {
					return &domain.InsufficientInventoryError{
						PlanID:    plan.ID,
						ItemName:  item.ItemName,
						Requested: insufficient.Requested,
						Available: insufficient.Available,
					}
				}
				return err
			}
			entry.Reference = plan.Reference
			if err := tx.SaveRecord(record, entry); err != nil {
				return err
			}

			if err := tx.AppendLog(&domain.DistributionLog{
				PlanID:              plan.ID,
				BeneficiaryID:       plan.BeneficiaryID,
				InventoryRecordID:   item.InventoryRecordID,
				ItemName:            item.ItemName,
				QuantityDistributed: item.Quantity,
				Value:               item.AllocatedValue,
				DistributionDate:    now,
				DistributedBy:       cmd.ExecutedBy,
			}); err != nil {
				return err
			}
		}

		req, err := tx.RequestForUpdate(plan.RequestID)
		if err != nil {
			return err
		}
		req.Status = requestdomain.StatusFulfilled
		if err := tx.SaveRequest(req); err != nil {
			return err
		}

		plan.Status = domain.StatusCompleted
		plan.ExecutedBy = cmd.ExecutedBy
		plan.ExecutedAt = &now
		return tx.SavePlan(plan)
	})
	if err != nil {
		return nil, err
	}

	return plan, nil
}
