package command

import (
	"context"
	"fmt"
	"time"

	"github.com/givebridge/distribution/internal/plan/domain"
)

// ApprovePlanCommand represents the command to approve a draft plan
type ApprovePlanCommand struct {
	PlanID     uint
	ApprovedBy string
}

// ApprovePlanHandler handles approve plan command
type ApprovePlanHandler struct {
	store domain.Store
}

// NewApprovePlanHandler creates a new approve plan handler
func NewApprovePlanHandler(store domain.Store) *ApprovePlanHandler {
	return &ApprovePlanHandler{store: store}
}

// Handle executes the approve plan command
func (h *ApprovePlanHandler) Handle(ctx context.Context, cmd ApprovePlanCommand) (*domain.DistributionPlan, error) {
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

		if !plan.Status.CanTransition(domain.StatusApproved) {
			return &domain.InvalidTransitionError{PlanID: plan.ID, From: plan.Status, To: domain.StatusApproved}
		}

		now := time.Now()
		plan.Status = domain.StatusApproved
		plan.ApprovedBy = cmd.ApprovedBy
		plan.ApprovedAt = &now
		return tx.SavePlan(plan)
	})
	if err != nil {
		return nil, err
	}

	return plan, nil
}
