package command

import (
	"context"
	"errors"
	"testing"

	"github.com/givebridge/distribution/internal/plan/domain"
)

func TestApprovePlanTransitionsDraft(t *testing.T) {
	store := newFixture()
	ctx := context.Background()

	result, err := NewCreatePlanHandler(store).Handle(ctx, CreatePlanCommand{
		RequestID: 1,
		CreatedBy: "staff1",
		Items:     []CreatePlanItem{{InventoryRecordID: 1, Quantity: 5}},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	plan, err := NewApprovePlanHandler(store).Handle(ctx, ApprovePlanCommand{
		PlanID:     result.Plan.ID,
		ApprovedBy: "admin1",
	})
	if err != nil {
		t.Fatalf("approve: %v", err)
	}

	if plan.Status != domain.StatusApproved {
		t.Errorf("status = %s, want approved", plan.Status)
	}
	if plan.ApprovedBy != "admin1" || plan.ApprovedAt == nil {
		t.Error("approval attribution missing")
	}
}

func TestApprovePlanRejectsRepeatApproval(t *testing.T) {
	store := newFixture()
	plan := approvedPlan(t, store, []CreatePlanItem{{InventoryRecordID: 1, Quantity: 5}})

	_, err := NewApprovePlanHandler(store).Handle(context.Background(), ApprovePlanCommand{
		PlanID:     plan.ID,
		ApprovedBy: "admin2",
	})

	var invalid *domain.InvalidTransitionError
	if !errors.As(err, &invalid) {
		t.Fatalf("got %v, want InvalidTransitionError", err)
	}
	if invalid.From != domain.StatusApproved {
		t.Errorf("from = %s, want approved", invalid.From)
	}
}

func TestCancelPlanReleasesReservations(t *testing.T) {
	store := newFixture()
	plan := approvedPlan(t, store, []CreatePlanItem{
		{InventoryRecordID: 1, Quantity: 10},
		{InventoryRecordID: 2, Quantity: 4},
	})
	ctx := context.Background()

	cancelled, err := NewCancelPlanHandler(store).Handle(ctx, CancelPlanCommand{
		PlanID: plan.ID,
		Reason: "beneficiary unreachable",
	})
	if err != nil {
		t.Fatalf("cancel: %v", err)
	}

	if cancelled.Status != domain.StatusCancelled {
		t.Errorf("status = %s, want cancelled", cancelled.Status)
	}
	if cancelled.CancelReason != "beneficiary unreachable" {
		t.Errorf("cancel reason = %q", cancelled.CancelReason)
	}

	if rice := store.Record(1); rice.QuantityAvailable != 100 || rice.QuantityReserved != 0 {
		t.Errorf("rice pools = %d/%d, want 100/0", rice.QuantityAvailable, rice.QuantityReserved)
	}
	if soap := store.Record(2); soap.QuantityAvailable != 40 || soap.QuantityReserved != 0 {
		t.Errorf("soap pools = %d/%d, want 40/0", soap.QuantityAvailable, soap.QuantityReserved)
	}
}

func TestCancelPlanAllowedFromDraft(t *testing.T) {
	store := newFixture()
	ctx := context.Background()

	result, err := NewCreatePlanHandler(store).Handle(ctx, CreatePlanCommand{
		RequestID: 1,
		Items:     []CreatePlanItem{{InventoryRecordID: 1, Quantity: 5}},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	cancelled, err := NewCancelPlanHandler(store).Handle(ctx, CancelPlanCommand{
		PlanID: result.Plan.ID,
		Reason: "rejected at review",
	})
	if err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if cancelled.Status != domain.StatusCancelled {
		t.Errorf("status = %s, want cancelled", cancelled.Status)
	}
}

func TestCancelPlanForbiddenAfterExecution(t *testing.T) {
	store := newFixture()
	plan := approvedPlan(t, store, []CreatePlanItem{{InventoryRecordID: 1, Quantity: 5}})
	ctx := context.Background()

	if _, err := NewExecutePlanHandler(store).Handle(ctx, ExecutePlanCommand{PlanID: plan.ID, ExecutedBy: "staff2"}); err != nil {
		t.Fatalf("execute: %v", err)
	}

	_, err := NewCancelPlanHandler(store).Handle(ctx, CancelPlanCommand{PlanID: plan.ID, Reason: "too late"})

	var invalid *domain.InvalidTransitionError
	if !errors.As(err, &invalid) {
		t.Fatalf("got %v, want InvalidTransitionError", err)
	}
	if invalid.From != domain.StatusCompleted {
		t.Errorf("from = %s, want completed", invalid.From)
	}
}
