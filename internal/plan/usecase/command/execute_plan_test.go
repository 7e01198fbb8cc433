package command

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/givebridge/distribution/internal/plan/domain"
	"github.com/givebridge/distribution/internal/plan/repository/memory"
	requestdomain "github.com/givebridge/distribution/internal/request/domain"
)

// approvedPlan drives a fixture store through create and approve, returning
// the plan ready for execution.
func approvedPlan(t *testing.T, store *memory.PlanStore, items []CreatePlanItem) *domain.DistributionPlan {
	t.Helper()
	ctx := context.Background()

	result, err := NewCreatePlanHandler(store).Handle(ctx, CreatePlanCommand{
		RequestID: 1,
		CreatedBy: "staff1",
		Items:     items,
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
	return plan
}

func TestExecutePlanConsumesStockAndLogsDistribution(t *testing.T) {
	store := newFixture()
	plan := approvedPlan(t, store, []CreatePlanItem{
		{InventoryRecordID: 1, Quantity: 10},
		{InventoryRecordID: 2, Quantity: 4},
	})
	ctx := context.Background()

	executed, err := NewExecutePlanHandler(store).Handle(ctx, ExecutePlanCommand{
		PlanID:     plan.ID,
		ExecutedBy: "staff2",
	})
	if err != nil {
		t.Fatalf("execute: %v", err)
	}

	if executed.Status != domain.StatusCompleted {
		t.Errorf("status = %s, want completed", executed.Status)
	}
	if executed.ExecutedBy != "staff2" || executed.ExecutedAt == nil {
		t.Error("execution attribution missing")
	}

	// rice: 100 on hand, 10 consumed at unit value 5
	rice := store.Record(1)
	if rice.QuantityReserved != 0 || rice.QuantityAvailable != 90 {
		t.Errorf("rice pools = %d/%d, want 90/0", rice.QuantityAvailable, rice.QuantityReserved)
	}
	if !rice.TotalValue.Equal(decimal.NewFromInt(450)) {
		t.Errorf("rice total value = %s, want 450", rice.TotalValue)
	}

	logs, err := store.Logs(ctx, domain.LogFilter{PlanID: plan.ID})
	if err != nil {
		t.Fatalf("logs: %v", err)
	}
	if len(logs) != 2 {
		t.Fatalf("got %d distribution logs, want 2", len(logs))
	}
	if logs[0].QuantityDistributed != 10 || !logs[0].Value.Equal(decimal.NewFromInt(50)) {
		t.Errorf("rice log = %d/%s, want 10/50", logs[0].QuantityDistributed, logs[0].Value)
	}
	if logs[0].BeneficiaryID != 7 || logs[0].DistributedBy != "staff2" {
		t.Errorf("log attribution = %d/%s", logs[0].BeneficiaryID, logs[0].DistributedBy)
	}

	if req := store.Request(1); req.Status != requestdomain.StatusFulfilled {
		t.Errorf("request status = %s, want fulfilled", req.Status)
	}
}

func TestExecutePlanShortageRollsBackEverything(t *testing.T) {
	store := newFixture()
	plan := approvedPlan(t, store, []CreatePlanItem{
		{InventoryRecordID: 1, Quantity: 10},
		{InventoryRecordID: 2, Quantity: 4},
	})
	ctx := context.Background()

	// Break the second item's reservation behind the plan's back
	soap := store.Record(2)
	soap.QuantityReserved = 0
	store.SeedRecord(soap)

	_, err := NewExecutePlanHandler(store).Handle(ctx, ExecutePlanCommand{
		PlanID:     plan.ID,
		ExecutedBy: "staff2",
	})

	var shortage *domain.InsufficientInventoryError
	if !errors.As(err, &shortage) {
		t.Fatalf("got %v, want InsufficientInventoryError", err)
	}
	if shortage.ItemName != "soap" {
		t.Errorf("shortage item = %s, want soap", shortage.ItemName)
	}

	// First item's consumption must have rolled back with the rest
	rice := store.Record(1)
	if rice.QuantityReserved != 10 {
		t.Errorf("rice reserved = %d after rollback, want 10", rice.QuantityReserved)
	}
	if !rice.TotalValue.Equal(decimal.NewFromInt(500)) {
		t.Errorf("rice total value = %s after rollback, want 500", rice.TotalValue)
	}

	current, err := store.FindByID(ctx, plan.ID)
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if current.Status != domain.StatusApproved {
		t.Errorf("plan status = %s after rollback, want approved", current.Status)
	}

	logs, err := store.Logs(ctx, domain.LogFilter{PlanID: plan.ID})
	if err != nil {
		t.Fatalf("logs: %v", err)
	}
	if len(logs) != 0 {
		t.Errorf("rolled-back execution left %d distribution logs", len(logs))
	}
	if req := store.Request(1); req.Status != requestdomain.StatusApproved {
		t.Errorf("request status = %s after rollback, want approved", req.Status)
	}
}

func TestExecutePlanRequiresApprovedStatus(t *testing.T) {
	store := newFixture()
	ctx := context.Background()

	result, err := NewCreatePlanHandler(store).Handle(ctx, CreatePlanCommand{
		RequestID: 1,
		Items:     []CreatePlanItem{{InventoryRecordID: 1, Quantity: 5}},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	_, err = NewExecutePlanHandler(store).Handle(ctx, ExecutePlanCommand{PlanID: result.Plan.ID, ExecutedBy: "staff2"})

	var invalid *domain.InvalidTransitionError
	if !errors.As(err, &invalid) {
		t.Fatalf("got %v, want InvalidTransitionError", err)
	}
	if invalid.From != domain.StatusDraft || invalid.To != domain.StatusOngoing {
		t.Errorf("transition = %s -> %s, want draft -> ongoing", invalid.From, invalid.To)
	}
}

func TestExecutePlanNotFound(t *testing.T) {
	store := newFixture()
	_, err := NewExecutePlanHandler(store).Handle(context.Background(), ExecutePlanCommand{PlanID: 42, ExecutedBy: "x"})
	if !errors.Is(err, domain.ErrPlanNotFound) {
		t.Errorf("got %v, want ErrPlanNotFound", err)
	}
}
