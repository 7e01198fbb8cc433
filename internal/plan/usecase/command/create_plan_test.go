package command

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/givebridge/distribution/internal/allocation"
	inventorydomain "github.com/givebridge/distribution/internal/inventory/domain"
	"github.com/givebridge/distribution/internal/plan/domain"
	"github.com/givebridge/distribution/internal/plan/repository/memory"
	requestdomain "github.com/givebridge/distribution/internal/request/domain"
)

// newFixture returns a store seeded with an approved request (id 1) and two
// allocatable inventory records (ids 1 and 2).
func newFixture() *memory.PlanStore {
	store := memory.NewPlanStore()
	store.SeedRequest(&requestdomain.BeneficiaryRequest{
		ID:            1,
		BeneficiaryID: 7,
		Status:        requestdomain.StatusApproved,
	})
	store.SeedRecord(&inventorydomain.InventoryRecord{
		ID:                1,
		ItemName:          "rice",
		QuantityAvailable: 100,
		TotalValue:        decimal.NewFromInt(500),
		Status:            inventorydomain.StatusAvailable,
	})
	store.SeedRecord(&inventorydomain.InventoryRecord{
		ID:                2,
		ItemName:          "soap",
		QuantityAvailable: 40,
		TotalValue:        decimal.NewFromInt(80),
		Status:            inventorydomain.StatusAvailable,
	})
	return store
}

func TestCreatePlanReservesStockAndSnapshotsValues(t *testing.T) {
	store := newFixture()
	handler := NewCreatePlanHandler(store)

	result, err := handler.Handle(context.Background(), CreatePlanCommand{
		RequestID:   1,
		PlannedDate: time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC),
		CreatedBy:   "staff1",
		Items: []CreatePlanItem{
			{InventoryRecordID: 1, Quantity: 10},
			{InventoryRecordID: 2, Quantity: 4},
		},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if result.IsExisting {
		t.Error("fresh plan flagged as existing")
	}

	plan := result.Plan
	if plan.Status != domain.StatusDraft {
		t.Errorf("status = %s, want draft", plan.Status)
	}
	if plan.BeneficiaryID != 7 {
		t.Errorf("beneficiary id = %d, want 7", plan.BeneficiaryID)
	}
	if plan.Reference == "" {
		t.Error("plan reference not assigned")
	}
	if len(plan.Items) != 2 {
		t.Fatalf("got %d items, want 2", len(plan.Items))
	}

	// rice: unit 5, 10 units = 50; soap: unit 2, 4 units = 8
	if !plan.Items[0].UnitValue.Equal(decimal.NewFromInt(5)) || !plan.Items[0].AllocatedValue.Equal(decimal.NewFromInt(50)) {
		t.Errorf("rice line = %s/%s, want 5/50", plan.Items[0].UnitValue, plan.Items[0].AllocatedValue)
	}
	if !plan.TotalValue.Equal(decimal.NewFromInt(58)) {
		t.Errorf("total value = %s, want 58", plan.TotalValue)
	}

	rice := store.Record(1)
	if rice.QuantityAvailable != 90 || rice.QuantityReserved != 10 {
		t.Errorf("rice pools = %d/%d, want 90/10", rice.QuantityAvailable, rice.QuantityReserved)
	}

	entries := store.LedgerEntries()
	if len(entries) != 2 {
		t.Fatalf("got %d ledger entries, want 2", len(entries))
	}
	for _, entry := range entries {
		if entry.Op != inventorydomain.OpReserve {
			t.Errorf("entry op = %s, want reserve", entry.Op)
		}
		if entry.Reference != plan.Reference {
			t.Errorf("entry reference = %s, want %s", entry.Reference, plan.Reference)
		}
	}
}

func TestCreatePlanIsIdempotentPerRequest(t *testing.T) {
	store := newFixture()
	handler := NewCreatePlanHandler(store)
	cmd := CreatePlanCommand{
		RequestID: 1,
		CreatedBy: "staff1",
		Items:     []CreatePlanItem{{InventoryRecordID: 1, Quantity: 10}},
	}

	first, err := handler.Handle(context.Background(), cmd)
	if err != nil {
		t.Fatalf("first create: %v", err)
	}
	second, err := handler.Handle(context.Background(), cmd)
	if err != nil {
		t.Fatalf("second create: %v", err)
	}

	if !second.IsExisting {
		t.Error("repeat create not flagged as existing")
	}
	if second.Plan.ID != first.Plan.ID {
		t.Errorf("repeat create returned plan %d, want %d", second.Plan.ID, first.Plan.ID)
	}

	// No double reservation
	rice := store.Record(1)
	if rice.QuantityReserved != 10 {
		t.Errorf("reserved = %d, want 10", rice.QuantityReserved)
	}
}

func TestCreatePlanRevivesCancelledPlan(t *testing.T) {
	store := newFixture()
	create := NewCreatePlanHandler(store)
	cancel := NewCancelPlanHandler(store)
	ctx := context.Background()

	first, err := create.Handle(ctx, CreatePlanCommand{
		RequestID: 1,
		CreatedBy: "staff1",
		Items:     []CreatePlanItem{{InventoryRecordID: 1, Quantity: 10}},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := cancel.Handle(ctx, CancelPlanCommand{PlanID: first.Plan.ID, Reason: "beneficiary moved"}); err != nil {
		t.Fatalf("cancel: %v", err)
	}

	revived, err := create.Handle(ctx, CreatePlanCommand{
		RequestID: 1,
		CreatedBy: "staff2",
		Items:     []CreatePlanItem{{InventoryRecordID: 2, Quantity: 5}},
	})
	if err != nil {
		t.Fatalf("revive: %v", err)
	}

	if revived.IsExisting {
		t.Error("revived plan flagged as existing")
	}
	if revived.Plan.ID != first.Plan.ID {
		t.Errorf("revival created plan %d, want reuse of %d", revived.Plan.ID, first.Plan.ID)
	}
	if revived.Plan.Status != domain.StatusDraft {
		t.Errorf("status = %s, want draft", revived.Plan.Status)
	}
	if revived.Plan.CancelReason != "" {
		t.Error("cancel reason survived revival")
	}
	if len(revived.Plan.Items) != 1 || revived.Plan.Items[0].InventoryRecordID != 2 {
		t.Errorf("revived items = %+v, want a single soap line", revived.Plan.Items)
	}

	// Old rice reservation was released at cancel; only soap is held now
	if rice := store.Record(1); rice.QuantityReserved != 0 {
		t.Errorf("rice reserved = %d, want 0", rice.QuantityReserved)
	}
	if soap := store.Record(2); soap.QuantityReserved != 5 {
		t.Errorf("soap reserved = %d, want 5", soap.QuantityReserved)
	}
}

func TestCreatePlanRejectsUnapprovedRequest(t *testing.T) {
	store := newFixture()
	store.SeedRequest(&requestdomain.BeneficiaryRequest{
		ID:     2,
		Status: requestdomain.StatusPending,
	})
	handler := NewCreatePlanHandler(store)

	_, err := handler.Handle(context.Background(), CreatePlanCommand{
		RequestID: 2,
		Items:     []CreatePlanItem{{InventoryRecordID: 1, Quantity: 1}},
	})

	var notApproved *domain.RequestNotApprovedError
	if !errors.As(err, &notApproved) {
		t.Fatalf("got %v, want RequestNotApprovedError", err)
	}
	if notApproved.Status != requestdomain.StatusPending {
		t.Errorf("status = %s, want pending", notApproved.Status)
	}
}

func TestCreatePlanUnknownRecord(t *testing.T) {
	store := newFixture()
	handler := NewCreatePlanHandler(store)

	_, err := handler.Handle(context.Background(), CreatePlanCommand{
		RequestID: 1,
		Items:     []CreatePlanItem{{InventoryRecordID: 99, Quantity: 1}},
	})

	var unknown *allocation.UnknownInventoryItemError
	if !errors.As(err, &unknown) {
		t.Fatalf("got %v, want UnknownInventoryItemError", err)
	}
}

func TestCreatePlanInsufficientStockRollsBackAtomically(t *testing.T) {
	store := newFixture()
	handler := NewCreatePlanHandler(store)

	// Rice line is satisfiable, soap is not; nothing may be reserved
	_, err := handler.Handle(context.Background(), CreatePlanCommand{
		RequestID: 1,
		Items: []CreatePlanItem{
			{InventoryRecordID: 1, Quantity: 10},
			{InventoryRecordID: 2, Quantity: 500},
		},
	})

	var insufficient *allocation.InsufficientQuantityError
	if !errors.As(err, &insufficient) {
		t.Fatalf("got %v, want InsufficientQuantityError", err)
	}

	if rice := store.Record(1); rice.QuantityReserved != 0 || rice.QuantityAvailable != 100 {
		t.Errorf("rice pools = %d/%d after failed create, want 100/0",
			rice.QuantityAvailable, rice.QuantityReserved)
	}
	if entries := store.LedgerEntries(); len(entries) != 0 {
		t.Errorf("failed create left %d ledger entries", len(entries))
	}
	if _, err := store.FindByRequestID(context.Background(), 1); !errors.Is(err, domain.ErrPlanNotFound) {
		t.Errorf("failed create left a plan row: %v", err)
	}
}

func TestCreatePlanMergesDuplicateLinesForValidation(t *testing.T) {
	store := newFixture()
	handler := NewCreatePlanHandler(store)

	// Two lines of 60 against 100 available must fail combined, even though
	// each passes alone
	_, err := handler.Handle(context.Background(), CreatePlanCommand{
		RequestID: 1,
		Items: []CreatePlanItem{
			{InventoryRecordID: 1, Quantity: 60},
			{InventoryRecordID: 1, Quantity: 60},
		},
	})

	var insufficient *allocation.InsufficientQuantityError
	if !errors.As(err, &insufficient) {
		t.Fatalf("got %v, want InsufficientQuantityError", err)
	}
	if insufficient.Requested != 120 {
		t.Errorf("requested = %d, want aggregated 120", insufficient.Requested)
	}
}

func TestCreatePlanHighAllocationWarning(t *testing.T) {
	store := newFixture()
	handler := NewCreatePlanHandler(store)

	result, err := handler.Handle(context.Background(), CreatePlanCommand{
		RequestID: 1,
		Items:     []CreatePlanItem{{InventoryRecordID: 1, Quantity: 90}},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if len(result.Warnings) != 1 || result.Warnings[0].Code != allocation.WarningHighAllocation {
		t.Errorf("warnings = %+v, want one high_allocation warning", result.Warnings)
	}
	if result.Plan.Status != domain.StatusDraft {
		t.Errorf("warning blocked plan creation: status %s", result.Plan.Status)
	}
}

func TestCreatePlanValidatesInput(t *testing.T) {
	handler := NewCreatePlanHandler(newFixture())
	ctx := context.Background()

	cases := []struct {
		name string
		cmd  CreatePlanCommand
	}{
		{"missing request", CreatePlanCommand{Items: []CreatePlanItem{{InventoryRecordID: 1, Quantity: 1}}}},
		{"no items", CreatePlanCommand{RequestID: 1}},
		{"zero quantity", CreatePlanCommand{RequestID: 1, Items: []CreatePlanItem{{InventoryRecordID: 1}}}},
		{"missing record id", CreatePlanCommand{RequestID: 1, Items: []CreatePlanItem{{Quantity: 1}}}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := handler.Handle(ctx, tc.cmd); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}
