package query

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	inventorydomain "github.com/givebridge/distribution/internal/inventory/domain"
	inventorymemory "github.com/givebridge/distribution/internal/inventory/repository/memory"
	requestdomain "github.com/givebridge/distribution/internal/request/domain"
	requestmemory "github.com/givebridge/distribution/internal/request/repository/memory"
)

func newHandler(t *testing.T) (*RecommendAllocationsHandler, *requestmemory.RequestRepository) {
	t.Helper()
	requests := requestmemory.NewRequestRepository()
	inventory := inventorymemory.NewInventoryRepository()
	inventory.Seed(&inventorydomain.InventoryRecord{
		ItemName:          "rice",
		Category:          "food",
		QuantityAvailable: 100,
		TotalValue:        decimal.NewFromInt(500),
		Status:            inventorydomain.StatusAvailable,
	})
	inventory.Seed(&inventorydomain.InventoryRecord{
		ItemName:          "canned goods",
		Category:          "food",
		QuantityAvailable: 100,
		TotalValue:        decimal.NewFromInt(200),
		Status:            inventorydomain.StatusAvailable,
	})
	inventory.Seed(&inventorydomain.InventoryRecord{
		ItemName:          "cooking oil",
		Category:          "food",
		QuantityAvailable: 100,
		TotalValue:        decimal.NewFromInt(300),
		Status:            inventorydomain.StatusAvailable,
	})
	return NewRecommendAllocationsHandler(requests, inventory), requests
}

func seedRequest(t *testing.T, repo *requestmemory.RequestRepository, req *requestdomain.BeneficiaryRequest) *requestdomain.BeneficiaryRequest {
	t.Helper()
	if err := repo.Create(context.Background(), req); err != nil {
		t.Fatalf("seed request: %v", err)
	}
	return req
}

func TestRecommendAllocationsForOneRequest(t *testing.T) {
	handler, requests := newHandler(t)
	req := seedRequest(t, requests, &requestdomain.BeneficiaryRequest{
		BeneficiaryID:   7,
		PurposeCategory: requestdomain.PurposeFood,
		BeneficiaryType: requestdomain.TypeIndividual,
		Urgency:         requestdomain.UrgencyMedium,
		Status:          requestdomain.StatusApproved,
		RequestDate:     time.Now().AddDate(0, 0, -3),
	})

	recs, err := handler.Handle(context.Background(), RecommendAllocationsQuery{RequestID: req.ID})
	if err != nil {
		t.Fatalf("handle: %v", err)
	}
	if len(recs) != 1 {
		t.Fatalf("got %d recommendations, want 1", len(recs))
	}
	if recs[0].RequestID != req.ID || recs[0].BeneficiaryID != 7 {
		t.Errorf("recommendation for request %d / beneficiary %d", recs[0].RequestID, recs[0].BeneficiaryID)
	}
	if len(recs[0].Items) != 3 {
		t.Errorf("got %d items, want the full food basket of 3", len(recs[0].Items))
	}
	if !recs[0].EstimatedValue.IsPositive() {
		t.Errorf("estimated value = %s, want positive", recs[0].EstimatedValue)
	}
}

func TestRecommendAllocationsRejectsUnapprovedRequest(t *testing.T) {
	handler, requests := newHandler(t)
	req := seedRequest(t, requests, &requestdomain.BeneficiaryRequest{
		BeneficiaryID:   7,
		PurposeCategory: requestdomain.PurposeFood,
		Status:          requestdomain.StatusPending,
	})

	if _, err := handler.Handle(context.Background(), RecommendAllocationsQuery{RequestID: req.ID}); err == nil {
		t.Error("expected error for a pending request")
	}
}

func TestRecommendAllocationsUnknownRequest(t *testing.T) {
	handler, _ := newHandler(t)

	_, err := handler.Handle(context.Background(), RecommendAllocationsQuery{RequestID: 42})
	if !errors.Is(err, requestdomain.ErrRequestNotFound) {
		t.Errorf("got %v, want ErrRequestNotFound", err)
	}
}

func TestRecommendAllocationsBatchesApprovedRequests(t *testing.T) {
	handler, requests := newHandler(t)
	first := seedRequest(t, requests, &requestdomain.BeneficiaryRequest{
		BeneficiaryID:   7,
		PurposeCategory: requestdomain.PurposeFood,
		Status:          requestdomain.StatusApproved,
		RequestDate:     time.Now().AddDate(0, 0, -10),
	})
	second := seedRequest(t, requests, &requestdomain.BeneficiaryRequest{
		BeneficiaryID:   8,
		PurposeCategory: requestdomain.PurposeFood,
		Status:          requestdomain.StatusApproved,
		RequestDate:     time.Now().AddDate(0, 0, -1),
	})
	seedRequest(t, requests, &requestdomain.BeneficiaryRequest{
		BeneficiaryID: 9,
		Status:        requestdomain.StatusPending,
	})

	recs, err := handler.Handle(context.Background(), RecommendAllocationsQuery{})
	if err != nil {
		t.Fatalf("handle: %v", err)
	}
	if len(recs) != 2 {
		t.Fatalf("got %d recommendations, want the 2 approved requests", len(recs))
	}
	// FindApproved orders by request date, oldest first
	if recs[0].RequestID != first.ID || recs[1].RequestID != second.ID {
		t.Errorf("batch order = %d, %d; want %d, %d",
			recs[0].RequestID, recs[1].RequestID, first.ID, second.ID)
	}
}

func TestRecommendAllocationsEmptyBatch(t *testing.T) {
	handler, _ := newHandler(t)

	recs, err := handler.Handle(context.Background(), RecommendAllocationsQuery{})
	if err != nil {
		t.Fatalf("handle: %v", err)
	}
	if recs != nil {
		t.Errorf("got %d recommendations for an empty batch", len(recs))
	}
}
