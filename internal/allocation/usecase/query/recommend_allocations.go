package query

import (
	"context"
	"fmt"
	"time"

	"github.com/givebridge/distribution/internal/allocation"
	inventorydomain "github.com/givebridge/distribution/internal/inventory/domain"
	requestdomain "github.com/givebridge/distribution/internal/request/domain"
)

// RecommendAllocationsQuery represents the query to propose allocations.
// When RequestID is set only that request is considered; otherwise every
// approved request competes for the same inventory snapshot.
type RecommendAllocationsQuery struct {
	RequestID uint
	Limit     int
}

// RecommendAllocationsHandler handles recommend allocations query
type RecommendAllocationsHandler struct {
	requests  requestdomain.RequestRepository
	inventory inventorydomain.InventoryRepository
}

// NewRecommendAllocationsHandler creates a new recommend allocations handler
func NewRecommendAllocationsHandler(requests requestdomain.RequestRepository, inventory inventorydomain.InventoryRepository) *RecommendAllocationsHandler {
	return &RecommendAllocationsHandler{requests: requests, inventory: inventory}
}

// Handle executes the recommend allocations query. The result is advisory:
// nothing is reserved and the snapshot may drift before a plan is created.
func (h *RecommendAllocationsHandler) Handle(ctx context.Context, q RecommendAllocationsQuery) ([]allocation.Recommendation, error) {
	var (
		batch []requestdomain.BeneficiaryRequest
		err   error
	)
	if q.RequestID != 0 {
		req, err := h.requests.FindByID(ctx, q.RequestID)
		if err != nil {
			return nil, err
		}
		if req.Status != requestdomain.StatusApproved {
			return nil, fmt.Errorf("request %d is not approved (status %s)", req.ID, req.Status)
		}
		batch = []requestdomain.BeneficiaryRequest{*req}
	} else {
		limit := q.Limit
		if limit <= 0 || limit > 200 {
			limit = 100
		}
		batch, err = h.requests.FindApproved(ctx, limit, 0)
		if err != nil {
			return nil, err
		}
	}

	if len(batch) == 0 {
		return nil, nil
	}

	records, err := h.inventory.FindAllocatable(ctx)
	if err != nil {
		return nil, err
	}

	return allocation.Recommend(time.Now(), batch, records), nil
}
