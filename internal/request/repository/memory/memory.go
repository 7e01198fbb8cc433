// Package memory provides an in-memory RequestRepository used by unit tests.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/givebridge/distribution/internal/request/domain"
)

type RequestRepository struct {
	mu       sync.RWMutex
	nextID   uint
	requests map[uint]*domain.BeneficiaryRequest
}

func NewRequestRepository() *RequestRepository {
	return &RequestRepository{
		nextID:   1,
		requests: make(map[uint]*domain.BeneficiaryRequest),
	}
}

func (r *RequestRepository) Create(_ context.Context, req *domain.BeneficiaryRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if req.ID == 0 {
		req.ID = r.nextID
		r.nextID++
	} else if req.ID >= r.nextID {
		r.nextID = req.ID + 1
	}
	if req.Status == "" {
		req.Status = domain.StatusPending
	}
	clone := *req
	r.requests[req.ID] = &clone
	return nil
}

func (r *RequestRepository) FindByID(_ context.Context, id uint) (*domain.BeneficiaryRequest, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	req, ok := r.requests[id]
	if !ok {
		return nil, domain.ErrRequestNotFound
	}
	clone := *req
	return &clone, nil
}

func (r *RequestRepository) FindApproved(_ context.Context, limit, offset int) ([]domain.BeneficiaryRequest, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []domain.BeneficiaryRequest
	for _, req := range r.requests {
		if req.Status == domain.StatusApproved {
			out = append(out, *req)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].RequestDate.Equal(out[j].RequestDate) {
			return out[i].ID < out[j].ID
		}
		return out[i].RequestDate.Before(out[j].RequestDate)
	})
	if offset >= len(out) {
		return nil, nil
	}
	out = out[offset:]
	if limit > 0 && limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}

func (r *RequestRepository) UpdateStatus(_ context.Context, id uint, status domain.RequestStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	req, ok := r.requests[id]
	if !ok {
		return domain.ErrRequestNotFound
	}
	req.Status = status
	return nil
}
