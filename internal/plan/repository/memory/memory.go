// Package memory provides an in-memory plan Store used by unit tests. InTx
// snapshots all state before running fn and restores the snapshot when fn
// fails, giving the same all-or-nothing semantics as a database transaction.
package memory

import (
	"context"
	"sort"
	"sync"

	inventorydomain "github.com/givebridge/distribution/internal/inventory/domain"
	"github.com/givebridge/distribution/internal/plan/domain"
	requestdomain "github.com/givebridge/distribution/internal/request/domain"
)

type state struct {
	nextPlanID   uint
	nextItemID   uint
	nextLogID    uint
	nextEntryID  uint
	plans        map[uint]*domain.DistributionPlan
	items        map[uint][]domain.PlanItem
	logs         []domain.DistributionLog
	records      map[uint]*inventorydomain.InventoryRecord
	entries      []inventorydomain.LedgerEntry
	requests     map[uint]*requestdomain.BeneficiaryRequest
}

func newState() *state {
	return &state{
		nextPlanID:  1,
		nextItemID:  1,
		nextLogID:   1,
		nextEntryID: 1,
		plans:       make(map[uint]*domain.DistributionPlan),
		items:       make(map[uint][]domain.PlanItem),
		records:     make(map[uint]*inventorydomain.InventoryRecord),
		requests:    make(map[uint]*requestdomain.BeneficiaryRequest),
	}
}

func (s *state) clone() *state {
	c := newState()
	c.nextPlanID = s.nextPlanID
	c.nextItemID = s.nextItemID
	c.nextLogID = s.nextLogID
	c.nextEntryID = s.nextEntryID
	for id, p := range s.plans {
		clone := *p
		c.plans[id] = &clone
	}
	for id, items := range s.items {
		c.items[id] = append([]domain.PlanItem(nil), items...)
	}
	c.logs = append([]domain.DistributionLog(nil), s.logs...)
	for id, r := range s.records {
		clone := *r
		c.records[id] = &clone
	}
	c.entries = append([]inventorydomain.LedgerEntry(nil), s.entries...)
	for id, r := range s.requests {
		clone := *r
		c.requests[id] = &clone
	}
	return c
}

type PlanStore struct {
	mu sync.Mutex
	st *state
}

func NewPlanStore() *PlanStore {
	return &PlanStore{st: newState()}
}

// SeedRecord installs an inventory record. Test helper.
func (s *PlanStore) SeedRecord(record *inventorydomain.InventoryRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	clone := *record
	s.st.records[record.ID] = &clone
}

// SeedRequest installs a beneficiary request. Test helper.
func (s *PlanStore) SeedRequest(req *requestdomain.BeneficiaryRequest) {
	s.mu.Lock()
	defer s.mu.Unlock()
	clone := *req
	s.st.requests[req.ID] = &clone
}

// Record returns the current state of an inventory record. Test helper.
func (s *PlanStore) Record(id uint) *inventorydomain.InventoryRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	record, ok := s.st.records[id]
	if !ok {
		return nil
	}
	clone := *record
	return &clone
}

// Request returns the current state of a beneficiary request. Test helper.
func (s *PlanStore) Request(id uint) *requestdomain.BeneficiaryRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	req, ok := s.st.requests[id]
	if !ok {
		return nil
	}
	clone := *req
	return &clone
}

// LedgerEntries returns every ledger entry written so far. Test helper.
func (s *PlanStore) LedgerEntries() []inventorydomain.LedgerEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]inventorydomain.LedgerEntry(nil), s.st.entries...)
}

func (s *PlanStore) InTx(_ context.Context, fn func(tx domain.Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.st.clone()
	if err := fn(&memTx{st: s.st}); err != nil {
		s.st = snapshot
		return err
	}
	return nil
}

func (s *PlanStore) FindByID(_ context.Context, id uint) (*domain.DistributionPlan, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.planWithItems(id)
}

func (s *PlanStore) FindByRequestID(_ context.Context, requestID uint) (*domain.DistributionPlan, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, plan := range s.st.plans {
		if plan.RequestID == requestID {
			return s.st.planWithItems(id)
		}
	}
	return nil, domain.ErrPlanNotFound
}

func (s *PlanStore) List(_ context.Context, filter domain.ListFilter) ([]domain.DistributionPlan, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []domain.DistributionPlan
	for id, plan := range s.st.plans {
		if filter.Status != "" && plan.Status != filter.Status {
			continue
		}
		if filter.CreatedBy != "" && plan.CreatedBy != filter.CreatedBy {
			continue
		}
		if filter.From != nil && plan.PlannedDate.Before(*filter.From) {
			continue
		}
		if filter.To != nil && plan.PlannedDate.After(*filter.To) {
			continue
		}
		withItems, _ := s.st.planWithItems(id)
		out = append(out, *withItems)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	if filter.Offset >= len(out) {
		return nil, nil
	}
	out = out[filter.Offset:]
	if filter.Limit > 0 && filter.Limit < len(out) {
		out = out[:filter.Limit]
	}
	return out, nil
}

func (s *PlanStore) Logs(_ context.Context, filter domain.LogFilter) ([]domain.DistributionLog, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []domain.DistributionLog
	for _, log := range s.st.logs {
		if filter.PlanID != 0 && log.PlanID != filter.PlanID {
			continue
		}
		if filter.BeneficiaryID != 0 && log.BeneficiaryID != filter.BeneficiaryID {
			continue
		}
		out = append(out, log)
	}
	if filter.Offset >= len(out) {
		return nil, nil
	}
	out = out[filter.Offset:]
	if filter.Limit > 0 && filter.Limit < len(out) {
		out = out[:filter.Limit]
	}
	return out, nil
}

func (st *state) planWithItems(id uint) (*domain.DistributionPlan, error) {
	plan, ok := st.plans[id]
	if !ok {
		return nil, domain.ErrPlanNotFound
	}
	clone := *plan
	clone.Items = append([]domain.PlanItem(nil), st.items[id]...)
	return &clone, nil
}

type memTx struct {
	st *state
}

func (t *memTx) PlanForUpdate(id uint) (*domain.DistributionPlan, error) {
	return t.st.planWithItems(id)
}

func (t *memTx) PlanByRequestForUpdate(requestID uint) (*domain.DistributionPlan, error) {
	for id, plan := range t.st.plans {
		if plan.RequestID == requestID {
			return t.st.planWithItems(id)
		}
	}
	return nil, domain.ErrPlanNotFound
}

func (t *memTx) SavePlan(plan *domain.DistributionPlan) error {
	if plan.ID == 0 {
		plan.ID = t.st.nextPlanID
		t.st.nextPlanID++
	} else if plan.ID >= t.st.nextPlanID {
		t.st.nextPlanID = plan.ID + 1
	}
	clone := *plan
	clone.Items = nil
	t.st.plans[plan.ID] = &clone
	return nil
}

func (t *memTx) ReplaceItems(planID uint, items []domain.PlanItem) error {
	replaced := make([]domain.PlanItem, 0, len(items))
	for _, item := range items {
		item.ID = t.st.nextItemID
		t.st.nextItemID++
		item.PlanID = planID
		replaced = append(replaced, item)
	}
	t.st.items[planID] = replaced
	return nil
}

func (t *memTx) RecordForUpdate(recordID uint) (*inventorydomain.InventoryRecord, error) {
	record, ok := t.st.records[recordID]
	if !ok {
		return nil, inventorydomain.ErrRecordNotFound
	}
	clone := *record
	return &clone, nil
}

func (t *memTx) SaveRecord(record *inventorydomain.InventoryRecord, entry *inventorydomain.LedgerEntry) error {
	clone := *record
	t.st.records[record.ID] = &clone
	entry.ID = t.st.nextEntryID
	t.st.nextEntryID++
	t.st.entries = append(t.st.entries, *entry)
	return nil
}

func (t *memTx) AppendLog(log *domain.DistributionLog) error {
	log.ID = t.st.nextLogID
	t.st.nextLogID++
	t.st.logs = append(t.st.logs, *log)
	return nil
}

func (t *memTx) RequestForUpdate(id uint) (*requestdomain.BeneficiaryRequest, error) {
	req, ok := t.st.requests[id]
	if !ok {
		return nil, requestdomain.ErrRequestNotFound
	}
	clone := *req
	return &clone, nil
}

func (t *memTx) SaveRequest(req *requestdomain.BeneficiaryRequest) error {
	clone := *req
	t.st.requests[req.ID] = &clone
	return nil
}
