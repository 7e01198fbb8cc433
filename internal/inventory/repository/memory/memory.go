// Package memory provides an in-memory InventoryRepository used by unit
// tests and local tooling.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/givebridge/distribution/internal/inventory/domain"
)

type InventoryRepository struct {
	mu      sync.RWMutex
	nextID  uint
	records map[uint]*domain.InventoryRecord
	entries []domain.LedgerEntry
}

func NewInventoryRepository() *InventoryRepository {
	return &InventoryRepository{
		nextID:  1,
		records: make(map[uint]*domain.InventoryRecord),
	}
}

// Seed installs a record directly, assigning an id if missing. Test helper.
func (r *InventoryRepository) Seed(record *domain.InventoryRecord) *domain.InventoryRecord {
	r.mu.Lock()
	defer r.mu.Unlock()
	if record.ID == 0 {
		record.ID = r.nextID
		r.nextID++
	} else if record.ID >= r.nextID {
		r.nextID = record.ID + 1
	}
	clone := *record
	r.records[record.ID] = &clone
	return record
}

func (r *InventoryRepository) FindByID(_ context.Context, id uint) (*domain.InventoryRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	record, ok := r.records[id]
	if !ok {
		return nil, domain.ErrRecordNotFound
	}
	clone := *record
	return &clone, nil
}

func (r *InventoryRepository) FindByItem(_ context.Context, itemName, location string) (*domain.InventoryRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, record := range r.records {
		if record.ItemName == itemName && record.Location == location {
			clone := *record
			return &clone, nil
		}
	}
	return nil, domain.ErrRecordNotFound
}

func (r *InventoryRepository) FindAll(_ context.Context, limit, offset int) ([]domain.InventoryRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	all := r.sorted()
	if offset >= len(all) {
		return nil, nil
	}
	all = all[offset:]
	if limit > 0 && limit < len(all) {
		all = all[:limit]
	}
	return all, nil
}

func (r *InventoryRepository) FindAllocatable(_ context.Context) ([]domain.InventoryRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []domain.InventoryRecord
	for _, record := range r.sorted() {
		if record.Allocatable() {
			out = append(out, record)
		}
	}
	return out, nil
}

func (r *InventoryRepository) FindLowStock(_ context.Context, threshold int) ([]domain.InventoryRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []domain.InventoryRecord
	for _, record := range r.sorted() {
		if record.QuantityAvailable <= threshold && record.Status != domain.StatusBazaar {
			out = append(out, record)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].QuantityAvailable < out[j].QuantityAvailable })
	return out, nil
}

func (r *InventoryRepository) Stats(_ context.Context) (*domain.InventoryStats, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stats := &domain.InventoryStats{TotalValue: decimal.Zero}
	byCategory := map[string]*domain.CategoryStats{}

	for _, record := range r.records {
		stats.TotalRecords++
		stats.TotalAvailable += int64(record.QuantityAvailable)
		stats.TotalReserved += int64(record.QuantityReserved)
		stats.TotalInbound += int64(record.QuantityInbound)
		stats.TotalValue = stats.TotalValue.Add(record.TotalValue)
		if record.QuantityAvailable > 0 && record.QuantityAvailable <= domain.LowStockThreshold {
			stats.LowStockCount++
		}

		cs, ok := byCategory[record.Category]
		if !ok {
			cs = &domain.CategoryStats{Category: record.Category, Value: decimal.Zero}
			byCategory[record.Category] = cs
		}
		cs.Quantity += int64(record.QuantityOnHand())
		cs.Value = cs.Value.Add(record.TotalValue)
	}

	categories := make([]string, 0, len(byCategory))
	for c := range byCategory {
		categories = append(categories, c)
	}
	sort.Strings(categories)
	for _, c := range categories {
		stats.ByCategory = append(stats.ByCategory, *byCategory[c])
	}

	return stats, nil
}

func (r *InventoryRepository) Credit(_ context.Context, itemName, category, location string, qty int, value decimal.Decimal, received bool, reference string) (*domain.InventoryRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var record *domain.InventoryRecord
	for _, candidate := range r.records {
		if candidate.ItemName == itemName && candidate.Location == location {
			record = candidate
			break
		}
	}
	if record == nil {
		record = &domain.InventoryRecord{
			ID:       r.nextID,
			ItemName: itemName,
			Category: category,
			Location: location,
			Status:   domain.StatusNoStock,
		}
		r.nextID++
		r.records[record.ID] = record
	}

	entry, err := record.Credit(qty, value, received)
	if err != nil {
		return nil, err
	}
	entry.Reference = reference
	r.appendEntry(entry)

	clone := *record
	return &clone, nil
}

func (r *InventoryRepository) Receive(_ context.Context, id uint, qty int, reference string) (*domain.InventoryRecord, error) {
	return r.mutate(id, reference, func(rec *domain.InventoryRecord) (*domain.LedgerEntry, error) {
		return rec.Receive(qty)
	})
}

func (r *InventoryRepository) Reserve(_ context.Context, id uint, qty int, reference string) (*domain.InventoryRecord, error) {
	return r.mutate(id, reference, func(rec *domain.InventoryRecord) (*domain.LedgerEntry, error) {
		return rec.Reserve(qty)
	})
}

func (r *InventoryRepository) Release(_ context.Context, id uint, qty int, reference string) (*domain.InventoryRecord, error) {
	return r.mutate(id, reference, func(rec *domain.InventoryRecord) (*domain.LedgerEntry, error) {
		return rec.Release(qty)
	})
}

func (r *InventoryRepository) Consume(_ context.Context, id uint, qty int, reference string) (*domain.InventoryRecord, error) {
	return r.mutate(id, reference, func(rec *domain.InventoryRecord) (*domain.LedgerEntry, error) {
		return rec.Consume(qty)
	})
}

func (r *InventoryRepository) UpdateStatus(_ context.Context, id uint, status domain.ItemStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	record, ok := r.records[id]
	if !ok {
		return domain.ErrRecordNotFound
	}
	record.Status = status
	return nil
}

func (r *InventoryRepository) Entries(_ context.Context, recordID uint, limit, offset int) ([]domain.LedgerEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []domain.LedgerEntry
	for _, entry := range r.entries {
		if entry.RecordID == recordID {
			out = append(out, entry)
		}
	}
	if offset >= len(out) {
		return nil, nil
	}
	out = out[offset:]
	if limit > 0 && limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}

func (r *InventoryRepository) mutate(id uint, reference string, fn func(*domain.InventoryRecord) (*domain.LedgerEntry, error)) (*domain.InventoryRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	record, ok := r.records[id]
	if !ok {
		return nil, domain.ErrRecordNotFound
	}

	// Mutate a copy first so a failed check leaves the record untouched
	work := *record
	entry, err := fn(&work)
	if err != nil {
		return nil, err
	}
	entry.Reference = reference
	*record = work
	r.appendEntry(entry)

	clone := *record
	return &clone, nil
}

func (r *InventoryRepository) appendEntry(entry *domain.LedgerEntry) {
	entry.ID = uint(len(r.entries) + 1)
	r.entries = append(r.entries, *entry)
}

func (r *InventoryRepository) sorted() []domain.InventoryRecord {
	ids := make([]uint, 0, len(r.records))
	for id := range r.records {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return r.records[ids[i]].ItemName < r.records[ids[j]].ItemName })
	out := make([]domain.InventoryRecord, 0, len(ids))
	for _, id := range ids {
		out = append(out, *r.records[id])
	}
	return out
}
