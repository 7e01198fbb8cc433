package repository

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/givebridge/distribution/internal/inventory/domain"
)

type GormInventoryRepository struct {
	db *gorm.DB
}

func NewGormInventoryRepository(db *gorm.DB) *GormInventoryRepository {
	return &GormInventoryRepository{db: db}
}

func (r *GormInventoryRepository) AutoMigrate() error {
	return r.db.AutoMigrate(&domain.InventoryRecord{}, &domain.LedgerEntry{})
}

func (r *GormInventoryRepository) FindByID(ctx context.Context, id uint) (*domain.InventoryRecord, error) {
	var record domain.InventoryRecord
	err := r.db.WithContext(ctx).First(&record, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrRecordNotFound
	}
	if err != nil {
		return nil, err
	}
	return &record, nil
}

func (r *GormInventoryRepository) FindByItem(ctx context.Context, itemName, location string) (*domain.InventoryRecord, error) {
	var record domain.InventoryRecord
	err := r.db.WithContext(ctx).
		Where("item_name = ? AND location = ?", itemName, location).
		First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrRecordNotFound
	}
	if err != nil {
		return nil, err
	}
	return &record, nil
}

func (r *GormInventoryRepository) FindAll(ctx context.Context, limit, offset int) ([]domain.InventoryRecord, error) {
	var records []domain.InventoryRecord
	err := r.db.WithContext(ctx).
		Limit(limit).Offset(offset).
		Order("item_name").
		Find(&records).Error
	return records, err
}

func (r *GormInventoryRepository) FindAllocatable(ctx context.Context) ([]domain.InventoryRecord, error) {
	var records []domain.InventoryRecord
	err := r.db.WithContext(ctx).
		Where("status IN ? AND quantity_available > 0", []domain.ItemStatus{domain.StatusAvailable, domain.StatusLowStock}).
		Order("item_name").
		Find(&records).Error
	return records, err
}

func (r *GormInventoryRepository) FindLowStock(ctx context.Context, threshold int) ([]domain.InventoryRecord, error) {
	var records []domain.InventoryRecord
	err := r.db.WithContext(ctx).
		Where("quantity_available <= ? AND status <> ?", threshold, domain.StatusBazaar).
		Order("quantity_available ASC").
		Find(&records).Error
	return records, err
}

func (r *GormInventoryRepository) Stats(ctx context.Context) (*domain.InventoryStats, error) {
	stats := &domain.InventoryStats{TotalValue: decimal.Zero}

	if err := r.db.WithContext(ctx).Model(&domain.InventoryRecord{}).Count(&stats.TotalRecords).Error; err != nil {
		return nil, err
	}

	type totals struct {
		Available int64
		Reserved  int64
		Inbound   int64
		Value     decimal.Decimal
	}
	var t totals
	err := r.db.WithContext(ctx).Model(&domain.InventoryRecord{}).
		Select("COALESCE(SUM(quantity_available),0) AS available, COALESCE(SUM(quantity_reserved),0) AS reserved, COALESCE(SUM(quantity_inbound),0) AS inbound, COALESCE(SUM(total_value),0) AS value").
		Scan(&t).Error
	if err != nil {
		return nil, err
	}
	stats.TotalAvailable = t.Available
	stats.TotalReserved = t.Reserved
	stats.TotalInbound = t.Inbound
	stats.TotalValue = t.Value

	err = r.db.WithContext(ctx).Model(&domain.InventoryRecord{}).
		Where("quantity_available <= ? AND quantity_available > 0", domain.LowStockThreshold).
		Count(&stats.LowStockCount).Error
	if err != nil {
		return nil, err
	}

	var byCategory []domain.CategoryStats
	err = r.db.WithContext(ctx).Model(&domain.InventoryRecord{}).
		Select("category, COALESCE(SUM(quantity_available + quantity_reserved + quantity_inbound),0) AS quantity, COALESCE(SUM(total_value),0) AS value").
		Group("category").
		Order("category").
		Scan(&byCategory).Error
	if err != nil {
		return nil, err
	}
	stats.ByCategory = byCategory

	return stats, nil
}

// Credit books donated stock, creating the ledger record lazily on the first
// contribution for a given (item, location) pair.
func (r *GormInventoryRepository) Credit(ctx context.Context, itemName, category, location string, qty int, value decimal.Decimal, received bool, reference string) (*domain.InventoryRecord, error) {
	var record domain.InventoryRecord
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("item_name = ? AND location = ?", itemName, location).
			First(&record).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			record = domain.InventoryRecord{
				ItemName: itemName,
				Category: category,
				Location: location,
				Status:   domain.StatusNoStock,
			}
			if err := tx.Create(&record).Error; err != nil {
				return err
			}
		} else if err != nil {
			return err
		}

		entry, err := record.Credit(qty, value, received)
		if err != nil {
			return err
		}
		entry.Reference = reference

		if err := tx.Save(&record).Error; err != nil {
			return err
		}
		return tx.Create(entry).Error
	})
	if err != nil {
		return nil, err
	}
	return &record, nil
}

func (r *GormInventoryRepository) Receive(ctx context.Context, id uint, qty int, reference string) (*domain.InventoryRecord, error) {
	return r.mutate(ctx, id, reference, func(rec *domain.InventoryRecord) (*domain.LedgerEntry, error) {
		return rec.Receive(qty)
	})
}

func (r *GormInventoryRepository) Reserve(ctx context.Context, id uint, qty int, reference string) (*domain.InventoryRecord, error) {
	return r.mutate(ctx, id, reference, func(rec *domain.InventoryRecord) (*domain.LedgerEntry, error) {
		return rec.Reserve(qty)
	})
}

func (r *GormInventoryRepository) Release(ctx context.Context, id uint, qty int, reference string) (*domain.InventoryRecord, error) {
	return r.mutate(ctx, id, reference, func(rec *domain.InventoryRecord) (*domain.LedgerEntry, error) {
		return rec.Release(qty)
	})
}

func (r *GormInventoryRepository) Consume(ctx context.Context, id uint, qty int, reference string) (*domain.InventoryRecord, error) {
	return r.mutate(ctx, id, reference, func(rec *domain.InventoryRecord) (*domain.LedgerEntry, error) {
		return rec.Consume(qty)
	})
}

func (r *GormInventoryRepository) UpdateStatus(ctx context.Context, id uint, status domain.ItemStatus) error {
	result := r.db.WithContext(ctx).Model(&domain.InventoryRecord{}).
		Where("id = ?", id).
		Update("status", status)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrRecordNotFound
	}
	return nil
}

func (r *GormInventoryRepository) Entries(ctx context.Context, recordID uint, limit, offset int) ([]domain.LedgerEntry, error) {
	var entries []domain.LedgerEntry
	err := r.db.WithContext(ctx).
		Where("record_id = ?", recordID).
		Limit(limit).Offset(offset).
		Order("created_at DESC").
		Find(&entries).Error
	return entries, err
}

// mutate applies a domain mutation to one record under a row write lock, so
// the read-check-write sequence cannot interleave with concurrent consumers.
func (r *GormInventoryRepository) mutate(ctx context.Context, id uint, reference string, fn func(*domain.InventoryRecord) (*domain.LedgerEntry, error)) (*domain.InventoryRecord, error) {
	var record domain.InventoryRecord
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&record, id).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ErrRecordNotFound
		}
		if err != nil {
			return err
		}

		entry, err := fn(&record)
		if err != nil {
			return err
		}
		entry.Reference = reference

		if err := tx.Save(&record).Error; err != nil {
			return err
		}
		return tx.Create(entry).Error
	})
	if err != nil {
		return nil, err
	}
	return &record, nil
}
