package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"github.com/givebridge/distribution/internal/inventory/domain"
	"github.com/givebridge/distribution/pkg/logger"
)

// Cache TTLs. Stats change on every ledger write, so they stay short; the
// low-stock view feeds alerting and needs to be fresh.
const (
	statsCacheTTL    = 2 * time.Minute
	lowStockCacheTTL = 1 * time.Minute

	statsCacheKey     = "distribution:inventory:stats"
	lowStockKeyPrefix = "distribution:inventory:lowstock:"
)

// CachedRepository decorates an InventoryRepository with a Redis read cache
// on the aggregate queries. Ledger mutations invalidate the cached views.
type CachedRepository struct {
	next  domain.InventoryRepository
	redis *redis.Client
}

func NewCachedRepository(next domain.InventoryRepository, redisClient *redis.Client) *CachedRepository {
	return &CachedRepository{next: next, redis: redisClient}
}

func (r *CachedRepository) FindByID(ctx context.Context, id uint) (*domain.InventoryRecord, error) {
	return r.next.FindByID(ctx, id)
}

func (r *CachedRepository) FindByItem(ctx context.Context, itemName, location string) (*domain.InventoryRecord, error) {
	return r.next.FindByItem(ctx, itemName, location)
}

func (r *CachedRepository) FindAll(ctx context.Context, limit, offset int) ([]domain.InventoryRecord, error) {
	return r.next.FindAll(ctx, limit, offset)
}

func (r *CachedRepository) FindAllocatable(ctx context.Context) ([]domain.InventoryRecord, error) {
	return r.next.FindAllocatable(ctx)
}

func (r *CachedRepository) FindLowStock(ctx context.Context, threshold int) ([]domain.InventoryRecord, error) {
	key := fmt.Sprintf("%s%d", lowStockKeyPrefix, threshold)

	if cached, err := r.redis.Get(ctx, key).Bytes(); err == nil {
		var records []domain.InventoryRecord
		if json.Unmarshal(cached, &records) == nil {
			return records, nil
		}
	}

	records, err := r.next.FindLowStock(ctx, threshold)
	if err != nil {
		return nil, err
	}

	if payload, err := json.Marshal(records); err == nil {
		if err := r.redis.Set(ctx, key, payload, lowStockCacheTTL).Err(); err != nil {
			logger.Warn(ctx).Err(err).Str("key", key).Msg("Failed to cache low-stock view")
		}
	}
	return records, nil
}

func (r *CachedRepository) Stats(ctx context.Context) (*domain.InventoryStats, error) {
	if cached, err := r.redis.Get(ctx, statsCacheKey).Bytes(); err == nil {
		var stats domain.InventoryStats
		if json.Unmarshal(cached, &stats) == nil {
			return &stats, nil
		}
	}

	stats, err := r.next.Stats(ctx)
	if err != nil {
		return nil, err
	}

	if payload, err := json.Marshal(stats); err == nil {
		if err := r.redis.Set(ctx, statsCacheKey, payload, statsCacheTTL).Err(); err != nil {
			logger.Warn(ctx).Err(err).Msg("Failed to cache inventory stats")
		}
	}
	return stats, nil
}

func (r *CachedRepository) Credit(ctx context.Context, itemName, category, location string, qty int, value decimal.Decimal, received bool, reference string) (*domain.InventoryRecord, error) {
	record, err := r.next.Credit(ctx, itemName, category, location, qty, value, received, reference)
	if err == nil {
		r.invalidate(ctx)
	}
	return record, err
}

func (r *CachedRepository) Receive(ctx context.Context, id uint, qty int, reference string) (*domain.InventoryRecord, error) {
	record, err := r.next.Receive(ctx, id, qty, reference)
	if err == nil {
		r.invalidate(ctx)
	}
	return record, err
}

func (r *CachedRepository) Reserve(ctx context.Context, id uint, qty int, reference string) (*domain.InventoryRecord, error) {
	record, err := r.next.Reserve(ctx, id, qty, reference)
	if err == nil {
		r.invalidate(ctx)
	}
	return record, err
}

func (r *CachedRepository) Release(ctx context.Context, id uint, qty int, reference string) (*domain.InventoryRecord, error) {
	record, err := r.next.Release(ctx, id, qty, reference)
	if err == nil {
		r.invalidate(ctx)
	}
	return record, err
}

func (r *CachedRepository) Consume(ctx context.Context, id uint, qty int, reference string) (*domain.InventoryRecord, error) {
	record, err := r.next.Consume(ctx, id, qty, reference)
	if err == nil {
		r.invalidate(ctx)
	}
	return record, err
}

func (r *CachedRepository) UpdateStatus(ctx context.Context, id uint, status domain.ItemStatus) error {
	err := r.next.UpdateStatus(ctx, id, status)
	if err == nil {
		r.invalidate(ctx)
	}
	return err
}

func (r *CachedRepository) Entries(ctx context.Context, recordID uint, limit, offset int) ([]domain.LedgerEntry, error) {
	return r.next.Entries(ctx, recordID, limit, offset)
}

func (r *CachedRepository) invalidate(ctx context.Context) {
	if err := r.redis.Del(ctx, statsCacheKey).Err(); err != nil {
		logger.Warn(ctx).Err(err).Msg("Failed to invalidate stats cache")
	}
	iter := r.redis.Scan(ctx, 0, lowStockKeyPrefix+"*", 50).Iterator()
	for iter.Next(ctx) {
		if err := r.redis.Del(ctx, iter.Val()).Err(); err != nil {
			logger.Warn(ctx).Err(err).Str("key", iter.Val()).Msg("Failed to invalidate low-stock cache")
		}
	}
}
