//go:build wireinject
// +build wireinject

package inventory

import (
	"github.com/google/wire"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/givebridge/distribution/internal/inventory/delivery/http"
	"github.com/givebridge/distribution/internal/inventory/domain"
	"github.com/givebridge/distribution/internal/inventory/repository"
)

// ProvideInventoryRepository provides the inventory repository wrapped with
// tracing and, when a Redis client is present, a read cache.
func ProvideInventoryRepository(db *gorm.DB, redisClient *redis.Client) domain.InventoryRepository {
	var repo domain.InventoryRepository = repository.NewGormInventoryRepository(db)
	repo = repository.NewTracingRepository(repo)
	if redisClient != nil {
		repo = repository.NewCachedRepository(repo, redisClient)
	}
	return repo
}

// Wire sets
var RepositorySet = wire.NewSet(
	ProvideInventoryRepository,
)

// InitializeHTTPHandler initializes HTTP handler with all dependencies
func InitializeHTTPHandler(db *gorm.DB, redisClient *redis.Client) (*http.InventoryHandler, error) {
	wire.Build(
		RepositorySet,
		http.NewInventoryHandler,
	)
	return nil, nil
}
