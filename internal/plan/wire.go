//go:build wireinject
// +build wireinject

package plan

import (
	"github.com/google/wire"
	"gorm.io/gorm"

	"github.com/givebridge/distribution/internal/plan/delivery/http"
	"github.com/givebridge/distribution/internal/plan/domain"
	"github.com/givebridge/distribution/internal/plan/repository"
	"github.com/givebridge/distribution/kafka"
)

// ProvidePlanStore provides the plan store wrapped with tracing.
func ProvidePlanStore(db *gorm.DB) domain.Store {
	return repository.NewTracingStore(repository.NewGormPlanStore(db))
}

// Wire sets
var StoreSet = wire.NewSet(
	ProvidePlanStore,
)

// InitializeHTTPHandler initializes HTTP handler with all dependencies
func InitializeHTTPHandler(db *gorm.DB, publisher *kafka.Publisher) (*http.PlanHandler, error) {
	wire.Build(
		StoreSet,
		http.NewPlanHandler,
	)
	return nil, nil
}
