package domain

import (
	"context"

	inventorydomain "github.com/givebridge/distribution/internal/inventory/domain"
	requestdomain "github.com/givebridge/distribution/internal/request/domain"
)

// Store is the transactional boundary for plan state transitions. InTx runs
// fn inside one atomic transaction: if fn returns an error every write made
// through the Tx is rolled back, including ledger mutations and log appends.
type Store interface {
	InTx(ctx context.Context, fn func(tx Tx) error) error

	FindByID(ctx context.Context, id uint) (*DistributionPlan, error)
	FindByRequestID(ctx context.Context, requestID uint) (*DistributionPlan, error)
	List(ctx context.Context, filter ListFilter) ([]DistributionPlan, error)
	Logs(ctx context.Context, filter LogFilter) ([]DistributionLog, error)
}

// Tx exposes row-locked reads and writes inside one transaction. ForUpdate
// reads take a write lock on the row so that concurrent transitions
// contending for the same plan or inventory record serialize instead of
// jointly overdrawing stock.
type Tx interface {
	PlanForUpdate(id uint) (*DistributionPlan, error)
	PlanByRequestForUpdate(requestID uint) (*DistributionPlan, error)
	SavePlan(plan *DistributionPlan) error
	ReplaceItems(planID uint, items []PlanItem) error

	RecordForUpdate(recordID uint) (*inventorydomain.InventoryRecord, error)
	SaveRecord(record *inventorydomain.InventoryRecord, entry *inventorydomain.LedgerEntry) error

	AppendLog(log *DistributionLog) error

	RequestForUpdate(id uint) (*requestdomain.BeneficiaryRequest, error)
	SaveRequest(req *requestdomain.BeneficiaryRequest) error
}
