package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ItemStatus is the stock status of an inventory record.
type ItemStatus string

const (
	StatusAvailable ItemStatus = "available"
	StatusLowStock  ItemStatus = "low_stock"
	StatusNoStock   ItemStatus = "no_stock"
	// StatusReserved marks stock credited from an approved donation but not yet
	// physically received. It is not quantity-derived.
	StatusReserved ItemStatus = "reserved"
	// StatusBazaar marks goods diverted to a charity bazaar sale, out of the
	// allocation pool. Caller-set, never derived.
	StatusBazaar ItemStatus = "bazaar"
)

// LowStockThreshold is the boundary between LowStock and Available.
const LowStockThreshold = 10

// QuantityDerived reports whether the status is re-derived from quantity after
// every ledger mutation, as opposed to being set by a caller.
func (s ItemStatus) QuantityDerived() bool {
	switch s {
	case StatusAvailable, StatusLowStock, StatusNoStock:
		return true
	}
	return false
}

// DeriveStatus maps an available quantity onto its canonical status.
func DeriveStatus(quantityAvailable int) ItemStatus {
	switch {
	case quantityAvailable == 0:
		return StatusNoStock
	case quantityAvailable <= LowStockThreshold:
		return StatusLowStock
	default:
		return StatusAvailable
	}
}

// InventoryRecord is the authoritative ledger row for one (item, location) pair.
// Records are created lazily on the first contribution and never deleted;
// quantities may fall to zero.
type InventoryRecord struct {
	ID                uint            `json:"id" gorm:"primaryKey"`
	ItemName          string          `json:"item_name" gorm:"not null;uniqueIndex:idx_inventory_item_location"`
	Category          string          `json:"category" gorm:"index"`
	QuantityAvailable int             `json:"quantity_available" gorm:"not null;default:0"`
	QuantityReserved  int             `json:"quantity_reserved" gorm:"not null;default:0"`
	QuantityInbound   int             `json:"quantity_inbound" gorm:"not null;default:0"`
	TotalValue        decimal.Decimal `json:"total_value" gorm:"type:decimal(20,4);default:0"`
	Status            ItemStatus      `json:"status" gorm:"type:varchar(20);default:'no_stock';index"`
	Location          string          `json:"location" gorm:"default:'main';uniqueIndex:idx_inventory_item_location"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"last_updated"`
	DeletedAt         gorm.DeletedAt  `json:"-" gorm:"index"`
}

// TableName specifies the table name
func (InventoryRecord) TableName() string {
	return "inventory_records"
}

// QuantityOnHand is every unit the ledger still accounts value for.
func (r *InventoryRecord) QuantityOnHand() int {
	return r.QuantityAvailable + r.QuantityReserved + r.QuantityInbound
}

// UnitValue is the value-weighted average cost of one unit. Zero when the
// record holds no stock.
func (r *InventoryRecord) UnitValue() decimal.Decimal {
	onHand := r.QuantityOnHand()
	if onHand == 0 {
		return decimal.Zero
	}
	return r.TotalValue.Div(decimal.NewFromInt(int64(onHand)))
}

// Allocatable reports whether the record may appear in a distribution plan.
func (r *InventoryRecord) Allocatable() bool {
	return r.Status.QuantityDerived() && r.QuantityAvailable > 0
}

// refreshStatus re-derives the status after a quantity mutation. Caller-set
// statuses (Bazaar) are left alone; a record holding only inbound stock shows
// as Reserved until receipt.
func (r *InventoryRecord) refreshStatus() {
	if r.Status == StatusBazaar {
		return
	}
	if r.QuantityAvailable == 0 && r.QuantityInbound > 0 {
		r.Status = StatusReserved
		return
	}
	r.Status = DeriveStatus(r.QuantityAvailable)
}

// Credit books donated stock into the ledger. Stock not yet physically
// received goes into the inbound pool and is excluded from allocation until
// Receive moves it over.
func (r *InventoryRecord) Credit(qty int, value decimal.Decimal, received bool) (*LedgerEntry, error) {
	if qty <= 0 {
		return nil, ErrNonPositiveQuantity
	}
	if value.IsNegative() {
		return nil, ErrNegativeValue
	}

	if received {
		r.QuantityAvailable += qty
	} else {
		r.QuantityInbound += qty
	}
	r.TotalValue = r.TotalValue.Add(value)
	r.refreshStatus()

	return r.entry(OpCredit, qty, value), nil
}

// Receive moves inbound stock into the allocatable pool.
func (r *InventoryRecord) Receive(qty int) (*LedgerEntry, error) {
	if qty <= 0 {
		return nil, ErrNonPositiveQuantity
	}
	if qty > r.QuantityInbound {
		return nil, &InsufficientStockError{ItemName: r.ItemName, Requested: qty, Available: r.QuantityInbound}
	}

	r.QuantityInbound -= qty
	r.QuantityAvailable += qty
	r.refreshStatus()

	return r.entry(OpReceive, qty, decimal.Zero), nil
}

// Reserve places a soft hold on available stock for a distribution plan.
func (r *InventoryRecord) Reserve(qty int) (*LedgerEntry, error) {
	if qty <= 0 {
		return nil, ErrNonPositiveQuantity
	}
	if qty > r.QuantityAvailable {
		return nil, &InsufficientStockError{ItemName: r.ItemName, Requested: qty, Available: r.QuantityAvailable}
	}

	r.QuantityAvailable -= qty
	r.QuantityReserved += qty
	r.refreshStatus()

	return r.entry(OpReserve, -qty, decimal.Zero), nil
}

// Release returns reserved stock to the allocatable pool.
func (r *InventoryRecord) Release(qty int) (*LedgerEntry, error) {
	if qty <= 0 {
		return nil, ErrNonPositiveQuantity
	}
	if qty > r.QuantityReserved {
		return nil, ErrExceedsReserved
	}

	r.QuantityReserved -= qty
	r.QuantityAvailable += qty
	r.refreshStatus()

	return r.entry(OpRelease, qty, decimal.Zero), nil
}

// Consume removes reserved stock from the ledger for good, deducting the
// value-weighted average cost of the consumed units. TotalValue is clamped at
// zero on over-deduction.
func (r *InventoryRecord) Consume(qty int) (*LedgerEntry, error) {
	if qty <= 0 {
		return nil, ErrNonPositiveQuantity
	}
	if qty > r.QuantityReserved {
		return nil, &InsufficientStockError{ItemName: r.ItemName, Requested: qty, Available: r.QuantityReserved}
	}

	deduction := r.UnitValue().Mul(decimal.NewFromInt(int64(qty))).Round(4)
	r.QuantityReserved -= qty
	r.TotalValue = r.TotalValue.Sub(deduction)
	if r.TotalValue.IsNegative() {
		r.TotalValue = decimal.Zero
	}
	r.refreshStatus()

	return r.entry(OpConsume, -qty, deduction.Neg()), nil
}

func (r *InventoryRecord) entry(op LedgerOp, qtyDelta int, valueDelta decimal.Decimal) *LedgerEntry {
	return &LedgerEntry{
		RecordID:   r.ID,
		ItemName:   r.ItemName,
		Op:         op,
		QtyDelta:   qtyDelta,
		ValueDelta: valueDelta,
		ClosingQty: r.QuantityOnHand(),
	}
}

// LedgerOp identifies the kind of ledger mutation an entry records.
type LedgerOp string

const (
	OpCredit  LedgerOp = "credit"
	OpReceive LedgerOp = "receive"
	OpReserve LedgerOp = "reserve"
	OpRelease LedgerOp = "release"
	OpConsume LedgerOp = "consume"
)

// LedgerEntry is the append-only audit record of one ledger mutation.
// Entries are never updated after creation.
type LedgerEntry struct {
	ID         uint            `json:"id" gorm:"primaryKey"`
	RecordID   uint            `json:"record_id" gorm:"not null;index"`
	ItemName   string          `json:"item_name"`
	Op         LedgerOp        `json:"op" gorm:"type:varchar(20);not null;index"`
	QtyDelta   int             `json:"qty_delta" gorm:"not null"`
	ValueDelta decimal.Decimal `json:"value_delta" gorm:"type:decimal(20,4);default:0"`
	ClosingQty int             `json:"closing_qty"`
	Reference  string          `json:"reference" gorm:"index"`
	CreatedAt  time.Time       `json:"created_at"`
}

// TableName specifies the table name
func (LedgerEntry) TableName() string {
	return "ledger_entries"
}

// CategoryStats aggregates quantity and value for one item category.
type CategoryStats struct {
	Category string          `json:"category"`
	Quantity int64           `json:"quantity"`
	Value    decimal.Decimal `json:"value"`
}

// InventoryStats is the aggregate view served by the stats endpoint.
type InventoryStats struct {
	TotalRecords   int64           `json:"total_records"`
	TotalAvailable int64           `json:"total_available"`
	TotalReserved  int64           `json:"total_reserved"`
	TotalInbound   int64           `json:"total_inbound"`
	TotalValue     decimal.Decimal `json:"total_value"`
	LowStockCount  int64           `json:"low_stock_count"`
	ByCategory     []CategoryStats `json:"by_category"`
}

// InventoryRepository defines the contract for ledger data access. Mutating
// operations are atomic: implementations re-read the row under a write lock,
// apply the domain mutation and persist record plus audit entry together.
type InventoryRepository interface {
	FindByID(ctx context.Context, id uint) (*InventoryRecord, error)
	FindByItem(ctx context.Context, itemName, location string) (*InventoryRecord, error)
	FindAll(ctx context.Context, limit, offset int) ([]InventoryRecord, error)
	FindAllocatable(ctx context.Context) ([]InventoryRecord, error)
	FindLowStock(ctx context.Context, threshold int) ([]InventoryRecord, error)
	Stats(ctx context.Context) (*InventoryStats, error)

	// Credit books donated stock, creating the record lazily on first
	// contribution for a given (item, location) pair.
	Credit(ctx context.Context, itemName, category, location string, qty int, value decimal.Decimal, received bool, reference string) (*InventoryRecord, error)
	Receive(ctx context.Context, id uint, qty int, reference string) (*InventoryRecord, error)
	Reserve(ctx context.Context, id uint, qty int, reference string) (*InventoryRecord, error)
	Release(ctx context.Context, id uint, qty int, reference string) (*InventoryRecord, error)
	Consume(ctx context.Context, id uint, qty int, reference string) (*InventoryRecord, error)
	UpdateStatus(ctx context.Context, id uint, status ItemStatus) error

	Entries(ctx context.Context, recordID uint, limit, offset int) ([]LedgerEntry, error)
}
