package domain

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// PlanStatus is the lifecycle state of a distribution plan.
// Draft -> Approved -> Ongoing -> Completed, with Cancelled reachable from
// Draft or Approved.
type PlanStatus string

const (
	StatusDraft     PlanStatus = "draft"
	StatusApproved  PlanStatus = "approved"
	StatusOngoing   PlanStatus = "ongoing"
	StatusCompleted PlanStatus = "completed"
	StatusCancelled PlanStatus = "cancelled"
)

// CanTransition reports whether the state machine permits moving from s to
// next.
func (s PlanStatus) CanTransition(next PlanStatus) bool {
	switch s {
	case StatusDraft:
		return next == StatusApproved || next == StatusCancelled
	case StatusApproved:
		return next == StatusOngoing || next == StatusCancelled
	case StatusOngoing:
		return next == StatusCompleted
	default:
		return false
	}
}

// DistributionPlan allocates inventory to exactly one beneficiary request.
// At most one non-cancelled plan may exist per request, enforced by a unique
// index on RequestID plus a locking read at creation time.
type DistributionPlan struct {
	ID            uint           `json:"id" gorm:"primaryKey"`
	Reference     string         `json:"reference" gorm:"uniqueIndex;size:40"`
	RequestID     uint           `json:"request_id" gorm:"not null;uniqueIndex"`
	BeneficiaryID uint           `json:"beneficiary_id" gorm:"not null;index"`
	PlannedDate   time.Time      `json:"planned_date"`
	Status        PlanStatus     `json:"status" gorm:"type:varchar(15);default:'draft';index"`
	Notes         string         `json:"notes"`
	TotalValue    decimal.Decimal `json:"total_value" gorm:"type:decimal(20,4);default:0"`
	CreatedBy     string         `json:"created_by" gorm:"index"`
	ApprovedBy    string         `json:"approved_by"`
	ApprovedAt    *time.Time     `json:"approved_at"`
	ExecutedBy    string         `json:"executed_by"`
	ExecutedAt    *time.Time     `json:"executed_at"`
	CancelReason  string         `json:"cancel_reason,omitempty"`
	Items         []PlanItem     `json:"items" gorm:"foreignKey:PlanID"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `json:"-" gorm:"index"`
}

// TableName specifies the table name
func (DistributionPlan) TableName() string {
	return "distribution_plans"
}

// PlanItem is one allocated line of a plan. AllocatedValue snapshots
// quantity x unit value at plan creation time, so later ledger price drift
// does not retroactively change historical plan valuations.
type PlanItem struct {
	ID                uint            `json:"id" gorm:"primaryKey"`
	PlanID            uint            `json:"plan_id" gorm:"not null;index"`
	InventoryRecordID uint            `json:"inventory_record_id" gorm:"not null;index"`
	ItemName          string          `json:"item_name"`
	Quantity          int             `json:"quantity" gorm:"not null"`
	UnitValue         decimal.Decimal `json:"unit_value" gorm:"type:decimal(20,4);default:0"`
	AllocatedValue    decimal.Decimal `json:"allocated_value" gorm:"type:decimal(20,4);default:0"`
	Notes             string          `json:"notes"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
}

// TableName specifies the table name
func (PlanItem) TableName() string {
	return "distribution_plan_items"
}

// DistributionLog is the append-only audit record written for each item at
// execution time. Never mutated after creation.
type DistributionLog struct {
	ID                  uint            `json:"id" gorm:"primaryKey"`
	PlanID              uint            `json:"plan_id" gorm:"not null;index"`
	BeneficiaryID       uint            `json:"beneficiary_id" gorm:"not null;index"`
	InventoryRecordID   uint            `json:"inventory_record_id" gorm:"not null;index"`
	ItemName            string          `json:"item_name"`
	QuantityDistributed int             `json:"quantity_distributed" gorm:"not null"`
	Value               decimal.Decimal `json:"value" gorm:"type:decimal(20,4);default:0"`
	DistributionDate    time.Time       `json:"distribution_date"`
	DistributedBy       string          `json:"distributed_by"`
	CreatedAt           time.Time       `json:"created_at"`
}

// TableName specifies the table name
func (DistributionLog) TableName() string {
	return "distribution_logs"
}

// ListFilter narrows plan listings.
type ListFilter struct {
	Status    PlanStatus
	CreatedBy string
	From      *time.Time
	To        *time.Time
	Limit     int
	Offset    int
}

// LogFilter narrows distribution log listings.
type LogFilter struct {
	PlanID        uint
	BeneficiaryID uint
	Limit         int
	Offset        int
}
