package allocation

import (
	"fmt"

	inventorydomain "github.com/givebridge/distribution/internal/inventory/domain"
)

// CandidateItem is one line of a candidate plan under validation.
type CandidateItem struct {
	InventoryRecordID uint `json:"inventory_record_id"`
	Quantity          int  `json:"quantity"`
}

// Warning is a non-fatal validation signal for staff review. It never blocks
// the operation that produced it.
type Warning struct {
	RecordID uint   `json:"record_id"`
	ItemName string `json:"item_name"`
	Code     string `json:"code"`
	Message  string `json:"message"`
}

const WarningHighAllocation = "high_allocation"

// highAllocationPercent is the share of current availability above which a
// soft warning is emitted.
const highAllocationPercent = 80

// UnknownInventoryItemError reports a candidate item referencing a record
// that does not exist.
type UnknownInventoryItemError struct {
	RecordID uint
}

func (e *UnknownInventoryItemError) Error() string {
	return fmt.Sprintf("unknown inventory item: record %d does not exist", e.RecordID)
}

// InventoryUnavailableError reports a record whose status gates it out of
// allocation (reserved pending receipt, or diverted to bazaar).
type InventoryUnavailableError struct {
	RecordID uint
	ItemName string
	Status   inventorydomain.ItemStatus
}

func (e *InventoryUnavailableError) Error() string {
	return fmt.Sprintf("inventory %q (record %d) is not available for allocation: status %s",
		e.ItemName, e.RecordID, e.Status)
}

// InsufficientQuantityError reports a candidate quantity above current
// availability.
type InsufficientQuantityError struct {
	RecordID  uint
	ItemName  string
	Requested int
	Available int
}

func (e *InsufficientQuantityError) Error() string {
	return fmt.Sprintf("insufficient quantity for %q (record %d): requested %d, available %d",
		e.ItemName, e.RecordID, e.Requested, e.Available)
}

// ValidateItems checks a candidate set of plan items against a ledger
// snapshot. The first hard failure aborts validation; soft warnings for the
// items that passed are returned alongside.
func ValidateItems(items []CandidateItem, records map[uint]*inventorydomain.InventoryRecord) ([]Warning, error) {
	var warnings []Warning

	for _, item := range items {
		record, ok := records[item.InventoryRecordID]
		if !ok || record == nil {
			return warnings, &UnknownInventoryItemError{RecordID: item.InventoryRecordID}
		}

		if !record.Status.QuantityDerived() {
			return warnings, &InventoryUnavailableError{
				RecordID: record.ID,
				ItemName: record.ItemName,
				Status:   record.Status,
			}
		}

		if item.Quantity > record.QuantityAvailable {
			return warnings, &InsufficientQuantityError{
				RecordID:  record.ID,
				ItemName:  record.ItemName,
				Requested: item.Quantity,
				Available: record.QuantityAvailable,
			}
		}

		if record.QuantityAvailable > 0 && item.Quantity*100 > record.QuantityAvailable*highAllocationPercent {
			warnings = append(warnings, Warning{
				RecordID: record.ID,
				ItemName: record.ItemName,
				Code:     WarningHighAllocation,
				Message: fmt.Sprintf("allocation of %d consumes more than %d%% of %d available",
					item.Quantity, highAllocationPercent, record.QuantityAvailable),
			})
		}
	}

	return warnings, nil
}
