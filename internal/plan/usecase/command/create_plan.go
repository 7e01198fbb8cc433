package command

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/givebridge/distribution/internal/allocation"
	inventorydomain "github.com/givebridge/distribution/internal/inventory/domain"
	"github.com/givebridge/distribution/internal/plan/domain"
	requestdomain "github.com/givebridge/distribution/internal/request/domain"
)

// CreatePlanItem is one requested line of a new plan.
type CreatePlanItem struct {
	InventoryRecordID uint
	Quantity          int
	Notes             string
}

// CreatePlanCommand represents the command to create a distribution plan for
// an approved request. Creation is idempotent per request: if a live plan
// already exists for the request it is returned unchanged.
type CreatePlanCommand struct {
	RequestID   uint
	PlannedDate time.Time
	Notes       string
	CreatedBy   string
	Items       []CreatePlanItem
}

// CreatePlanResult carries the created (or pre-existing) plan plus any soft
// validation warnings.
type CreatePlanResult struct {
	Plan       *domain.DistributionPlan `json:"plan"`
	Warnings   []allocation.Warning     `json:"warnings,omitempty"`
	IsExisting bool                     `json:"is_existing"`
}

// CreatePlanHandler handles create plan command
type CreatePlanHandler struct {
	store domain.Store
}

// NewCreatePlanHandler creates a new create plan handler
func NewCreatePlanHandler(store domain.Store) *CreatePlanHandler {
	return &CreatePlanHandler{store: store}
}

// Handle executes the create plan command. All reads and writes run in one
// transaction: the request lock, the plan uniqueness check, inventory
// reservations and the plan rows commit or roll back together.
func (h *CreatePlanHandler) Handle(ctx context.Context, cmd CreatePlanCommand) (*CreatePlanResult, error) {
	if cmd.RequestID == 0 {
		return nil, fmt.Errorf("request_id is required")
	}
	if len(cmd.Items) == 0 {
		return nil, fmt.Errorf("plan needs at least one item")
	}
	for _, item := range cmd.Items {
		if item.InventoryRecordID == 0 {
			return nil, fmt.Errorf("inventory_record_id is required on every item")
		}
		if item.Quantity <= 0 {
			return nil, fmt.Errorf("item quantity must be positive")
		}
	}
	if cmd.PlannedDate.IsZero() {
		cmd.PlannedDate = time.Now()
	}

	var result *CreatePlanResult
	err := h.store.InTx(ctx, func(tx domain.Tx) error {
		req, err := tx.RequestForUpdate(cmd.RequestID)
		if err != nil {
			return err
		}
		if req.Status != requestdomain.StatusApproved {
			return &domain.RequestNotApprovedError{RequestID: req.ID, Status: req.Status}
		}

		plan := &domain.DistributionPlan{}
		existing, err := tx.PlanByRequestForUpdate(cmd.RequestID)
		switch {
		case err == nil && existing.Status != domain.StatusCancelled:
			result = &CreatePlanResult{Plan: existing, IsExisting: true}
			return nil
		case err == nil:
			// A cancelled plan holds the request's unique slot; revive it
			// as a fresh draft instead of inserting a second row.
			plan = existing
		case !errors.Is(err, domain.ErrPlanNotFound):
			return err
		}

		records, err := lockRecords(tx, cmd.Items)
		if err != nil {
			return err
		}

		warnings, err := allocation.ValidateItems(aggregate(cmd.Items), records)
		if err != nil {
			return err
		}

		plan.RequestID = cmd.RequestID
		plan.BeneficiaryID = req.BeneficiaryID
		plan.PlannedDate = cmd.PlannedDate
		plan.Status = domain.StatusDraft
		plan.Notes = cmd.Notes
		plan.CreatedBy = cmd.CreatedBy
		plan.ApprovedBy = ""
		plan.ApprovedAt = nil
		plan.ExecutedBy = ""
		plan.ExecutedAt = nil
		plan.CancelReason = ""
		if plan.Reference == "" {
			plan.Reference = newReference()
		}

		items := make([]domain.PlanItem, 0, len(cmd.Items))
		total := decimal.Zero
		for _, line := range cmd.Items {
			record := records[line.InventoryRecordID]
			unitValue := record.UnitValue().Round(4)

			entry, err := record.Reserve(line.Quantity)
			if err != nil {
				return err
			}
			entry.Reference = plan.Reference
			if err := tx.SaveRecord(record, entry); err != nil {
				return err
			}

			allocated := unitValue.Mul(decimal.NewFromInt(int64(line.Quantity))).Round(4)
			total = total.Add(allocated)
			items = append(items, domain.PlanItem{
				InventoryRecordID: record.ID,
				ItemName:          record.ItemName,
				Quantity:          line.Quantity,
				UnitValue:         unitValue,
				AllocatedValue:    allocated,
				Notes:             line.Notes,
			})
		}

		plan.TotalValue = total
		if err := tx.SavePlan(plan); err != nil {
			return err
		}
		if err := tx.ReplaceItems(plan.ID, items); err != nil {
			return err
		}
		plan.Items = items

		result = &CreatePlanResult{Plan: plan, Warnings: warnings}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}

// lockRecords takes a write lock on every distinct record referenced by the
// command items.
func lockRecords(tx domain.Tx, items []CreatePlanItem) (map[uint]*inventorydomain.InventoryRecord, error) {
	records := make(map[uint]*inventorydomain.InventoryRecord)
	for _, item := range items {
		if _, ok := records[item.InventoryRecordID]; ok {
			continue
		}
		record, err := tx.RecordForUpdate(item.InventoryRecordID)
		if err != nil {
			if errors.Is(err, inventorydomain.ErrRecordNotFound) {
				return nil, &allocation.UnknownInventoryItemError{RecordID: item.InventoryRecordID}
			}
			return nil, err
		}
		records[item.InventoryRecordID] = record
	}
	return records, nil
}

// aggregate merges duplicate record lines so validation sees the combined
// quantity asked of each record.
func aggregate(items []CreatePlanItem) []allocation.CandidateItem {
	index := make(map[uint]int)
	var out []allocation.CandidateItem
	for _, item := range items {
		if i, ok := index[item.InventoryRecordID]; ok {
			out[i].Quantity += item.Quantity
			continue
		}
		index[item.InventoryRecordID] = len(out)
		out = append(out, allocation.CandidateItem{
			InventoryRecordID: item.InventoryRecordID,
			Quantity:          item.Quantity,
		})
	}
	return out
}

func newReference() string {
	return "DP-" + strings.ToUpper(uuid.NewString())
}
