package allocation

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	inventorydomain "github.com/givebridge/distribution/internal/inventory/domain"
	requestdomain "github.com/givebridge/distribution/internal/request/domain"
)

// RecommendedItem is one proposed plan line.
type RecommendedItem struct {
	InventoryRecordID uint            `json:"inventory_record_id"`
	ItemName          string          `json:"item_name"`
	Quantity          int             `json:"quantity"`
	UnitValue         decimal.Decimal `json:"unit_value"`
	AllocatedValue    decimal.Decimal `json:"allocated_value"`
}

// Recommendation is the advisory allocation proposal for one request. It is
// non-binding; staff may edit the items before committing a plan.
type Recommendation struct {
	RequestID      uint              `json:"request_id"`
	BeneficiaryID  uint              `json:"beneficiary_id"`
	Items          []RecommendedItem `json:"recommended_items"`
	EstimatedValue decimal.Decimal   `json:"estimated_value"`
	Warnings       []string          `json:"warnings,omitempty"`
}

// matchRecord fuzzy-matches a basket item name against the inventory
// snapshot: case-insensitive substring in either direction, allocatable
// records only. First match wins.
func matchRecord(item string, records []inventorydomain.InventoryRecord) *inventorydomain.InventoryRecord {
	needle := strings.ToLower(item)
	for i := range records {
		name := strings.ToLower(records[i].ItemName)
		if strings.Contains(name, needle) || strings.Contains(needle, name) {
			if records[i].Allocatable() {
				return &records[i]
			}
		}
	}
	return nil
}

// Recommend proposes allocations for a batch of approved requests against one
// ledger snapshot. Demands are derived from purpose baskets, matched against
// inventory, and then any record whose aggregate demand exceeds its available
// quantity is rebalanced through the scarcity allocator.
func Recommend(now time.Time, requests []requestdomain.BeneficiaryRequest, records []inventorydomain.InventoryRecord) []Recommendation {
	type demand struct {
		requestIdx int
		record     *inventorydomain.InventoryRecord
		quantity   int
	}

	recs := make([]Recommendation, len(requests))
	var demands []demand
	perRecord := map[uint][]int{} // record id -> indexes into demands

	for i := range requests {
		req := &requests[i]
		recs[i] = Recommendation{
			RequestID:      req.ID,
			BeneficiaryID:  req.BeneficiaryID,
			EstimatedValue: decimal.Zero,
		}

		for _, target := range BasketFor(req) {
			record := matchRecord(target.Item, records)
			if record == nil {
				recs[i].Warnings = append(recs[i].Warnings,
					fmt.Sprintf("no available inventory matches %q", target.Item))
				continue
			}
			d := demand{requestIdx: i, record: record, quantity: target.Quantity}
			perRecord[record.ID] = append(perRecord[record.ID], len(demands))
			demands = append(demands, d)
		}
	}

	// Rebalance records where aggregate demand exceeds availability
	granted := make([]int, len(demands))
	for _, idxs := range perRecord {
		record := demands[idxs[0]].record
		total := 0
		for _, di := range idxs {
			total += demands[di].quantity
		}

		if total <= record.QuantityAvailable {
			for _, di := range idxs {
				granted[di] = demands[di].quantity
			}
			continue
		}

		// Candidates are keyed by demand index, not request id: one request
		// can hit the same record through two basket lines (a bundle record
		// matching both names), and those are distinct competing demands.
		candidates := make([]Candidate, len(idxs))
		for k, di := range idxs {
			req := &requests[demands[di].requestIdx]
			candidates[k] = Candidate{
				RequestID:       uint(di),
				Requested:       demands[di].quantity,
				Urgency:         req.Urgency,
				BeneficiaryType: req.BeneficiaryType,
				RequestDate:     req.RequestDate,
			}
		}
		split := Allocate(record.QuantityAvailable, now, candidates)

		byDemand := map[uint]int{}
		for _, a := range split {
			byDemand[a.RequestID] = a.Allocated
		}
		for _, di := range idxs {
			granted[di] = byDemand[uint(di)]
		}
	}

	for di, d := range demands {
		rec := &recs[d.requestIdx]
		allocated := granted[di]
		switch {
		case allocated == 0:
			rec.Warnings = append(rec.Warnings,
				fmt.Sprintf("%s: no stock left to allocate (requested %d)", d.record.ItemName, d.quantity))
			continue
		case allocated < d.quantity:
			rec.Warnings = append(rec.Warnings,
				fmt.Sprintf("%s: partial allocation %d of %d", d.record.ItemName, allocated, d.quantity))
		}

		unit := d.record.UnitValue()
		value := unit.Mul(decimal.NewFromInt(int64(allocated))).Round(4)
		rec.Items = append(rec.Items, RecommendedItem{
			InventoryRecordID: d.record.ID,
			ItemName:          d.record.ItemName,
			Quantity:          allocated,
			UnitValue:         unit.Round(4),
			AllocatedValue:    value,
		})
		rec.EstimatedValue = rec.EstimatedValue.Add(value)
	}

	return recs
}
