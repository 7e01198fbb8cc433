package allocation

import (
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	inventorydomain "github.com/givebridge/distribution/internal/inventory/domain"
	requestdomain "github.com/givebridge/distribution/internal/request/domain"
)

var recommendNow = time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

func stockRecord(id uint, name string, available int, totalValue int64) inventorydomain.InventoryRecord {
	return inventorydomain.InventoryRecord{
		ID:                id,
		ItemName:          name,
		QuantityAvailable: available,
		TotalValue:        decimal.NewFromInt(totalValue),
		Status:            inventorydomain.DeriveStatus(available),
	}
}

func foodRequest(id uint, bt requestdomain.BeneficiaryType, urgency requestdomain.Urgency) requestdomain.BeneficiaryRequest {
	return requestdomain.BeneficiaryRequest{
		ID:              id,
		BeneficiaryID:   id + 100,
		PurposeCategory: requestdomain.PurposeFood,
		BeneficiaryType: bt,
		Urgency:         urgency,
		RequestDate:     recommendNow,
	}
}

func TestRecommendFillsBasketFromInventory(t *testing.T) {
	records := []inventorydomain.InventoryRecord{
		stockRecord(1, "Rice 5kg", 100, 500),
		stockRecord(2, "Canned Goods", 100, 200),
		stockRecord(3, "Cooking Oil 1L", 100, 300),
	}
	requests := []requestdomain.BeneficiaryRequest{
		foodRequest(1, requestdomain.TypeIndividual, requestdomain.UrgencyMedium),
	}

	recs := Recommend(recommendNow, requests, records)
	if len(recs) != 1 {
		t.Fatalf("got %d recommendations, want 1", len(recs))
	}
	rec := recs[0]

	if len(rec.Warnings) != 0 {
		t.Errorf("unexpected warnings: %v", rec.Warnings)
	}
	if len(rec.Items) != 3 {
		t.Fatalf("got %d items, want 3", len(rec.Items))
	}

	// Food basket per individual: rice 5, canned goods 10, cooking oil 2
	wantQty := map[uint]int{1: 5, 2: 10, 3: 2}
	for _, item := range rec.Items {
		if item.Quantity != wantQty[item.InventoryRecordID] {
			t.Errorf("record %d: quantity %d, want %d", item.InventoryRecordID, item.Quantity, wantQty[item.InventoryRecordID])
		}
	}

	// rice 5*5 + canned 10*2 + oil 2*3 = 25+20+6
	if !rec.EstimatedValue.Equal(decimal.NewFromInt(51)) {
		t.Errorf("estimated value = %s, want 51", rec.EstimatedValue)
	}
}

func TestRecommendScalesByBeneficiaryType(t *testing.T) {
	records := []inventorydomain.InventoryRecord{
		stockRecord(1, "rice", 100, 100),
		stockRecord(2, "canned goods", 100, 100),
		stockRecord(3, "cooking oil", 100, 100),
	}
	requests := []requestdomain.BeneficiaryRequest{
		foodRequest(1, requestdomain.TypeFamily, requestdomain.UrgencyMedium),
	}

	recs := Recommend(recommendNow, requests, records)
	for _, item := range recs[0].Items {
		if item.InventoryRecordID == 1 && item.Quantity != 10 {
			t.Errorf("rice for a family = %d, want 10", item.Quantity)
		}
	}
}

func TestRecommendWarnsOnMissingInventory(t *testing.T) {
	records := []inventorydomain.InventoryRecord{
		stockRecord(1, "rice", 100, 100),
	}
	requests := []requestdomain.BeneficiaryRequest{
		foodRequest(1, requestdomain.TypeIndividual, requestdomain.UrgencyMedium),
	}

	recs := Recommend(recommendNow, requests, records)
	rec := recs[0]

	if len(rec.Items) != 1 {
		t.Fatalf("got %d items, want 1 (rice only)", len(rec.Items))
	}
	if len(rec.Warnings) != 2 {
		t.Fatalf("got %d warnings, want 2: %v", len(rec.Warnings), rec.Warnings)
	}
	for _, w := range rec.Warnings {
		if !strings.Contains(w, "no available inventory matches") {
			t.Errorf("unexpected warning text: %q", w)
		}
	}
}

func TestRecommendSkipsNonAllocatableRecords(t *testing.T) {
	bazaar := stockRecord(1, "rice", 100, 100)
	bazaar.Status = inventorydomain.StatusBazaar
	records := []inventorydomain.InventoryRecord{
		bazaar,
		stockRecord(2, "rice premium", 50, 100),
	}
	requests := []requestdomain.BeneficiaryRequest{
		foodRequest(1, requestdomain.TypeIndividual, requestdomain.UrgencyMedium),
	}

	recs := Recommend(recommendNow, requests, records)
	for _, item := range recs[0].Items {
		if item.InventoryRecordID == 1 {
			t.Error("bazaar record must not be recommended")
		}
		if strings.Contains(strings.ToLower(item.ItemName), "rice") && item.InventoryRecordID != 2 {
			t.Errorf("rice matched record %d, want 2", item.InventoryRecordID)
		}
	}
}

func TestRecommendMatchesSubstringBothWays(t *testing.T) {
	// Basket item "canned goods" against inventory named just "canned"
	records := []inventorydomain.InventoryRecord{
		stockRecord(1, "canned", 100, 100),
	}
	requests := []requestdomain.BeneficiaryRequest{
		foodRequest(1, requestdomain.TypeIndividual, requestdomain.UrgencyMedium),
	}

	recs := Recommend(recommendNow, requests, records)
	found := false
	for _, item := range recs[0].Items {
		if item.InventoryRecordID == 1 {
			found = true
		}
	}
	if !found {
		t.Error("basket name containing the record name did not match")
	}
}

func TestRecommendRebalancesScarceRecord(t *testing.T) {
	// 12 rice available vs aggregate demand of 15 (family 10 + individual 5)
	records := []inventorydomain.InventoryRecord{
		stockRecord(1, "rice", 12, 120),
		stockRecord(2, "canned goods", 1000, 100),
		stockRecord(3, "cooking oil", 1000, 100),
	}
	family := foodRequest(1, requestdomain.TypeFamily, requestdomain.UrgencyHigh)
	individual := foodRequest(2, requestdomain.TypeIndividual, requestdomain.UrgencyLow)
	requests := []requestdomain.BeneficiaryRequest{family, individual}

	recs := Recommend(recommendNow, requests, records)

	riceFor := func(rec Recommendation) int {
		for _, item := range rec.Items {
			if item.InventoryRecordID == 1 {
				return item.Quantity
			}
		}
		return 0
	}

	total := riceFor(recs[0]) + riceFor(recs[1])
	if total != 12 {
		t.Errorf("rebalanced rice totals %d, want full availability 12", total)
	}
	if riceFor(recs[0]) <= riceFor(recs[1]) {
		t.Errorf("high urgency family got %d, low urgency individual got %d",
			riceFor(recs[0]), riceFor(recs[1]))
	}

	partial := false
	for _, w := range recs[1].Warnings {
		if strings.Contains(w, "partial allocation") {
			partial = true
		}
	}
	if riceFor(recs[1]) > 0 && riceFor(recs[1]) < 5 && !partial {
		t.Errorf("shorted request carries no partial warning: %v", recs[1].Warnings)
	}
}

func TestRecommendRebalancesDuplicateDemandsFromOneRequest(t *testing.T) {
	// A bundle record matching two basket lines of the same request: the two
	// demands compete for the record and their grants must still respect
	// availability.
	records := []inventorydomain.InventoryRecord{
		stockRecord(9, "soap and shampoo bundle", 11, 110),
	}
	req := requestdomain.BeneficiaryRequest{
		ID:              1,
		BeneficiaryID:   101,
		PurposeCategory: requestdomain.PurposeHygiene,
		BeneficiaryType: requestdomain.TypeFamily,
		Urgency:         requestdomain.UrgencyMedium,
		RequestDate:     recommendNow,
	}

	recs := Recommend(recommendNow, []requestdomain.BeneficiaryRequest{req}, records)

	// Hygiene basket for a family demands soap 10 + shampoo 10 of the one
	// record; toothpaste finds no match
	total := 0
	for _, item := range recs[0].Items {
		if item.InventoryRecordID == 9 {
			total += item.Quantity
		}
	}
	if total > 11 {
		t.Errorf("recommended %d units of record 9, only 11 available", total)
	}
	if total != 11 {
		t.Errorf("recommended %d units of record 9, want the full 11", total)
	}

	partial := 0
	for _, w := range recs[0].Warnings {
		if strings.Contains(w, "partial allocation") {
			partial++
		}
	}
	if partial == 0 {
		t.Errorf("shorted demands carry no partial warning: %v", recs[0].Warnings)
	}
}

func TestRecommendValueUsesWeightedUnitValue(t *testing.T) {
	record := inventorydomain.InventoryRecord{
		ID:                1,
		ItemName:          "rice",
		QuantityAvailable: 6,
		QuantityReserved:  4,
		TotalValue:        decimal.NewFromInt(50), // unit value 5 across 10 on hand
		Status:            inventorydomain.StatusAvailable,
	}
	records := []inventorydomain.InventoryRecord{
		record,
		stockRecord(2, "canned goods", 100, 100),
		stockRecord(3, "cooking oil", 100, 100),
	}
	requests := []requestdomain.BeneficiaryRequest{
		foodRequest(1, requestdomain.TypeIndividual, requestdomain.UrgencyMedium),
	}

	recs := Recommend(recommendNow, requests, records)
	for _, item := range recs[0].Items {
		if item.InventoryRecordID != 1 {
			continue
		}
		if !item.UnitValue.Equal(decimal.NewFromInt(5)) {
			t.Errorf("unit value = %s, want 5", item.UnitValue)
		}
		if !item.AllocatedValue.Equal(decimal.NewFromInt(25)) {
			t.Errorf("allocated value = %s, want 25", item.AllocatedValue)
		}
	}
}
