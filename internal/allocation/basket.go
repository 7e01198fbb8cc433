package allocation

import (
	"strings"

	requestdomain "github.com/givebridge/distribution/internal/request/domain"
)

// BasketItem is one target line in a purpose basket, with a base quantity
// sized for an individual beneficiary.
type BasketItem struct {
	Item     string
	Quantity int
}

// Baskets per purpose category. Base quantities are per-individual and get
// scaled by beneficiary type.
var purposeBaskets = map[requestdomain.Purpose][]BasketItem{
	requestdomain.PurposeFood: {
		{Item: "rice", Quantity: 5},
		{Item: "canned goods", Quantity: 10},
		{Item: "cooking oil", Quantity: 2},
	},
	requestdomain.PurposeHygiene: {
		{Item: "soap", Quantity: 5},
		{Item: "shampoo", Quantity: 5},
		{Item: "toothpaste", Quantity: 3},
	},
	requestdomain.PurposeClothing: {
		{Item: "clothing", Quantity: 5},
		{Item: "blanket", Quantity: 2},
	},
	requestdomain.PurposeEducation: {
		{Item: "notebook", Quantity: 10},
		{Item: "school supplies", Quantity: 5},
		{Item: "backpack", Quantity: 1},
	},
	requestdomain.PurposeMedical: {
		{Item: "first aid kit", Quantity: 1},
		{Item: "medicine", Quantity: 3},
		{Item: "vitamins", Quantity: 5},
	},
}

// keywordRules maps free-text purpose keywords onto a category, for legacy
// requests that were never categorized at intake. First match wins.
var keywordRules = []struct {
	keywords []string
	purpose  requestdomain.Purpose
}{
	{[]string{"food", "meal", "grocery", "hunger"}, requestdomain.PurposeFood},
	{[]string{"hygiene", "sanitary", "toiletries"}, requestdomain.PurposeHygiene},
	{[]string{"clothing", "clothes", "apparel"}, requestdomain.PurposeClothing},
	{[]string{"school", "education", "study"}, requestdomain.PurposeEducation},
	{[]string{"medical", "medicine", "emergency", "health"}, requestdomain.PurposeMedical},
}

// CategorizePurpose derives a purpose category from free text. Empty result
// means no keyword matched.
func CategorizePurpose(freeText string) requestdomain.Purpose {
	text := strings.ToLower(freeText)
	for _, rule := range keywordRules {
		for _, kw := range rule.keywords {
			if strings.Contains(text, kw) {
				return rule.purpose
			}
		}
	}
	return ""
}

// typeMultiplier scales per-individual basket quantities up for larger
// beneficiary types.
func typeMultiplier(bt requestdomain.BeneficiaryType) int {
	switch bt {
	case requestdomain.TypeFamily:
		return 2
	case requestdomain.TypeInstitution:
		return 3
	case requestdomain.TypeCommunity:
		return 4
	default:
		return 1
	}
}

// BasketFor derives the target item list for a request: the category set at
// intake wins, then keyword matching on the free-text purpose, then a default
// food+hygiene basket. Quantities are scaled by beneficiary type.
func BasketFor(req *requestdomain.BeneficiaryRequest) []BasketItem {
	purpose := req.PurposeCategory
	if purpose == "" || purpose == requestdomain.PurposeOther {
		purpose = CategorizePurpose(req.Purpose)
	}

	var base []BasketItem
	if items, ok := purposeBaskets[purpose]; ok {
		base = items
	} else {
		// Default basket: essentials from food and hygiene
		base = append(base, purposeBaskets[requestdomain.PurposeFood]...)
		base = append(base, purposeBaskets[requestdomain.PurposeHygiene]...)
	}

	mult := typeMultiplier(req.BeneficiaryType)
	scaled := make([]BasketItem, len(base))
	for i, item := range base {
		scaled[i] = BasketItem{Item: item.Item, Quantity: item.Quantity * mult}
	}
	return scaled
}
