package analytics

import (
	"sort"

	"github.com/spendlens/spendlens/internal/lineitem"
)

// buildTopDiscounts ranks instant-savings observations by discount percent.
// Only the first-seen record per item counts; a later, deeper discount on the
// same item does not replace it. Items priced at or below zero report a 0%
// discount.
func buildTopDiscounts(purchases []lineitem.Record) []Discount {
	seen := make(map[string]bool)
	discounts := make([]Discount, 0)

	for _, r := range purchases {
		if r.InstantSavings <= 0 {
			continue
		}
		key := r.ItemKey()
		if seen[key] {
			continue
		}
		seen[key] = true

		percent := 0.0
		if r.UnitPrice > 0 {
			percent = round2(r.InstantSavings / r.UnitPrice * 100)
		}
		discounts = append(discounts, Discount{
			Name:            r.Name,
			UnitPrice:       r.UnitPrice,
			InstantSavings:  r.InstantSavings,
			DiscountPercent: percent,
		})
	}

	sort.SliceStable(discounts, func(i, j int) bool {
		return discounts[i].DiscountPercent > discounts[j].DiscountPercent
	})
	return discounts
}
