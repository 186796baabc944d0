package analytics

import (
	"math"

	"github.com/spendlens/spendlens/internal/lineitem"
)

// Partition splits records into purchases (quantity > 0) and returns
// (quantity < 0). Zero-quantity records belong to neither partition.
func Partition(records []lineitem.Record) (purchases, returns []lineitem.Record) {
	for _, r := range records {
		switch {
		case r.Quantity > 0:
			purchases = append(purchases, r)
		case r.Quantity < 0:
			returns = append(returns, r)
		}
	}
	return purchases, returns
}

// savingsTotals holds one deduplicated total per savings field.
type savingsTotals struct {
	Instant  float64
	Discount float64
	Coupon   float64
	ShopCard float64
}

// dedupeReceiptSavings walks records in input order and accumulates the four
// savings fields from the first record of each receipt only. The remaining
// lines of a receipt repeat the same values, so adding them would overcount
// by the receipt's line count.
func dedupeReceiptSavings(records []lineitem.Record) savingsTotals {
	var totals savingsTotals
	seen := make(map[string]bool)
	for _, r := range records {
		key := r.ReceiptKey()
		if seen[key] {
			continue
		}
		seen[key] = true
		totals.Instant += r.InstantSavings
		totals.Discount += r.DiscountAmount
		totals.Coupon += r.CouponApplied
		totals.ShopCard += r.ShopCardApplied
	}
	return totals
}

// absSum is the combined magnitude of all four savings fields.
func (t savingsTotals) absSum() float64 {
	return math.Abs(t.Instant) + math.Abs(t.Discount) + math.Abs(t.Coupon) + math.Abs(t.ShopCard)
}

// round2 rounds to 2 decimal places.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// round1 rounds to 1 decimal place, used for reported rates.
func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// groupByKey groups records preserving first-seen key order, so downstream
// stable sorts produce identical output regardless of map iteration order.
func groupByKey(records []lineitem.Record, keyFn func(lineitem.Record) string) (order []string, groups map[string][]lineitem.Record) {
	groups = make(map[string][]lineitem.Record)
	for _, r := range records {
		key := keyFn(r)
		if _, ok := groups[key]; !ok {
			order = append(order, key)
		}
		groups[key] = append(groups[key], r)
	}
	return order, groups
}
