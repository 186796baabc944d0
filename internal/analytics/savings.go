package analytics

import (
	"math"
	"sort"

	"github.com/spendlens/spendlens/internal/lineitem"
)

// buildSavingsBreakdown reports one category per savings field with its
// deduplicated absolute total. Zero-value categories are omitted.
func buildSavingsBreakdown(records []lineitem.Record) []SavingsCategory {
	totals := dedupeReceiptSavings(records)

	categories := []SavingsCategory{
		{Category: "Instant Savings", Total: math.Abs(totals.Instant)},
		{Category: "Discounts", Total: math.Abs(totals.Discount)},
		{Category: "Coupons", Total: math.Abs(totals.Coupon)},
		{Category: "Shop Card", Total: math.Abs(totals.ShopCard)},
	}

	breakdown := make([]SavingsCategory, 0, len(categories))
	for _, c := range categories {
		if c.Total != 0 {
			breakdown = append(breakdown, c)
		}
	}
	return breakdown
}

// buildMonthlySavings buckets deduplicated savings by month. The first record
// of each receipt contributes all four fields as a single combined scalar;
// receipts with no parseable date on that record are excluded from the
// series.
func buildMonthlySavings(records []lineitem.Record) []MonthlySavings {
	buckets := make(map[string]float64)
	var order []string
	seen := make(map[string]bool)

	for _, r := range records {
		key := r.ReceiptKey()
		if seen[key] {
			continue
		}
		seen[key] = true

		month := r.MonthKey()
		if month == "" {
			continue
		}
		total := math.Abs(r.InstantSavings) + math.Abs(r.DiscountAmount) +
			math.Abs(r.CouponApplied) + math.Abs(r.ShopCardApplied)
		if _, ok := buckets[month]; !ok {
			order = append(order, month)
		}
		buckets[month] += total
	}

	sort.Strings(order)
	series := make([]MonthlySavings, 0, len(order))
	for _, month := range order {
		series = append(series, MonthlySavings{Month: month, Total: buckets[month]})
	}
	return series
}
