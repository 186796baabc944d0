package analytics

import (
	"math"
	"sort"

	"github.com/spendlens/spendlens/internal/lineitem"
)

// buildMonthlySpending buckets purchase and return amounts by month. Records
// without a parseable date are excluded here but still counted in the
// date-independent summary totals.
func buildMonthlySpending(purchases, returns []lineitem.Record) []MonthlySpend {
	buckets := make(map[string]*MonthlySpend)
	var order []string

	add := func(r lineitem.Record, isReturn bool) {
		month := r.MonthKey()
		if month == "" {
			return
		}
		b, ok := buckets[month]
		if !ok {
			b = &MonthlySpend{Month: month}
			buckets[month] = b
			order = append(order, month)
		}
		if isReturn {
			b.Returns += math.Abs(r.LineTotal)
		} else {
			b.Purchases += r.LineTotal
		}
	}

	for _, r := range purchases {
		add(r, false)
	}
	for _, r := range returns {
		add(r, true)
	}

	sort.Strings(order)
	series := make([]MonthlySpend, 0, len(order))
	for _, month := range order {
		series = append(series, *buckets[month])
	}
	return series
}

// buildDepartmentBreakdown sums purchase totals per department code, mapped
// through the fixed label table. Unknown codes get a synthetic label.
func buildDepartmentBreakdown(purchases []lineitem.Record) []DepartmentTotal {
	order, groups := groupByKey(purchases, func(r lineitem.Record) string { return r.Department })

	breakdown := make([]DepartmentTotal, 0, len(order))
	for _, code := range order {
		var total float64
		for _, r := range groups[code] {
			total += r.LineTotal
		}
		breakdown = append(breakdown, DepartmentTotal{
			Department: code,
			Label:      departmentLabel(code),
			Total:      total,
		})
	}

	sort.SliceStable(breakdown, func(i, j int) bool {
		return breakdown[i].Total > breakdown[j].Total
	})
	return breakdown
}

// buildBasketSizes averages items per shopping trip per month. Each receipt
// contributes its total purchased quantity to the month of its first dated
// line; receipts with no parseable date are excluded.
func buildBasketSizes(purchases []lineitem.Record) []BasketSize {
	receiptOrder, receipts := groupByKey(purchases, lineitem.Record.ReceiptKey)

	type bucket struct {
		items float64
		trips int
	}
	months := make(map[string]*bucket)
	var order []string

	for _, key := range receiptOrder {
		lines := receipts[key]
		month := ""
		var items float64
		for _, r := range lines {
			items += math.Abs(r.Quantity)
			if month == "" {
				month = r.MonthKey()
			}
		}
		if month == "" {
			continue
		}
		b, ok := months[month]
		if !ok {
			b = &bucket{}
			months[month] = b
			order = append(order, month)
		}
		b.items += items
		b.trips++
	}

	sort.Strings(order)
	series := make([]BasketSize, 0, len(order))
	for _, month := range order {
		b := months[month]
		series = append(series, BasketSize{
			Month:    month,
			AvgItems: b.items / float64(b.trips),
			Trips:    b.trips,
		})
	}
	return series
}
