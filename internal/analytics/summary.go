package analytics

import (
	"math"

	"github.com/spendlens/spendlens/internal/lineitem"
)

// buildSummary computes the dataset-wide scalar totals. Trips count distinct
// receipt keys that contain at least one purchase line; a dataset of pure
// returns falls back to counting all distinct receipt keys so the average is
// still defined.
func buildSummary(records, purchases, returns []lineitem.Record) Summary {
	var s Summary

	for _, r := range records {
		s.TotalSpent += r.LineTotal
	}
	for _, r := range purchases {
		s.TotalPurchaseAmount += r.LineTotal
		s.TotalItemsPurchased += r.Quantity
	}
	for _, r := range returns {
		s.TotalReturnAmount += r.LineTotal
		s.TotalItemsReturned += math.Abs(r.Quantity)
	}
	s.TotalReturnAmount = math.Abs(s.TotalReturnAmount)

	s.TotalTrips = countTrips(records, purchases)
	s.TotalSavings = dedupeReceiptSavings(records).absSum()

	if s.TotalTrips > 0 {
		s.AvgPerTrip = s.TotalSpent / float64(s.TotalTrips)
	}
	return s
}

func countTrips(records, purchases []lineitem.Record) int {
	trips := distinctReceiptKeys(purchases)
	if trips == 0 {
		trips = distinctReceiptKeys(records)
	}
	return trips
}

func distinctReceiptKeys(records []lineitem.Record) int {
	seen := make(map[string]bool)
	for _, r := range records {
		seen[r.ReceiptKey()] = true
	}
	return len(seen)
}
