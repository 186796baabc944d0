package analytics

import (
	"math"
	"sort"

	"github.com/spendlens/spendlens/internal/lineitem"
)

// buildReturnsTable lists each return line with its quantity and refund as
// positive magnitudes, newest first. Rows without a parseable date sort as
// the oldest.
func buildReturnsTable(returns []lineitem.Record) []ReturnRow {
	rows := make([]ReturnRow, 0, len(returns))
	for _, r := range returns {
		rows = append(rows, ReturnRow{
			Date:     r.Date,
			Name:     r.Name,
			Quantity: math.Abs(r.Quantity),
			Refund:   math.Abs(r.LineTotal),
		})
	}

	sort.SliceStable(rows, func(i, j int) bool {
		di, dj := rows[i].Date, rows[j].Date
		switch {
		case di == nil:
			return false
		case dj == nil:
			return true
		default:
			return di.After(*dj)
		}
	})
	return rows
}
