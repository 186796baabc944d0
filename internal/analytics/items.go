package analytics

import (
	"math"
	"sort"

	"github.com/spendlens/spendlens/internal/lineitem"
)

const (
	topItemLimit  = 20
	maxLabelRunes = 35
)

type itemStats struct {
	name  string
	count float64
	spent float64
	first *lineitem.Record
	last  *lineitem.Record
}

// collectItemStats groups purchase lines by item key and accumulates
// quantity, spend, and the earliest/latest dated observations. Key order is
// first-seen so ties sort deterministically.
func collectItemStats(purchases []lineitem.Record) []itemStats {
	order, groups := groupByKey(purchases, lineitem.Record.ItemKey)

	stats := make([]itemStats, 0, len(order))
	for _, key := range order {
		lines := groups[key]
		st := itemStats{name: lines[0].Name}
		for i := range lines {
			r := &lines[i]
			st.count += math.Abs(r.Quantity)
			st.spent += r.LineTotal
			if r.Date == nil {
				continue
			}
			if st.first == nil || r.Date.Before(*st.first.Date) {
				st.first = r
			}
			if st.last == nil || !r.Date.Before(*st.last.Date) {
				st.last = r
			}
		}
		stats = append(stats, st)
	}
	return stats
}

// buildTopByFrequency ranks items by total purchased quantity.
func buildTopByFrequency(stats []itemStats) []RankedItem {
	ranked := rankItems(stats)
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].Count > ranked[j].Count })
	return limitItems(ranked)
}

// buildTopBySpend ranks items by total purchase amount.
func buildTopBySpend(stats []itemStats) []RankedItem {
	ranked := rankItems(stats)
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].TotalSpent > ranked[j].TotalSpent })
	return limitItems(ranked)
}

func rankItems(stats []itemStats) []RankedItem {
	ranked := make([]RankedItem, 0, len(stats))
	for _, st := range stats {
		ranked = append(ranked, RankedItem{
			Label:      truncateLabel(st.name),
			Name:       st.name,
			Count:      st.count,
			TotalSpent: st.spent,
		})
	}
	return ranked
}

func limitItems(ranked []RankedItem) []RankedItem {
	if len(ranked) > topItemLimit {
		ranked = ranked[:topItemLimit]
	}
	return ranked
}

// truncateLabel shortens long item names for chart axes, keeping the full
// name available alongside.
func truncateLabel(name string) string {
	runes := []rune(name)
	if len(runes) <= maxLabelRunes {
		return name
	}
	return string(runes[:maxLabelRunes]) + "..."
}

// buildFrequencyTable is the unlimited item table: count, spend, and
// first/last purchase dates, descending by count. Presentation may cap the
// rows it shows; the engine always returns the whole table.
func buildFrequencyTable(stats []itemStats) []FrequencyRow {
	rows := make([]FrequencyRow, 0, len(stats))
	for _, st := range stats {
		row := FrequencyRow{
			Name:       st.name,
			Count:      st.count,
			TotalSpent: st.spent,
		}
		if st.first != nil {
			row.FirstPurchase = st.first.Date
		}
		if st.last != nil {
			row.LastPurchase = st.last.Date
		}
		rows = append(rows, row)
	}

	sort.SliceStable(rows, func(i, j int) bool { return rows[i].Count > rows[j].Count })
	return rows
}
