package analytics

import (
	"math"
	"sort"

	"github.com/spendlens/spendlens/internal/lineitem"
)

// buildPriceChanges compares each item's chronologically first and last unit
// prices. Items with fewer than two dated observations, or whose observed
// prices never move, are skipped. A zero baseline price yields a 0% change
// rather than an undefined ratio.
func buildPriceChanges(purchases []lineitem.Record) []PriceChange {
	type observation struct {
		date  *lineitem.Record
		price float64
	}

	order, groups := groupByKey(purchases, lineitem.Record.ItemKey)

	changes := make([]PriceChange, 0)
	for _, key := range order {
		var obs []observation
		for i := range groups[key] {
			r := &groups[key][i]
			if r.Date == nil {
				continue
			}
			obs = append(obs, observation{date: r, price: r.UnitPrice})
		}
		if len(obs) < 2 {
			continue
		}

		sort.SliceStable(obs, func(i, j int) bool {
			return obs[i].date.Date.Before(*obs[j].date.Date)
		})

		identical := true
		for _, o := range obs[1:] {
			if o.price != obs[0].price {
				identical = false
				break
			}
		}
		if identical {
			continue
		}

		oldPrice := obs[0].price
		newPrice := obs[len(obs)-1].price
		percent := 0.0
		if oldPrice != 0 {
			percent = round2((newPrice - oldPrice) / oldPrice * 100)
		}
		changes = append(changes, PriceChange{
			Name:          groups[key][0].Name,
			OldPrice:      oldPrice,
			NewPrice:      newPrice,
			Change:        round2(newPrice - oldPrice),
			ChangePercent: percent,
			FirstDate:     *obs[0].date.Date,
			LastDate:      *obs[len(obs)-1].date.Date,
		})
	}

	sort.SliceStable(changes, func(i, j int) bool {
		return math.Abs(changes[i].ChangePercent) > math.Abs(changes[j].ChangePercent)
	})
	return changes
}
