package analytics

import (
	"fmt"
	"sort"
	"strings"
)

const (
	repeatPurchaseCount = 2
	stapleCount         = 3
	returnRateThreshold = 5.0
	savingsRateLimit    = 5.0
	trendMonths         = 3
)

// insightInputs carries the aggregator outputs the rules read. Rules never
// look at raw records, so the sequence is a pure function of these values.
type insightInputs struct {
	summary      Summary
	monthly      []MonthlySpend
	frequency    []FrequencyRow
	priceChanges []PriceChange
}

// buildInsights evaluates the six advisory rules in fixed order. Each rule
// appends at most one insight; the order is part of the output contract and
// is never re-sorted.
func buildInsights(in insightInputs) []Insight {
	insights := make([]Insight, 0, 6)

	if insight, ok := risingPricesInsight(in.priceChanges); ok {
		insights = append(insights, insight)
	}
	if insight, ok := repeatExpensesInsight(in.frequency); ok {
		insights = append(insights, insight)
	}
	insights = append(insights, purchasePatternsInsight(in.frequency))
	insights = append(insights, returnRateInsight(in.summary))
	if insight, ok := spendingTrendInsight(in.monthly); ok {
		insights = append(insights, insight)
	}
	if insight, ok := savingsRateInsight(in.summary); ok {
		insights = append(insights, insight)
	}
	return insights
}

// risingPricesInsight warns when any tracked item got more expensive, naming
// the three largest movers.
func risingPricesInsight(changes []PriceChange) (Insight, bool) {
	var rising []PriceChange
	for _, c := range changes {
		if c.Change > 0 {
			rising = append(rising, c)
		}
	}
	if len(rising) == 0 {
		return Insight{}, false
	}

	top := rising
	if len(top) > 3 {
		top = top[:3]
	}
	parts := make([]string, 0, len(top))
	for _, c := range top {
		parts = append(parts, fmt.Sprintf("%s (+$%.2f, +%.1f%%)", c.Name, c.Change, c.ChangePercent))
	}

	return Insight{
		Kind:  InsightWarning,
		Title: "Rising Prices",
		Text: fmt.Sprintf("%d of your items cost more than they used to: %s.",
			len(rising), strings.Join(parts, ", ")),
	}, true
}

// repeatExpensesInsight names the three repeat purchases you spend the most
// on.
func repeatExpensesInsight(frequency []FrequencyRow) (Insight, bool) {
	var repeats []FrequencyRow
	for _, row := range frequency {
		if row.Count >= repeatPurchaseCount {
			repeats = append(repeats, row)
		}
	}
	if len(repeats) == 0 {
		return Insight{}, false
	}

	sort.SliceStable(repeats, func(i, j int) bool {
		return repeats[i].TotalSpent > repeats[j].TotalSpent
	})
	if len(repeats) > 3 {
		repeats = repeats[:3]
	}
	parts := make([]string, 0, len(repeats))
	for _, row := range repeats {
		parts = append(parts, fmt.Sprintf("%s ($%.2f)", row.Name, row.TotalSpent))
	}

	return Insight{
		Kind:  InsightInfo,
		Title: "Biggest Repeat Expenses",
		Text:  fmt.Sprintf("Your biggest repeat purchases are %s.", strings.Join(parts, ", ")),
	}, true
}

// purchasePatternsInsight always fires: staples (bought 3+ times) versus
// one-time purchases.
func purchasePatternsInsight(frequency []FrequencyRow) Insight {
	var staples []string
	once := 0
	for _, row := range frequency {
		if row.Count >= stapleCount {
			staples = append(staples, row.Name)
		}
		if row.Count == 1 {
			once++
		}
	}

	text := fmt.Sprintf("You have %d staple items (bought 3+ times) and %d one-time purchases.",
		len(staples), once)
	if len(staples) > 0 {
		named := staples
		if len(named) > 5 {
			named = named[:5]
		}
		text += fmt.Sprintf(" Staples: %s.", strings.Join(named, ", "))
	}

	return Insight{
		Kind:  InsightInfo,
		Title: "Purchase Patterns",
		Text:  text,
	}
}

// returnRateInsight reports the share of purchased items that came back.
func returnRateInsight(s Summary) Insight {
	rate := 0.0
	if s.TotalItemsPurchased > 0 {
		rate = s.TotalItemsReturned / s.TotalItemsPurchased * 100
	}

	if rate > returnRateThreshold {
		return Insight{
			Kind:  InsightWarning,
			Title: "Return Rate",
			Text:  fmt.Sprintf("You returned %.1f%% of the items you purchased.", round1(rate)),
		}
	}
	return Insight{
		Kind:  InsightSuccess,
		Title: "Return Rate",
		Text:  fmt.Sprintf("Your return rate is a low %.1f%%.", round1(rate)),
	}
}

// spendingTrendInsight looks at the last three purchase months and fires only
// on a strict monotonic run.
func spendingTrendInsight(monthly []MonthlySpend) (Insight, bool) {
	var months []MonthlySpend
	for _, m := range monthly {
		if m.Purchases > 0 {
			months = append(months, m)
		}
	}
	if len(months) < trendMonths {
		return Insight{}, false
	}

	last := months[len(months)-trendMonths:]
	increasing := last[0].Purchases < last[1].Purchases && last[1].Purchases < last[2].Purchases
	decreasing := last[0].Purchases > last[1].Purchases && last[1].Purchases > last[2].Purchases

	detail := fmt.Sprintf("$%.2f, $%.2f, then $%.2f over the last three months",
		last[0].Purchases, last[1].Purchases, last[2].Purchases)

	switch {
	case increasing:
		return Insight{
			Kind:  InsightWarning,
			Title: "Spending Is Trending Up",
			Text:  fmt.Sprintf("Your monthly spending went %s.", detail),
		}, true
	case decreasing:
		return Insight{
			Kind:  InsightSuccess,
			Title: "Spending Is Trending Down",
			Text:  fmt.Sprintf("Your monthly spending went %s.", detail),
		}, true
	default:
		return Insight{}, false
	}
}

// savingsRateInsight reports savings as a share of purchase spend.
func savingsRateInsight(s Summary) (Insight, bool) {
	if s.TotalPurchaseAmount <= 0 {
		return Insight{}, false
	}
	rate := s.TotalSavings / s.TotalPurchaseAmount * 100

	if rate > savingsRateLimit {
		return Insight{
			Kind:  InsightSuccess,
			Title: "Savings Rate",
			Text:  fmt.Sprintf("You saved %.1f%% ($%.2f) on your purchases.", round1(rate), s.TotalSavings),
		}, true
	}
	return Insight{
		Kind:  InsightInfo,
		Title: "Savings Rate",
		Text:  fmt.Sprintf("You saved %.1f%% ($%.2f) on your purchases.", round1(rate), s.TotalSavings),
	}, true
}
