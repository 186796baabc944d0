package analytics

import (
	"time"

	"github.com/spendlens/spendlens/internal/lineitem"
)

// TimeSource provides the evaluation instant for return windows
type TimeSource interface {
	Now() time.Time
}

// defaultTimeSource provides the current time
type defaultTimeSource struct{}

func (t *defaultTimeSource) Now() time.Time {
	return time.Now()
}

// Engine computes the full analytics bundle for one dataset. It holds no
// per-dataset state; every Analyze call reads only its input and returns a
// fresh Report. Only the return-eligibility evaluation consults the clock.
type Engine struct {
	timeSource TimeSource
}

// NewEngine creates a new Engine with the default time source
func NewEngine() *Engine {
	return &Engine{timeSource: &defaultTimeSource{}}
}

// NewEngineWithDeps creates a new Engine with a custom time source for testing
func NewEngineWithDeps(timeSource TimeSource) *Engine {
	return &Engine{timeSource: timeSource}
}

// Analyze runs every aggregator over the record sequence and assembles the
// result bundle. The input is never mutated.
func (e *Engine) Analyze(records []lineitem.Record) *Report {
	purchases, returns := Partition(records)
	stats := collectItemStats(purchases)

	report := &Report{
		Summary:             buildSummary(records, purchases, returns),
		MonthlySpending:     buildMonthlySpending(purchases, returns),
		DepartmentBreakdown: buildDepartmentBreakdown(purchases),
		BasketSizes:         buildBasketSizes(purchases),
		TopByFrequency:      buildTopByFrequency(stats),
		TopBySpend:          buildTopBySpend(stats),
		FrequencyTable:      buildFrequencyTable(stats),
		PriceChanges:        buildPriceChanges(purchases),
		Returns:             buildReturnsTable(returns),
		SavingsBreakdown:    buildSavingsBreakdown(records),
		MonthlySavings:      buildMonthlySavings(records),
		TopDiscounts:        buildTopDiscounts(purchases),
		ReturnEligibility:   buildReturnEligibility(records, e.timeSource.Now()),
	}

	report.Insights = buildInsights(insightInputs{
		summary:      report.Summary,
		monthly:      report.MonthlySpending,
		frequency:    report.FrequencyTable,
		priceChanges: report.PriceChanges,
	})
	return report
}
