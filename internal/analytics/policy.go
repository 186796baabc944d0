package analytics

import (
	"math"
	"sort"
	"time"

	"github.com/spendlens/spendlens/internal/lineitem"
)

const (
	returnWindowDays = 90
	urgentWindowDays = 14
)

var statusPriority = map[EligibilityStatus]int{
	StatusUrgent:  0,
	StatusLimited: 1,
	StatusAnytime: 2,
	StatusExpired: 3,
}

// buildReturnEligibility evaluates every item's unreturned quantity against
// the department policy table at the given instant. Items that are fully
// returned, or whose department takes no returns, are excluded entirely.
func buildReturnEligibility(records []lineitem.Record, now time.Time) ReturnEligibility {
	order, groups := groupByKey(records, lineitem.Record.ItemKey)

	entries := make([]EligibilityEntry, 0)
	for _, key := range order {
		if entry, ok := evaluateItem(groups[key], now); ok {
			entries = append(entries, entry)
		}
	}

	sort.SliceStable(entries, func(i, j int) bool {
		pi, pj := statusPriority[entries[i].Status], statusPriority[entries[j].Status]
		if pi != pj {
			return pi < pj
		}
		return entries[i].RefundEstimate > entries[j].RefundEstimate
	})

	result := ReturnEligibility{
		All:        entries,
		Returnable: make([]EligibilityEntry, 0),
		Urgent:     make([]EligibilityEntry, 0),
		Expired:    make([]EligibilityEntry, 0),
	}
	for _, e := range entries {
		if e.Status != StatusExpired {
			result.Returnable = append(result.Returnable, e)
			result.TotalPotentialRefund += e.RefundEstimate
			result.TotalReturnableItems += e.NetQuantity
		}
		switch e.Status {
		case StatusUrgent:
			result.Urgent = append(result.Urgent, e)
		case StatusExpired:
			result.Expired = append(result.Expired, e)
		}
	}
	result.TotalPotentialRefund = round2(result.TotalPotentialRefund)
	result.ByDepartment = groupByDepartment(entries)
	return result
}

// evaluateItem sums the item's full purchase and return history and applies
// the department policy window to the most recent purchase.
func evaluateItem(lines []lineitem.Record, now time.Time) (EligibilityEntry, bool) {
	var purchased, returned float64
	var latest *lineitem.Record
	for i := range lines {
		r := &lines[i]
		switch {
		case r.Quantity > 0:
			purchased += r.Quantity
			if latest == nil {
				latest = r
			} else if r.Date != nil && (latest.Date == nil || !r.Date.Before(*latest.Date)) {
				latest = r
			}
		case r.Quantity < 0:
			returned += math.Abs(r.Quantity)
		}
	}

	net := purchased - returned
	if net <= 0 || latest == nil {
		return EligibilityEntry{}, false
	}

	policy, ok := returnPolicies[latest.Department]
	if !ok {
		return EligibilityEntry{}, false
	}

	// An undated purchase is treated as bought today so the entry stays
	// defined instead of being dropped from the window arithmetic.
	daysSince := 0
	if latest.Date != nil {
		daysSince = int(math.Floor(now.Sub(*latest.Date).Hours() / 24))
	}

	entry := EligibilityEntry{
		Name:              latest.Name,
		Department:        latest.Department,
		DepartmentLabel:   policy.Label,
		Policy:            policy.Policy,
		NetQuantity:       net,
		RefundEstimate:    round2(net * latest.UnitPrice),
		DaysSincePurchase: daysSince,
		LastPurchase:      latest.Date,
	}

	switch policy.Policy {
	case Policy90Day:
		entry.DaysRemaining = returnWindowDays - daysSince
		switch {
		case entry.DaysRemaining <= 0:
			entry.Status = StatusExpired
		case entry.DaysRemaining <= urgentWindowDays:
			entry.Status = StatusUrgent
		default:
			entry.Status = StatusLimited
		}
	default:
		entry.Status = StatusAnytime
	}
	return entry, true
}

func groupByDepartment(entries []EligibilityEntry) []DepartmentRefund {
	var order []string
	groups := make(map[string]*DepartmentRefund)
	for _, e := range entries {
		g, ok := groups[e.Department]
		if !ok {
			g = &DepartmentRefund{Department: e.Department, Label: e.DepartmentLabel}
			groups[e.Department] = g
			order = append(order, e.Department)
		}
		g.Items += e.NetQuantity
		g.TotalRefund += e.RefundEstimate
	}

	result := make([]DepartmentRefund, 0, len(order))
	for _, code := range order {
		g := groups[code]
		g.TotalRefund = round2(g.TotalRefund)
		result = append(result, *g)
	}
	return result
}
