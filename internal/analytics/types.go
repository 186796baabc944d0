package analytics

import "time"

// Report is the full bundle of derived metrics for one dataset. Every field
// is materialized fresh on each Analyze call; callers treat it as read-only.
type Report struct {
	Summary             Summary              `json:"summary"`
	MonthlySpending     []MonthlySpend       `json:"monthly_spending"`
	DepartmentBreakdown []DepartmentTotal    `json:"department_breakdown"`
	BasketSizes         []BasketSize         `json:"basket_sizes"`
	TopByFrequency      []RankedItem         `json:"top_by_frequency"`
	TopBySpend          []RankedItem         `json:"top_by_spend"`
	FrequencyTable      []FrequencyRow       `json:"frequency_table"`
	PriceChanges        []PriceChange        `json:"price_changes"`
	Returns             []ReturnRow          `json:"returns"`
	SavingsBreakdown    []SavingsCategory    `json:"savings_breakdown"`
	MonthlySavings      []MonthlySavings     `json:"monthly_savings"`
	TopDiscounts        []Discount           `json:"top_discounts"`
	ReturnEligibility   ReturnEligibility    `json:"return_eligibility"`
	Insights            []Insight            `json:"insights"`
}

// Summary holds the dataset-wide scalar totals.
type Summary struct {
	TotalSpent          float64 `json:"total_spent"`
	TotalPurchaseAmount float64 `json:"total_purchase_amount"`
	TotalReturnAmount   float64 `json:"total_return_amount"`
	TotalTrips          int     `json:"total_trips"`
	TotalItemsPurchased float64 `json:"total_items_purchased"`
	TotalItemsReturned  float64 `json:"total_items_returned"`
	TotalSavings        float64 `json:"total_savings"`
	AvgPerTrip          float64 `json:"avg_per_trip"`
}

// MonthlySpend is one month's purchase and return totals. Month keys use the
// "2006-01" layout and the series is sorted ascending.
type MonthlySpend struct {
	Month     string  `json:"month"`
	Purchases float64 `json:"purchases"`
	Returns   float64 `json:"returns"`
}

// DepartmentTotal is purchase spend for one department, sorted descending.
type DepartmentTotal struct {
	Department string  `json:"department"`
	Label      string  `json:"label"`
	Total      float64 `json:"total"`
}

// BasketSize is the average items per shopping trip for one month.
type BasketSize struct {
	Month    string  `json:"month"`
	AvgItems float64 `json:"avg_items"`
	Trips    int     `json:"trips"`
}

// RankedItem is one row of a top-N item table. Label is truncated for
// display; Name carries the full item name.
type RankedItem struct {
	Label      string  `json:"label"`
	Name       string  `json:"name"`
	Count      float64 `json:"count"`
	TotalSpent float64 `json:"total_spent"`
}

// FrequencyRow is one row of the unlimited purchase-frequency table.
type FrequencyRow struct {
	Name          string     `json:"name"`
	Count         float64    `json:"count"`
	TotalSpent    float64    `json:"total_spent"`
	FirstPurchase *time.Time `json:"first_purchase,omitempty"`
	LastPurchase  *time.Time `json:"last_purchase,omitempty"`
}

// PriceChange describes an item whose unit price moved between its first and
// last dated purchase.
type PriceChange struct {
	Name          string    `json:"name"`
	OldPrice      float64   `json:"old_price"`
	NewPrice      float64   `json:"new_price"`
	Change        float64   `json:"change"`
	ChangePercent float64   `json:"change_percent"`
	FirstDate     time.Time `json:"first_date"`
	LastDate      time.Time `json:"last_date"`
}

// ReturnRow is one returned line item, quantities and refunds as positive
// magnitudes.
type ReturnRow struct {
	Date     *time.Time `json:"date,omitempty"`
	Name     string     `json:"name"`
	Quantity float64    `json:"quantity"`
	Refund   float64    `json:"refund"`
}

// SavingsCategory is one named savings bucket with its deduplicated total.
type SavingsCategory struct {
	Category string  `json:"category"`
	Total    float64 `json:"total"`
}

// MonthlySavings is the combined savings for one month across all four
// savings fields; category detail is intentionally collapsed here.
type MonthlySavings struct {
	Month string  `json:"month"`
	Total float64 `json:"total"`
}

// Discount is one instant-savings observation, first seen per item.
type Discount struct {
	Name            string  `json:"name"`
	UnitPrice       float64 `json:"unit_price"`
	InstantSavings  float64 `json:"instant_savings"`
	DiscountPercent float64 `json:"discount_percent"`
}

// EligibilityStatus classifies how much of the return window remains.
type EligibilityStatus string

const (
	StatusUrgent  EligibilityStatus = "urgent"
	StatusLimited EligibilityStatus = "limited"
	StatusAnytime EligibilityStatus = "anytime"
	StatusExpired EligibilityStatus = "expired"
)

// EligibilityEntry is the return-window evaluation for one item with
// unreturned quantity.
type EligibilityEntry struct {
	Name              string            `json:"name"`
	Department        string            `json:"department"`
	DepartmentLabel   string            `json:"department_label"`
	Policy            ReturnPolicy      `json:"policy"`
	NetQuantity       float64           `json:"net_quantity"`
	RefundEstimate    float64           `json:"refund_estimate"`
	DaysSincePurchase int               `json:"days_since_purchase"`
	DaysRemaining     int               `json:"days_remaining"`
	Status            EligibilityStatus `json:"status"`
	LastPurchase      *time.Time        `json:"last_purchase,omitempty"`
}

// DepartmentRefund groups eligibility entries by department.
type DepartmentRefund struct {
	Department  string  `json:"department"`
	Label       string  `json:"label"`
	Items       float64 `json:"items"`
	TotalRefund float64 `json:"total_refund"`
}

// ReturnEligibility is the full output of the policy engine.
type ReturnEligibility struct {
	All                  []EligibilityEntry `json:"all"`
	Returnable           []EligibilityEntry `json:"returnable"`
	Urgent               []EligibilityEntry `json:"urgent"`
	Expired              []EligibilityEntry `json:"expired"`
	ByDepartment         []DepartmentRefund `json:"by_department"`
	TotalPotentialRefund float64            `json:"total_potential_refund"`
	TotalReturnableItems float64            `json:"total_returnable_items"`
}

// InsightKind is the severity of an advisory notice.
type InsightKind string

const (
	InsightInfo    InsightKind = "info"
	InsightWarning InsightKind = "warning"
	InsightSuccess InsightKind = "success"
)

// Insight is one advisory notice produced by the rule sequence.
type Insight struct {
	Kind  InsightKind `json:"kind"`
	Title string      `json:"title"`
	Text  string      `json:"text"`
}
