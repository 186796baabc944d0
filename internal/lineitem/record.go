package lineitem

import (
	"strings"
	"time"
)

// Record represents one normalized line item from a receipt. Quantity sign is
// the purchase/return discriminator: positive quantities are purchases,
// negative quantities are returns. Savings fields are repeated identically on
// every line of a receipt, so totals over them must count each receipt once.
type Record struct {
	ReceiptID       string     `json:"receipt_id"`
	OrderID         string     `json:"order_id"`
	Date            *time.Time `json:"date,omitempty"`
	Department      string     `json:"department"`
	SKU             string     `json:"sku"`
	Name            string     `json:"name"`
	Quantity        float64    `json:"quantity"`
	UnitPrice       float64    `json:"unit_price"`
	LineTotal       float64    `json:"line_total"`
	InstantSavings  float64    `json:"instant_savings"`
	DiscountAmount  float64    `json:"discount_amount"`
	CouponApplied   float64    `json:"coupon_applied"`
	ShopCardApplied float64    `json:"shop_card_applied"`
}

// ReceiptKey returns the identifier grouping lines into a receipt: the
// receipt ID, falling back to the order ID.
func (r Record) ReceiptKey() string {
	if key := strings.TrimSpace(r.ReceiptID); key != "" {
		return key
	}
	return strings.TrimSpace(r.OrderID)
}

// ItemKey returns the identifier grouping lines into an item: the SKU,
// falling back to the item name.
func (r Record) ItemKey() string {
	if key := strings.TrimSpace(r.SKU); key != "" {
		return key
	}
	return strings.TrimSpace(r.Name)
}

// MonthKey returns the "2006-01" bucket for the record's date, or an empty
// string when the date is missing. The layout sorts lexicographically in
// chronological order.
func (r Record) MonthKey() string {
	if r.Date == nil {
		return ""
	}
	return r.Date.Format("2006-01")
}

// Dataset is one imported, closed set of line item records. Records are
// immutable once stored; importing the same file again creates a new dataset.
type Dataset struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	SourceFile  string    `json:"source_file,omitempty"`
	RecordCount int       `json:"record_count"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
