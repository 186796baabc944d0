package ingest

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/spendlens/spendlens/internal/lineitem"
)

// dateLayouts are tried in order when parsing transaction dates.
var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	time.RFC3339,
	"2006/01/02",
	"01/02/2006",
	"02-01-2006",
}

// ParseCSV reads a normalized line-item export into records. Header names are
// matched case-insensitively after snake_casing, so "Unit Price" and
// "unit_price" address the same column. Per the input contract, numeric
// fields that fail to parse become 0, dates that fail to parse become nil,
// identifiers are trimmed, and a missing item name falls back to "Unknown".
func ParseCSV(r io.Reader) ([]lineitem.Record, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	headers, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("reading csv header: %w", err)
	}

	cols := make(map[string]int, len(headers))
	for i, h := range headers {
		cols[toSnakeCase(strings.TrimSpace(h))] = i
	}

	var records []lineitem.Record
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading csv row: %w", err)
		}

		field := func(names ...string) string {
			for _, name := range names {
				if idx, ok := cols[name]; ok && idx < len(row) {
					return strings.TrimSpace(row[idx])
				}
			}
			return ""
		}

		name := field("name", "item_name", "description")
		if name == "" {
			name = "Unknown"
		}

		records = append(records, lineitem.Record{
			ReceiptID:       field("receipt_id", "receipt"),
			OrderID:         field("order_id", "order"),
			Date:            parseDate(field("date", "transaction_date", "purchase_date")),
			Department:      field("department", "department_code", "dept"),
			SKU:             field("sku", "item_number"),
			Name:            name,
			Quantity:        parseNumber(field("quantity", "qty")),
			UnitPrice:       parseNumber(field("unit_price", "price")),
			LineTotal:       parseNumber(field("line_total", "total", "amount")),
			InstantSavings:  parseNumber(field("instant_savings")),
			DiscountAmount:  parseNumber(field("discount_amount", "discount")),
			CouponApplied:   parseNumber(field("coupon_applied", "coupon")),
			ShopCardApplied: parseNumber(field("shop_card_applied", "shop_card")),
		})
	}

	return records, nil
}

// parseNumber coerces a cell to float64, defaulting to 0 when empty or
// malformed. Currency symbols and thousands separators are stripped first.
func parseNumber(s string) float64 {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "$")
	s = strings.ReplaceAll(s, ",", "")
	if s == "" {
		return 0
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}

// parseDate tries each accepted layout and returns nil when none matches.
func parseDate(s string) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return &t
		}
	}
	return nil
}

// toSnakeCase converts "Column Name" to "column_name".
func toSnakeCase(s string) string {
	s = strings.ToLower(s)
	s = strings.ReplaceAll(s, " ", "_")
	s = strings.ReplaceAll(s, "-", "_")
	return s
}
