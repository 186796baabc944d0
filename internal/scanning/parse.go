package scanning

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

var acceptedDateLayouts = []string{
	"2006-01-02",
	"2006/01/02",
	"01/02/2006",
	"02-01-2006",
}

// parseReceiptJSON parses the model's JSON response into a ScannedReceipt.
// Model output often arrives wrapped in markdown fences or prose, so the
// first balanced object is cut out before unmarshaling.
func parseReceiptJSON(text string) (*ScannedReceipt, error) {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSpace(text)

	startIdx := strings.Index(text, "{")
	if startIdx == -1 {
		return nil, fmt.Errorf("no JSON object found in response")
	}
	endIdx := strings.LastIndex(text, "}")
	if endIdx == -1 || endIdx < startIdx {
		return nil, fmt.Errorf("invalid JSON object in response")
	}
	text = text[startIdx : endIdx+1]

	var receipt ScannedReceipt
	if err := json.Unmarshal([]byte(text), &receipt); err != nil {
		return nil, fmt.Errorf("unmarshaling json: %w", err)
	}

	receipt.Date = normalizeDate(receipt.Date)
	receipt.ReceiptID = strings.TrimSpace(receipt.ReceiptID)

	for i := range receipt.Items {
		item := &receipt.Items[i]
		item.SKU = strings.TrimSpace(item.SKU)
		item.Department = strings.TrimSpace(item.Department)
		item.Name = strings.TrimSpace(item.Name)
		if item.Name == "" {
			item.Name = "Unknown"
		}
		// Models sometimes omit the line total on single-unit lines.
		if item.LineTotal == 0 && item.Quantity != 0 {
			item.LineTotal = item.Quantity * item.UnitPrice
		}
	}

	return &receipt, nil
}

// normalizeDate converts whatever date format the model produced into
// YYYY-MM-DD, or an empty string when nothing parses. An unreadable date is
// left missing rather than guessed, so the record is excluded from
// month-keyed aggregates downstream.
func normalizeDate(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	for _, layout := range acceptedDateLayouts {
		if d, err := time.Parse(layout, s); err == nil {
			return d.Format("2006-01-02")
		}
	}
	return ""
}
