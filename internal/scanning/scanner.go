package scanning

// ScannedItem is one line item read off a receipt image.
type ScannedItem struct {
	SKU            string  `json:"sku"`
	Name           string  `json:"name"`
	Department     string  `json:"department"`
	Quantity       float64 `json:"quantity"`
	UnitPrice      float64 `json:"unit_price"`
	LineTotal      float64 `json:"line_total"`
	InstantSavings float64 `json:"instant_savings"`
}

// ScannedReceipt contains the itemized information extracted from a receipt.
type ScannedReceipt struct {
	ReceiptID string        `json:"receipt_id"`
	Date      string        `json:"date"` // ISO 8601 format, empty when unreadable
	Items     []ScannedItem `json:"items"`
}

// Scanner defines the interface for receipt scanning operations
type Scanner interface {
	// ScanReceipt analyzes a receipt image/PDF and extracts its line items
	ScanReceipt(imageData []byte, contentType string) (*ScannedReceipt, error)
	// Close closes the scanner and releases resources
	Close() error
}
