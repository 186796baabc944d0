package scanning

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"  // Register GIF decoder
	_ "image/jpeg" // Register JPEG decoder
	"image/png"
	"strings"

	"github.com/gen2brain/go-fitz"
	"github.com/gen2brain/heic"
)

// receiptScanPrompt is the shared prompt used by all LLM providers for
// itemized receipt extraction
const receiptScanPrompt = `You are analyzing a retail warehouse receipt. Carefully read every printed line and extract the itemized purchase data:

1. **Receipt number**: The receipt, member, or transaction number printed on the receipt, if visible.

2. **Date**: The transaction date, converted to ISO 8601 format (YYYY-MM-DD).

3. **Line items**: Every product line on the receipt. For each line extract:
   - "sku": the item number printed next to the product (digits), or "" if absent
   - "name": the product description as printed
   - "department": the department code if printed (digits), or "" if absent
   - "quantity": units bought as a number; negative for refunded/returned lines
   - "unit_price": price per unit in dollars
   - "line_total": the extended line amount in dollars; negative for refunds
   - "instant_savings": the instant savings amount for that line (lines marked with a trailing minus or "INSTANT SAVINGS"), or 0

Return ONLY valid JSON in this exact format:
{
  "receipt_id": "123456789",
  "date": "YYYY-MM-DD",
  "items": [
    {"sku": "", "name": "", "department": "", "quantity": 1, "unit_price": 0.00, "line_total": 0.00, "instant_savings": 0.00}
  ]
}

Important:
- Numbers must be JSON numbers, not strings
- Do not invent items; skip subtotal, tax, and total lines
- Keep the order of items as printed on the receipt
- Do not include any text before or after the JSON
- Do not use markdown code blocks`

// pdfToImage renders the first page of a PDF as PNG. Receipts are almost
// always single page.
func pdfToImage(pdfData []byte) ([]byte, error) {
	doc, err := fitz.NewFromMemory(pdfData)
	if err != nil {
		return nil, fmt.Errorf("opening PDF: %w", err)
	}
	defer doc.Close()

	img, err := doc.Image(0)
	if err != nil {
		return nil, fmt.Errorf("rendering PDF page: %w", err)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encoding PNG: %w", err)
	}
	return buf.Bytes(), nil
}

// imageToPNG converts any supported image format to PNG. HEIC/HEIF (common on
// phones) needs its own decoder; Go's image package does not register one.
func imageToPNG(imageData []byte, mimeType string) ([]byte, error) {
	var img image.Image
	var err error

	if isHEIC(imageData, mimeType) {
		img, err = heic.Decode(bytes.NewReader(imageData))
		if err != nil {
			return nil, fmt.Errorf("decoding HEIC/HEIF image: %w", err)
		}
	} else {
		img, _, err = image.Decode(bytes.NewReader(imageData))
		if err != nil {
			return nil, fmt.Errorf("decoding image (supported: JPEG, PNG, GIF, HEIC, HEIF, PDF): %w", err)
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encoding PNG: %w", err)
	}
	return buf.Bytes(), nil
}

// isHEIC detects HEIC/HEIF content by ftyp brand or MIME type.
func isHEIC(data []byte, mimeType string) bool {
	if len(data) >= 12 && string(data[4:8]) == "ftyp" {
		switch string(data[8:12]) {
		case "heic", "heif", "mif1", "msf1":
			return true
		}
	}
	mimeType = strings.ToLower(strings.TrimSpace(mimeType))
	return strings.Contains(mimeType, "heic") || strings.Contains(mimeType, "heif")
}

// prepareImageData normalizes whatever the caller uploaded into PNG bytes the
// vision models accept.
func prepareImageData(imageData []byte, contentType string) ([]byte, error) {
	mimeType := strings.ToLower(strings.TrimSpace(contentType))
	if mimeType == "" {
		mimeType = "image/jpeg"
	}

	switch {
	case mimeType == "application/pdf":
		pngData, err := pdfToImage(imageData)
		if err != nil {
			return nil, fmt.Errorf("converting PDF to image: %w", err)
		}
		return pngData, nil
	case mimeType != "image/png" || isHEIC(imageData, mimeType):
		pngData, err := imageToPNG(imageData, mimeType)
		if err != nil {
			return nil, fmt.Errorf("converting image to PNG: %w", err)
		}
		return pngData, nil
	default:
		return imageData, nil
	}
}
