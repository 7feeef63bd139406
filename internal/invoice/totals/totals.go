// Package totals derives invoice amounts from line items. All
// functions are pure; derived figures are never trusted from a client
// payload.
package totals

import (
	"encoding/json"
	"math"
	"strings"

	"github.com/billcraft/billcraft/internal/invoice/domain"
)

// Totals holds the derived amounts of an invoice.
type Totals struct {
	Subtotal float64 `json:"subtotal"`
	Tax      float64 `json:"tax"`
	Total    float64 `json:"total"`
}

// Compute derives subtotal, tax and total from line items and a tax
// percentage. Missing or non-numeric quantities and prices count as 0;
// the result never contains NaN or Inf.
func Compute(items []domain.LineItem, taxPercent float64) Totals {
	var subtotal float64
	for _, it := range items {
		subtotal += it.Amount()
	}

	if math.IsNaN(taxPercent) || math.IsInf(taxPercent, 0) {
		taxPercent = 0
	}

	tax := subtotal * taxPercent / 100
	if math.IsNaN(tax) || math.IsInf(tax, 0) {
		tax = 0
	}

	return Totals{
		Subtotal: subtotal,
		Tax:      tax,
		Total:    subtotal + tax,
	}
}

// DecodeItems accepts either a JSON array of line items or a JSON
// string containing such an array. Malformed encodings degrade to an
// empty list instead of failing the request.
func DecodeItems(raw []byte) []domain.LineItem {
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" || trimmed == "null" {
		return nil
	}

	var items []domain.LineItem
	if err := json.Unmarshal([]byte(trimmed), &items); err == nil {
		return items
	}

	var encoded string
	if err := json.Unmarshal([]byte(trimmed), &encoded); err == nil {
		return DecodeItemsString(encoded)
	}

	return []domain.LineItem{}
}

// DecodeItemsString decodes a serialized line item sequence. Anything
// unparsable yields an empty list.
func DecodeItemsString(s string) []domain.LineItem {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}

	var items []domain.LineItem
	if err := json.Unmarshal([]byte(s), &items); err != nil {
		return []domain.LineItem{}
	}
	return items
}
