// Package pricing computes checkout totals. It is pure: no I/O, no clock, no
// side effects. All arithmetic uses fixed-point decimals so repeated additions
// never drift the way binary floats do.
package pricing

import (
	"github.com/shopspring/decimal"

	"github.com/joao-fontenele/storefront-core/internal/domain"
)

var oneHundred = decimal.NewFromInt(100)

type Totals struct {
	Subtotal       decimal.Decimal `json:"subtotal"`
	DiscountAmount decimal.Decimal `json:"discount_amount"`
	Total          decimal.Decimal `json:"total"`
}

// ComputeTotals prices a set of cart line items with an optional discount rule.
//
// The discount amount is subtotal * percent / 100, rounded half away from zero
// to 2 decimal places (round-half-up for the non-negative amounts produced
// here). A total that would go negative is clamped to zero; with percent
// constrained to [0, 100] that clamp never fires, it only guards bad rule data.
func ComputeTotals(items []domain.CartLineItem, rule *domain.DiscountRule) Totals {
	subtotal := decimal.Zero
	for _, item := range items {
		subtotal = subtotal.Add(item.LineTotal())
	}

	discountAmount := decimal.Zero
	if rule != nil {
		discountAmount = subtotal.Mul(rule.DiscountPercent).Div(oneHundred).Round(2)
	}

	total := subtotal.Sub(discountAmount)
	if total.IsNegative() {
		total = decimal.Zero
	}

	return Totals{
		Subtotal:       subtotal,
		DiscountAmount: discountAmount,
		Total:          total,
	}
}
