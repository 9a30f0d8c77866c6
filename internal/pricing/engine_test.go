package pricing

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/joao-fontenele/storefront-core/internal/domain"
)

func lineItem(price string, qty int) domain.CartLineItem {
	return domain.CartLineItem{
		UnitPrice: decimal.RequireFromString(price),
		Quantity:  qty,
	}
}

func rule(percent string) *domain.DiscountRule {
	return &domain.DiscountRule{
		Code:            "TEST",
		DiscountPercent: decimal.RequireFromString(percent),
		Active:          true,
	}
}

func TestComputeTotals(t *testing.T) {
	tests := []struct {
		name           string
		items          []domain.CartLineItem
		rule           *domain.DiscountRule
		subtotal       string
		discountAmount string
		total          string
	}{
		{
			name:           "no items",
			items:          nil,
			rule:           nil,
			subtotal:       "0",
			discountAmount: "0",
			total:          "0",
		},
		{
			name:           "single item no discount",
			items:          []domain.CartLineItem{lineItem("19.99", 3)},
			rule:           nil,
			subtotal:       "59.97",
			discountAmount: "0",
			total:          "59.97",
		},
		{
			name: "two items with ten percent discount",
			items: []domain.CartLineItem{
				lineItem("10.00", 2),
				lineItem("5.00", 3),
			},
			rule:           rule("10"),
			subtotal:       "35.00",
			discountAmount: "3.50",
			total:          "31.50",
		},
		{
			name:           "discount rounds half up",
			items:          []domain.CartLineItem{lineItem("0.99", 5)}, // 4.95 * 15% = 0.7425
			rule:           rule("15"),
			subtotal:       "4.95",
			discountAmount: "0.74",
			total:          "4.21",
		},
		{
			name:           "hundred percent discount",
			items:          []domain.CartLineItem{lineItem("12.34", 1)},
			rule:           rule("100"),
			subtotal:       "12.34",
			discountAmount: "12.34",
			total:          "0",
		},
		{
			name:           "over-hundred percent clamps total to zero",
			items:          []domain.CartLineItem{lineItem("10.00", 1)},
			rule:           rule("150"),
			subtotal:       "10.00",
			discountAmount: "15.00",
			total:          "0",
		},
		{
			name:           "zero percent discount",
			items:          []domain.CartLineItem{lineItem("10.00", 1)},
			rule:           rule("0"),
			subtotal:       "10.00",
			discountAmount: "0",
			total:          "10.00",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputeTotals(tt.items, tt.rule)

			if !got.Subtotal.Equal(decimal.RequireFromString(tt.subtotal)) {
				t.Errorf("subtotal: expected %s, got %s", tt.subtotal, got.Subtotal)
			}
			if !got.DiscountAmount.Equal(decimal.RequireFromString(tt.discountAmount)) {
				t.Errorf("discount amount: expected %s, got %s", tt.discountAmount, got.DiscountAmount)
			}
			if !got.Total.Equal(decimal.RequireFromString(tt.total)) {
				t.Errorf("total: expected %s, got %s", tt.total, got.Total)
			}
		})
	}
}

func TestComputeTotalsNoFloatDrift(t *testing.T) {
	// 0.10 added ten thousand times is exactly 1000.00 in decimal arithmetic.
	items := make([]domain.CartLineItem, 10000)
	for i := range items {
		items[i] = lineItem("0.10", 1)
	}

	got := ComputeTotals(items, nil)
	if !got.Subtotal.Equal(decimal.RequireFromString("1000.00")) {
		t.Errorf("expected subtotal 1000.00, got %s", got.Subtotal)
	}
}
