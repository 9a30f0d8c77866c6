package domain

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestCanTransition(t *testing.T) {
	tests := []struct {
		name string
		from OrderStatus
		to   OrderStatus
		want bool
	}{
		{"pending to paid", OrderStatusPending, OrderStatusPaid, true},
		{"pending to shipped", OrderStatusPending, OrderStatusShipped, true},
		{"paid to shipped", OrderStatusPaid, OrderStatusShipped, true},
		{"paid back to pending", OrderStatusPaid, OrderStatusPending, false},
		{"shipped back to paid", OrderStatusShipped, OrderStatusPaid, false},
		{"no self transition", OrderStatusPaid, OrderStatusPaid, false},
		{"unknown source", OrderStatus("cancelled"), OrderStatusPaid, false},
		{"unknown target", OrderStatusPending, OrderStatus("cancelled"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CanTransition(tt.from, tt.to); got != tt.want {
				t.Errorf("CanTransition(%s, %s) = %v, want %v", tt.from, tt.to, got, tt.want)
			}
		})
	}
}

func TestCartLineItemLineTotal(t *testing.T) {
	item := CartLineItem{
		Quantity:  3,
		UnitPrice: decimal.RequireFromString("19.99"),
	}
	if got, want := item.LineTotal(), decimal.RequireFromString("59.97"); !got.Equal(want) {
		t.Errorf("LineTotal() = %s, want %s", got, want)
	}
}
