package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderStatusPending OrderStatus = "pending"
	OrderStatusPaid    OrderStatus = "paid"
	OrderStatusShipped OrderStatus = "shipped"
)

var statusRank = map[OrderStatus]int{
	OrderStatusPending: 0,
	OrderStatusPaid:    1,
	OrderStatusShipped: 2,
}

// CanTransition reports whether an order may move between two statuses.
// Transitions are forward-only; there is no way back.
func CanTransition(from, to OrderStatus) bool {
	fromRank, ok := statusRank[from]
	if !ok {
		return false
	}
	toRank, ok := statusRank[to]
	if !ok {
		return false
	}
	return toRank > fromRank
}

// OrderItem is an immutable snapshot of one cart line item at checkout time.
// UnitPrice is frozen at order creation and never tracks later catalog changes.
type OrderItem struct {
	ProductID string          `json:"product_id"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

type Order struct {
	ID             string          `json:"id"`
	UserID         string          `json:"user_id"`
	Items          []OrderItem     `json:"items"`
	TotalAmount    decimal.Decimal `json:"total_amount"`
	DiscountRuleID *string         `json:"discount_rule_id,omitempty"`
	Status         OrderStatus     `json:"status"`
	CreatedAt      time.Time       `json:"created_at"`
}
