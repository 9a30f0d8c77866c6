package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// CartLineItem is one (user, product, quantity) cart entry. The cart layer
// guarantees at most one line item per (user, product) pair.
type CartLineItem struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	ProductID string    `json:"product_id"`
	Quantity  int       `json:"quantity"`
	AddedAt   time.Time `json:"added_at"`

	// Joined from the products table at read time, never cached.
	ProductName string          `json:"product_name"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
}

func (li CartLineItem) LineTotal() decimal.Decimal {
	return li.UnitPrice.Mul(decimal.NewFromInt(int64(li.Quantity)))
}
