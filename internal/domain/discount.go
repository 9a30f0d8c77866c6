package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type DiscountRule struct {
	ID              string          `json:"id"`
	Code            string          `json:"code"`
	Description     string          `json:"description"`
	DiscountPercent decimal.Decimal `json:"discount_percent"`
	MinQuantity     *int            `json:"min_quantity,omitempty"`
	Active          bool            `json:"active"`
	StartDate       *time.Time      `json:"start_date,omitempty"`
	EndDate         *time.Time      `json:"end_date,omitempty"`
}

// TimeGated reports whether the rule carries a validity window. Both dates are
// required together for the window to apply.
func (r DiscountRule) TimeGated() bool {
	return r.StartDate != nil && r.EndDate != nil
}

func (r DiscountRule) InWindow(now time.Time) bool {
	if !r.TimeGated() {
		return true
	}
	return !now.Before(*r.StartDate) && !now.After(*r.EndDate)
}
