package discount

import (
	"context"
	"errors"
	"time"

	"github.com/joao-fontenele/storefront-core/internal/domain"
)

var (
	ErrNotFound    = errors.New("discount code not found")
	ErrInactive    = errors.New("discount code inactive")
	ErrOutOfWindow = errors.New("discount code outside validity window")
)

// RuleSource looks up discount rules by exact code. A nil rule with a nil
// error means no rule matches.
type RuleSource interface {
	FindByCode(ctx context.Context, code string) (*domain.DiscountRule, error)
}

type Resolver struct {
	source RuleSource
}

func NewResolver(source RuleSource) *Resolver {
	return &Resolver{source: source}
}

// Resolve validates a discount code at a given instant. Validity is both time-
// and flag-dependent, so callers re-resolve with a fresh clock at checkout: a
// code accepted when applied to the cart may have been deactivated or expired
// by the time the order is placed.
func (r *Resolver) Resolve(ctx context.Context, code string, now time.Time) (*domain.DiscountRule, error) {
	rule, err := r.source.FindByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if rule == nil {
		return nil, ErrNotFound
	}
	if !rule.Active {
		return nil, ErrInactive
	}
	if !rule.InWindow(now) {
		return nil, ErrOutOfWindow
	}
	return rule, nil
}

// MeetsMinQuantity reports whether a cart of totalQuantity units satisfies the
// rule's optional minimum-quantity constraint.
func MeetsMinQuantity(rule *domain.DiscountRule, totalQuantity int) bool {
	if rule == nil || rule.MinQuantity == nil {
		return true
	}
	return totalQuantity >= *rule.MinQuantity
}
