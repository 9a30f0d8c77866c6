// Package checkout converts a user's mutable cart into an immutable order,
// atomically and exactly once.
package checkout

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"github.com/lib/pq"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/joao-fontenele/storefront-core/internal/cart"
	"github.com/joao-fontenele/storefront-core/internal/catalog"
	"github.com/joao-fontenele/storefront-core/internal/discount"
	"github.com/joao-fontenele/storefront-core/internal/domain"
	"github.com/joao-fontenele/storefront-core/internal/messaging"
	"github.com/joao-fontenele/storefront-core/internal/orders"
	"github.com/joao-fontenele/storefront-core/internal/pricing"
	"github.com/joao-fontenele/storefront-core/internal/session"
)

// CheckoutContext carries everything a checkout attempt depends on from the
// session, made explicit instead of read mid-transaction. The session store
// only persists DiscountCode between requests.
type CheckoutContext struct {
	UserID       string
	DiscountCode string
}

// Result is a priced (and, after Checkout, committed) view of the cart.
type Result struct {
	Order           *domain.Order         `json:"order,omitempty"`
	Items           []domain.CartLineItem `json:"items,omitempty"`
	Totals          pricing.Totals        `json:"totals"`
	DiscountWarning string                `json:"discount_warning,omitempty"`
}

type Coordinator struct {
	db        *sql.DB
	carts     *cart.Repository
	resolver  *discount.Resolver
	sessions  session.Store
	producer  *messaging.Producer
	logger    *slog.Logger
	checkouts metric.Int64Counter
}

func NewCoordinator(db *sql.DB, carts *cart.Repository, resolver *discount.Resolver, sessions session.Store, producer *messaging.Producer, logger *slog.Logger) (*Coordinator, error) {
	checkouts, err := otel.Meter("checkout").Int64Counter("checkout.attempts",
		metric.WithDescription("Checkout attempts by result"),
	)
	if err != nil {
		return nil, err
	}

	return &Coordinator{
		db:        db,
		carts:     carts,
		resolver:  resolver,
		sessions:  sessions,
		producer:  producer,
		logger:    logger,
		checkouts: checkouts,
	}, nil
}

// Checkout runs the one atomicity contract of the whole core: order creation,
// item snapshots, inventory decrement and cart clearing commit together or not
// at all. The row locks taken by the cart read serialize concurrent submits
// for the same user; the loser of that race finds an empty cart.
//
// A discount that fails re-validation degrades the checkout to undiscounted
// totals with a warning instead of aborting it.
func (c *Coordinator) Checkout(ctx context.Context, cc CheckoutContext, now time.Time) (*Result, error) {
	rule, warning := c.resolveDiscount(ctx, cc.DiscountCode, now)

	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	items, err := cart.ListItemsTx(ctx, tx, cc.UserID)
	if err != nil {
		return nil, mapConflict(err)
	}
	if len(items) == 0 {
		c.record(ctx, "empty_cart")
		return nil, domain.ErrEmptyCart
	}

	if rule != nil && !discount.MeetsMinQuantity(rule, totalQuantity(items)) {
		rule = nil
		warning = "discount requires a larger quantity"
	}

	totals := pricing.ComputeTotals(items, rule)

	order := &domain.Order{
		UserID:      cc.UserID,
		Items:       make([]domain.OrderItem, 0, len(items)),
		TotalAmount: totals.Total,
		Status:      domain.OrderStatusPending,
		CreatedAt:   now.UTC(),
	}
	if rule != nil {
		order.DiscountRuleID = &rule.ID
	}

	for _, item := range items {
		if err := catalog.DecrementInventoryTx(ctx, tx, item.ProductID, item.Quantity); err != nil {
			if errors.Is(err, catalog.ErrInsufficientStock) {
				c.record(ctx, "insufficient_stock")
			}
			return nil, mapConflict(err)
		}
		order.Items = append(order.Items, domain.OrderItem{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
		})
	}

	if err := orders.CreateTx(ctx, tx, order); err != nil {
		return nil, mapConflict(err)
	}

	if err := cart.ClearTx(ctx, tx, cc.UserID); err != nil {
		return nil, mapConflict(err)
	}

	if err := tx.Commit(); err != nil {
		return nil, mapConflict(err)
	}

	c.record(ctx, "committed")
	c.afterCommit(ctx, cc, order)

	return &Result{Order: order, Totals: totals, DiscountWarning: warning}, nil
}

// Preview prices the cart without committing anything. It reads the same
// fresh product prices and re-validates the discount the way Checkout will.
func (c *Coordinator) Preview(ctx context.Context, cc CheckoutContext, now time.Time) (*Result, error) {
	rule, warning := c.resolveDiscount(ctx, cc.DiscountCode, now)

	items, err := c.carts.ListItems(ctx, cc.UserID)
	if err != nil {
		return nil, err
	}

	if rule != nil && !discount.MeetsMinQuantity(rule, totalQuantity(items)) {
		rule = nil
		warning = "discount requires a larger quantity"
	}

	totals := pricing.ComputeTotals(items, rule)
	return &Result{Items: items, Totals: totals, DiscountWarning: warning}, nil
}

func (c *Coordinator) resolveDiscount(ctx context.Context, code string, now time.Time) (*domain.DiscountRule, string) {
	if code == "" {
		return nil, ""
	}

	rule, err := c.resolver.Resolve(ctx, code, now)
	if err != nil {
		c.logger.Warn("discount no longer valid, proceeding undiscounted", "code", code, "reason", err)
		return nil, "discount code is no longer valid"
	}
	return rule, ""
}

// afterCommit handles the effects that cannot join the database transaction.
// Both are best-effort: a stale session key is harmless because every checkout
// re-resolves the code against an already-emptied cart, and a lost event is a
// notification gap, not an order inconsistency.
func (c *Coordinator) afterCommit(ctx context.Context, cc CheckoutContext, order *domain.Order) {
	if cc.DiscountCode != "" {
		if err := c.sessions.ClearDiscountCode(ctx, cc.UserID); err != nil {
			c.logger.Error("failed to clear session discount", "error", err, "user_id", cc.UserID)
		}
	}

	if c.producer != nil {
		event := domain.OrderPlacedEvent{
			OrderID:     order.ID,
			UserID:      order.UserID,
			Items:       order.Items,
			TotalAmount: order.TotalAmount,
			Timestamp:   order.CreatedAt,
		}
		if err := c.producer.Publish(ctx, order.ID, event); err != nil {
			c.logger.Error("failed to publish order placed event", "error", err, "order_id", order.ID)
		}
	}
}

func (c *Coordinator) record(ctx context.Context, result string) {
	c.checkouts.Add(ctx, 1, metric.WithAttributes(attribute.String("result", result)))
}

func totalQuantity(items []domain.CartLineItem) int {
	total := 0
	for _, item := range items {
		total += item.Quantity
	}
	return total
}

// mapConflict translates Postgres serialization failures and deadlocks into
// the retryable conflict error; everything else passes through untouched.
func mapConflict(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case "40001", "40P01": // serialization_failure, deadlock_detected
			return domain.ErrConflict
		}
	}
	return err
}
