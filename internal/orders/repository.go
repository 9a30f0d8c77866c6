package orders

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/joao-fontenele/storefront-core/internal/domain"
)

type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// CreateTx inserts an order and its item snapshots inside the caller's
// transaction. Only the checkout coordinator calls it; orders are append-only
// once the transaction commits.
func CreateTx(ctx context.Context, tx *sql.Tx, order *domain.Order) error {
	order.ID = uuid.New().String()

	_, err := tx.ExecContext(ctx, `
		INSERT INTO orders (id, user_id, total_amount, discount_rule_id, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, order.ID, order.UserID, order.TotalAmount, order.DiscountRuleID, order.Status, order.CreatedAt)
	if err != nil {
		return err
	}

	for _, item := range order.Items {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO order_items (id, order_id, product_id, quantity, unit_price)
			VALUES ($1, $2, $3, $4, $5)
		`, uuid.New().String(), order.ID, item.ProductID, item.Quantity, item.UnitPrice)
		if err != nil {
			return err
		}
	}

	return nil
}

// GetByID returns the order only when it belongs to userID; other users'
// orders are indistinguishable from missing ones.
func (r *Repository) GetByID(ctx context.Context, userID, id string) (*domain.Order, error) {
	order := &domain.Order{}

	err := r.db.QueryRowContext(ctx, `
		SELECT id, user_id, total_amount, discount_rule_id, status, created_at
		FROM orders
		WHERE id = $1 AND user_id = $2
	`, id, userID).Scan(
		&order.ID, &order.UserID, &order.TotalAmount,
		&order.DiscountRuleID, &order.Status, &order.CreatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT product_id, quantity, unit_price
		FROM order_items
		WHERE order_id = $1
	`, order.ID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	order.Items = []domain.OrderItem{}
	for rows.Next() {
		var item domain.OrderItem
		if err := rows.Scan(&item.ProductID, &item.Quantity, &item.UnitPrice); err != nil {
			return nil, err
		}
		order.Items = append(order.Items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return order, nil
}

// ListByUser returns the user's orders newest first, items loaded in one
// batched query rather than per order.
func (r *Repository) ListByUser(ctx context.Context, userID string) ([]domain.Order, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, user_id, total_amount, discount_rule_id, status, created_at
		FROM orders
		WHERE user_id = $1
		ORDER BY created_at DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	orderMap := make(map[string]*domain.Order)
	var orderIDs []string

	for rows.Next() {
		var order domain.Order
		err := rows.Scan(
			&order.ID, &order.UserID, &order.TotalAmount,
			&order.DiscountRuleID, &order.Status, &order.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		order.Items = []domain.OrderItem{}
		orderMap[order.ID] = &order
		orderIDs = append(orderIDs, order.ID)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	if len(orderIDs) == 0 {
		return []domain.Order{}, nil
	}

	itemRows, err := r.db.QueryContext(ctx, `
		SELECT order_id, product_id, quantity, unit_price
		FROM order_items
		WHERE order_id = ANY($1)
	`, pq.Array(orderIDs))
	if err != nil {
		return nil, err
	}
	defer func() { _ = itemRows.Close() }()

	for itemRows.Next() {
		var orderID string
		var item domain.OrderItem
		if err := itemRows.Scan(&orderID, &item.ProductID, &item.Quantity, &item.UnitPrice); err != nil {
			return nil, err
		}
		order := orderMap[orderID]
		order.Items = append(order.Items, item)
	}

	if err := itemRows.Err(); err != nil {
		return nil, err
	}

	orders := make([]domain.Order, 0, len(orderIDs))
	for _, id := range orderIDs {
		orders = append(orders, *orderMap[id])
	}

	return orders, nil
}

// UpdateStatus advances an order's status for the fulfillment process. The
// compare-and-set against the previously read status keeps concurrent
// transitions forward-only. Returns nil when the order is missing or the
// transition is not allowed.
func (r *Repository) UpdateStatus(ctx context.Context, id string, status domain.OrderStatus) (*domain.Order, error) {
	var userID string
	var current domain.OrderStatus
	err := r.db.QueryRowContext(ctx, `
		SELECT user_id, status FROM orders WHERE id = $1
	`, id).Scan(&userID, &current)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}

	if !domain.CanTransition(current, status) {
		return nil, nil
	}

	result, err := r.db.ExecContext(ctx, `
		UPDATE orders SET status = $1
		WHERE id = $2 AND status = $3
	`, status, id, current)
	if err != nil {
		return nil, err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return nil, err
	}
	if rowsAffected == 0 {
		return nil, nil
	}

	return r.GetByID(ctx, userID, id)
}
