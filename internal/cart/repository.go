package cart

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/joao-fontenele/storefront-core/internal/domain"
)

type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// Add creates the (user, product) line item or bumps its quantity. The upsert
// is a single statement, so two concurrent adds for the same pair can never
// leave two rows behind.
func (r *Repository) Add(ctx context.Context, userID, productID string, delta int) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO cart_items (id, user_id, product_id, quantity, added_at)
		VALUES ($1, $2, $3, $4, NOW())
		ON CONFLICT (user_id, product_id)
		DO UPDATE SET quantity = cart_items.quantity + EXCLUDED.quantity
	`, uuid.New().String(), userID, productID, delta)
	return err
}

// Adjust changes a line item's quantity by delta, deleting the row when the
// result would drop to zero or below. The row lock serializes concurrent
// adjustments of the same line item. Returns false when no line item with
// that id belongs to userID.
func (r *Repository) Adjust(ctx context.Context, userID, lineItemID string, delta int) (bool, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return false, err
	}
	defer func() { _ = tx.Rollback() }()

	var quantity int
	err = tx.QueryRowContext(ctx, `
		SELECT quantity
		FROM cart_items
		WHERE id = $1 AND user_id = $2
		FOR UPDATE
	`, lineItemID, userID).Scan(&quantity)
	if err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, err
	}

	newQuantity := quantity + delta
	if newQuantity <= 0 {
		_, err = tx.ExecContext(ctx, `
			DELETE FROM cart_items
			WHERE id = $1
		`, lineItemID)
	} else {
		_, err = tx.ExecContext(ctx, `
			UPDATE cart_items
			SET quantity = $2
			WHERE id = $1
		`, lineItemID, newQuantity)
	}
	if err != nil {
		return false, err
	}

	return true, tx.Commit()
}

// Remove deletes a line item. Rows owned by other users are untouched; the
// caller learns only that nothing matched.
func (r *Repository) Remove(ctx context.Context, userID, lineItemID string) (bool, error) {
	result, err := r.db.ExecContext(ctx, `
		DELETE FROM cart_items
		WHERE id = $1 AND user_id = $2
	`, lineItemID, userID)
	if err != nil {
		return false, err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}

	return rowsAffected > 0, nil
}

const listQuery = `
	SELECT ci.id, ci.user_id, ci.product_id, ci.quantity, ci.added_at, p.name, p.price
	FROM cart_items ci
	JOIN products p ON p.id = ci.product_id
	WHERE ci.user_id = $1
	ORDER BY ci.added_at, ci.id`

// ListItems returns the user's cart joined with live product rows, so prices
// always reflect the catalog's current state rather than the price at add time.
func (r *Repository) ListItems(ctx context.Context, userID string) ([]domain.CartLineItem, error) {
	rows, err := r.db.QueryContext(ctx, listQuery, userID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	return scanLineItems(rows)
}

// ListItemsTx is the checkout-time read. FOR UPDATE OF ci locks the user's
// cart rows for the duration of the transaction, which is what serializes a
// double-submitted checkout: the second transaction blocks here and then sees
// an empty cart.
func ListItemsTx(ctx context.Context, tx *sql.Tx, userID string) ([]domain.CartLineItem, error) {
	rows, err := tx.QueryContext(ctx, listQuery+` FOR UPDATE OF ci`, userID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	return scanLineItems(rows)
}

// ClearTx deletes every line item for the user inside the caller's
// transaction. Only the checkout path uses it.
func ClearTx(ctx context.Context, tx *sql.Tx, userID string) error {
	_, err := tx.ExecContext(ctx, `
		DELETE FROM cart_items
		WHERE user_id = $1
	`, userID)
	return err
}

func scanLineItems(rows *sql.Rows) ([]domain.CartLineItem, error) {
	items := []domain.CartLineItem{}
	for rows.Next() {
		var item domain.CartLineItem
		err := rows.Scan(
			&item.ID, &item.UserID, &item.ProductID, &item.Quantity,
			&item.AddedAt, &item.ProductName, &item.UnitPrice,
		)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return items, nil
}
