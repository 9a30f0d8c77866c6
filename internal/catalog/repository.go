package catalog

import (
	"context"
	"database/sql"
	"errors"

	"github.com/joao-fontenele/storefront-core/internal/domain"
)

var ErrInsufficientStock = errors.New("insufficient stock")

const productColumns = `id, name, description, price, inventory_count, category, is_featured, created_at, updated_at`

type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

func scanProduct(row interface{ Scan(...any) error }) (*domain.Product, error) {
	p := &domain.Product{}
	var category sql.NullString
	err := row.Scan(
		&p.ID, &p.Name, &p.Description, &p.Price, &p.InventoryCount,
		&category, &p.IsFeatured, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	p.Category = category.String
	return p, nil
}

func (r *Repository) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	p, err := scanProduct(r.db.QueryRowContext(ctx, `
		SELECT `+productColumns+`
		FROM products
		WHERE id = $1
	`, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return p, nil
}

func (r *Repository) List(ctx context.Context) ([]domain.Product, error) {
	return r.queryProducts(ctx, `
		SELECT `+productColumns+`
		FROM products
		ORDER BY name
	`)
}

func (r *Repository) ListFeatured(ctx context.Context) ([]domain.Product, error) {
	return r.queryProducts(ctx, `
		SELECT `+productColumns+`
		FROM products
		WHERE is_featured
		ORDER BY name
	`)
}

func (r *Repository) ListByCategory(ctx context.Context, category string) ([]domain.Product, error) {
	return r.queryProducts(ctx, `
		SELECT `+productColumns+`
		FROM products
		WHERE category = $1
		ORDER BY name
	`, category)
}

// Search matches the query as a case-insensitive substring of name or
// description. An empty query returns everything.
func (r *Repository) Search(ctx context.Context, query string) ([]domain.Product, error) {
	if query == "" {
		return r.List(ctx)
	}
	return r.queryProducts(ctx, `
		SELECT `+productColumns+`
		FROM products
		WHERE name ILIKE '%' || $1 || '%' OR description ILIKE '%' || $1 || '%'
		ORDER BY name
	`, query)
}

func (r *Repository) queryProducts(ctx context.Context, query string, args ...any) ([]domain.Product, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	products := []domain.Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, *p)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return products, nil
}

func (r *Repository) Update(ctx context.Context, p *domain.Product) (*domain.Product, error) {
	result, err := r.db.ExecContext(ctx, `
		UPDATE products
		SET name = $2, description = $3, price = $4, inventory_count = $5,
		    category = $6, is_featured = $7, updated_at = NOW()
		WHERE id = $1
	`, p.ID, p.Name, p.Description, p.Price, p.InventoryCount,
		sql.NullString{String: p.Category, Valid: p.Category != ""}, p.IsFeatured)
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

	return r.GetByID(ctx, p.ID)
}

func (r *Repository) Delete(ctx context.Context, id string) (bool, error) {
	result, err := r.db.ExecContext(ctx, `
		DELETE FROM products
		WHERE id = $1
	`, id)
	if err != nil {
		return false, err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}

	return rowsAffected > 0, nil
}

// DecrementInventoryTx reduces a product's inventory inside the caller's
// transaction. The conditional WHERE keeps the count from ever going below
// zero; a shortfall surfaces as ErrInsufficientStock and rolls the whole
// checkout back.
func DecrementInventoryTx(ctx context.Context, tx *sql.Tx, productID string, quantity int) error {
	result, err := tx.ExecContext(ctx, `
		UPDATE products
		SET inventory_count = inventory_count - $2, updated_at = NOW()
		WHERE id = $1 AND inventory_count >= $2
	`, productID, quantity)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return ErrInsufficientStock
	}

	return nil
}
