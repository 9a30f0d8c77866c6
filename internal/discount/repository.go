package discount

import (
	"context"
	"database/sql"

	"github.com/joao-fontenele/storefront-core/internal/domain"
)

type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) FindByCode(ctx context.Context, code string) (*domain.DiscountRule, error) {
	rule := &domain.DiscountRule{}

	err := r.db.QueryRowContext(ctx, `
		SELECT id, code, description, discount_percent, min_quantity, active, start_date, end_date
		FROM discount_rules
		WHERE code = $1
	`, code).Scan(
		&rule.ID, &rule.Code, &rule.Description, &rule.DiscountPercent,
		&rule.MinQuantity, &rule.Active, &rule.StartDate, &rule.EndDate,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}

	return rule, nil
}
