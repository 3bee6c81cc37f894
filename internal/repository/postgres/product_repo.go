package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lendcore/backend/internal/domain/product"
)

type ProductRepository struct {
	pool *pgxpool.Pool
}

func NewProductRepository(pool *pgxpool.Pool) *ProductRepository {
	return &ProductRepository{pool: pool}
}

func (r *ProductRepository) GetByID(ctx context.Context, id string) (*product.Entity, error) {
	q := `
SELECT id, name, interest_rate_bps, min_term_months, max_term_months,
       min_amount_minor, max_amount_minor, active, created_at, updated_at
FROM loan_products WHERE id = $1
`
	out := &product.Entity{}
	err := r.pool.QueryRow(ctx, q, id).Scan(
		&out.ID, &out.Name, &out.InterestRateBPS, &out.MinTermMonths, &out.MaxTermMonths,
		&out.MinAmountMinor, &out.MaxAmountMinor, &out.Active, &out.CreatedAt, &out.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, product.ErrNotFound
		}
		return nil, err
	}
	return out, nil
}
