package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lendcore/backend/internal/domain/customer"
)

type CustomerRepository struct {
	pool *pgxpool.Pool
}

func NewCustomerRepository(pool *pgxpool.Pool) *CustomerRepository {
	return &CustomerRepository{pool: pool}
}

func (r *CustomerRepository) GetByID(ctx context.Context, id string) (*customer.Entity, error) {
	q := `SELECT id, full_name, email, phone, created_at, updated_at FROM customers WHERE id = $1`
	out := &customer.Entity{}
	err := r.pool.QueryRow(ctx, q, id).Scan(
		&out.ID, &out.FullName, &out.Email, &out.Phone, &out.CreatedAt, &out.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, customer.ErrNotFound
		}
		return nil, err
	}
	return out, nil
}
