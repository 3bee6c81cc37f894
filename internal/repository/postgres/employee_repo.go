package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lendcore/backend/internal/auth"
)

type EmployeeRepository struct {
	pool *pgxpool.Pool
}

func NewEmployeeRepository(pool *pgxpool.Pool) *EmployeeRepository {
	return &EmployeeRepository{pool: pool}
}

const employeeColumns = `id, full_name, email, password_hash, role, created_at, updated_at`

func (r *EmployeeRepository) GetEmployeeByEmail(ctx context.Context, email string) (*auth.Employee, error) {
	q := `SELECT ` + employeeColumns + ` FROM employees WHERE email = $1`
	return r.scanEmployee(r.pool.QueryRow(ctx, q, email))
}

func (r *EmployeeRepository) GetEmployeeByID(ctx context.Context, id string) (*auth.Employee, error) {
	q := `SELECT ` + employeeColumns + ` FROM employees WHERE id = $1`
	return r.scanEmployee(r.pool.QueryRow(ctx, q, id))
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (r *EmployeeRepository) scanEmployee(row rowScanner) (*auth.Employee, error) {
	out := &auth.Employee{}
	err := row.Scan(&out.ID, &out.FullName, &out.Email, &out.PasswordHash, &out.Role, &out.CreatedAt, &out.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return out, nil
}
