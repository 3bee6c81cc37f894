package postgres

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lendcore/backend/internal/domain/application"
)

const uniqueViolationCode = "23505"

type ApplicationRepository struct {
	pool *pgxpool.Pool
}

func NewApplicationRepository(pool *pgxpool.Pool) *ApplicationRepository {
	return &ApplicationRepository{pool: pool}
}

const applicationColumns = `id, reference, customer_id, product_id, amount_minor, term_months,
       purpose, status, reviewed_by, reviewed_at, created_at, updated_at`

func (r *ApplicationRepository) Create(ctx context.Context, in application.CreateInput) (*application.Entity, error) {
	q := `
INSERT INTO loan_applications (reference, customer_id, product_id, amount_minor, term_months, purpose)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING ` + applicationColumns
	out := &application.Entity{}
	err := r.pool.QueryRow(ctx, q,
		in.Reference, in.CustomerID, in.ProductID, in.AmountMinor, in.TermMonths, in.Purpose,
	).Scan(
		&out.ID, &out.Reference, &out.CustomerID, &out.ProductID, &out.AmountMinor, &out.TermMonths,
		&out.Purpose, &out.Status, &out.ReviewedBy, &out.ReviewedAt, &out.CreatedAt, &out.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode && strings.Contains(pgErr.ConstraintName, "reference") {
			return nil, application.ErrDuplicateReference
		}
		return nil, err
	}
	return out, nil
}

func (r *ApplicationRepository) GetByID(ctx context.Context, id string) (*application.Entity, error) {
	q := `SELECT ` + applicationColumns + ` FROM loan_applications WHERE id = $1`
	out := &application.Entity{}
	err := r.pool.QueryRow(ctx, q, id).Scan(
		&out.ID, &out.Reference, &out.CustomerID, &out.ProductID, &out.AmountMinor, &out.TermMonths,
		&out.Purpose, &out.Status, &out.ReviewedBy, &out.ReviewedAt, &out.CreatedAt, &out.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, application.ErrNotFound
		}
		return nil, err
	}
	return out, nil
}

func (r *ApplicationRepository) List(ctx context.Context, f application.ListFilter) ([]application.Entity, error) {
	if f.Limit <= 0 {
		f.Limit = 50
	}
	if f.Offset < 0 {
		f.Offset = 0
	}

	builder := strings.Builder{}
	builder.WriteString(`SELECT ` + applicationColumns + ` FROM loan_applications WHERE 1=1`)

	args := []any{}
	argPos := 1
	if strings.TrimSpace(f.CustomerID) != "" {
		builder.WriteString(" AND customer_id = $")
		builder.WriteString(strconv.Itoa(argPos))
		args = append(args, f.CustomerID)
		argPos++
	}
	if strings.TrimSpace(f.Status) != "" {
		builder.WriteString(" AND status = $")
		builder.WriteString(strconv.Itoa(argPos))
		args = append(args, f.Status)
		argPos++
	}
	builder.WriteString(" ORDER BY created_at DESC")
	builder.WriteString(" LIMIT $")
	builder.WriteString(strconv.Itoa(argPos))
	args = append(args, f.Limit)
	argPos++
	builder.WriteString(" OFFSET $")
	builder.WriteString(strconv.Itoa(argPos))
	args = append(args, f.Offset)

	rows, err := r.pool.Query(ctx, builder.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]application.Entity, 0)
	for rows.Next() {
		var item application.Entity
		if err := rows.Scan(
			&item.ID, &item.Reference, &item.CustomerID, &item.ProductID, &item.AmountMinor, &item.TermMonths,
			&item.Purpose, &item.Status, &item.ReviewedBy, &item.ReviewedAt, &item.CreatedAt, &item.UpdatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *ApplicationRepository) UpdateStatus(ctx context.Context, id string, from, to application.Status, reviewerID string) (bool, error) {
	q := `
UPDATE loan_applications
SET status = $3, reviewed_by = $4, reviewed_at = NOW(), updated_at = NOW()
WHERE id = $1 AND status = $2
`
	tag, err := r.pool.Exec(ctx, q, id, from, to, reviewerID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}
