package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lendcore/backend/internal/domain/application"
	"github.com/lendcore/backend/internal/domain/loan"
)

type LoanRepository struct {
	pool *pgxpool.Pool
}

func NewLoanRepository(pool *pgxpool.Pool) *LoanRepository {
	return &LoanRepository{pool: pool}
}

const loanColumns = `id, application_id, customer_id, product_id, principal_minor, interest_rate_bps,
       term_months, start_date, end_date, status, approved_by, approved_at, created_at, updated_at`

func (r *LoanRepository) CreateApproved(ctx context.Context, in loan.CreateApprovedInput) (*loan.Entity, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	// Compare-and-set inside the same transaction as the loan insert: the
	// losing side of a concurrent duplicate approval updates zero rows.
	tag, err := tx.Exec(ctx, `
UPDATE loan_applications
SET status = 'approved', reviewed_by = $2, reviewed_at = NOW(), updated_at = NOW()
WHERE id = $1 AND status = 'under_review'
`, in.ApplicationID, in.ApprovedBy)
	if err != nil {
		return nil, err
	}
	if tag.RowsAffected() == 0 {
		return nil, loan.ErrDependencyMissing
	}

	out := &loan.Entity{}
	err = tx.QueryRow(ctx, `
INSERT INTO loans (
  application_id, customer_id, product_id, principal_minor, interest_rate_bps,
  term_months, start_date, end_date, approved_by
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
RETURNING `+loanColumns,
		in.ApplicationID, in.CustomerID, in.ProductID, in.PrincipalMinor, in.InterestRateBPS,
		in.TermMonths, in.StartDate, in.EndDate, in.ApprovedBy,
	).Scan(
		&out.ID, &out.ApplicationID, &out.CustomerID, &out.ProductID, &out.PrincipalMinor, &out.InterestRateBPS,
		&out.TermMonths, &out.StartDate, &out.EndDate, &out.Status, &out.ApprovedBy, &out.ApprovedAt, &out.CreatedAt, &out.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
			return nil, loan.ErrDependencyMissing
		}
		return nil, err
	}

	rows := make([][]any, 0, len(in.Entries))
	for _, e := range in.Entries {
		rows = append(rows, []any{
			out.ID, e.InstallmentNumber, e.DueDate, e.PrincipalMinor, e.InterestMinor, e.TotalMinor, e.RemainingMinor, "pending",
		})
	}
	if _, err := tx.CopyFrom(ctx,
		pgx.Identifier{"payment_schedule_entries"},
		[]string{"loan_id", "installment_number", "due_date", "principal_minor", "interest_minor", "total_minor", "remaining_balance_minor", "status"},
		pgx.CopyFromRows(rows),
	); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *LoanRepository) GetByID(ctx context.Context, id string) (*loan.Entity, error) {
	q := `SELECT ` + loanColumns + ` FROM loans WHERE id = $1`
	out := &loan.Entity{}
	err := r.pool.QueryRow(ctx, q, id).Scan(
		&out.ID, &out.ApplicationID, &out.CustomerID, &out.ProductID, &out.PrincipalMinor, &out.InterestRateBPS,
		&out.TermMonths, &out.StartDate, &out.EndDate, &out.Status, &out.ApprovedBy, &out.ApprovedAt, &out.CreatedAt, &out.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, loan.ErrNotFound
		}
		return nil, err
	}
	return out, nil
}

// GetLoanByApplication feeds the application milestone view.
func (r *LoanRepository) GetLoanByApplication(ctx context.Context, applicationID string) (*application.LoanSummary, error) {
	q := `SELECT id, start_date, approved_at, status FROM loans WHERE application_id = $1`
	out := &application.LoanSummary{}
	err := r.pool.QueryRow(ctx, q, applicationID).Scan(&out.ID, &out.StartDate, &out.ApprovedAt, &out.Status)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, loan.ErrNotFound
		}
		return nil, err
	}
	return out, nil
}

func (r *LoanRepository) ListSchedule(ctx context.Context, loanID string) ([]loan.ScheduleEntry, error) {
	q := `
SELECT id, loan_id, installment_number, due_date, principal_minor, interest_minor,
       total_minor, remaining_balance_minor, status, created_at, updated_at
FROM payment_schedule_entries
WHERE loan_id = $1
ORDER BY installment_number
`
	rows, err := r.pool.Query(ctx, q, loanID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]loan.ScheduleEntry, 0)
	for rows.Next() {
		var item loan.ScheduleEntry
		if err := rows.Scan(
			&item.ID, &item.LoanID, &item.InstallmentNumber, &item.DueDate, &item.PrincipalMinor, &item.InterestMinor,
			&item.TotalMinor, &item.RemainingMinor, &item.Status, &item.CreatedAt, &item.UpdatedAt,
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

func (r *LoanRepository) GetScheduleSummary(ctx context.Context, loanID string) (*loan.ScheduleSummary, error) {
	q := `
SELECT COUNT(*)::int, COUNT(*) FILTER (WHERE status = 'paid')::int
FROM payment_schedule_entries
WHERE loan_id = $1
`
	out := &loan.ScheduleSummary{}
	if err := r.pool.QueryRow(ctx, q, loanID).Scan(&out.TotalEntries, &out.PaidEntries); err != nil {
		return nil, err
	}
	return out, nil
}
