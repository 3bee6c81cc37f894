package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lendcore/backend/internal/domain/payment"
	"github.com/lendcore/backend/internal/ws"
)

type PaymentRepository struct {
	pool *pgxpool.Pool
}

func NewPaymentRepository(pool *pgxpool.Pool) *PaymentRepository {
	return &PaymentRepository{pool: pool}
}

const transactionColumns = `id, reference, loan_id, schedule_entry_id, customer_id, amount_minor,
       principal_minor, interest_minor, payment_date, method, processed_by, status, created_at`

func (r *PaymentRepository) Allocate(ctx context.Context, in payment.AllocateInput) (*payment.Transaction, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	// Lock the lowest pending installment so two concurrent payments on
	// the same loan cannot both settle it. Under read committed, a racer
	// settling the row we blocked on makes the recheck drop it without
	// pulling the next pending entry past LIMIT 1, so an empty result gets
	// one re-select before it means the loan has nothing pending.
	var entryID string
	var installmentNumber int
	var principalMinor, interestMinor, totalMinor int64
	found := false
	for attempt := 0; attempt < 2 && !found; attempt++ {
		err = tx.QueryRow(ctx, `
SELECT id, installment_number, principal_minor, interest_minor, total_minor
FROM payment_schedule_entries
WHERE loan_id = $1 AND status = 'pending'
ORDER BY installment_number
LIMIT 1
FOR UPDATE
`, in.LoanID).Scan(&entryID, &installmentNumber, &principalMinor, &interestMinor, &totalMinor)
		if err == nil {
			found = true
			break
		}
		if !errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
	}
	if !found {
		return nil, payment.ErrNoPendingInstallment
	}

	if in.AmountMinor < totalMinor {
		return nil, payment.ErrInsufficientPayment
	}

	out := &payment.Transaction{}
	err = tx.QueryRow(ctx, `
INSERT INTO payment_transactions (
  reference, loan_id, schedule_entry_id, customer_id, amount_minor,
  principal_minor, interest_minor, payment_date, method, processed_by
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
RETURNING `+transactionColumns,
		in.Reference, in.LoanID, entryID, in.CustomerID, in.AmountMinor,
		principalMinor, interestMinor, in.PaymentDate, in.Method, in.ProcessedBy,
	).Scan(
		&out.ID, &out.Reference, &out.LoanID, &out.ScheduleEntryID, &out.CustomerID, &out.AmountMinor,
		&out.PrincipalMinor, &out.InterestMinor, &out.PaymentDate, &out.Method, &out.ProcessedBy, &out.Status, &out.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if _, err := tx.Exec(ctx, `
UPDATE payment_schedule_entries SET status = 'paid', updated_at = NOW() WHERE id = $1
`, entryID); err != nil {
		return nil, err
	}

	if _, err := tx.Exec(ctx, `
UPDATE loans
SET status = 'paid', updated_at = NOW()
WHERE id = $1
  AND status = 'active'
  AND NOT EXISTS (
    SELECT 1 FROM payment_schedule_entries WHERE loan_id = $1 AND status = 'pending'
  )
`, in.LoanID); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *PaymentRepository) GetByID(ctx context.Context, id string) (*payment.Transaction, error) {
	q := `SELECT ` + transactionColumns + ` FROM payment_transactions WHERE id = $1`
	out := &payment.Transaction{}
	err := r.pool.QueryRow(ctx, q, id).Scan(
		&out.ID, &out.Reference, &out.LoanID, &out.ScheduleEntryID, &out.CustomerID, &out.AmountMinor,
		&out.PrincipalMinor, &out.InterestMinor, &out.PaymentDate, &out.Method, &out.ProcessedBy, &out.Status, &out.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, payment.ErrNotFound
		}
		return nil, err
	}
	return out, nil
}

func (r *PaymentRepository) ListByLoan(ctx context.Context, loanID string) ([]payment.Transaction, error) {
	q := `SELECT ` + transactionColumns + ` FROM payment_transactions WHERE loan_id = $1 ORDER BY created_at`
	rows, err := r.pool.Query(ctx, q, loanID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]payment.Transaction, 0)
	for rows.Next() {
		var item payment.Transaction
		if err := rows.Scan(
			&item.ID, &item.Reference, &item.LoanID, &item.ScheduleEntryID, &item.CustomerID, &item.AmountMinor,
			&item.PrincipalMinor, &item.InterestMinor, &item.PaymentDate, &item.Method, &item.ProcessedBy, &item.Status, &item.CreatedAt,
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

// ListPaymentEventsSince feeds the websocket notifier.
func (r *PaymentRepository) ListPaymentEventsSince(ctx context.Context, lastSeq int64, limit int32) ([]ws.PaymentEvent, error) {
	if limit <= 0 {
		limit = 100
	}
	q := `
SELECT seq, id, loan_id, customer_id, amount_minor, created_at
FROM payment_transactions
WHERE seq > $1
ORDER BY seq
LIMIT $2
`
	rows, err := r.pool.Query(ctx, q, lastSeq, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]ws.PaymentEvent, 0)
	for rows.Next() {
		var ev ws.PaymentEvent
		if err := rows.Scan(&ev.Seq, &ev.TransactionID, &ev.LoanID, &ev.CustomerID, &ev.AmountMinor, &ev.RecordedAt); err != nil {
			return nil, err
		}
		out = append(out, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
