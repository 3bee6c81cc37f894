package integration

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func seedCustomer(t *testing.T, pool *pgxpool.Pool) string {
	t.Helper()
	var id string
	err := pool.QueryRow(context.Background(),
		`INSERT INTO customers (full_name, email) VALUES ($1, $2) RETURNING id`,
		"Test Customer", "customer@lendcore.test").Scan(&id)
	if err != nil {
		t.Fatalf("seed customer: %v", err)
	}
	return id
}

func seedEmployee(t *testing.T, pool *pgxpool.Pool, role string) string {
	t.Helper()
	var id string
	err := pool.QueryRow(context.Background(),
		`INSERT INTO employees (full_name, email, password_hash, role) VALUES ($1, $2, $3, $4) RETURNING id`,
		"Test Employee", role+"@lendcore.test", "x", role).Scan(&id)
	if err != nil {
		t.Fatalf("seed employee: %v", err)
	}
	return id
}

func seedProduct(t *testing.T, pool *pgxpool.Pool) string {
	t.Helper()
	var id string
	err := pool.QueryRow(context.Background(),
		`INSERT INTO loan_products
		   (name, interest_rate_bps, min_term_months, max_term_months, min_amount_minor, max_amount_minor)
		 VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`,
		"Personal Loan", 1200, 6, 60, int64(100_000), int64(50_000_000)).Scan(&id)
	if err != nil {
		t.Fatalf("seed product: %v", err)
	}
	return id
}
