package payment

import (
	"context"
	"errors"
	"time"
)

var (
	ErrNotFound             = errors.New("payment_target_not_found")
	ErrValidation           = errors.New("payment_validation_failed")
	ErrNoPendingInstallment = errors.New("no_pending_installment")
	ErrInsufficientPayment  = errors.New("insufficient_payment")
)

type Transaction struct {
	ID              string
	Reference       string
	LoanID          string
	ScheduleEntryID string
	CustomerID      string
	AmountMinor     int64
	PrincipalMinor  int64
	InterestMinor   int64
	PaymentDate     time.Time
	Method          string
	ProcessedBy     string
	Status          string
	CreatedAt       time.Time
}

type RecordInput struct {
	LoanID      string
	CustomerID  string
	AmountMinor int64
	PaymentDate time.Time
	Method      string
	ProcessedBy string
}

type AllocateInput struct {
	Reference   string
	LoanID      string
	CustomerID  string
	AmountMinor int64
	PaymentDate time.Time
	Method      string
	ProcessedBy string
}

type Repository interface {
	// Allocate settles the lowest-numbered pending installment of the loan
	// in one transaction: the entry row is locked, the transaction is
	// inserted with the entry's principal/interest split, the entry flips
	// to paid, and the loan flips to paid when it was the last one. The
	// whole unit rolls back on ErrInsufficientPayment, so a rejected
	// payment performs no writes.
	Allocate(ctx context.Context, in AllocateInput) (*Transaction, error)
	GetByID(ctx context.Context, id string) (*Transaction, error)
	ListByLoan(ctx context.Context, loanID string) ([]Transaction, error)
}
