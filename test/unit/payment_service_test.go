package unit

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	loandomain "github.com/lendcore/backend/internal/domain/loan"
	paymentdomain "github.com/lendcore/backend/internal/domain/payment"
)

func activeLoan() *loandomain.Entity {
	return &loandomain.Entity{
		ID:              "loan-1",
		ApplicationID:   "app-1",
		CustomerID:      "cus-1",
		ProductID:       "prod-1",
		PrincipalMinor:  12_000_000,
		InterestRateBPS: 1200,
		TermMonths:      12,
		Status:          loandomain.StatusActive,
	}
}

func TestRecordPaymentSuccess(t *testing.T) {
	repo := &paymentRepoMock{entryTotal: 1_066_185}
	outbox := &outboxRepoMock{}
	svc := paymentdomain.NewService(repo, &loanRepoMock{entity: activeLoan()}, newCustomerRepoMock("cus-1"), outbox, testLogger())

	txn, err := svc.Record(context.Background(), paymentdomain.RecordInput{
		LoanID:      "loan-1",
		CustomerID:  "cus-1",
		AmountMinor: 1_066_185,
		PaymentDate: time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
		Method:      "bank_transfer",
		ProcessedBy: "emp-1",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.HasPrefix(txn.Reference, "TXN-") {
		t.Fatalf("expected TXN- reference prefix, got %q", txn.Reference)
	}
	if repo.lastInput == nil || repo.lastInput.Method != "bank_transfer" {
		t.Fatalf("expected allocation with bank_transfer method")
	}
	if len(outbox.topics) != 1 || outbox.topics[0] != "payment_received" {
		t.Fatalf("expected payment_received outbox message, got %v", outbox.topics)
	}
}

func TestRecordPaymentDefaultsMethodAndDate(t *testing.T) {
	repo := &paymentRepoMock{}
	svc := paymentdomain.NewService(repo, &loanRepoMock{entity: activeLoan()}, newCustomerRepoMock("cus-1"), &outboxRepoMock{}, testLogger())

	_, err := svc.Record(context.Background(), paymentdomain.RecordInput{
		LoanID:      "loan-1",
		CustomerID:  "cus-1",
		AmountMinor: 1_066_185,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if repo.lastInput.Method != "cash" {
		t.Fatalf("expected cash default, got %q", repo.lastInput.Method)
	}
	if repo.lastInput.PaymentDate.IsZero() {
		t.Fatalf("expected defaulted payment date")
	}
}

func TestRecordPaymentValidation(t *testing.T) {
	cases := []struct {
		name string
		in   paymentdomain.RecordInput
	}{
		{"missing loan", paymentdomain.RecordInput{CustomerID: "cus-1", AmountMinor: 100}},
		{"missing customer", paymentdomain.RecordInput{LoanID: "loan-1", AmountMinor: 100}},
		{"zero amount", paymentdomain.RecordInput{LoanID: "loan-1", CustomerID: "cus-1"}},
		{"negative amount", paymentdomain.RecordInput{LoanID: "loan-1", CustomerID: "cus-1", AmountMinor: -5}},
		{"unknown method", paymentdomain.RecordInput{LoanID: "loan-1", CustomerID: "cus-1", AmountMinor: 100, Method: "barter"}},
	}

	repo := &paymentRepoMock{}
	svc := paymentdomain.NewService(repo, &loanRepoMock{entity: activeLoan()}, newCustomerRepoMock("cus-1"), &outboxRepoMock{}, testLogger())

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Record(context.Background(), tc.in)
			if !errors.Is(err, paymentdomain.ErrValidation) {
				t.Fatalf("expected ErrValidation, got %v", err)
			}
			if repo.lastInput != nil {
				t.Fatalf("expected no allocation attempt")
			}
		})
	}
}

func TestRecordPaymentUnknownLoan(t *testing.T) {
	svc := paymentdomain.NewService(&paymentRepoMock{}, &loanRepoMock{}, newCustomerRepoMock("cus-1"), &outboxRepoMock{}, testLogger())

	_, err := svc.Record(context.Background(), paymentdomain.RecordInput{
		LoanID:      "ghost",
		CustomerID:  "cus-1",
		AmountMinor: 100,
	})
	if !errors.Is(err, paymentdomain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestRecordPaymentUnknownCustomer(t *testing.T) {
	svc := paymentdomain.NewService(&paymentRepoMock{}, &loanRepoMock{entity: activeLoan()}, newCustomerRepoMock(), &outboxRepoMock{}, testLogger())

	_, err := svc.Record(context.Background(), paymentdomain.RecordInput{
		LoanID:      "loan-1",
		CustomerID:  "ghost",
		AmountMinor: 100,
	})
	if !errors.Is(err, paymentdomain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestRecordPaymentLoanLookupFailureIsNotNotFound(t *testing.T) {
	loans := &loanRepoMock{getErr: errors.New("pool timeout")}
	svc := paymentdomain.NewService(&paymentRepoMock{}, loans, newCustomerRepoMock("cus-1"), &outboxRepoMock{}, testLogger())

	_, err := svc.Record(context.Background(), paymentdomain.RecordInput{
		LoanID:      "loan-1",
		CustomerID:  "cus-1",
		AmountMinor: 100,
	})
	if err == nil {
		t.Fatal("expected error")
	}
	if errors.Is(err, paymentdomain.ErrNotFound) {
		t.Fatalf("storage failure must not map to ErrNotFound, got %v", err)
	}
}

func TestRecordPaymentInsufficientPropagatesWithoutOutbox(t *testing.T) {
	repo := &paymentRepoMock{allocateErr: paymentdomain.ErrInsufficientPayment}
	outbox := &outboxRepoMock{}
	svc := paymentdomain.NewService(repo, &loanRepoMock{entity: activeLoan()}, newCustomerRepoMock("cus-1"), outbox, testLogger())

	_, err := svc.Record(context.Background(), paymentdomain.RecordInput{
		LoanID:      "loan-1",
		CustomerID:  "cus-1",
		AmountMinor: 50,
	})
	if !errors.Is(err, paymentdomain.ErrInsufficientPayment) {
		t.Fatalf("expected ErrInsufficientPayment, got %v", err)
	}
	if len(outbox.topics) != 0 {
		t.Fatalf("expected no outbox message, got %v", outbox.topics)
	}
}

func TestRecordPaymentNoPendingInstallment(t *testing.T) {
	repo := &paymentRepoMock{allocateErr: paymentdomain.ErrNoPendingInstallment}
	svc := paymentdomain.NewService(repo, &loanRepoMock{entity: activeLoan()}, newCustomerRepoMock("cus-1"), &outboxRepoMock{}, testLogger())

	_, err := svc.Record(context.Background(), paymentdomain.RecordInput{
		LoanID:      "loan-1",
		CustomerID:  "cus-1",
		AmountMinor: 1_066_185,
	})
	if !errors.Is(err, paymentdomain.ErrNoPendingInstallment) {
		t.Fatalf("expected ErrNoPendingInstallment, got %v", err)
	}
}

func TestPaymentGetUnknown(t *testing.T) {
	svc := paymentdomain.NewService(&paymentRepoMock{}, &loanRepoMock{}, newCustomerRepoMock(), &outboxRepoMock{}, testLogger())

	_, err := svc.Get(context.Background(), "missing")
	if !errors.Is(err, paymentdomain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestPaymentListByLoanUnknownLoan(t *testing.T) {
	svc := paymentdomain.NewService(&paymentRepoMock{}, &loanRepoMock{}, newCustomerRepoMock(), &outboxRepoMock{}, testLogger())

	_, err := svc.ListByLoan(context.Background(), "missing")
	if !errors.Is(err, paymentdomain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
