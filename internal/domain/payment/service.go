package payment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lendcore/backend/internal/domain/customer"
	"github.com/lendcore/backend/internal/domain/loan"
)

const outboxTopicReceived = "payment_received"

var methods = map[string]struct{}{
	"cash":          {},
	"bank_transfer": {},
	"card":          {},
	"mobile_money":  {},
}

type LoanRepository interface {
	GetByID(ctx context.Context, id string) (*loan.Entity, error)
}

type CustomerRepository interface {
	GetByID(ctx context.Context, id string) (*customer.Entity, error)
}

type OutboxRepository interface {
	Enqueue(ctx context.Context, topic string, payload []byte) error
}

type Service struct {
	repo      Repository
	loans     LoanRepository
	customers CustomerRepository
	outbox    OutboxRepository
	logger    *slog.Logger
	now       func() time.Time
}

func NewService(repo Repository, loans LoanRepository, customers CustomerRepository, outbox OutboxRepository, logger *slog.Logger) *Service {
	return &Service{
		repo:      repo,
		loans:     loans,
		customers: customers,
		outbox:    outbox,
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Record matches an incoming payment to the earliest pending installment of
// the loan and settles it. Allocation is strictly FIFO by installment
// number. Partial settlement is not supported; overpayment is accepted and
// the excess dropped.
func (s *Service) Record(ctx context.Context, in RecordInput) (*Transaction, error) {
	if strings.TrimSpace(in.LoanID) == "" {
		return nil, fmt.Errorf("%w: loan_id is required", ErrValidation)
	}
	if strings.TrimSpace(in.CustomerID) == "" {
		return nil, fmt.Errorf("%w: customer_id is required", ErrValidation)
	}
	if in.AmountMinor <= 0 {
		return nil, fmt.Errorf("%w: amount_minor must be positive", ErrValidation)
	}
	method := strings.ToLower(strings.TrimSpace(in.Method))
	if method == "" {
		method = "cash"
	}
	if _, ok := methods[method]; !ok {
		return nil, fmt.Errorf("%w: unknown payment method %q", ErrValidation, in.Method)
	}
	paymentDate := in.PaymentDate
	if paymentDate.IsZero() {
		paymentDate = s.now()
	}

	ln, err := s.loans.GetByID(ctx, in.LoanID)
	if err != nil {
		if errors.Is(err, loan.ErrNotFound) {
			return nil, fmt.Errorf("%w: loan %s", ErrNotFound, in.LoanID)
		}
		return nil, fmt.Errorf("lookup loan %s: %w", in.LoanID, err)
	}
	if _, err := s.customers.GetByID(ctx, in.CustomerID); err != nil {
		if errors.Is(err, customer.ErrNotFound) {
			return nil, fmt.Errorf("%w: customer %s", ErrNotFound, in.CustomerID)
		}
		return nil, fmt.Errorf("lookup customer %s: %w", in.CustomerID, err)
	}

	txn, err := s.repo.Allocate(ctx, AllocateInput{
		Reference:   "TXN-" + uuid.NewString(),
		LoanID:      ln.ID,
		CustomerID:  in.CustomerID,
		AmountMinor: in.AmountMinor,
		PaymentDate: paymentDate,
		Method:      method,
		ProcessedBy: in.ProcessedBy,
	})
	if err != nil {
		return nil, err
	}

	if txn.AmountMinor > txn.PrincipalMinor+txn.InterestMinor {
		s.logger.Info("overpayment accepted, excess not tracked",
			"transaction_id", txn.ID, "loan_id", ln.ID,
			"excess_minor", txn.AmountMinor-(txn.PrincipalMinor+txn.InterestMinor))
	}

	payload, _ := json.Marshal(map[string]any{
		"transaction_id": txn.ID,
		"loan_id":        ln.ID,
		"customer_id":    in.CustomerID,
		"amount_minor":   txn.AmountMinor,
	})
	if err := s.outbox.Enqueue(ctx, outboxTopicReceived, payload); err != nil {
		s.logger.Error("failed to enqueue payment notification", "transaction_id", txn.ID, "err", err)
	}

	return txn, nil
}

func (s *Service) Get(ctx context.Context, transactionID string) (*Transaction, error) {
	txn, err := s.repo.GetByID(ctx, transactionID)
	if err != nil {
		return nil, fmt.Errorf("transaction %s: %w", transactionID, err)
	}
	return txn, nil
}

func (s *Service) ListByLoan(ctx context.Context, loanID string) ([]Transaction, error) {
	if _, err := s.loans.GetByID(ctx, loanID); err != nil {
		if errors.Is(err, loan.ErrNotFound) {
			return nil, fmt.Errorf("%w: loan %s", ErrNotFound, loanID)
		}
		return nil, fmt.Errorf("lookup loan %s: %w", loanID, err)
	}
	return s.repo.ListByLoan(ctx, loanID)
}
