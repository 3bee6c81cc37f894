package unit

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	appdomain "github.com/lendcore/backend/internal/domain/application"
	"github.com/lendcore/backend/internal/domain/customer"
	loandomain "github.com/lendcore/backend/internal/domain/loan"
	paymentdomain "github.com/lendcore/backend/internal/domain/payment"
	"github.com/lendcore/backend/internal/domain/product"
)

var errMockNotFound = errors.New("not found")

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type applicationRepoMock struct {
	items        map[string]*appdomain.Entity
	nextID       int
	failCreates  int
	createCalls  int
	updateCalls  int
	lastUpdateTo appdomain.Status
	getErr       error
}

func newApplicationRepoMock() *applicationRepoMock {
	return &applicationRepoMock{items: map[string]*appdomain.Entity{}}
}

func (m *applicationRepoMock) Create(_ context.Context, in appdomain.CreateInput) (*appdomain.Entity, error) {
	m.createCalls++
	if m.failCreates > 0 {
		m.failCreates--
		return nil, appdomain.ErrDuplicateReference
	}
	m.nextID++
	e := &appdomain.Entity{
		ID:          fmt.Sprintf("app-%d", m.nextID),
		Reference:   in.Reference,
		CustomerID:  in.CustomerID,
		ProductID:   in.ProductID,
		AmountMinor: in.AmountMinor,
		TermMonths:  in.TermMonths,
		Purpose:     in.Purpose,
		Status:      appdomain.StatusSubmitted,
		CreatedAt:   time.Now().UTC(),
	}
	m.items[e.ID] = e
	return e, nil
}

func (m *applicationRepoMock) GetByID(_ context.Context, id string) (*appdomain.Entity, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	if e, ok := m.items[id]; ok {
		cp := *e
		return &cp, nil
	}
	return nil, appdomain.ErrNotFound
}

func (m *applicationRepoMock) List(_ context.Context, _ appdomain.ListFilter) ([]appdomain.Entity, error) {
	out := make([]appdomain.Entity, 0, len(m.items))
	for _, e := range m.items {
		out = append(out, *e)
	}
	return out, nil
}

func (m *applicationRepoMock) UpdateStatus(_ context.Context, id string, from, to appdomain.Status, reviewerID string) (bool, error) {
	m.updateCalls++
	m.lastUpdateTo = to
	e, ok := m.items[id]
	if !ok || e.Status != from {
		return false, nil
	}
	now := time.Now().UTC()
	e.Status = to
	e.ReviewedBy = &reviewerID
	e.ReviewedAt = &now
	return true, nil
}

type customerRepoMock struct {
	items  map[string]*customer.Entity
	getErr error
}

func newCustomerRepoMock(ids ...string) *customerRepoMock {
	m := &customerRepoMock{items: map[string]*customer.Entity{}}
	for _, id := range ids {
		m.items[id] = &customer.Entity{ID: id, FullName: "Customer " + id, Email: id + "@example.com"}
	}
	return m
}

func (m *customerRepoMock) GetByID(_ context.Context, id string) (*customer.Entity, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	if e, ok := m.items[id]; ok {
		return e, nil
	}
	return nil, customer.ErrNotFound
}

type productRepoMock struct {
	items map[string]*product.Entity
}

func newProductRepoMock(products ...*product.Entity) *productRepoMock {
	m := &productRepoMock{items: map[string]*product.Entity{}}
	for _, p := range products {
		m.items[p.ID] = p
	}
	return m
}

func (m *productRepoMock) GetByID(_ context.Context, id string) (*product.Entity, error) {
	if e, ok := m.items[id]; ok {
		return e, nil
	}
	return nil, product.ErrNotFound
}

func standardProduct() *product.Entity {
	return &product.Entity{
		ID:              "prod-1",
		Name:            "Personal Loan",
		InterestRateBPS: 1200,
		MinTermMonths:   6,
		MaxTermMonths:   60,
		MinAmountMinor:  100_000,
		MaxAmountMinor:  50_000_000,
		Active:          true,
	}
}

type loanCreatorMock struct {
	loanID string
	err    error
	calls  int
	lastID string
}

func (m *loanCreatorMock) CreateFromApplication(_ context.Context, applicationID, _ string) (string, error) {
	m.calls++
	m.lastID = applicationID
	if m.err != nil {
		return "", m.err
	}
	return m.loanID, nil
}

type loanFinderMock struct {
	summary *appdomain.LoanSummary
}

func (m *loanFinderMock) GetLoanByApplication(_ context.Context, _ string) (*appdomain.LoanSummary, error) {
	if m.summary == nil {
		return nil, errMockNotFound
	}
	return m.summary, nil
}

type outboxRepoMock struct {
	topics   []string
	payloads [][]byte
}

func (m *outboxRepoMock) Enqueue(_ context.Context, topic string, payload []byte) error {
	m.topics = append(m.topics, topic)
	m.payloads = append(m.payloads, payload)
	return nil
}

type loanRepoMock struct {
	created *loandomain.CreateApprovedInput
	entity  *loandomain.Entity
	err     error
	getErr  error
}

func (m *loanRepoMock) CreateApproved(_ context.Context, in loandomain.CreateApprovedInput) (*loandomain.Entity, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.created = &in
	e := &loandomain.Entity{
		ID:              "loan-1",
		ApplicationID:   in.ApplicationID,
		CustomerID:      in.CustomerID,
		ProductID:       in.ProductID,
		PrincipalMinor:  in.PrincipalMinor,
		InterestRateBPS: in.InterestRateBPS,
		TermMonths:      in.TermMonths,
		StartDate:       in.StartDate,
		EndDate:         in.EndDate,
		Status:          loandomain.StatusActive,
		ApprovedBy:      in.ApprovedBy,
		ApprovedAt:      time.Now().UTC(),
	}
	m.entity = e
	return e, nil
}

func (m *loanRepoMock) GetByID(_ context.Context, id string) (*loandomain.Entity, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	if m.entity != nil && m.entity.ID == id {
		cp := *m.entity
		return &cp, nil
	}
	return nil, loandomain.ErrNotFound
}

func (m *loanRepoMock) ListSchedule(_ context.Context, _ string) ([]loandomain.ScheduleEntry, error) {
	return []loandomain.ScheduleEntry{}, nil
}

func (m *loanRepoMock) GetScheduleSummary(_ context.Context, _ string) (*loandomain.ScheduleSummary, error) {
	return &loandomain.ScheduleSummary{}, nil
}

type paymentRepoMock struct {
	allocateErr error
	lastInput   *paymentdomain.AllocateInput
	entryTotal  int64
}

func (m *paymentRepoMock) Allocate(_ context.Context, in paymentdomain.AllocateInput) (*paymentdomain.Transaction, error) {
	if m.allocateErr != nil {
		return nil, m.allocateErr
	}
	m.lastInput = &in
	total := m.entryTotal
	if total == 0 {
		total = in.AmountMinor
	}
	return &paymentdomain.Transaction{
		ID:             "txn-1",
		Reference:      in.Reference,
		LoanID:         in.LoanID,
		CustomerID:     in.CustomerID,
		AmountMinor:    in.AmountMinor,
		PrincipalMinor: total * 9 / 10,
		InterestMinor:  total - total*9/10,
		PaymentDate:    in.PaymentDate,
		Method:         in.Method,
		ProcessedBy:    in.ProcessedBy,
		Status:         "completed",
		CreatedAt:      time.Now().UTC(),
	}, nil
}

func (m *paymentRepoMock) GetByID(_ context.Context, _ string) (*paymentdomain.Transaction, error) {
	return nil, paymentdomain.ErrNotFound
}

func (m *paymentRepoMock) ListByLoan(_ context.Context, _ string) ([]paymentdomain.Transaction, error) {
	return []paymentdomain.Transaction{}, nil
}
