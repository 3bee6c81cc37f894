package application

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/lendcore/backend/internal/domain/customer"
	"github.com/lendcore/backend/internal/domain/product"
)

const (
	outboxTopicSubmitted = "application_submitted"
	outboxTopicRejected  = "application_rejected"

	referenceAttempts = 5
)

type SubmitInput struct {
	CustomerID  string `json:"customer_id"`
	ProductID   string `json:"product_id"`
	AmountMinor int64  `json:"amount_minor"`
	TermMonths  int    `json:"term_months"`
	Purpose     string `json:"purpose"`
}

// LoanSummary is the slice of a loan this package needs for the status
// milestones; keeping a local type avoids depending on the loan domain.
type LoanSummary struct {
	ID         string
	StartDate  time.Time
	ApprovedAt time.Time
	Status     string
}

// Step is one of the four application milestones.
type Step struct {
	Name      string     `json:"name"`
	Completed bool       `json:"completed"`
	Date      *time.Time `json:"date,omitempty"`
}

type CustomerRepository interface {
	GetByID(ctx context.Context, id string) (*customer.Entity, error)
}

type ProductRepository interface {
	GetByID(ctx context.Context, id string) (*product.Entity, error)
}

// LoanCreator converts an application under review into an active loan with
// its amortization schedule, atomically.
type LoanCreator interface {
	CreateFromApplication(ctx context.Context, applicationID, approverID string) (string, error)
}

type LoanFinder interface {
	GetLoanByApplication(ctx context.Context, applicationID string) (*LoanSummary, error)
}

type OutboxRepository interface {
	Enqueue(ctx context.Context, topic string, payload []byte) error
}

type Service struct {
	repo        Repository
	customers   CustomerRepository
	products    ProductRepository
	loanCreator LoanCreator
	loanFinder  LoanFinder
	outbox      OutboxRepository
	logger      *slog.Logger
	newRef      func() (string, error)
}

func NewService(repo Repository, customers CustomerRepository, products ProductRepository, loanCreator LoanCreator, loanFinder LoanFinder, outbox OutboxRepository, logger *slog.Logger) *Service {
	return &Service{
		repo:        repo,
		customers:   customers,
		products:    products,
		loanCreator: loanCreator,
		loanFinder:  loanFinder,
		outbox:      outbox,
		logger:      logger,
		newRef:      NewReference,
	}
}

// Submit validates the intake request against the product catalog and
// persists a new application in the submitted state. Nothing is written when
// validation fails.
func (s *Service) Submit(ctx context.Context, in SubmitInput) (*Entity, error) {
	if strings.TrimSpace(in.CustomerID) == "" {
		return nil, fmt.Errorf("%w: customer_id is required", ErrValidation)
	}
	if strings.TrimSpace(in.ProductID) == "" {
		return nil, fmt.Errorf("%w: product_id is required", ErrValidation)
	}
	if in.AmountMinor <= 0 {
		return nil, fmt.Errorf("%w: amount_minor must be positive", ErrValidation)
	}
	if in.TermMonths <= 0 {
		return nil, fmt.Errorf("%w: term_months must be positive", ErrValidation)
	}

	if _, err := s.customers.GetByID(ctx, in.CustomerID); err != nil {
		if errors.Is(err, customer.ErrNotFound) {
			return nil, fmt.Errorf("%w: customer %s", ErrNotFound, in.CustomerID)
		}
		return nil, fmt.Errorf("lookup customer %s: %w", in.CustomerID, err)
	}
	prod, err := s.products.GetByID(ctx, in.ProductID)
	if err != nil {
		if errors.Is(err, product.ErrNotFound) {
			return nil, fmt.Errorf("%w: product %s", ErrNotFound, in.ProductID)
		}
		return nil, fmt.Errorf("lookup product %s: %w", in.ProductID, err)
	}
	if in.TermMonths < prod.MinTermMonths || in.TermMonths > prod.MaxTermMonths {
		return nil, fmt.Errorf("%w: term_months outside product range %d-%d", ErrValidation, prod.MinTermMonths, prod.MaxTermMonths)
	}
	if in.AmountMinor < prod.MinAmountMinor || in.AmountMinor > prod.MaxAmountMinor {
		return nil, fmt.Errorf("%w: amount_minor outside product range %d-%d", ErrValidation, prod.MinAmountMinor, prod.MaxAmountMinor)
	}

	var created *Entity
	for attempt := 0; attempt < referenceAttempts; attempt++ {
		ref, err := s.newRef()
		if err != nil {
			return nil, err
		}
		created, err = s.repo.Create(ctx, CreateInput{
			Reference:   ref,
			CustomerID:  in.CustomerID,
			ProductID:   in.ProductID,
			AmountMinor: in.AmountMinor,
			TermMonths:  in.TermMonths,
			Purpose:     strings.TrimSpace(in.Purpose),
		})
		if err == nil {
			break
		}
		if !errors.Is(err, ErrDuplicateReference) {
			return nil, err
		}
		s.logger.Warn("application reference collision, retrying", "reference", ref, "attempt", attempt+1)
		created = nil
	}
	if created == nil {
		return nil, fmt.Errorf("reference generation exhausted after %d attempts", referenceAttempts)
	}

	payload, _ := json.Marshal(map[string]any{
		"application_id": created.ID,
		"reference":      created.Reference,
		"customer_id":    created.CustomerID,
	})
	if err := s.outbox.Enqueue(ctx, outboxTopicSubmitted, payload); err != nil {
		s.logger.Error("failed to enqueue submission notification", "application_id", created.ID, "err", err)
	}

	return created, nil
}

// Transition moves an application through the review workflow. An approval
// delegates to the loan creator, which flips the status and creates the loan
// in one transaction; every other transition is a compare-and-set so
// concurrent racers cannot both win. Returns the loan ID on approval.
func (s *Service) Transition(ctx context.Context, applicationID string, newStatus Status, reviewerID string) (string, error) {
	app, err := s.repo.GetByID(ctx, applicationID)
	if err != nil {
		return "", fmt.Errorf("application %s: %w", applicationID, err)
	}
	if !CanTransition(app.Status, newStatus) {
		return "", fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, app.Status, newStatus)
	}

	if newStatus == StatusApproved {
		loanID, err := s.loanCreator.CreateFromApplication(ctx, applicationID, reviewerID)
		if err != nil {
			return "", err
		}
		return loanID, nil
	}

	updated, err := s.repo.UpdateStatus(ctx, applicationID, app.Status, newStatus, reviewerID)
	if err != nil {
		return "", err
	}
	if !updated {
		return "", fmt.Errorf("%w: application %s changed concurrently", ErrInvalidTransition, applicationID)
	}

	if newStatus == StatusRejected {
		payload, _ := json.Marshal(map[string]any{
			"application_id": app.ID,
			"reference":      app.Reference,
			"customer_id":    app.CustomerID,
		})
		if err := s.outbox.Enqueue(ctx, outboxTopicRejected, payload); err != nil {
			s.logger.Error("failed to enqueue rejection notification", "application_id", app.ID, "err", err)
		}
	}

	return "", nil
}

func (s *Service) Get(ctx context.Context, applicationID string) (*Entity, error) {
	app, err := s.repo.GetByID(ctx, applicationID)
	if err != nil {
		return nil, fmt.Errorf("application %s: %w", applicationID, err)
	}
	return app, nil
}

func (s *Service) List(ctx context.Context, f ListFilter) ([]Entity, error) {
	return s.repo.List(ctx, f)
}

// StatusSteps reports the four intake milestones: submitted, verification,
// approval, disbursement.
func (s *Service) StatusSteps(ctx context.Context, applicationID string) ([]Step, error) {
	app, err := s.repo.GetByID(ctx, applicationID)
	if err != nil {
		return nil, fmt.Errorf("application %s: %w", applicationID, err)
	}

	steps := []Step{
		{Name: "submitted", Completed: true, Date: &app.CreatedAt},
		{Name: "verification"},
		{Name: "approval"},
		{Name: "disbursement"},
	}

	if app.Status != StatusSubmitted {
		steps[1].Completed = true
		steps[1].Date = app.ReviewedAt
	}
	if app.Status == StatusApproved {
		steps[2].Completed = true
		steps[2].Date = app.ReviewedAt

		ln, err := s.loanFinder.GetLoanByApplication(ctx, applicationID)
		if err == nil && ln != nil {
			steps[3].Completed = true
			approvedAt := ln.ApprovedAt
			steps[3].Date = &approvedAt
		}
	}

	return steps, nil
}
