package loan

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/lendcore/backend/internal/domain/application"
	"github.com/lendcore/backend/internal/domain/product"
	"github.com/lendcore/backend/internal/domain/schedule"
)

const outboxTopicApproved = "loan_approved"

type ApplicationRepository interface {
	GetByID(ctx context.Context, id string) (*application.Entity, error)
}

type ProductRepository interface {
	GetByID(ctx context.Context, id string) (*product.Entity, error)
}

type OutboxRepository interface {
	Enqueue(ctx context.Context, topic string, payload []byte) error
}

type Service struct {
	repo     Repository
	apps     ApplicationRepository
	products ProductRepository
	outbox   OutboxRepository
	logger   *slog.Logger

	// Annual rate in basis points applied when the product record is gone.
	defaultRateBPS int32
	now            func() time.Time
}

func NewService(repo Repository, apps ApplicationRepository, products ProductRepository, outbox OutboxRepository, logger *slog.Logger, defaultRateBPS int32) *Service {
	return &Service{
		repo:           repo,
		apps:           apps,
		products:       products,
		outbox:         outbox,
		logger:         logger,
		defaultRateBPS: defaultRateBPS,
		now:            func() time.Time { return time.Now().UTC() },
	}
}

// CreateFromApplication converts an application under review into an active
// loan. The repository flips the application status and writes the loan and
// all schedule entries as one transaction, so concurrent duplicate approvals
// create at most one loan.
func (s *Service) CreateFromApplication(ctx context.Context, applicationID, approverID string) (string, error) {
	app, err := s.apps.GetByID(ctx, applicationID)
	if err != nil {
		if errors.Is(err, application.ErrNotFound) {
			return "", fmt.Errorf("%w: application %s", ErrDependencyMissing, applicationID)
		}
		return "", fmt.Errorf("lookup application %s: %w", applicationID, err)
	}
	if app.Status != application.StatusUnderReview {
		return "", fmt.Errorf("%w: application %s is %s, expected %s", ErrDependencyMissing, applicationID, app.Status, application.StatusUnderReview)
	}

	rateBPS := s.defaultRateBPS
	prod, err := s.products.GetByID(ctx, app.ProductID)
	switch {
	case err == nil:
		rateBPS = prod.InterestRateBPS
	case errors.Is(err, product.ErrNotFound):
		s.logger.Warn("product missing for approved application, using default rate",
			"application_id", applicationID, "product_id", app.ProductID, "default_rate_bps", rateBPS)
	default:
		return "", fmt.Errorf("lookup product %s: %w", app.ProductID, err)
	}

	startDate := truncateToDate(s.now())
	endDate := startDate.AddDate(0, app.TermMonths, 0)

	entries, err := schedule.Generate(app.AmountMinor, rateBPS, app.TermMonths, startDate)
	if err != nil {
		return "", err
	}

	created, err := s.repo.CreateApproved(ctx, CreateApprovedInput{
		ApplicationID:   applicationID,
		CustomerID:      app.CustomerID,
		ProductID:       app.ProductID,
		PrincipalMinor:  app.AmountMinor,
		InterestRateBPS: rateBPS,
		TermMonths:      app.TermMonths,
		StartDate:       startDate,
		EndDate:         endDate,
		ApprovedBy:      approverID,
		Entries:         entries,
	})
	if err != nil {
		return "", err
	}

	payload, _ := json.Marshal(map[string]any{
		"loan_id":        created.ID,
		"application_id": applicationID,
		"customer_id":    created.CustomerID,
	})
	if err := s.outbox.Enqueue(ctx, outboxTopicApproved, payload); err != nil {
		s.logger.Error("failed to enqueue approval notification", "loan_id", created.ID, "err", err)
	}

	return created.ID, nil
}

func (s *Service) Get(ctx context.Context, loanID string) (*Entity, *ScheduleSummary, error) {
	ln, err := s.repo.GetByID(ctx, loanID)
	if err != nil {
		return nil, nil, fmt.Errorf("loan %s: %w", loanID, err)
	}
	summary, err := s.repo.GetScheduleSummary(ctx, loanID)
	if err != nil {
		return nil, nil, err
	}
	return ln, summary, nil
}

func (s *Service) Schedule(ctx context.Context, loanID string) ([]ScheduleEntry, error) {
	if _, err := s.repo.GetByID(ctx, loanID); err != nil {
		return nil, fmt.Errorf("loan %s: %w", loanID, err)
	}
	return s.repo.ListSchedule(ctx, loanID)
}

func truncateToDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
