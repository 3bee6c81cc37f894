package loan

import (
	"context"
	"errors"
	"time"

	"github.com/lendcore/backend/internal/domain/schedule"
)

type Status string

const (
	StatusActive    Status = "active"
	StatusPaid      Status = "paid"
	StatusDefaulted Status = "defaulted"
	StatusCancelled Status = "cancelled"
)

var (
	ErrNotFound = errors.New("loan_not_found")
	// ErrDependencyMissing covers an application that is not in a state the
	// lifecycle manager can approve from, including one already converted
	// into a loan.
	ErrDependencyMissing = errors.New("dependency_missing")
)

type Entity struct {
	ID              string
	ApplicationID   string
	CustomerID      string
	ProductID       string
	PrincipalMinor  int64
	InterestRateBPS int32
	TermMonths      int
	StartDate       time.Time
	EndDate         time.Time
	Status          Status
	ApprovedBy      string
	ApprovedAt      time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// ScheduleEntry is a persisted installment row.
type ScheduleEntry struct {
	ID                string
	LoanID            string
	InstallmentNumber int
	DueDate           time.Time
	PrincipalMinor    int64
	InterestMinor     int64
	TotalMinor        int64
	RemainingMinor    int64
	Status            string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// ScheduleSummary aggregates installment state for a loan.
type ScheduleSummary struct {
	TotalEntries int
	PaidEntries  int
}

type CreateApprovedInput struct {
	ApplicationID   string
	CustomerID      string
	ProductID       string
	PrincipalMinor  int64
	InterestRateBPS int32
	TermMonths      int
	StartDate       time.Time
	EndDate         time.Time
	ApprovedBy      string
	Entries         []schedule.Entry
}

type Repository interface {
	// CreateApproved flips the application from under_review to approved
	// and inserts the loan plus its full schedule in one transaction.
	// Zero rows on the status flip or a duplicate application_id surface
	// as ErrDependencyMissing; nothing is left half-created.
	CreateApproved(ctx context.Context, in CreateApprovedInput) (*Entity, error)
	GetByID(ctx context.Context, id string) (*Entity, error)
	ListSchedule(ctx context.Context, loanID string) ([]ScheduleEntry, error)
	GetScheduleSummary(ctx context.Context, loanID string) (*ScheduleSummary, error)
}
