package application

import (
	"context"
	"errors"
	"fmt"
	"time"
)

type Status string

const (
	StatusSubmitted   Status = "submitted"
	StatusUnderReview Status = "under_review"
	StatusApproved    Status = "approved"
	StatusRejected    Status = "rejected"
	StatusCancelled   Status = "cancelled"
)

var (
	ErrNotFound           = errors.New("application_not_found")
	ErrValidation         = errors.New("validation_failed")
	ErrInvalidTransition  = errors.New("invalid_transition")
	ErrDuplicateReference = errors.New("duplicate_reference")
)

// ParseStatus rejects anything outside the recognized status set.
func ParseStatus(raw string) (Status, error) {
	switch Status(raw) {
	case StatusSubmitted, StatusUnderReview, StatusApproved, StatusRejected, StatusCancelled:
		return Status(raw), nil
	}
	return "", fmt.Errorf("%w: unknown status %q", ErrValidation, raw)
}

// IsTerminal reports whether no further transitions are allowed.
func (s Status) IsTerminal() bool {
	return s == StatusApproved || s == StatusRejected || s == StatusCancelled
}

var transitions = map[Status][]Status{
	StatusSubmitted:   {StatusUnderReview, StatusCancelled},
	StatusUnderReview: {StatusApproved, StatusRejected, StatusCancelled},
}

// CanTransition reports whether to is reachable from from.
func CanTransition(from, to Status) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

type Entity struct {
	ID          string
	Reference   string
	CustomerID  string
	ProductID   string
	AmountMinor int64
	TermMonths  int
	Purpose     string
	Status      Status
	ReviewedBy  *string
	ReviewedAt  *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type CreateInput struct {
	Reference   string
	CustomerID  string
	ProductID   string
	AmountMinor int64
	TermMonths  int
	Purpose     string
}

type ListFilter struct {
	CustomerID string
	Status     string
	Limit      int32
	Offset     int32
}

type Repository interface {
	Create(ctx context.Context, in CreateInput) (*Entity, error)
	GetByID(ctx context.Context, id string) (*Entity, error)
	List(ctx context.Context, f ListFilter) ([]Entity, error)
	// UpdateStatus performs a compare-and-set from one status to another
	// and reports whether a row was updated.
	UpdateStatus(ctx context.Context, id string, from, to Status, reviewerID string) (bool, error)
}
