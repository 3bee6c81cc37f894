package product

import (
	"context"
	"errors"
	"time"
)

var ErrNotFound = errors.New("product_not_found")

type Entity struct {
	ID              string
	Name            string
	InterestRateBPS int32
	MinTermMonths   int
	MaxTermMonths   int
	MinAmountMinor  int64
	MaxAmountMinor  int64
	Active          bool
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

type Repository interface {
	GetByID(ctx context.Context, id string) (*Entity, error)
}
