package customer

import (
	"context"
	"errors"
	"time"
)

var ErrNotFound = errors.New("customer_not_found")

type Entity struct {
	ID        string
	FullName  string
	Email     string
	Phone     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

type Repository interface {
	GetByID(ctx context.Context, id string) (*Entity, error)
}
