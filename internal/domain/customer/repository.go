package customer

import (
	"context"
	"errors"
)

var (
	ErrCustomerNotFound = errors.New("customer not found")
	ErrVersionConflict  = errors.New("customer was modified concurrently")
)

type Repository interface {
	Create(ctx context.Context, c *Customer) error
	// Update persists c guarded by its version.
	Update(ctx context.Context, c *Customer) error
	GetByID(ctx context.Context, id uint) (*Customer, error)
	GetByEmail(ctx context.Context, email string) (*Customer, error)
}
