package order

import "context"

type Repository interface {
	Create(ctx context.Context, o *Order) error
	Update(ctx context.Context, o *Order) error
	GetByPublicID(ctx context.Context, publicID string) (*Order, error)
}
