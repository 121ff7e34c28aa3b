package transaction

import "context"

// ListFilter narrows a transaction listing.
type ListFilter struct {
	UserID     uint
	PurchaseID uint
	Status     *Status
	Page       int
	PageSize   int
}

type Repository interface {
	Create(ctx context.Context, t *Transaction) error
	Update(ctx context.Context, t *Transaction) error
	GetByID(ctx context.Context, id uint) (*Transaction, error)
	GetByReference(ctx context.Context, reference string) (*Transaction, error)
	// GetLastSuccessfulByPurchase returns nil when the purchase was never paid.
	GetLastSuccessfulByPurchase(ctx context.Context, purchaseID uint) (*Transaction, error)
	GetLastBySubscription(ctx context.Context, subscriptionID uint) (*Transaction, error)
	List(ctx context.Context, filter ListFilter) ([]*Transaction, int64, error)
}
