package invoice

import "context"

type ConfirmationRepository interface {
	// ListByType returns the global templates of typ and the overrides of
	// packageID.
	ListByType(ctx context.Context, typ ConfirmationType, packageID uint) ([]*Confirmation, error)
	Create(ctx context.Context, c *Confirmation) error
	// CountGlobal counts default templates, used by seeding.
	CountGlobal(ctx context.Context) (int64, error)
}
