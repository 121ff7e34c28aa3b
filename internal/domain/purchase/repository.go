package purchase

import (
	"context"
	"errors"

	"github.com/ptuchik/billing/internal/domain/shared/ref"
)

var ErrPurchaseNotFound = errors.New("purchase not found")

type Repository interface {
	Create(ctx context.Context, p *Purchase) error
	Update(ctx context.Context, p *Purchase) error
	GetByID(ctx context.Context, id uint) (*Purchase, error)
	// GetByHostAndPackage returns nil when the host never bought the package.
	GetByHostAndPackage(ctx context.Context, host ref.Ref, packageID uint) (*Purchase, error)
	// ListActiveByHostAndKind lists the host's active purchases of packages of
	// the given kind.
	ListActiveByHostAndKind(ctx context.Context, host ref.Ref, kind string) ([]*Purchase, error)
	ListByUser(ctx context.Context, userID uint) ([]*Purchase, error)
}
