package usecases

import (
	"context"
	"time"

	purchaseusecases "github.com/ptuchik/billing/internal/application/purchase/usecases"
	"github.com/ptuchik/billing/internal/domain/invoice"
)

// Renewer charges the next period of a subscription.
type Renewer interface {
	Renew(ctx context.Context, cmd purchaseusecases.RenewCommand) (*invoice.Invoice, error)
}

// PurchaseDeactivator takes a package away from a host.
type PurchaseDeactivator interface {
	Execute(ctx context.Context, cmd purchaseusecases.DeactivatePurchaseCommand) error
}

// HandlerLookup finds the handler of a package kind.
type HandlerLookup interface {
	For(kind string) purchaseusecases.PackageHandler
}

// SweepKind names a scheduled job for locking.
type SweepKind string

const (
	SweepRenew    SweepKind = "renew"
	SweepExpire   SweepKind = "expire"
	SweepReminder SweepKind = "reminder"
)

// SweepLock makes sure a subscription is processed once per sweep and day
// when several processes run the same job.
type SweepLock interface {
	TryAcquire(ctx context.Context, kind SweepKind, subscriptionID uint, date time.Time) (bool, error)
}

// TransactionRunner runs fn inside one database transaction.
type TransactionRunner interface {
	RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
