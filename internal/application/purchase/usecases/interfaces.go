package usecases

import (
	"context"

	invoicesvc "github.com/ptuchik/billing/internal/application/invoice/services"
	"github.com/ptuchik/billing/internal/application/payment/paymentgateway"
	"github.com/ptuchik/billing/internal/domain/coupon"
	"github.com/ptuchik/billing/internal/domain/customer"
	"github.com/ptuchik/billing/internal/domain/plan"
	"github.com/ptuchik/billing/internal/domain/purchase"
	"github.com/ptuchik/billing/internal/domain/shared/ref"
	"github.com/ptuchik/billing/internal/domain/subscription"
	"github.com/ptuchik/billing/internal/domain/transaction"
)

// TransactionRunner runs fn inside one database transaction.
type TransactionRunner interface {
	RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// GatewayResolver picks the payment gateway for a currency.
type GatewayResolver interface {
	Resolve(name, currency string) (paymentgateway.Gateway, error)
}

// InvoiceAssembler attaches the confirmation message to an invoice.
type InvoiceAssembler interface {
	Attach(ctx context.Context, s invoicesvc.Subject) error
}

// PackageHandler connects purchases of one package kind to the product that
// the package unlocks.
type PackageHandler interface {
	// IsInUse reports whether the host still uses what the purchase unlocked.
	IsInUse(ctx context.Context, p *purchase.Purchase) (bool, error)
	OnActivate(ctx context.Context, p *purchase.Purchase) error
	OnDeactivate(ctx context.Context, p *purchase.Purchase) error
}

// HostDescriber renders a host reference for customer-facing messages.
type HostDescriber interface {
	Describe(ctx context.Context, host ref.Ref) string
}

// Repositories groups the stores the purchase flow reads and writes.
type Repositories struct {
	Customers     customer.Repository
	Plans         plan.PlanRepository
	Packages      plan.PackageRepository
	Coupons       coupon.CouponRepository
	Gifts         coupon.GiftRepository
	Purchases     purchase.Repository
	Subscriptions subscription.Repository
	Transactions  transaction.Repository
}
