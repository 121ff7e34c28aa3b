package usecases

import (
	"context"

	"github.com/ptuchik/billing/internal/application/payment/paymentgateway"
	purchaseusecases "github.com/ptuchik/billing/internal/application/purchase/usecases"
	"github.com/ptuchik/billing/internal/domain/invoice"
)

// GatewayResolver picks the gateway for a name and currency. An empty name
// means the default gateway.
type GatewayResolver interface {
	Resolve(name, currency string) (paymentgateway.Gateway, error)
}

type TransactionRunner interface {
	RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// Purchaser buys a plan for a host.
type Purchaser interface {
	Execute(ctx context.Context, cmd purchaseusecases.PurchasePlanCommand) (*invoice.Invoice, error)
}

// Renewer charges the next period of a subscription.
type Renewer interface {
	Renew(ctx context.Context, cmd purchaseusecases.RenewCommand) (*invoice.Invoice, error)
}
