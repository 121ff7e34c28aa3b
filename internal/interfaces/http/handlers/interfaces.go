package handlers

import (
	"context"
	"time"

	paymentdto "github.com/ptuchik/billing/internal/application/payment/dto"
	"github.com/ptuchik/billing/internal/application/payment/paymentgateway"
	paymentusecases "github.com/ptuchik/billing/internal/application/payment/usecases"
	purchasedto "github.com/ptuchik/billing/internal/application/purchase/dto"
	purchaseusecases "github.com/ptuchik/billing/internal/application/purchase/usecases"
	subdto "github.com/ptuchik/billing/internal/application/subscription/dto"
	subusecases "github.com/ptuchik/billing/internal/application/subscription/usecases"
	"github.com/ptuchik/billing/internal/domain/invoice"
)

// Use case interfaces for the billing handlers

type getQuoteUseCase interface {
	Execute(ctx context.Context, query purchaseusecases.GetQuoteQuery) (*purchasedto.QuoteDTO, error)
}

type purchasePlanUseCase interface {
	Execute(ctx context.Context, cmd purchaseusecases.PurchasePlanCommand) (*invoice.Invoice, error)
	Renew(ctx context.Context, cmd purchaseusecases.RenewCommand) (*invoice.Invoice, error)
}

type deactivatePurchaseUseCase interface {
	Execute(ctx context.Context, cmd purchaseusecases.DeactivatePurchaseCommand) error
}

type getSubscriptionUseCase interface {
	Execute(ctx context.Context, query subusecases.GetSubscriptionQuery) (*subdto.SubscriptionDTO, error)
}

type listUserSubscriptionsUseCase interface {
	Execute(ctx context.Context, query subusecases.ListUserSubscriptionsQuery) ([]*subdto.SubscriptionDTO, error)
}

type cancelSubscriptionUseCase interface {
	Execute(ctx context.Context, cmd subusecases.CancelSubscriptionCommand) error
}

type setAutoRenewUseCase interface {
	Execute(ctx context.Context, cmd subusecases.SetAutoRenewCommand) error
}

type prolongSubscriptionUseCase interface {
	Execute(ctx context.Context, cmd subusecases.ProlongSubscriptionCommand) error
}

// SweepRunner runs one lifecycle sweep for a date.
type SweepRunner interface {
	Execute(ctx context.Context, date time.Time) (*subdto.SweepResult, error)
}

type listTransactionsUseCase interface {
	Execute(ctx context.Context, query paymentusecases.ListTransactionsQuery) (*paymentusecases.ListTransactionsResult, error)
}

type refillBalanceUseCase interface {
	Execute(ctx context.Context, cmd paymentusecases.RefillBalanceCommand) (*paymentdto.TransactionDTO, error)
}

type refundTransactionUseCase interface {
	Execute(ctx context.Context, cmd paymentusecases.RefundTransactionCommand) (*paymentdto.TransactionDTO, error)
}

type voidTransactionUseCase interface {
	Execute(ctx context.Context, cmd paymentusecases.VoidTransactionCommand) (*paymentdto.TransactionDTO, error)
}

type completeTransactionUseCase interface {
	Execute(ctx context.Context, cmd paymentusecases.CompleteTransactionCommand) (*paymentdto.TransactionDTO, error)
}

type createOrderUseCase interface {
	Execute(ctx context.Context, cmd paymentusecases.CreateOrderCommand) (*paymentdto.OrderDTO, error)
}

type completeOrderUseCase interface {
	Execute(ctx context.Context, cmd paymentusecases.CompleteOrderCommand) (*paymentdto.CompletedOrderDTO, error)
}

type listPaymentMethodsUseCase interface {
	Execute(ctx context.Context, query paymentusecases.ListPaymentMethodsQuery) ([]paymentgateway.PaymentMethod, error)
}

type createPaymentMethodUseCase interface {
	Execute(ctx context.Context, cmd paymentusecases.CreatePaymentMethodCommand) (*paymentgateway.PaymentMethod, error)
}

type deletePaymentMethodUseCase interface {
	Execute(ctx context.Context, cmd paymentusecases.DeletePaymentMethodCommand) error
}

type setDefaultPaymentMethodUseCase interface {
	Execute(ctx context.Context, cmd paymentusecases.SetDefaultPaymentMethodCommand) error
}
