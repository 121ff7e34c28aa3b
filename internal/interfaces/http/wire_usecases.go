package http

import (
	"fmt"

	"github.com/ptuchik/billing/internal/application/invoice/services"
	"github.com/ptuchik/billing/internal/application/payment/paymentgateway"
	paymentusecases "github.com/ptuchik/billing/internal/application/payment/usecases"
	purchaseusecases "github.com/ptuchik/billing/internal/application/purchase/usecases"
	subusecases "github.com/ptuchik/billing/internal/application/subscription/usecases"
	"github.com/ptuchik/billing/internal/domain/coupon"
	"github.com/ptuchik/billing/internal/domain/shared/money"
	"github.com/ptuchik/billing/internal/domain/subscription"
	"github.com/ptuchik/billing/internal/infrastructure/cache"
	"github.com/ptuchik/billing/internal/infrastructure/exchangerate"
	"github.com/ptuchik/billing/internal/shared/db"
	"github.com/ptuchik/billing/internal/shared/services/markdown"
)

// billingUseCases holds every use case the handlers and the scheduler call.
type billingUseCases struct {
	getQuote           *purchaseusecases.GetQuoteUseCase
	purchasePlan       *purchaseusecases.PurchasePlanUseCase
	deactivatePurchase *purchaseusecases.DeactivatePurchaseUseCase

	getSubscription     *subusecases.GetSubscriptionUseCase
	listSubscriptions   *subusecases.ListUserSubscriptionsUseCase
	cancelSubscription  *subusecases.CancelSubscriptionUseCase
	setAutoRenew        *subusecases.SetAutoRenewUseCase
	prolongSubscription *subusecases.ProlongSubscriptionUseCase
	renewSubscriptions  *subusecases.RenewSubscriptionsUseCase
	expireSubscriptions *subusecases.ExpireSubscriptionsUseCase
	sendReminders       *subusecases.SendExpirationRemindersUseCase

	listTransactions        *paymentusecases.ListTransactionsUseCase
	refillBalance           *paymentusecases.RefillBalanceUseCase
	refundTransaction       *paymentusecases.RefundTransactionUseCase
	voidTransaction         *paymentusecases.VoidTransactionUseCase
	completeTransaction     *paymentusecases.CompleteTransactionUseCase
	createOrder             *paymentusecases.CreateOrderUseCase
	completeOrder           *paymentusecases.CompleteOrderUseCase
	listPaymentMethods      *paymentusecases.ListPaymentMethodsUseCase
	createPaymentMethod     *paymentusecases.CreatePaymentMethodUseCase
	deletePaymentMethod     *paymentusecases.DeletePaymentMethodUseCase
	setDefaultPaymentMethod *paymentusecases.SetDefaultPaymentMethodUseCase
}

func (c *Container) initUseCases() error {
	billingCfg := c.cfg.Billing
	repos := c.repos

	rates, err := exchangerate.NewRateTable(billingCfg.DefaultCurrency, billingCfg.Rates, c.log)
	if err != nil {
		return fmt.Errorf("failed to load exchange rates: %w", err)
	}
	resolver := money.Resolver{DefaultCurrency: billingCfg.DefaultCurrency, Converter: rates}

	gateways, err := paymentgateway.NewRegistryFromConfig(billingCfg)
	if err != nil {
		return fmt.Errorf("failed to configure payment gateways: %w", err)
	}

	txm := db.NewTransactionManager(c.db)
	packageHandlers := purchaseusecases.NewHandlerRegistry(nil)
	pricer := purchaseusecases.NewPricer(resolver)
	assembler := services.NewAssembler(repos.confirmations, markdown.NewRenderer(), c.log)

	settings := purchaseusecases.PurchaseSettings{
		Policy: subscription.Policy{
			DowngradeAllowed:                 billingCfg.DowngradeAllowed,
			SwitchRecurringToLifetimeAllowed: billingCfg.SwitchRecurringToLifetimeAllowed,
		},
		GiftPolicy: coupon.GiftPolicy{
			By:       coupon.GiftKeyBy(billingCfg.GiftedCoupons.By),
			WithPlan: billingCfg.GiftedCoupons.WithPlan,
		},
	}

	u := &billingUseCases{}

	u.getQuote = purchaseusecases.NewGetQuoteUseCase(repos.Repositories, packageHandlers, pricer, c.log)
	u.purchasePlan = purchaseusecases.NewPurchasePlanUseCase(
		repos.Repositories, packageHandlers, pricer, gateways, assembler, c.dispatcher, txm, settings, c.log,
	)
	u.deactivatePurchase = purchaseusecases.NewDeactivatePurchaseUseCase(
		repos.Repositories, packageHandlers, c.dispatcher, txm, c.log,
	)

	u.getSubscription = subusecases.NewGetSubscriptionUseCase(repos.Subscriptions, repos.Transactions, resolver, c.log)
	u.listSubscriptions = subusecases.NewListUserSubscriptionsUseCase(repos.Subscriptions, repos.Transactions, resolver, c.log)
	u.cancelSubscription = subusecases.NewCancelSubscriptionUseCase(repos.Subscriptions, u.deactivatePurchase, c.dispatcher, c.log)
	u.setAutoRenew = subusecases.NewSetAutoRenewUseCase(repos.Subscriptions, repos.Customers, resolver, c.dispatcher, c.log)
	u.prolongSubscription = subusecases.NewProlongSubscriptionUseCase(repos.Subscriptions, c.log)
	u.renewSubscriptions = subusecases.NewRenewSubscriptionsUseCase(
		repos.Subscriptions, repos.Purchases, repos.Customers, packageHandlers,
		u.purchasePlan, u.deactivatePurchase,
		subusecases.RenewalSettings{
			Attempts:          billingCfg.Renewal.Attempts,
			RetryIntervalDays: billingCfg.Renewal.RetryIntervalDays,
		},
		c.log,
	)
	u.expireSubscriptions = subusecases.NewExpireSubscriptionsUseCase(repos.Subscriptions, u.deactivatePurchase, c.dispatcher, c.log)
	u.sendReminders = subusecases.NewSendExpirationRemindersUseCase(
		repos.Subscriptions, repos.Purchases, repos.Customers, packageHandlers,
		resolver, c.dispatcher, billingCfg.Reminder.DaysBefore, c.log,
	)

	if c.redis != nil {
		lock := cache.NewSweepLock(c.redis, cache.DefaultSweepLockTTL)
		u.renewSubscriptions.SetLock(lock)
		u.expireSubscriptions.SetLock(lock)
		u.sendReminders.SetLock(lock)
	}

	u.listTransactions = paymentusecases.NewListTransactionsUseCase(repos.Transactions, c.log)
	u.refillBalance = paymentusecases.NewRefillBalanceUseCase(repos.Customers, repos.Transactions, gateways, rates, txm, c.log)
	u.refundTransaction = paymentusecases.NewRefundTransactionUseCase(repos.Transactions, gateways, c.log)
	u.voidTransaction = paymentusecases.NewVoidTransactionUseCase(repos.Transactions, gateways, c.log)
	u.completeTransaction = paymentusecases.NewCompleteTransactionUseCase(repos.Transactions, repos.Customers, rates, txm, c.log)
	u.listPaymentMethods = paymentusecases.NewListPaymentMethodsUseCase(repos.Customers, gateways, c.log)
	u.createPaymentMethod = paymentusecases.NewCreatePaymentMethodUseCase(repos.Customers, gateways, c.log)
	u.deletePaymentMethod = paymentusecases.NewDeletePaymentMethodUseCase(repos.Customers, gateways, c.log)
	u.setDefaultPaymentMethod = paymentusecases.NewSetDefaultPaymentMethodUseCase(repos.Customers, gateways, c.log)
	u.createOrder = paymentusecases.NewCreateOrderUseCase(repos.orders, c.log)
	u.completeOrder = paymentusecases.NewCompleteOrderUseCase(repos.orders, u.purchasePlan, u.purchasePlan, u.createPaymentMethod, c.log)

	c.ucs = u
	c.log.Infow("billing use cases initialized",
		"default_currency", billingCfg.DefaultCurrency,
		"default_gateway", billingCfg.DefaultGateway,
	)
	return nil
}
