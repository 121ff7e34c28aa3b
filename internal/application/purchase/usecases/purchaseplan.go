package usecases

import (
	"context"
	stderrors "errors"
	"fmt"
	"time"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	invoicesvc "github.com/ptuchik/billing/internal/application/invoice/services"
	"github.com/ptuchik/billing/internal/application/payment/paymentgateway"
	"github.com/ptuchik/billing/internal/domain/coupon"
	"github.com/ptuchik/billing/internal/domain/customer"
	"github.com/ptuchik/billing/internal/domain/invoice"
	"github.com/ptuchik/billing/internal/domain/plan"
	"github.com/ptuchik/billing/internal/domain/purchase"
	"github.com/ptuchik/billing/internal/domain/shared/events"
	"github.com/ptuchik/billing/internal/domain/shared/ref"
	"github.com/ptuchik/billing/internal/domain/subscription"
	"github.com/ptuchik/billing/internal/domain/transaction"
	"github.com/ptuchik/billing/internal/shared/biztime"
	"github.com/ptuchik/billing/internal/shared/db"
	"github.com/ptuchik/billing/internal/shared/errors"
	"github.com/ptuchik/billing/internal/shared/logger"
)

type PurchasePlanCommand struct {
	UserID     uint
	Host       ref.Ref
	PlanAlias  string
	CouponCode string
	// PaymentNonce is a one-time payment token. Empty charges the stored
	// default payment method.
	PaymentNonce string
	Gateway      string
	// Currency overrides the customer's currency.
	Currency  string
	Device    invoice.Device
	Reference *ref.Ref
	OrderID   string
	ReturnURL string
	// Payment is a gateway result obtained before the purchase, e.g. when
	// the customer returns from an off-site payment page.
	Payment *paymentgateway.Result
}

// RenewCommand charges the next period of a subscription.
type RenewCommand struct {
	SubscriptionID uint
	Attempt        int
	// LastAttempt expires the subscription when the charge fails.
	LastAttempt bool
	// Manual renewals may pay with a fresh nonce or settle a redirect.
	Gateway      string
	PaymentNonce string
	OrderID      string
	Payment      *paymentgateway.Result
}

// PurchaseSettings are the configurable rules of the purchase flow.
type PurchaseSettings struct {
	Policy     subscription.Policy
	GiftPolicy coupon.GiftPolicy
}

// PurchasePlanUseCase buys plans for hosts and renews subscriptions.
type PurchasePlanUseCase struct {
	preparer
	pricer    *Pricer
	gateways  GatewayResolver
	assembler InvoiceAssembler
	hosts     HostDescriber
	publisher events.EventPublisher
	txm       TransactionRunner
	settings  PurchaseSettings
}

func NewPurchasePlanUseCase(
	repos Repositories,
	handlers *HandlerRegistry,
	pricer *Pricer,
	gateways GatewayResolver,
	assembler InvoiceAssembler,
	publisher events.EventPublisher,
	txm TransactionRunner,
	settings PurchaseSettings,
	logger logger.Interface,
) *PurchasePlanUseCase {
	return &PurchasePlanUseCase{
		preparer: preparer{
			repos:    repos,
			handlers: handlers,
			now:      biztime.NowUTC,
			logger:   logger,
		},
		pricer:    pricer,
		gateways:  gateways,
		assembler: assembler,
		hosts:     RefHostDescriber{},
		publisher: publisher,
		txm:       txm,
		settings:  settings,
	}
}

// SetClock replaces the time source.
func (uc *PurchasePlanUseCase) SetClock(now func() time.Time) {
	uc.now = now
}

// SetHostDescriber sets how hosts are named in confirmations.
func (uc *PurchasePlanUseCase) SetHostDescriber(h HostDescriber) {
	uc.hosts = h
}

// checkout is one purchase attempt after all checks passed.
type checkout struct {
	customer *customer.Customer
	pkg      *plan.Package
	purchase *purchase.Purchase
	current  *subscription.Subscription
	previous *subscription.Subscription
	quote    Quote
	terms    subscription.Terms
	addons   []coupon.Snapshot

	renewal     bool
	attempt     int
	lastAttempt bool

	gateway   string
	nonce     string
	orderID   string
	returnURL string
	payment   *paymentgateway.Result
	device    invoice.Device
}

// Execute buys a plan for a host. Depending on what the host already owns
// this renews the running subscription, switches its billing frequency,
// reactivates an existing purchase or makes a new one.
func (uc *PurchasePlanUseCase) Execute(ctx context.Context, cmd PurchasePlanCommand) (*invoice.Invoice, error) {
	uc.logger.Infow("executing purchase plan use case", "user_id", cmd.UserID, "host", cmd.Host.String(), "plan", cmd.PlanAlias)

	prep, err := uc.prepare(ctx, cmd.UserID, cmd.Host, cmd.PlanAlias, cmd.Currency)
	if err != nil {
		return nil, err
	}
	if cmd.Reference != nil {
		prep.purchase.SetReference(cmd.Reference)
	}

	if cur := prep.current; cur != nil {
		if prep.plan.IsRecurring() {
			inUse, err := uc.handlers.For(prep.pkg.Kind()).IsInUse(ctx, prep.purchase)
			if err != nil {
				return nil, fmt.Errorf("failed to check package usage: %w", err)
			}
			if inUse {
				if cur.Frequency() == prep.plan.Frequency() {
					return uc.renew(ctx, cur, cmd, 0, false)
				}
				return uc.switchFrequency(ctx, prep, cmd)
			}
			if !cur.OnTrial() {
				return uc.useExistingPurchase(ctx, prep, cmd)
			}
		}
		// A trial ending early is replaced like any running subscription.
		if err := uc.checkReplacement(prep); err != nil {
			return nil, err
		}
	} else if prep.purchase.IsActive() {
		return uc.useExistingPurchase(ctx, prep, cmd)
	}

	co, err := uc.planCheckout(prep, cmd)
	if err != nil {
		return nil, err
	}
	inv, err := uc.makePurchase(ctx, co)
	if err != nil {
		return nil, err
	}

	for _, alias := range prep.plan.AdditionalPlans() {
		extra := cmd
		extra.PlanAlias = alias
		extra.CouponCode = ""
		extra.Payment = nil
		extraInv, err := uc.Execute(ctx, extra)
		if err != nil {
			uc.logger.Warnw("failed to purchase additional plan", "plan", alias, "host", cmd.Host.String(), "error", err)
			continue
		}
		inv.AdditionalInvoices = append(inv.AdditionalInvoices, extraInv)
	}
	return inv, nil
}

// Renew charges the next period of a subscription on its frozen terms.
func (uc *PurchasePlanUseCase) Renew(ctx context.Context, cmd RenewCommand) (*invoice.Invoice, error) {
	sub, err := uc.repos.Subscriptions.GetByID(ctx, cmd.SubscriptionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get subscription: %w", err)
	}
	if sub == nil {
		return nil, errors.NewNotFoundError("subscription not found")
	}
	return uc.renew(ctx, sub, PurchasePlanCommand{
		Gateway:      cmd.Gateway,
		PaymentNonce: cmd.PaymentNonce,
		OrderID:      cmd.OrderID,
		Payment:      cmd.Payment,
	}, cmd.Attempt, cmd.LastAttempt)
}

func (uc *PurchasePlanUseCase) renew(ctx context.Context, sub *subscription.Subscription, cmd PurchasePlanCommand, attempt int, lastAttempt bool) (*invoice.Invoice, error) {
	if !sub.IsActive() {
		return nil, errors.NewValidationError(subscription.ErrSubscriptionInactive.Error())
	}

	p, err := uc.repos.Purchases.GetByID(ctx, sub.PurchaseID())
	if err != nil {
		return nil, fmt.Errorf("failed to get purchase: %w", err)
	}
	if p == nil {
		return nil, errors.NewNotFoundError("purchase not found")
	}
	c, err := uc.repos.Customers.GetByID(ctx, sub.UserID())
	if err != nil {
		return nil, fmt.Errorf("failed to get customer: %w", err)
	}
	if c == nil {
		return nil, errors.NewNotFoundError("customer not found")
	}
	pkg, err := uc.loadPackage(ctx, p.PackageID(), p.PackageKind(), p.PackageAlias())
	if err != nil {
		return nil, err
	}

	q, err := uc.pricer.ForRenewal(sub, c, uc.now())
	if err != nil {
		return nil, fmt.Errorf("failed to price renewal: %w", err)
	}

	terms := sub.Terms(uc.autoRenew(c, q))
	terms.AddonsGranted = !q.IsFree()

	return uc.makePurchase(ctx, &checkout{
		customer:    c,
		pkg:         pkg,
		purchase:    p,
		current:     sub,
		quote:       q,
		terms:       terms,
		addons:      sub.Addons(),
		renewal:     true,
		attempt:     attempt,
		lastAttempt: lastAttempt,
		gateway:     cmd.Gateway,
		nonce:       cmd.PaymentNonce,
		orderID:     cmd.OrderID,
		returnURL:   cmd.ReturnURL,
		payment:     cmd.Payment,
		device:      cmd.Device,
	})
}

func (uc *PurchasePlanUseCase) planCheckout(prep *preparation, cmd PurchasePlanCommand) (*checkout, error) {
	q, err := uc.quote(prep, cmd.CouponCode)
	if err != nil {
		return nil, err
	}
	return &checkout{
		customer: prep.customer,
		pkg:      prep.pkg,
		purchase: prep.purchase,
		current:  prep.current,
		previous: prep.previous,
		quote:    q,
		terms: subscription.Terms{
			Alias:         prep.plan.Alias(),
			Name:          prep.pkg.Name(),
			Price:         q.Price,
			Currency:      q.Currency,
			Frequency:     q.Frequency,
			Coupons:       q.Coupons,
			Addons:        coupon.Snapshots(prep.plan.UniqueAddons()),
			Features:      prep.plan.Features(),
			TrialDays:     q.TrialDays,
			AutoRenew:     uc.autoRenew(prep.customer, q),
			AddonsGranted: !q.IsFree() && !q.HasTrial(),
		},
		addons:    coupon.Snapshots(prep.plan.UniqueAddons()),
		gateway:   cmd.Gateway,
		nonce:     cmd.PaymentNonce,
		orderID:   cmd.OrderID,
		returnURL: cmd.ReturnURL,
		payment:   cmd.Payment,
		device:    cmd.Device,
	}, nil
}

func (uc *PurchasePlanUseCase) quote(prep *preparation, couponCode string) (Quote, error) {
	q, err := uc.pricer.ForPlan(PlanQuoteInput{
		Plan:       prep.plan,
		Customer:   prep.customer,
		Currency:   prep.currency,
		CouponCode: couponCode,
		TrialDays:  prep.trialDays,
		Previous:   prep.previous,
		Now:        uc.now(),
	})
	if err != nil {
		if pv := policyViolation(err); pv != nil {
			return Quote{}, pv
		}
		return Quote{}, fmt.Errorf("failed to price plan: %w", err)
	}
	return q, nil
}

// autoRenew is false when a paid subscription cannot be charged later.
func (uc *PurchasePlanUseCase) autoRenew(c *customer.Customer, q Quote) bool {
	return c.HasPaymentMethod() || q.Summary.IsZero()
}

func (uc *PurchasePlanUseCase) checkReplacement(prep *preparation) error {
	price, err := uc.pricer.Resolver().Resolve(prep.plan.Price(), prep.current.Currency())
	if err != nil {
		return fmt.Errorf("failed to resolve plan price: %w", err)
	}
	if err := uc.settings.Policy.CheckReplacement(prep.current, price, prep.plan.Frequency()); err != nil {
		return policyViolation(err)
	}
	return nil
}

// makePurchase charges the customer and, unless the charge failed, grants
// the package in one database transaction.
func (uc *PurchasePlanUseCase) makePurchase(ctx context.Context, co *checkout) (*invoice.Invoice, error) {
	payment := co.payment
	gatewayName := co.customer.PaymentGateway()
	charge := co.quote.Charge()

	if payment == nil && charge.IsPositive() {
		gw, err := uc.gateways.Resolve(co.gateway, co.quote.Currency)
		if err != nil {
			return nil, errors.NewValidationError(err.Error())
		}
		gatewayName = gw.Name()
		payment, err = gw.Purchase(ctx, paymentgateway.PurchaseRequest{
			Customer:    gatewayCustomer(co.customer),
			Amount:      charge,
			Currency:    co.quote.Currency,
			Description: co.pkg.Descriptor(),
			Nonce:       co.nonce,
			OrderID:     co.orderID,
			ReturnURL:   co.returnURL,
		})
		if err != nil {
			uc.logger.Errorw("payment gateway call failed", "gateway", gatewayName, "user_id", co.customer.ID(), "error", err)
			payment = &paymentgateway.Result{Message: err.Error()}
		}
	} else if payment != nil && co.gateway != "" {
		gatewayName = co.gateway
	}

	// A result handed in with the purchase may settle a charge recorded
	// as pending by an earlier attempt.
	var pending *transaction.Transaction
	if co.payment != nil {
		var err error
		if pending, err = uc.pendingCharge(ctx, co, co.payment); err != nil {
			return nil, err
		}
	}

	switch {
	case payment != nil && payment.Pending:
		if pending != nil {
			return uc.pendingInvoice(ctx, co, pending, payment), nil
		}
		return uc.recordPending(ctx, co, payment, gatewayName)
	case payment != nil && !payment.Successful:
		return nil, uc.recordFailure(ctx, co, payment, gatewayName, pending)
	}

	var (
		inv *invoice.Invoice
		tx  *transaction.Transaction
	)
	now := uc.now()
	err := uc.txm.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := uc.savePurchase(ctx, co.purchase); err != nil {
			return err
		}
		if err := uc.refundToUserBalance(ctx, co, now); err != nil {
			return err
		}
		if err := uc.activatePackage(ctx, co.pkg, co.purchase); err != nil {
			return err
		}

		co.customer.RemoveCoupons(co.quote.CouponCodes()...)
		if !co.renewal {
			for _, id := range co.quote.ManualCouponIDs {
				if err := uc.repos.Coupons.IncrementUsage(ctx, id); err != nil {
					return fmt.Errorf("failed to increment coupon usage: %w", err)
				}
			}
		}
		if payment != nil {
			if err := uc.giftAddons(ctx, co); err != nil {
				return err
			}
			if co.nonce != "" {
				co.customer.SetHasPaymentMethod(true)
				co.customer.SetPaymentGateway(gatewayName)
			}
		}

		co.terms.AutoRenew = uc.autoRenew(co.customer, co.quote)
		sub, err := uc.processSubscription(ctx, co, now)
		if err != nil {
			return err
		}
		if err := uc.repos.Customers.Update(ctx, co.customer); err != nil {
			return fmt.Errorf("failed to update customer: %w", err)
		}

		if pending != nil {
			tx = pending
			if err := tx.Complete(true, payment.Message); err != nil {
				return fmt.Errorf("failed to settle transaction: %w", err)
			}
			if sub != nil {
				tx.SetSubscriptionID(sub.ID())
			}
			if err := uc.repos.Transactions.Update(ctx, tx); err != nil {
				return fmt.Errorf("failed to update transaction: %w", err)
			}
			inv = invoice.FromTransaction(tx, false)
			return nil
		}

		tx, err = uc.newTransaction(co, sub, gatewayName)
		if err != nil {
			return err
		}
		tx.Record(outcomeOf(payment), co.quote.Charge())
		if co.quote.IsFree() || co.quote.HasTrial() {
			inv = invoice.FromTransaction(tx, false)
			return nil
		}
		if err := uc.repos.Transactions.Create(ctx, tx); err != nil {
			return fmt.Errorf("failed to create transaction: %w", err)
		}
		inv = invoice.FromTransaction(tx, false)
		return nil
	})
	if err != nil {
		uc.logger.Errorw("failed to process purchase", "user_id", co.customer.ID(), "host", co.purchase.Host().String(), "error", err)
		if payment != nil && payment.Reference != "" {
			uc.voidCharge(ctx, gatewayName, co.quote.Currency, payment.Reference)
		}
		return nil, err
	}

	uc.publish(purchase.NewPurchaseSuccessEvent(uc.outcome(co, tx, "")))
	uc.attachConfirmation(ctx, co, inv, false)

	uc.logger.Infow("purchase completed",
		"purchase_id", co.purchase.ID(),
		"user_id", co.customer.ID(),
		"summary", co.quote.Summary.String(),
		"currency", co.quote.Currency,
		"renewal", co.renewal,
	)
	return inv, nil
}

func (uc *PurchasePlanUseCase) savePurchase(ctx context.Context, p *purchase.Purchase) error {
	if p.ID() == 0 {
		if err := uc.repos.Purchases.Create(ctx, p); err != nil {
			return fmt.Errorf("failed to create purchase: %w", err)
		}
		return nil
	}
	if err := uc.repos.Purchases.Update(ctx, p); err != nil {
		return fmt.Errorf("failed to update purchase: %w", err)
	}
	return nil
}

// refundToUserBalance draws the part of the price left after coupons and the
// replaced subscription's value from the customer balance. Trials draw
// nothing.
func (uc *PurchasePlanUseCase) refundToUserBalance(ctx context.Context, co *checkout, now time.Time) error {
	if co.quote.HasTrial() {
		return nil
	}
	price := co.quote.Price.Sub(co.quote.CouponDiscount)
	if co.previous != nil {
		var err error
		price, err = uc.cancelAndRefund(ctx, co, price, now)
		if err != nil {
			return err
		}
	}
	if !price.IsPositive() {
		return nil
	}
	amount, err := uc.pricer.convert(price, co.quote.Currency, co.customer.Currency())
	if err != nil {
		return err
	}
	if _, err := co.customer.Debit(amount); err != nil {
		return fmt.Errorf("failed to debit balance: %w", err)
	}
	return nil
}

// cancelAndRefund settles the replaced subscription: its unused value pays
// for price and any rest is credited to its owner. It returns what is left
// to pay. The replaced package is deactivated unless it is the one bought.
func (uc *PurchasePlanUseCase) cancelAndRefund(ctx context.Context, co *checkout, price decimal.Decimal, now time.Time) (decimal.Decimal, error) {
	prev := co.previous
	left := co.quote.SubscriptionBalanceDiscount.Sub(price)
	if left.IsPositive() {
		owner := co.customer
		if prev.UserID() != co.customer.ID() {
			other, err := uc.repos.Customers.GetByID(ctx, prev.UserID())
			if err != nil {
				return decimal.Zero, fmt.Errorf("failed to get previous owner: %w", err)
			}
			owner = other
		}
		if owner != nil {
			credit, err := uc.pricer.convert(left, co.quote.Currency, owner.Currency())
			if err != nil {
				return decimal.Zero, err
			}
			if err := owner.Credit(credit); err != nil {
				return decimal.Zero, fmt.Errorf("failed to credit balance: %w", err)
			}
			if owner != co.customer {
				if err := uc.repos.Customers.Update(ctx, owner); err != nil {
					return decimal.Zero, fmt.Errorf("failed to update previous owner: %w", err)
				}
			}
		}
		price = decimal.Zero
	} else {
		price = left.Neg()
	}

	if prev.PurchaseID() != co.purchase.ID() {
		if err := uc.deactivatePurchase(ctx, prev, now); err != nil {
			return decimal.Zero, err
		}
	}
	return price, nil
}

// deactivatePurchase turns off the purchase of sub and sub itself.
func (uc *PurchasePlanUseCase) deactivatePurchase(ctx context.Context, sub *subscription.Subscription, now time.Time) error {
	p, err := uc.repos.Purchases.GetByID(ctx, sub.PurchaseID())
	if err != nil {
		return fmt.Errorf("failed to get purchase: %w", err)
	}
	if p != nil && p.Deactivate() {
		if err := uc.repos.Purchases.Update(ctx, p); err != nil {
			return fmt.Errorf("failed to update purchase: %w", err)
		}
		if err := uc.handlers.For(p.PackageKind()).OnDeactivate(ctx, p); err != nil {
			return fmt.Errorf("failed to deactivate package: %w", err)
		}
	}
	return uc.unsubscribe(ctx, sub, now)
}

func (uc *PurchasePlanUseCase) unsubscribe(ctx context.Context, sub *subscription.Subscription, now time.Time) error {
	if sub == nil || !sub.IsActive() {
		return nil
	}
	from := sub.Status()
	sub.Deactivate(now)
	if err := uc.repos.Subscriptions.Update(ctx, sub); err != nil {
		return fmt.Errorf("failed to update subscription: %w", err)
	}
	uc.publish(subscription.NewStatusChangedEvent(sub, from))
	return nil
}

func (uc *PurchasePlanUseCase) activatePackage(ctx context.Context, pkg *plan.Package, p *purchase.Purchase) error {
	if !p.Activate() {
		return nil
	}
	if err := uc.repos.Purchases.Update(ctx, p); err != nil {
		return fmt.Errorf("failed to update purchase: %w", err)
	}
	if err := uc.handlers.For(pkg.Kind()).OnActivate(ctx, p); err != nil {
		return fmt.Errorf("failed to activate package: %w", err)
	}
	return nil
}

// giftAddons hands the internal addon coupons to the customer, once per
// host (and plan, depending on the gift policy).
func (uc *PurchasePlanUseCase) giftAddons(ctx context.Context, co *checkout) error {
	for _, addon := range co.addons {
		if addon.RedeemType != coupon.RedeemInternal {
			continue
		}
		g, err := coupon.NewGift(addon, co.purchase.Host(), co.terms.Alias, uc.settings.GiftPolicy)
		if err != nil {
			return err
		}
		created, err := uc.repos.Gifts.MarkAsGifted(ctx, g)
		if err != nil {
			return fmt.Errorf("failed to mark coupon as gifted: %w", err)
		}
		if created {
			co.customer.AddCoupons(addon.Code)
		}
	}
	return nil
}

// processSubscription subscribes recurring purchases and closes the running
// subscription of one-time purchases.
func (uc *PurchasePlanUseCase) processSubscription(ctx context.Context, co *checkout, now time.Time) (*subscription.Subscription, error) {
	if !co.terms.Frequency.IsRecurring() {
		return nil, uc.unsubscribe(ctx, co.current, now)
	}

	existing := co.current
	var from subscription.Status
	if existing != nil {
		from = existing.Status()
	}
	sub := subscription.Subscribe(existing, co.purchase.ID(), co.customer.ID(), co.terms, now)
	if existing == nil {
		if err := uc.repos.Subscriptions.Create(ctx, sub); err != nil {
			return nil, fmt.Errorf("failed to create subscription: %w", err)
		}
	} else {
		if err := uc.repos.Subscriptions.Update(ctx, sub); err != nil {
			return nil, fmt.Errorf("failed to update subscription: %w", err)
		}
	}
	if from != sub.Status() {
		uc.publish(subscription.NewStatusChangedEvent(sub, from))
	}
	co.current = sub
	return sub, nil
}

func (uc *PurchasePlanUseCase) newTransaction(co *checkout, sub *subscription.Subscription, gatewayName string) (*transaction.Transaction, error) {
	purchaseID := co.purchase.ID()
	d := transaction.Draft{
		UserID:     co.customer.ID(),
		PurchaseID: &purchaseID,
		Name:       co.pkg.Name(),
		Type:       transaction.TypeIncome,
		Price:      co.quote.Price,
		Discount:   co.quote.Discount,
		Currency:   co.quote.Currency,
		Coupons:    co.quote.Coupons,
		Gateway:    gatewayName,
	}
	if purchaseID == 0 {
		d.PurchaseID = nil
	}
	if sub != nil && sub.ID() != 0 {
		id := sub.ID()
		d.SubscriptionID = &id
	}
	tx, err := transaction.NewTransaction(d)
	if err != nil {
		return nil, fmt.Errorf("failed to build transaction: %w", err)
	}
	return tx, nil
}

// recordFailure stores the failed charge outside any running database
// transaction, expires the subscription on the last renewal attempt and
// returns the payment error. A first purchase is stored inactive so the
// failed charge belongs to it. pending, when set, is the earlier pending
// charge the failure settles.
func (uc *PurchasePlanUseCase) recordFailure(ctx context.Context, co *checkout, payment *paymentgateway.Result, gatewayName string, pending *transaction.Transaction) error {
	detached := db.WithoutTransaction(ctx)

	var (
		tx  *transaction.Transaction
		err error
	)
	if pending != nil {
		tx = pending
		if err = tx.Complete(false, payment.Message); err == nil {
			err = uc.repos.Transactions.Update(detached, tx)
		}
	} else {
		if err = uc.savePurchase(detached, co.purchase); err == nil {
			tx, err = uc.newTransaction(co, co.current, gatewayName)
		}
		if err == nil {
			tx.Record(outcomeOf(payment), co.quote.Charge())
			err = uc.repos.Transactions.Create(detached, tx)
		}
	}
	if err != nil {
		uc.logger.Errorw("failed to record failed transaction", "user_id", co.customer.ID(), "error", err)
	}

	if co.lastAttempt && co.current != nil {
		if err := uc.expire(detached, co); err != nil {
			uc.logger.Errorw("failed to expire subscription", "subscription_id", co.current.ID(), "error", err)
		}
	}

	uc.publish(purchase.NewPurchaseFailedEvent(uc.outcome(co, tx, payment.Message)))

	uc.logger.Warnw("payment failed",
		"user_id", co.customer.ID(),
		"host", co.purchase.Host().String(),
		"gateway", gatewayName,
		"renewal", co.renewal,
		"attempt", co.attempt,
		"message", payment.Message,
	)
	return errors.NewPaymentFailedError(payment.Message)
}

// expire ends a subscription whose last renewal attempt failed.
func (uc *PurchasePlanUseCase) expire(ctx context.Context, co *checkout) error {
	now := uc.now()
	return uc.txm.RunInTransaction(ctx, func(ctx context.Context) error {
		sub := co.current
		from := sub.Status()
		sub.MarkAsExpired()
		sub.Close()
		if err := uc.repos.Subscriptions.Update(ctx, sub); err != nil {
			return fmt.Errorf("failed to update subscription: %w", err)
		}
		uc.publish(subscription.NewStatusChangedEvent(sub, from))
		if co.purchase.Deactivate() {
			if err := uc.repos.Purchases.Update(ctx, co.purchase); err != nil {
				return fmt.Errorf("failed to update purchase: %w", err)
			}
			if err := uc.handlers.For(co.pkg.Kind()).OnDeactivate(ctx, co.purchase); err != nil {
				return fmt.Errorf("failed to deactivate package: %w", err)
			}
		}
		uc.logger.Infow("subscription expired after last renewal attempt", "subscription_id", sub.ID(), "at", now)
		return nil
	})
}

// recordPending stores a charge the gateway has not settled yet. Nothing is
// granted until it settles.
func (uc *PurchasePlanUseCase) recordPending(ctx context.Context, co *checkout, payment *paymentgateway.Result, gatewayName string) (*invoice.Invoice, error) {
	var tx *transaction.Transaction
	err := uc.txm.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := uc.savePurchase(ctx, co.purchase); err != nil {
			return err
		}
		var err error
		tx, err = uc.newTransaction(co, co.current, gatewayName)
		if err != nil {
			return err
		}
		tx.Record(outcomeOf(payment), co.quote.Charge())
		if err := uc.repos.Transactions.Create(ctx, tx); err != nil {
			return fmt.Errorf("failed to create transaction: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	inv := invoice.FromTransaction(tx, false)
	if payment.Redirect {
		inv.RedirectURL = payment.RedirectURL
	}
	uc.attachConfirmation(ctx, co, inv, true)
	uc.logger.Infow("purchase pending", "purchase_id", co.purchase.ID(), "reference", tx.Reference())
	return inv, nil
}

// pendingCharge returns the pending transaction of this customer that the
// gateway result refers to, or nil.
func (uc *PurchasePlanUseCase) pendingCharge(ctx context.Context, co *checkout, payment *paymentgateway.Result) (*transaction.Transaction, error) {
	if payment.Reference == "" {
		return nil, nil
	}
	tx, err := uc.repos.Transactions.GetByReference(ctx, payment.Reference)
	if err != nil {
		return nil, fmt.Errorf("failed to get transaction: %w", err)
	}
	if tx == nil || !tx.IsPending() || tx.UserID() != co.customer.ID() {
		return nil, nil
	}
	if id := tx.PurchaseID(); id != nil && co.purchase.ID() != 0 && *id != co.purchase.ID() {
		return nil, nil
	}
	return tx, nil
}

// pendingInvoice answers a repeated pending result without storing the
// charge twice.
func (uc *PurchasePlanUseCase) pendingInvoice(ctx context.Context, co *checkout, tx *transaction.Transaction, payment *paymentgateway.Result) *invoice.Invoice {
	inv := invoice.FromTransaction(tx, false)
	if payment.Redirect {
		inv.RedirectURL = payment.RedirectURL
	}
	uc.attachConfirmation(ctx, co, inv, true)
	uc.logger.Infow("purchase still pending", "purchase_id", co.purchase.ID(), "reference", tx.Reference())
	return inv
}

// switchFrequency moves a running subscription to a plan of the same package
// with another billing frequency. Nothing is charged until the next billing
// date.
func (uc *PurchasePlanUseCase) switchFrequency(ctx context.Context, prep *preparation, cmd PurchasePlanCommand) (*invoice.Invoice, error) {
	if err := uc.checkReplacement(prep); err != nil {
		return nil, err
	}
	co, err := uc.planCheckout(prep, cmd)
	if err != nil {
		return nil, err
	}

	now := uc.now()
	var next *subscription.Subscription
	err = uc.txm.RunInTransaction(ctx, func(ctx context.Context) error {
		cur := prep.current
		from := cur.Status()
		next = cur.SwitchFrequency(co.terms, prep.customer.ID(), now)
		if err := uc.repos.Subscriptions.Update(ctx, cur); err != nil {
			return fmt.Errorf("failed to update subscription: %w", err)
		}
		if err := uc.repos.Subscriptions.Create(ctx, next); err != nil {
			return fmt.Errorf("failed to create subscription: %w", err)
		}
		uc.publish(subscription.NewStatusChangedEvent(cur, from))
		return nil
	})
	if err != nil {
		uc.logger.Errorw("failed to switch subscription frequency", "subscription_id", prep.current.ID(), "error", err)
		return nil, err
	}

	tx, err := transaction.FromSubscription(next, prep.customer.PaymentGateway(), uc.pricer.Resolver())
	if err != nil {
		return nil, fmt.Errorf("failed to build invoice: %w", err)
	}
	inv := invoice.FromTransaction(tx, true)
	co.current = next
	uc.attachConfirmation(ctx, co, inv, false)

	uc.logger.Infow("subscription frequency switched",
		"purchase_id", prep.purchase.ID(),
		"from", prep.current.Frequency().String(),
		"to", next.Frequency().String(),
	)
	return inv, nil
}

// useExistingPurchase reactivates a purchase the host already paid for and
// returns the invoice of its last successful charge.
func (uc *PurchasePlanUseCase) useExistingPurchase(ctx context.Context, prep *preparation, cmd PurchasePlanCommand) (*invoice.Invoice, error) {
	co, err := uc.planCheckout(prep, cmd)
	if err != nil {
		return nil, err
	}

	now := uc.now()
	err = uc.txm.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := uc.activatePackage(ctx, co.pkg, co.purchase); err != nil {
			return err
		}
		if co.previous != nil {
			if _, err := uc.cancelAndRefund(ctx, co, decimal.Zero, now); err != nil {
				return err
			}
			if err := uc.repos.Customers.Update(ctx, co.customer); err != nil {
				return fmt.Errorf("failed to update customer: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		uc.logger.Errorw("failed to reactivate purchase", "purchase_id", prep.purchase.ID(), "error", err)
		return nil, err
	}

	last, err := uc.repos.Transactions.GetLastSuccessfulByPurchase(ctx, prep.purchase.ID())
	if err != nil {
		return nil, fmt.Errorf("failed to get last transaction: %w", err)
	}
	inv := invoice.FromTransaction(last, true)
	if last == nil {
		inv.Currency = co.quote.Currency
	}
	uc.attachConfirmation(ctx, co, inv, false)
	return inv, nil
}

func (uc *PurchasePlanUseCase) attachConfirmation(ctx context.Context, co *checkout, inv *invoice.Invoice, pending bool) {
	if uc.assembler == nil {
		return
	}
	s := invoicesvc.Subject{
		Invoice:     inv,
		Pending:     pending,
		TrialDays:   co.quote.TrialDays,
		PackageID:   co.pkg.ID(),
		PackageName: co.pkg.Name(),
		Host:        uc.hosts.Describe(ctx, co.purchase.Host()),
		Customer:    co.customer,
		Device:      co.device,
	}
	if co.current != nil {
		s.SubscriptionName = co.current.Name()
	}
	if err := uc.assembler.Attach(ctx, s); err != nil {
		uc.logger.Warnw("failed to attach confirmation", "purchase_id", co.purchase.ID(), "error", err)
	}
}

func (uc *PurchasePlanUseCase) voidCharge(ctx context.Context, gatewayName, currency, reference string) {
	gw, err := uc.gateways.Resolve(gatewayName, currency)
	if err != nil {
		uc.logger.Errorw("failed to resolve gateway for void", "gateway", gatewayName, "reference", reference, "error", err)
		return
	}
	if _, err := gw.Void(db.WithoutTransaction(ctx), reference); err != nil {
		uc.logger.Errorw("failed to void charge after rollback", "gateway", gatewayName, "reference", reference, "error", err)
	}
}

func (uc *PurchasePlanUseCase) outcome(co *checkout, tx *transaction.Transaction, message string) purchase.Outcome {
	o := purchase.Outcome{
		PurchaseID:  co.purchase.ID(),
		UserID:      co.customer.ID(),
		Host:        co.purchase.Host(),
		PackageID:   co.pkg.ID(),
		PlanAlias:   co.terms.Alias,
		Summary:     co.quote.Summary,
		Currency:    co.quote.Currency,
		TrialDays:   co.quote.TrialDays,
		Renewal:     co.renewal,
		Attempt:     co.attempt,
		LastAttempt: co.lastAttempt,
		Message:     message,
	}
	if co.current != nil {
		o.SubscriptionID = co.current.ID()
	}
	if tx != nil {
		o.TransactionID = tx.ID()
	}
	return o
}

func (uc *PurchasePlanUseCase) publish(e events.DomainEvent) {
	if uc.publisher == nil {
		return
	}
	if err := uc.publisher.Publish(e); err != nil {
		uc.logger.Warnw("failed to publish event", "event_type", e.GetEventType(), "error", err)
	}
}

func gatewayCustomer(c *customer.Customer) paymentgateway.Customer {
	return paymentgateway.Customer{
		ID:        c.ID(),
		Email:     c.Email(),
		FirstName: c.FirstName(),
		LastName:  c.LastName(),
	}
}

func outcomeOf(r *paymentgateway.Result) transaction.Outcome {
	if r == nil {
		return transaction.Outcome{Successful: true}
	}
	return transaction.Outcome{
		Reference:  r.Reference,
		Message:    r.Message,
		Data:       r.RawData,
		Pending:    r.Pending,
		Successful: r.Successful,
	}
}

// policyViolation maps domain rule errors to policy violations, or returns
// nil for other errors.
func policyViolation(err error) error {
	reasons := []struct {
		target error
		reason string
	}{
		{coupon.ErrInvalidCoupon, "invalid_coupon"},
		{coupon.ErrCouponLimitExpired, "coupon_limit_expired"},
		{subscription.ErrDowngradeNotAllowed, "downgrade_not_allowed"},
		{subscription.ErrLifetimeSwitchNotAllowed, "no_switch_to_lifetime"},
	}
	match, ok := lo.Find(reasons, func(r struct {
		target error
		reason string
	}) bool {
		return stderrors.Is(err, r.target)
	})
	if !ok {
		return nil
	}
	return errors.NewPolicyViolationError(match.reason, err.Error())
}
