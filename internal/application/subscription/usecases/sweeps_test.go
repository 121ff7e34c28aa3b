package usecases

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ptuchik/billing/internal/application/payment/paymentgateway"
	"github.com/ptuchik/billing/internal/application/purchase/testutil"
	purchaseusecases "github.com/ptuchik/billing/internal/application/purchase/usecases"
	"github.com/ptuchik/billing/internal/domain/coupon"
	"github.com/ptuchik/billing/internal/domain/customer"
	"github.com/ptuchik/billing/internal/domain/plan"
	vo "github.com/ptuchik/billing/internal/domain/plan/valueobjects"
	"github.com/ptuchik/billing/internal/domain/purchase"
	"github.com/ptuchik/billing/internal/domain/shared/money"
	"github.com/ptuchik/billing/internal/domain/shared/ref"
	"github.com/ptuchik/billing/internal/domain/subscription"
)

var sweepStart = time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC)

type sweepEnv struct {
	repos      purchaseusecases.Repositories
	customers  *testutil.MockCustomerRepository
	purchases  *testutil.MockPurchaseRepository
	subs       *testutil.MockSubscriptionRepository
	gateway    *testutil.MockGateway
	publisher  *testutil.RecordingPublisher
	handlers   *purchaseusecases.HandlerRegistry
	buy        *purchaseusecases.PurchasePlanUseCase
	deactivate *purchaseusecases.DeactivatePurchaseUseCase
	now        time.Time
}

func newSweepEnv(t *testing.T) *sweepEnv {
	t.Helper()
	env := &sweepEnv{
		customers: testutil.NewMockCustomerRepository(),
		purchases: testutil.NewMockPurchaseRepository(),
		subs:      testutil.NewMockSubscriptionRepository(),
		gateway:   testutil.NewMockGateway("sandbox"),
		publisher: &testutil.RecordingPublisher{},
		handlers:  purchaseusecases.NewHandlerRegistry(nil),
		now:       sweepStart,
	}

	pkg, err := plan.ReconstructPackage(1, "hosting", "hosting-pro", "Hosting Pro", false, sweepStart, sweepStart)
	require.NoError(t, err)
	packages := testutil.NewMockPackageRepository(pkg)

	p, err := plan.ReconstructPlan(plan.PlanParams{
		ID:         1,
		PackageID:  1,
		Alias:      "pro-monthly",
		Price:      money.Amounts{"USD": money.MustParse("10")},
		Frequency:  vo.Monthly,
		Visibility: vo.VisibilityVisible,
		Version:    1,
	})
	require.NoError(t, err)

	env.repos = purchaseusecases.Repositories{
		Customers:     env.customers,
		Plans:         testutil.NewMockPlanRepository(p),
		Packages:      packages,
		Coupons:       testutil.NewMockCouponRepository(),
		Gifts:         testutil.NewMockGiftRepository(),
		Purchases:     env.purchases,
		Subscriptions: env.subs,
		Transactions:  testutil.NewMockTransactionRepository(),
	}
	txm := &testutil.MockTransactionRunner{}
	env.buy = purchaseusecases.NewPurchasePlanUseCase(
		env.repos,
		env.handlers,
		purchaseusecases.NewPricer(money.Resolver{DefaultCurrency: "USD"}),
		testutil.GatewayResolver{Gateway: env.gateway},
		nil,
		env.publisher,
		txm,
		purchaseusecases.PurchaseSettings{GiftPolicy: coupon.GiftPolicy{By: coupon.GiftKeyByCode}},
		testutil.NopLogger(),
	)
	env.buy.SetClock(func() time.Time { return env.now })
	env.deactivate = purchaseusecases.NewDeactivatePurchaseUseCase(env.repos, env.handlers, env.publisher, txm, testutil.NopLogger())
	env.deactivate.SetClock(func() time.Time { return env.now })
	return env
}

func (env *sweepEnv) subscribe(t *testing.T, userID uint, host ref.Ref, hasPaymentMethod bool) *subscription.Subscription {
	t.Helper()
	c, err := customer.ReconstructCustomer(customer.CustomerParams{
		ID:               userID,
		Email:            "owner@example.com",
		Currency:         "USD",
		Balance:          money.MustParse("0"),
		HasPaymentMethod: hasPaymentMethod,
		Active:           true,
		Version:          1,
	})
	require.NoError(t, err)
	require.NoError(t, env.customers.Create(context.Background(), c))

	_, err = env.buy.Execute(context.Background(), purchaseusecases.PurchasePlanCommand{
		UserID:    userID,
		Host:      host,
		PlanAlias: "pro-monthly",
		Currency:  "USD",
	})
	require.NoError(t, err)

	p, err := env.purchases.GetByHostAndPackage(context.Background(), host, 1)
	require.NoError(t, err)
	sub, err := env.subs.GetActiveByPurchase(context.Background(), p.ID())
	require.NoError(t, err)
	require.NotNil(t, sub)
	return sub
}

func (env *sweepEnv) renewSweep(attempts int) *RenewSubscriptionsUseCase {
	return NewRenewSubscriptionsUseCase(
		env.subs,
		env.purchases,
		env.customers,
		env.handlers,
		env.buy,
		env.deactivate,
		RenewalSettings{Attempts: attempts, RetryIntervalDays: 1},
		testutil.NopLogger(),
	)
}

// heldLock reports every subscription as taken by another process.
type heldLock struct{}

func (heldLock) TryAcquire(context.Context, SweepKind, uint, time.Time) (bool, error) {
	return false, nil
}

type unusedHandler struct {
	purchaseusecases.DefaultPackageHandler
}

func (unusedHandler) IsInUse(context.Context, *purchase.Purchase) (bool, error) { return false, nil }

func TestRenewSweep_ChargesDueSubscriptions(t *testing.T) {
	env := newSweepEnv(t)
	sub := env.subscribe(t, 1, ref.New("site", 1), true)
	due := sub.NextBillingDate()

	env.now = due
	res, err := env.renewSweep(3).Execute(context.Background(), due)
	require.NoError(t, err)

	assert.Equal(t, 1, res.Processed)
	assert.Equal(t, 1, res.Succeeded)
	assert.Len(t, env.gateway.Requests, 2)
	assert.Equal(t, vo.Monthly.AddTo(due), sub.NextBillingDate())
}

func TestRenewSweep_RetriesAndExpiresOnLastAttempt(t *testing.T) {
	env := newSweepEnv(t)
	sub := env.subscribe(t, 1, ref.New("site", 1), true)
	due := sub.NextBillingDate()
	sweep := env.renewSweep(2)

	env.gateway.Script(&paymentgateway.Result{Message: "declined"})
	env.now = due
	res, err := sweep.Execute(context.Background(), due)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Failed)
	assert.True(t, sub.IsActive(), "a failed first attempt keeps the subscription")

	env.gateway.Script(&paymentgateway.Result{Message: "declined again"})
	next := due.AddDate(0, 0, 1)
	env.now = next
	res, err = sweep.Execute(context.Background(), next)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Failed)

	assert.False(t, sub.IsActive())
	assert.Equal(t, subscription.StatusExpired, sub.Status())
	assert.Contains(t, env.publisher.Types(), purchase.EventPurchaseFailed)
}

func TestRenewSweep_ContinuesAfterFailure(t *testing.T) {
	env := newSweepEnv(t)
	first := env.subscribe(t, 1, ref.New("site", 1), true)
	second := env.subscribe(t, 2, ref.New("site", 2), true)
	require.Equal(t, first.NextBillingDate(), second.NextBillingDate())
	due := first.NextBillingDate()

	env.gateway.Script(&paymentgateway.Result{Message: "declined"})
	env.now = due
	res, err := env.renewSweep(3).Execute(context.Background(), due)
	require.NoError(t, err)

	assert.Equal(t, 2, res.Processed)
	assert.Equal(t, 1, res.Failed)
	assert.Equal(t, 1, res.Succeeded)
	assert.True(t, second.NextBillingDate().After(due))
}

func TestRenewSweep_DeactivatesUnusedPackages(t *testing.T) {
	env := newSweepEnv(t)
	sub := env.subscribe(t, 1, ref.New("site", 1), true)
	env.handlers.Register("hosting", unusedHandler{})

	env.now = sub.NextBillingDate()
	res, err := env.renewSweep(1).Execute(context.Background(), env.now)
	require.NoError(t, err)

	assert.Equal(t, 1, res.Deactivated)
	assert.Len(t, env.gateway.Requests, 1, "unused packages are not charged")
	assert.False(t, sub.IsActive())
}

func TestRenewSweep_SkipsLockedSubscriptions(t *testing.T) {
	env := newSweepEnv(t)
	sub := env.subscribe(t, 1, ref.New("site", 1), true)
	sweep := env.renewSweep(1)
	sweep.SetLock(heldLock{})

	env.now = sub.NextBillingDate()
	res, err := sweep.Execute(context.Background(), env.now)
	require.NoError(t, err)

	assert.Equal(t, 1, res.Skipped)
	assert.Equal(t, 0, res.Succeeded)
	assert.Len(t, env.gateway.Requests, 1)
}

func TestExpireSweep_ClosesEndedSubscriptions(t *testing.T) {
	env := newSweepEnv(t)
	sub := env.subscribe(t, 1, ref.New("site", 1), false)
	require.NotNil(t, sub.EndsAt(), "no payment method means no renewal")

	expire := NewExpireSubscriptionsUseCase(env.subs, env.deactivate, env.publisher, testutil.NopLogger())

	res, err := expire.Execute(context.Background(), sweepStart)
	require.NoError(t, err)
	assert.Equal(t, 0, res.Processed)

	env.now = *sub.EndsAt()
	res, err = expire.Execute(context.Background(), env.now)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Succeeded)

	assert.False(t, sub.IsActive())
	assert.Equal(t, subscription.StatusExpired, sub.Status())
	p, err := env.purchases.GetByID(context.Background(), sub.PurchaseID())
	require.NoError(t, err)
	assert.False(t, p.IsActive())
	assert.Contains(t, env.publisher.Types(), subscription.EventStatusChange)
}

func TestReminderSweep_Window(t *testing.T) {
	env := newSweepEnv(t)
	sub := env.subscribe(t, 1, ref.New("site", 1), true)
	reminders := NewSendExpirationRemindersUseCase(
		env.subs, env.purchases, env.customers, env.handlers,
		money.Resolver{DefaultCurrency: "USD"}, env.publisher, 7, testutil.NopLogger(),
	)

	tests := []struct {
		name     string
		date     time.Time
		wantSent int
	}{
		{"eight days before", sub.NextBillingDate().AddDate(0, 0, -8), 0},
		{"seven days before", sub.NextBillingDate().AddDate(0, 0, -7), 1},
		{"six days before", sub.NextBillingDate().AddDate(0, 0, -6), 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := reminders.Execute(context.Background(), tt.date)
			require.NoError(t, err)
			assert.Equal(t, tt.wantSent, res.Succeeded)
		})
	}
	assert.Contains(t, env.publisher.Types(), subscription.EventExpirationReminder)
}
