// Package testutil provides in-memory implementations for testing the purchase
// and payment application layers.
package testutil

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/ptuchik/billing/internal/application/payment/paymentgateway"
	"github.com/ptuchik/billing/internal/domain/coupon"
	"github.com/ptuchik/billing/internal/domain/customer"
	"github.com/ptuchik/billing/internal/domain/order"
	"github.com/ptuchik/billing/internal/domain/plan"
	"github.com/ptuchik/billing/internal/domain/purchase"
	"github.com/ptuchik/billing/internal/domain/shared/events"
	"github.com/ptuchik/billing/internal/domain/shared/ref"
	"github.com/ptuchik/billing/internal/domain/subscription"
	"github.com/ptuchik/billing/internal/domain/transaction"
	"github.com/ptuchik/billing/internal/shared/biztime"
	"github.com/ptuchik/billing/internal/shared/logger"
)

// MockCustomerRepository is an in-memory customer.Repository.
type MockCustomerRepository struct {
	mu          sync.RWMutex
	customers   map[uint]*customer.Customer
	nextID      uint
	updateError error
}

func NewMockCustomerRepository(customers ...*customer.Customer) *MockCustomerRepository {
	m := &MockCustomerRepository{customers: make(map[uint]*customer.Customer)}
	for _, c := range customers {
		m.customers[c.ID()] = c
		if c.ID() > m.nextID {
			m.nextID = c.ID()
		}
	}
	return m
}

func (m *MockCustomerRepository) SetUpdateError(err error) { m.updateError = err }

func (m *MockCustomerRepository) Create(ctx context.Context, c *customer.Customer) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if c.ID() == 0 {
		m.nextID++
		if err := c.SetID(m.nextID); err != nil {
			return err
		}
	}
	m.customers[c.ID()] = c
	return nil
}

func (m *MockCustomerRepository) Update(ctx context.Context, c *customer.Customer) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.updateError != nil {
		return m.updateError
	}
	m.customers[c.ID()] = c
	return nil
}

func (m *MockCustomerRepository) GetByID(ctx context.Context, id uint) (*customer.Customer, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.customers[id], nil
}

func (m *MockCustomerRepository) GetByEmail(ctx context.Context, email string) (*customer.Customer, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, c := range m.customers {
		if c.Email() == email {
			return c, nil
		}
	}
	return nil, nil
}

// MockPlanRepository is an in-memory plan.PlanRepository.
type MockPlanRepository struct {
	mu     sync.RWMutex
	plans  map[uint]*plan.Plan
	nextID uint
}

func NewMockPlanRepository(plans ...*plan.Plan) *MockPlanRepository {
	m := &MockPlanRepository{plans: make(map[uint]*plan.Plan)}
	for _, p := range plans {
		m.plans[p.ID()] = p
		if p.ID() > m.nextID {
			m.nextID = p.ID()
		}
	}
	return m
}

func (m *MockPlanRepository) Create(ctx context.Context, p *plan.Plan) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p.ID() == 0 {
		m.nextID++
		if err := p.SetID(m.nextID); err != nil {
			return err
		}
	}
	m.plans[p.ID()] = p
	return nil
}

func (m *MockPlanRepository) Update(ctx context.Context, p *plan.Plan) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.plans[p.ID()] = p
	return nil
}

func (m *MockPlanRepository) GetByID(ctx context.Context, id uint) (*plan.Plan, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.plans[id], nil
}

func (m *MockPlanRepository) GetByAlias(ctx context.Context, alias string) (*plan.Plan, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, p := range m.plans {
		if p.Alias() == alias {
			return p, nil
		}
	}
	return nil, nil
}

func (m *MockPlanRepository) ListVisible(ctx context.Context, packageID uint) ([]*plan.Plan, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*plan.Plan
	for _, p := range m.plans {
		if p.PackageID() == packageID && p.Visibility().Listed() {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SortOrder() < out[j].SortOrder() })
	return out, nil
}

func (m *MockPlanRepository) AttachCoupon(ctx context.Context, planID, couponID uint, addon bool) error {
	return fmt.Errorf("attach coupon is not supported by the mock")
}

// MockPackageRepository is an in-memory plan.PackageRepository.
type MockPackageRepository struct {
	mu       sync.RWMutex
	packages map[uint]*plan.Package
	nextID   uint
}

func NewMockPackageRepository(packages ...*plan.Package) *MockPackageRepository {
	m := &MockPackageRepository{packages: make(map[uint]*plan.Package)}
	for _, p := range packages {
		m.packages[p.ID()] = p
		if p.ID() > m.nextID {
			m.nextID = p.ID()
		}
	}
	return m
}

func (m *MockPackageRepository) Create(ctx context.Context, p *plan.Package) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p.ID() == 0 {
		m.nextID++
		if err := p.SetID(m.nextID); err != nil {
			return err
		}
	}
	m.packages[p.ID()] = p
	return nil
}

func (m *MockPackageRepository) GetByID(ctx context.Context, id uint) (*plan.Package, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.packages[id], nil
}

func (m *MockPackageRepository) GetByAlias(ctx context.Context, alias string) (*plan.Package, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, p := range m.packages {
		if p.Alias() == alias {
			return p, nil
		}
	}
	return nil, nil
}

func (m *MockPackageRepository) ListByKind(ctx context.Context, kind string) ([]*plan.Package, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*plan.Package
	for _, p := range m.packages {
		if p.Kind() == kind {
			out = append(out, p)
		}
	}
	return out, nil
}

// MockCouponRepository is an in-memory coupon.CouponRepository.
type MockCouponRepository struct {
	mu      sync.RWMutex
	coupons map[uint]*coupon.Coupon
	nextID  uint
}

func NewMockCouponRepository(coupons ...*coupon.Coupon) *MockCouponRepository {
	m := &MockCouponRepository{coupons: make(map[uint]*coupon.Coupon)}
	for _, c := range coupons {
		m.coupons[c.ID()] = c
		if c.ID() > m.nextID {
			m.nextID = c.ID()
		}
	}
	return m
}

func (m *MockCouponRepository) Create(ctx context.Context, c *coupon.Coupon) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if c.ID() == 0 {
		m.nextID++
		if err := c.SetID(m.nextID); err != nil {
			return err
		}
	}
	m.coupons[c.ID()] = c
	return nil
}

func (m *MockCouponRepository) Update(ctx context.Context, c *coupon.Coupon) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.coupons[c.ID()] = c
	return nil
}

func (m *MockCouponRepository) GetByID(ctx context.Context, id uint) (*coupon.Coupon, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.coupons[id], nil
}

func (m *MockCouponRepository) GetByCode(ctx context.Context, code string) (*coupon.Coupon, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, c := range m.coupons {
		if c.Code() == code {
			return c, nil
		}
	}
	return nil, nil
}

func (m *MockCouponRepository) IncrementUsage(ctx context.Context, id uint) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.coupons[id]
	if !ok {
		return coupon.ErrCouponNotFound
	}
	c.IncrementUsage()
	return nil
}

// MockGiftRepository is an in-memory coupon.GiftRepository.
type MockGiftRepository struct {
	mu    sync.Mutex
	gifts map[string]struct{}
}

func NewMockGiftRepository() *MockGiftRepository {
	return &MockGiftRepository{gifts: make(map[string]struct{})}
}

func giftKey(g coupon.Gift) string {
	alias := ""
	if g.PlanAlias != nil {
		alias = *g.PlanAlias
	}
	return g.CouponKey + "|" + g.Host.String() + "|" + alias
}

func (m *MockGiftRepository) MarkAsGifted(ctx context.Context, g coupon.Gift) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := giftKey(g)
	if _, ok := m.gifts[key]; ok {
		return false, nil
	}
	m.gifts[key] = struct{}{}
	return true, nil
}

func (m *MockGiftRepository) IsGifted(ctx context.Context, g coupon.Gift) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.gifts[giftKey(g)]
	return ok, nil
}

// Count returns the number of stored gifts.
func (m *MockGiftRepository) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.gifts)
}

// MockPurchaseRepository is an in-memory purchase.Repository.
type MockPurchaseRepository struct {
	mu          sync.RWMutex
	purchases   map[uint]*purchase.Purchase
	nextID      uint
	createError error
}

func NewMockPurchaseRepository() *MockPurchaseRepository {
	return &MockPurchaseRepository{purchases: make(map[uint]*purchase.Purchase)}
}

func (m *MockPurchaseRepository) SetCreateError(err error) { m.createError = err }

func (m *MockPurchaseRepository) Create(ctx context.Context, p *purchase.Purchase) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createError != nil {
		return m.createError
	}
	for _, existing := range m.purchases {
		if existing.Host() == p.Host() && existing.PackageID() == p.PackageID() {
			return fmt.Errorf("duplicate purchase for %s and package %d", p.Host(), p.PackageID())
		}
	}
	if p.ID() == 0 {
		m.nextID++
		if err := p.SetID(m.nextID); err != nil {
			return err
		}
	}
	m.purchases[p.ID()] = p
	return nil
}

func (m *MockPurchaseRepository) Update(ctx context.Context, p *purchase.Purchase) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.purchases[p.ID()]; !ok {
		return purchase.ErrPurchaseNotFound
	}
	m.purchases[p.ID()] = p
	return nil
}

func (m *MockPurchaseRepository) GetByID(ctx context.Context, id uint) (*purchase.Purchase, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.purchases[id], nil
}

func (m *MockPurchaseRepository) GetByHostAndPackage(ctx context.Context, host ref.Ref, packageID uint) (*purchase.Purchase, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, p := range m.purchases {
		if p.Host() == host && p.PackageID() == packageID {
			return p, nil
		}
	}
	return nil, nil
}

func (m *MockPurchaseRepository) ListActiveByHostAndKind(ctx context.Context, host ref.Ref, kind string) ([]*purchase.Purchase, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*purchase.Purchase
	for _, p := range m.purchases {
		if p.IsActive() && p.Host() == host && p.PackageKind() == kind {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID() < out[j].ID() })
	return out, nil
}

func (m *MockPurchaseRepository) ListByUser(ctx context.Context, userID uint) ([]*purchase.Purchase, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*purchase.Purchase
	for _, p := range m.purchases {
		if p.UserID() == userID {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID() < out[j].ID() })
	return out, nil
}

// MockSubscriptionRepository is an in-memory subscription.Repository. It
// enforces one active subscription per purchase like the unique column of
// the real table.
type MockSubscriptionRepository struct {
	mu     sync.RWMutex
	subs   map[uint]*subscription.Subscription
	nextID uint
}

func NewMockSubscriptionRepository() *MockSubscriptionRepository {
	return &MockSubscriptionRepository{subs: make(map[uint]*subscription.Subscription)}
}

func (m *MockSubscriptionRepository) checkActiveKey(s *subscription.Subscription) error {
	key := s.ActivePurchaseKey()
	if key == nil {
		return nil
	}
	for id, other := range m.subs {
		if id == s.ID() {
			continue
		}
		if k := other.ActivePurchaseKey(); k != nil && *k == *key {
			return fmt.Errorf("purchase %d already has an active subscription", *key)
		}
	}
	return nil
}

func (m *MockSubscriptionRepository) Create(ctx context.Context, s *subscription.Subscription) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.checkActiveKey(s); err != nil {
		return err
	}
	if s.ID() == 0 {
		m.nextID++
		if err := s.SetID(m.nextID); err != nil {
			return err
		}
	}
	m.subs[s.ID()] = s
	return nil
}

func (m *MockSubscriptionRepository) Update(ctx context.Context, s *subscription.Subscription) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.subs[s.ID()]; !ok {
		return subscription.ErrSubscriptionNotFound
	}
	if err := m.checkActiveKey(s); err != nil {
		return err
	}
	m.subs[s.ID()] = s
	return nil
}

func (m *MockSubscriptionRepository) GetByID(ctx context.Context, id uint) (*subscription.Subscription, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.subs[id], nil
}

func (m *MockSubscriptionRepository) GetActiveByPurchase(ctx context.Context, purchaseID uint) (*subscription.Subscription, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, s := range m.subs {
		if s.IsActive() && s.PurchaseID() == purchaseID {
			return s, nil
		}
	}
	return nil, nil
}

func (m *MockSubscriptionRepository) filter(keep func(s *subscription.Subscription) bool) []*subscription.Subscription {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*subscription.Subscription
	for _, s := range m.subs {
		if keep(s) {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID() < out[j].ID() })
	return out
}

func (m *MockSubscriptionRepository) ListByUser(ctx context.Context, userID uint) ([]*subscription.Subscription, error) {
	return m.filter(func(s *subscription.Subscription) bool { return s.UserID() == userID }), nil
}

func (m *MockSubscriptionRepository) ListDueForRenewal(ctx context.Context, date time.Time, upTo bool) ([]*subscription.Subscription, error) {
	return m.filter(func(s *subscription.Subscription) bool {
		if !s.IsActive() || s.EndsAt() != nil {
			return false
		}
		same := biztime.SameDay(s.NextBillingDate(), date)
		return same || (upTo && s.NextBillingDate().Before(biztime.StartOfDayUTC(date)))
	}), nil
}

func (m *MockSubscriptionRepository) ListExpiring(ctx context.Context, date time.Time) ([]*subscription.Subscription, error) {
	return m.filter(func(s *subscription.Subscription) bool {
		return s.IsActive() && s.EndsAt() != nil && !s.EndsAt().After(biztime.EndOfDayUTC(date))
	}), nil
}

func (m *MockSubscriptionRepository) ListForReminder(ctx context.Context, from, to time.Time) ([]*subscription.Subscription, error) {
	return m.filter(func(s *subscription.Subscription) bool {
		next := s.NextBillingDate()
		return s.IsActive() && next.After(from) && !next.After(to)
	}), nil
}

// All returns every stored subscription ordered by ID.
func (m *MockSubscriptionRepository) All() []*subscription.Subscription {
	return m.filter(func(*subscription.Subscription) bool { return true })
}

// MockTransactionRepository is an in-memory transaction.Repository.
type MockTransactionRepository struct {
	mu     sync.RWMutex
	txs    map[uint]*transaction.Transaction
	nextID uint
}

func NewMockTransactionRepository() *MockTransactionRepository {
	return &MockTransactionRepository{txs: make(map[uint]*transaction.Transaction)}
}

func (m *MockTransactionRepository) Create(ctx context.Context, t *transaction.Transaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if t.ID() == 0 {
		m.nextID++
		if err := t.SetID(m.nextID); err != nil {
			return err
		}
	}
	m.txs[t.ID()] = t
	return nil
}

func (m *MockTransactionRepository) Update(ctx context.Context, t *transaction.Transaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.txs[t.ID()]; !ok {
		return transaction.ErrTransactionNotFound
	}
	m.txs[t.ID()] = t
	return nil
}

func (m *MockTransactionRepository) GetByID(ctx context.Context, id uint) (*transaction.Transaction, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.txs[id], nil
}

func (m *MockTransactionRepository) GetByReference(ctx context.Context, reference string) (*transaction.Transaction, error) {
	if reference == "" {
		return nil, nil
	}
	return m.last(func(t *transaction.Transaction) bool { return t.Reference() == reference }), nil
}

func (m *MockTransactionRepository) last(keep func(t *transaction.Transaction) bool) *transaction.Transaction {
	var found *transaction.Transaction
	for _, t := range m.All() {
		if keep(t) {
			found = t
		}
	}
	return found
}

func (m *MockTransactionRepository) GetLastSuccessfulByPurchase(ctx context.Context, purchaseID uint) (*transaction.Transaction, error) {
	return m.last(func(t *transaction.Transaction) bool {
		return t.IsSuccessful() && t.PurchaseID() != nil && *t.PurchaseID() == purchaseID
	}), nil
}

func (m *MockTransactionRepository) GetLastBySubscription(ctx context.Context, subscriptionID uint) (*transaction.Transaction, error) {
	return m.last(func(t *transaction.Transaction) bool {
		return t.SubscriptionID() != nil && *t.SubscriptionID() == subscriptionID
	}), nil
}

func (m *MockTransactionRepository) List(ctx context.Context, filter transaction.ListFilter) ([]*transaction.Transaction, int64, error) {
	var out []*transaction.Transaction
	for _, t := range m.All() {
		if filter.UserID != 0 && t.UserID() != filter.UserID {
			continue
		}
		if filter.PurchaseID != 0 && (t.PurchaseID() == nil || *t.PurchaseID() != filter.PurchaseID) {
			continue
		}
		if filter.Status != nil && t.Status() != *filter.Status {
			continue
		}
		out = append(out, t)
	}
	return out, int64(len(out)), nil
}

// All returns every stored transaction ordered by ID.
func (m *MockTransactionRepository) All() []*transaction.Transaction {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*transaction.Transaction, 0, len(m.txs))
	for _, t := range m.txs {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID() < out[j].ID() })
	return out
}

// MockTransactionRunner runs fn directly. Rollback is not simulated.
type MockTransactionRunner struct {
	Calls int
}

func (m *MockTransactionRunner) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	m.Calls++
	return fn(ctx)
}

// MockGateway answers charges with scripted results.
type MockGateway struct {
	mu       sync.Mutex
	name     string
	cash     bool
	results  []*paymentgateway.Result
	err      error
	Requests []paymentgateway.PurchaseRequest
	Voided   []string
	Refunded []string
}

// NewMockGateway returns a gateway that approves every charge until results
// are scripted.
func NewMockGateway(name string) *MockGateway {
	return &MockGateway{name: name}
}

// Script queues results returned by the next Purchase calls in order.
func (g *MockGateway) Script(results ...*paymentgateway.Result) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.results = append(g.results, results...)
}

func (g *MockGateway) SetError(err error) { g.err = err }

func (g *MockGateway) SetCash(cash bool) { g.cash = cash }

func (g *MockGateway) Name() string { return g.name }

func (g *MockGateway) IsCash() bool { return g.cash }

func (g *MockGateway) Purchase(ctx context.Context, req paymentgateway.PurchaseRequest) (*paymentgateway.Result, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.Requests = append(g.Requests, req)
	if g.err != nil {
		return nil, g.err
	}
	if len(g.results) > 0 {
		r := g.results[0]
		g.results = g.results[1:]
		return r, nil
	}
	return &paymentgateway.Result{
		Successful: true,
		Reference:  fmt.Sprintf("%s-%d", g.name, len(g.Requests)),
		Message:    "approved",
	}, nil
}

func (g *MockGateway) Void(ctx context.Context, reference string) (*paymentgateway.Result, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.Voided = append(g.Voided, reference)
	return &paymentgateway.Result{Successful: true, Reference: reference}, nil
}

func (g *MockGateway) Refund(ctx context.Context, reference string) (*paymentgateway.Result, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.Refunded = append(g.Refunded, reference)
	return &paymentgateway.Result{Successful: true, Reference: reference}, nil
}

func (g *MockGateway) CreatePaymentMethod(ctx context.Context, c paymentgateway.Customer, nonce string) (*paymentgateway.PaymentMethod, error) {
	return &paymentgateway.PaymentMethod{Token: nonce, Gateway: g.name, Type: "card", Default: true}, nil
}

func (g *MockGateway) GetPaymentMethods(ctx context.Context, c paymentgateway.Customer) ([]paymentgateway.PaymentMethod, error) {
	return nil, nil
}

func (g *MockGateway) DeletePaymentMethod(ctx context.Context, c paymentgateway.Customer, token string) error {
	return nil
}

func (g *MockGateway) SetDefaultPaymentMethod(ctx context.Context, c paymentgateway.Customer, token string) error {
	return nil
}

// GatewayResolver always resolves to the same gateway.
type GatewayResolver struct {
	Gateway paymentgateway.Gateway
}

func (r GatewayResolver) Resolve(name, currency string) (paymentgateway.Gateway, error) {
	return r.Gateway, nil
}

// RecordingPublisher keeps published events in memory.
type RecordingPublisher struct {
	mu     sync.Mutex
	Events []events.DomainEvent
}

func (p *RecordingPublisher) Publish(event events.DomainEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Events = append(p.Events, event)
	return nil
}

func (p *RecordingPublisher) PublishAll(evts []events.DomainEvent) error {
	for _, e := range evts {
		if err := p.Publish(e); err != nil {
			return err
		}
	}
	return nil
}

// Types lists the types of the published events in order.
func (p *RecordingPublisher) Types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.Events))
	for _, e := range p.Events {
		out = append(out, e.GetEventType())
	}
	return out
}

// NopLogger returns a logger that discards everything.
func NopLogger() logger.Interface {
	return logger.NewNopLogger()
}

// MockOrderRepository is an in-memory order.Repository.
type MockOrderRepository struct {
	mu     sync.RWMutex
	orders map[string]*order.Order
	nextID uint
}

func NewMockOrderRepository() *MockOrderRepository {
	return &MockOrderRepository{orders: make(map[string]*order.Order)}
}

func (m *MockOrderRepository) Create(ctx context.Context, o *order.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.orders[o.PublicID()]; ok {
		return fmt.Errorf("order %s already exists", o.PublicID())
	}
	m.nextID++
	if err := o.SetID(m.nextID); err != nil {
		return err
	}
	m.orders[o.PublicID()] = o
	return nil
}

func (m *MockOrderRepository) Update(ctx context.Context, o *order.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.orders[o.PublicID()]; !ok {
		return order.ErrOrderNotFound
	}
	m.orders[o.PublicID()] = o
	return nil
}

func (m *MockOrderRepository) GetByPublicID(ctx context.Context, publicID string) (*order.Order, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.orders[publicID], nil
}
