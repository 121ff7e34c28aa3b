package subscription

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ptuchik/billing/internal/domain/coupon"
	vo "github.com/ptuchik/billing/internal/domain/plan/valueobjects"
	"github.com/ptuchik/billing/internal/shared/biztime"
)

// Subscription is the recurring-billing record of a purchase. Coupons and
// price are frozen when the subscription is (re)subscribed, so later plan
// edits do not change what the customer pays.
//
// Exactly one of these describes the current phase:
//   - trialEndsAt set: trial until trialEndsAt
//   - active with endsAt nil: renews automatically on nextBillingDate
//   - endsAt set: grace period, ends at endsAt
type Subscription struct {
	id              uint
	purchaseID      uint
	userID          uint
	alias           string
	name            string
	price           decimal.Decimal
	currency        string
	frequency       vo.Frequency
	coupons         []coupon.Snapshot
	addons          []coupon.Snapshot
	features        map[string]interface{}
	trialEndsAt     *time.Time
	endsAt          *time.Time
	nextBillingDate time.Time
	active          bool
	version         int
	createdAt       time.Time
	updatedAt       time.Time
}

// Terms is the plan projection a subscription is bought on.
type Terms struct {
	Alias     string
	Name      string
	Price     decimal.Decimal
	Currency  string
	Frequency vo.Frequency
	Coupons   []coupon.Snapshot
	Addons    []coupon.Snapshot
	Features  map[string]interface{}
	// TrialDays is the trial granted by this purchase, 0 for none.
	TrialDays int
	// AutoRenew is false when the customer cannot be charged automatically.
	// The subscription then ends on its next billing date.
	AutoRenew bool
	// AddonsGranted is true when the addon coupons were handed out with this
	// purchase. Otherwise they stay on the subscription until a paid renewal.
	AddonsGranted bool
}

// SubscriptionParams carries persisted subscription state.
type SubscriptionParams struct {
	ID              uint
	PurchaseID      uint
	UserID          uint
	Alias           string
	Name            string
	Price           decimal.Decimal
	Currency        string
	Frequency       vo.Frequency
	Coupons         []coupon.Snapshot
	Addons          []coupon.Snapshot
	Features        map[string]interface{}
	TrialEndsAt     *time.Time
	EndsAt          *time.Time
	NextBillingDate time.Time
	Active          bool
	Version         int
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

func ReconstructSubscription(p SubscriptionParams) (*Subscription, error) {
	if p.ID == 0 {
		return nil, fmt.Errorf("subscription ID cannot be zero")
	}
	if p.PurchaseID == 0 {
		return nil, fmt.Errorf("subscription purchase ID cannot be zero")
	}
	return &Subscription{
		id:              p.ID,
		purchaseID:      p.PurchaseID,
		userID:          p.UserID,
		alias:           p.Alias,
		name:            p.Name,
		price:           p.Price,
		currency:        p.Currency,
		frequency:       p.Frequency,
		coupons:         p.Coupons,
		addons:          p.Addons,
		features:        p.Features,
		trialEndsAt:     p.TrialEndsAt,
		endsAt:          p.EndsAt,
		nextBillingDate: p.NextBillingDate,
		active:          p.Active,
		version:         p.Version,
		createdAt:       p.CreatedAt,
		updatedAt:       p.UpdatedAt,
	}, nil
}

// Subscribe starts or extends the subscription of a purchase on the given
// terms. When existing is nil a new, unsaved subscription is returned;
// otherwise existing is updated in place and returned.
//
// The new period starts at the end of today for new, trial and inactive
// subscriptions, and at the stored next billing date for running ones.
func Subscribe(existing *Subscription, purchaseID, userID uint, t Terms, now time.Time) *Subscription {
	s := existing
	var start time.Time
	switch {
	case s == nil:
		now = now.UTC()
		s = &Subscription{
			purchaseID: purchaseID,
			userID:     userID,
			version:    1,
			createdAt:  now,
			updatedAt:  now,
		}
		start = biztime.EndOfDayUTC(now)
	case s.OnTrial() || !s.active:
		start = biztime.EndOfDayUTC(now)
	default:
		start = s.nextBillingDate
	}

	if s.userID == 0 {
		s.userID = userID
	}
	s.alias = t.Alias
	s.name = t.Name
	s.price = t.Price
	s.currency = t.Currency
	s.frequency = t.Frequency
	s.coupons = t.Coupons
	s.features = t.Features

	if t.TrialDays > 0 {
		trialEnd := biztime.AddDays(start, t.TrialDays)
		s.trialEndsAt = &trialEnd
		s.nextBillingDate = trialEnd
	} else {
		s.coupons = coupon.WithoutNonProrating(s.coupons)
		s.trialEndsAt = nil
		s.nextBillingDate = t.Frequency.AddTo(start)
	}

	s.active = true
	s.endsAt = nil
	if !t.AutoRenew {
		s.endsAt = timePtr(s.nextBillingDate)
	}

	if t.AddonsGranted {
		s.addons = []coupon.Snapshot{}
	} else {
		s.addons = t.Addons
	}

	if existing != nil {
		s.touch()
	}
	return s
}

func (s *Subscription) ID() uint { return s.id }

func (s *Subscription) SetID(id uint) error {
	if s.id != 0 {
		return fmt.Errorf("subscription ID is already set")
	}
	if id == 0 {
		return fmt.Errorf("subscription ID cannot be zero")
	}
	s.id = id
	return nil
}

func (s *Subscription) PurchaseID() uint                 { return s.purchaseID }
func (s *Subscription) UserID() uint                     { return s.userID }
func (s *Subscription) Alias() string                    { return s.alias }
func (s *Subscription) Name() string                     { return s.name }
func (s *Subscription) Price() decimal.Decimal           { return s.price }
func (s *Subscription) Currency() string                 { return s.currency }
func (s *Subscription) Frequency() vo.Frequency          { return s.frequency }
func (s *Subscription) Coupons() []coupon.Snapshot       { return s.coupons }
func (s *Subscription) Addons() []coupon.Snapshot        { return s.addons }
func (s *Subscription) Features() map[string]interface{} { return s.features }
func (s *Subscription) TrialEndsAt() *time.Time          { return s.trialEndsAt }
func (s *Subscription) EndsAt() *time.Time               { return s.endsAt }
func (s *Subscription) NextBillingDate() time.Time       { return s.nextBillingDate }
func (s *Subscription) IsActive() bool                   { return s.active }
func (s *Subscription) Version() int                     { return s.version }
func (s *Subscription) CreatedAt() time.Time             { return s.createdAt }
func (s *Subscription) UpdatedAt() time.Time             { return s.updatedAt }

// OnTrial reports whether the subscription is within its trial period.
func (s *Subscription) OnTrial() bool {
	return s.active && s.trialEndsAt != nil
}

// OnGracePeriod reports whether the subscription will end instead of renewing.
func (s *Subscription) OnGracePeriod() bool {
	return s.active && s.endsAt != nil
}

func (s *Subscription) AutoRenew() bool {
	return s.endsAt == nil
}

// Status projects the stored fields onto the public status.
func (s *Subscription) Status() Status {
	if s.active {
		if s.OnTrial() {
			return StatusTrialActive
		}
		return StatusActive
	}
	if s.EndDate().Before(s.nextBillingDate) {
		return StatusCancelled
	}
	return StatusExpired
}

// EndDate is the day the current period ends: endsAt when set, else the next
// billing date.
func (s *Subscription) EndDate() time.Time {
	if s.endsAt != nil {
		return *s.endsAt
	}
	return s.nextBillingDate
}

// ChargeOutcome is the status of the latest transaction of a subscription.
type ChargeOutcome interface {
	IsSuccessful() bool
}

// HasPaymentIssue reports whether the last charge of an active subscription
// did not succeed. Pass nil when there is no transaction yet.
func (s *Subscription) HasPaymentIssue(last ChargeOutcome) bool {
	return s.active && last != nil && !last.IsSuccessful()
}

// Terms returns the plan projection used to renew the subscription: its own
// price, frequency, frozen coupons and addons, and no trial.
func (s *Subscription) Terms(autoRenew bool) Terms {
	return Terms{
		Alias:     s.alias,
		Name:      s.name,
		Price:     s.price,
		Currency:  s.currency,
		Frequency: s.frequency,
		Coupons:   s.coupons,
		Addons:    s.addons,
		Features:  s.features,
		TrialDays: 0,
		AutoRenew: autoRenew,
	}
}

// SetAutoRenew toggles renewal. Turning it off makes the subscription end on
// its next billing date.
func (s *Subscription) SetAutoRenew(on bool) {
	if on {
		s.endsAt = nil
	} else {
		s.endsAt = timePtr(s.nextBillingDate)
	}
	s.touch()
}

// MarkAsActive clears any pending end.
func (s *Subscription) MarkAsActive() {
	s.active = true
	s.endsAt = nil
	s.touch()
}

// MarkAsExpired stops renewal: the subscription ends on its next billing date
// and no longer counts as paid time.
func (s *Subscription) MarkAsExpired() {
	if s.trialEndsAt == nil {
		s.trialEndsAt = timePtr(s.nextBillingDate)
	}
	s.endsAt = timePtr(s.nextBillingDate)
	s.touch()
}

// ExpireNow moves the next billing date to today and marks the subscription
// as expired.
func (s *Subscription) ExpireNow(now time.Time) {
	s.nextBillingDate = biztime.StartOfDayUTC(now)
	s.MarkAsExpired()
}

// CancelNow ends the subscription today.
func (s *Subscription) CancelNow(now time.Time) {
	today := biztime.StartOfDayUTC(now)
	if s.trialEndsAt == nil {
		s.trialEndsAt = timePtr(today)
	}
	s.endsAt = timePtr(today)
	s.touch()
}

// Deactivate turns the subscription off and cancels it today.
func (s *Subscription) Deactivate(now time.Time) {
	s.active = false
	s.CancelNow(now)
}

// Close turns off a subscription whose end date has been reached, keeping its
// dates so the status reads expired or cancelled.
func (s *Subscription) Close() {
	if s.endsAt == nil {
		s.endsAt = timePtr(s.nextBillingDate)
	}
	s.active = false
	s.touch()
}

// Prolong shifts the next billing date by months. Any set end or trial end
// date follows it.
func (s *Subscription) Prolong(months int) error {
	if !s.active {
		return ErrSubscriptionInactive
	}
	if months <= 0 {
		return fmt.Errorf("prolong months must be positive, got %d", months)
	}
	s.nextBillingDate = biztime.AddMonths(s.nextBillingDate, months)
	if s.endsAt != nil {
		s.endsAt = timePtr(s.nextBillingDate)
	}
	if s.trialEndsAt != nil {
		s.trialEndsAt = timePtr(s.nextBillingDate)
	}
	s.touch()
	return nil
}

// SwitchFrequency replaces the subscription with a new one on other terms of
// the same package. The new row keeps the trial end and next billing date;
// this one is deactivated. Nothing is charged.
func (s *Subscription) SwitchFrequency(t Terms, userID uint, now time.Time) *Subscription {
	now = now.UTC()
	next := &Subscription{
		purchaseID:      s.purchaseID,
		userID:          userID,
		alias:           t.Alias,
		name:            t.Name,
		price:           t.Price,
		currency:        t.Currency,
		frequency:       t.Frequency,
		coupons:         t.Coupons,
		addons:          t.Addons,
		features:        t.Features,
		nextBillingDate: s.nextBillingDate,
		active:          s.active,
		version:         1,
		createdAt:       now,
		updatedAt:       now,
	}
	if next.userID == 0 {
		next.userID = s.userID
	}
	if s.trialEndsAt != nil {
		next.trialEndsAt = timePtr(*s.trialEndsAt)
	}
	if t.Price.IsPositive() && !t.AutoRenew {
		next.endsAt = timePtr(next.nextBillingDate)
	}

	s.Deactivate(now)
	return next
}

// RemoveNonProrateCoupons drops first-period-only coupons.
func (s *Subscription) RemoveNonProrateCoupons() {
	s.coupons = coupon.WithoutNonProrating(s.coupons)
	s.touch()
}

// ActivePurchaseKey is stored in a unique column so that a purchase has at
// most one active subscription. Inactive rows store NULL.
func (s *Subscription) ActivePurchaseKey() *uint {
	if !s.active {
		return nil
	}
	key := s.purchaseID
	return &key
}

func (s *Subscription) touch() {
	s.updatedAt = time.Now().UTC()
	s.version++
}

func timePtr(t time.Time) *time.Time {
	return &t
}
