package transaction

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ptuchik/billing/internal/domain/coupon"
	"github.com/ptuchik/billing/internal/domain/shared/money"
	"github.com/ptuchik/billing/internal/domain/subscription"
)

var (
	ErrTransactionNotFound     = errors.New("transaction not found")
	ErrInvalidStatusTransition = errors.New("invalid transaction status transition")
)

// Transaction is one charge attempt. Once recorded its amounts never change;
// only refund, void and completion of a pending charge move its status.
type Transaction struct {
	id             uint
	reference      string
	userID         uint
	purchaseID     *uint
	subscriptionID *uint
	name           string
	kind           Type
	price          decimal.Decimal
	discount       decimal.Decimal
	summary        decimal.Decimal
	currency       string
	coupons        []coupon.Snapshot
	gateway        string
	status         Status
	message        string
	data           map[string]interface{}
	createdAt      time.Time
	updatedAt      time.Time
}

// Draft describes a charge before the gateway is called.
type Draft struct {
	UserID         uint
	PurchaseID     *uint
	SubscriptionID *uint
	Name           string
	Type           Type
	Price          decimal.Decimal
	Discount       decimal.Decimal
	Currency       string
	Coupons        []coupon.Snapshot
	Gateway        string
}

// NewTransaction builds an unsaved pending transaction. The discount is
// capped at the price and the summary stays zero until a gateway result is
// recorded.
func NewTransaction(d Draft) (*Transaction, error) {
	if d.Price.IsNegative() || d.Discount.IsNegative() {
		return nil, fmt.Errorf("transaction amounts cannot be negative")
	}
	if len(d.Currency) != 3 {
		return nil, fmt.Errorf("invalid currency code: %q", d.Currency)
	}
	kind := d.Type
	if kind == 0 {
		kind = TypeIncome
	}
	now := time.Now().UTC()
	return &Transaction{
		userID:         d.UserID,
		purchaseID:     d.PurchaseID,
		subscriptionID: d.SubscriptionID,
		name:           d.Name,
		kind:           kind,
		price:          money.Round(d.Price),
		discount:       money.Clamp(d.Discount, d.Price),
		summary:        decimal.Zero,
		currency:       d.Currency,
		coupons:        d.Coupons,
		gateway:        d.Gateway,
		status:         StatusPending,
		createdAt:      now,
		updatedAt:      now,
	}, nil
}

// FromSubscription fills a transaction with a subscription's current terms.
// Used for invoices of frequency switches and for expiration notices.
func FromSubscription(s *subscription.Subscription, gateway string, r money.Resolver) (*Transaction, error) {
	discount, err := s.Discount(r)
	if err != nil {
		return nil, err
	}
	summary, err := s.Summary(r)
	if err != nil {
		return nil, err
	}
	purchaseID := s.PurchaseID()
	t, err := NewTransaction(Draft{
		UserID:         s.UserID(),
		PurchaseID:     &purchaseID,
		SubscriptionID: optionalID(s.ID()),
		Name:           s.Name(),
		Price:          s.Price(),
		Discount:       discount,
		Currency:       s.Currency(),
		Coupons:        s.Coupons(),
		Gateway:        gateway,
	})
	if err != nil {
		return nil, err
	}
	t.summary = summary
	return t, nil
}

type TransactionParams struct {
	ID             uint
	Reference      string
	UserID         uint
	PurchaseID     *uint
	SubscriptionID *uint
	Name           string
	Type           Type
	Price          decimal.Decimal
	Discount       decimal.Decimal
	Summary        decimal.Decimal
	Currency       string
	Coupons        []coupon.Snapshot
	Gateway        string
	Status         Status
	Message        string
	Data           map[string]interface{}
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

func ReconstructTransaction(p TransactionParams) (*Transaction, error) {
	if p.ID == 0 {
		return nil, fmt.Errorf("transaction ID cannot be zero")
	}
	return &Transaction{
		id:             p.ID,
		reference:      p.Reference,
		userID:         p.UserID,
		purchaseID:     p.PurchaseID,
		subscriptionID: p.SubscriptionID,
		name:           p.Name,
		kind:           p.Type,
		price:          p.Price,
		discount:       p.Discount,
		summary:        p.Summary,
		currency:       p.Currency,
		coupons:        p.Coupons,
		gateway:        p.Gateway,
		status:         p.Status,
		message:        p.Message,
		data:           p.Data,
		createdAt:      p.CreatedAt,
		updatedAt:      p.UpdatedAt,
	}, nil
}

func (t *Transaction) ID() uint { return t.id }

func (t *Transaction) SetID(id uint) error {
	if t.id != 0 {
		return fmt.Errorf("transaction ID is already set")
	}
	if id == 0 {
		return fmt.Errorf("transaction ID cannot be zero")
	}
	t.id = id
	return nil
}

func (t *Transaction) Reference() string            { return t.reference }
func (t *Transaction) UserID() uint                 { return t.userID }
func (t *Transaction) PurchaseID() *uint            { return t.purchaseID }
func (t *Transaction) SubscriptionID() *uint        { return t.subscriptionID }
func (t *Transaction) Name() string                 { return t.name }
func (t *Transaction) Type() Type                   { return t.kind }
func (t *Transaction) Price() decimal.Decimal       { return t.price }
func (t *Transaction) Discount() decimal.Decimal    { return t.discount }
func (t *Transaction) Summary() decimal.Decimal     { return t.summary }
func (t *Transaction) Currency() string             { return t.currency }
func (t *Transaction) Coupons() []coupon.Snapshot   { return t.coupons }
func (t *Transaction) Gateway() string              { return t.gateway }
func (t *Transaction) Status() Status               { return t.status }
func (t *Transaction) Message() string              { return t.message }
func (t *Transaction) Data() map[string]interface{} { return t.data }
func (t *Transaction) CreatedAt() time.Time         { return t.createdAt }
func (t *Transaction) UpdatedAt() time.Time         { return t.updatedAt }
func (t *Transaction) IsSuccessful() bool           { return t.status == StatusSuccess }
func (t *Transaction) IsPending() bool              { return t.status == StatusPending }
func (t *Transaction) IsFailed() bool               { return t.status == StatusFailed }

// SetSubscriptionID links the transaction to the subscription it paid for.
func (t *Transaction) SetSubscriptionID(id uint) {
	t.subscriptionID = optionalID(id)
}

// Outcome is what a gateway reported for the charge.
type Outcome struct {
	Reference  string
	Message    string
	Data       map[string]interface{}
	Pending    bool
	Successful bool
}

// Record stores the gateway outcome: pending, success, or failed for
// anything else. summary is the amount that was charged.
func (t *Transaction) Record(o Outcome, summary decimal.Decimal) {
	switch {
	case o.Pending:
		t.status = StatusPending
	case o.Successful:
		t.status = StatusSuccess
	default:
		t.status = StatusFailed
	}
	t.reference = o.Reference
	t.message = o.Message
	t.data = o.Data
	t.summary = money.Round(summary)
	t.updatedAt = time.Now().UTC()
}

// Complete settles a pending charge after the gateway confirmed it.
func (t *Transaction) Complete(successful bool, message string) error {
	if t.status != StatusPending {
		return fmt.Errorf("%w: %s to settled", ErrInvalidStatusTransition, t.status)
	}
	if successful {
		t.status = StatusSuccess
	} else {
		t.status = StatusFailed
	}
	if message != "" {
		t.message = message
	}
	t.updatedAt = time.Now().UTC()
	return nil
}

// Refund moves a successful charge to refunded.
func (t *Transaction) Refund() error {
	if t.status != StatusSuccess {
		return fmt.Errorf("%w: %s to %s", ErrInvalidStatusTransition, t.status, StatusRefunded)
	}
	t.status = StatusRefunded
	t.updatedAt = time.Now().UTC()
	return nil
}

// Void cancels a successful or pending charge before settlement.
func (t *Transaction) Void() error {
	if t.status != StatusSuccess && t.status != StatusPending {
		return fmt.Errorf("%w: %s to %s", ErrInvalidStatusTransition, t.status, StatusVoided)
	}
	t.status = StatusVoided
	t.updatedAt = time.Now().UTC()
	return nil
}

func optionalID(id uint) *uint {
	if id == 0 {
		return nil
	}
	return &id
}
