package customer

import (
	"fmt"
	"time"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

// Customer is the billed user: their stored balance, owned coupon codes and
// payment profile.
type Customer struct {
	id               uint
	email            string
	firstName        string
	lastName         string
	currency         string
	balance          Balance
	coupons          []string
	referralID       *string
	hasPaymentMethod bool
	paymentGateway   string
	active           bool
	version          int
	createdAt        time.Time
	updatedAt        time.Time
}

func NewCustomer(email, firstName, lastName, currency string) (*Customer, error) {
	if email == "" {
		return nil, fmt.Errorf("customer email is required")
	}
	if len(currency) != 3 {
		return nil, fmt.Errorf("invalid currency code: %q", currency)
	}
	now := time.Now().UTC()
	return &Customer{
		email:     email,
		firstName: firstName,
		lastName:  lastName,
		currency:  currency,
		coupons:   []string{},
		active:    true,
		version:   1,
		createdAt: now,
		updatedAt: now,
	}, nil
}

// CustomerParams carries persisted customer state.
type CustomerParams struct {
	ID               uint
	Email            string
	FirstName        string
	LastName         string
	Currency         string
	Balance          decimal.Decimal
	Coupons          []string
	ReferralID       *string
	HasPaymentMethod bool
	PaymentGateway   string
	Active           bool
	Version          int
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

func ReconstructCustomer(p CustomerParams) (*Customer, error) {
	if p.ID == 0 {
		return nil, fmt.Errorf("customer ID cannot be zero")
	}
	balance, err := NewBalance(p.Balance)
	if err != nil {
		return nil, err
	}
	coupons := p.Coupons
	if coupons == nil {
		coupons = []string{}
	}
	return &Customer{
		id:               p.ID,
		email:            p.Email,
		firstName:        p.FirstName,
		lastName:         p.LastName,
		currency:         p.Currency,
		balance:          balance,
		coupons:          coupons,
		referralID:       p.ReferralID,
		hasPaymentMethod: p.HasPaymentMethod,
		paymentGateway:   p.PaymentGateway,
		active:           p.Active,
		version:          p.Version,
		createdAt:        p.CreatedAt,
		updatedAt:        p.UpdatedAt,
	}, nil
}

func (c *Customer) ID() uint { return c.id }

func (c *Customer) SetID(id uint) error {
	if c.id != 0 {
		return fmt.Errorf("customer ID is already set")
	}
	if id == 0 {
		return fmt.Errorf("customer ID cannot be zero")
	}
	c.id = id
	return nil
}

func (c *Customer) Email() string          { return c.email }
func (c *Customer) FirstName() string      { return c.firstName }
func (c *Customer) LastName() string       { return c.lastName }
func (c *Customer) Currency() string       { return c.currency }
func (c *Customer) Balance() Balance       { return c.balance }
func (c *Customer) Coupons() []string      { return c.coupons }
func (c *Customer) ReferralID() *string    { return c.referralID }
func (c *Customer) HasPaymentMethod() bool { return c.hasPaymentMethod }
func (c *Customer) PaymentGateway() string { return c.paymentGateway }
func (c *Customer) IsActive() bool         { return c.active }
func (c *Customer) Version() int           { return c.version }
func (c *Customer) CreatedAt() time.Time   { return c.createdAt }
func (c *Customer) UpdatedAt() time.Time   { return c.updatedAt }
func (c *Customer) HasReferral() bool      { return c.referralID != nil && *c.referralID != "" }

// Debit draws amount from the balance, clamped at zero.
func (c *Customer) Debit(amount decimal.Decimal) (decimal.Decimal, error) {
	next, drawn, err := c.balance.Debit(amount)
	if err != nil {
		return decimal.Zero, err
	}
	c.balance = next
	c.touch()
	return drawn, nil
}

// Credit adds amount to the balance.
func (c *Customer) Credit(amount decimal.Decimal) error {
	next, err := c.balance.Credit(amount)
	if err != nil {
		return err
	}
	c.balance = next
	c.touch()
	return nil
}

// AddCoupons gives the customer coupon codes, skipping ones already owned.
func (c *Customer) AddCoupons(codes ...string) {
	merged := lo.Uniq(append(append([]string{}, c.coupons...), codes...))
	if len(merged) == len(c.coupons) {
		return
	}
	c.coupons = merged
	c.touch()
}

// RemoveCoupons drops used codes.
func (c *Customer) RemoveCoupons(codes ...string) {
	kept := lo.Without(c.coupons, codes...)
	if len(kept) == len(c.coupons) {
		return
	}
	c.coupons = kept
	c.touch()
}

func (c *Customer) SetHasPaymentMethod(v bool) {
	if c.hasPaymentMethod == v {
		return
	}
	c.hasPaymentMethod = v
	c.touch()
}

func (c *Customer) SetPaymentGateway(gateway string) {
	c.paymentGateway = gateway
	c.touch()
}

func (c *Customer) SetCurrency(currency string) error {
	if len(currency) != 3 {
		return fmt.Errorf("invalid currency code: %q", currency)
	}
	c.currency = currency
	c.touch()
	return nil
}

func (c *Customer) SetReferralID(id *string) {
	c.referralID = id
	c.touch()
}

func (c *Customer) Deactivate() {
	c.active = false
	c.touch()
}

func (c *Customer) touch() {
	c.updatedAt = time.Now().UTC()
	c.version++
}
