package paymentgateway

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Gateway charges customers and manages their stored payment methods.
type Gateway interface {
	Name() string
	// IsCash reports whether charges settle offline. Balance refills through
	// a cash gateway stay pending until confirmed.
	IsCash() bool
	Purchase(ctx context.Context, req PurchaseRequest) (*Result, error)
	Void(ctx context.Context, reference string) (*Result, error)
	Refund(ctx context.Context, reference string) (*Result, error)
	CreatePaymentMethod(ctx context.Context, customer Customer, nonce string) (*PaymentMethod, error)
	GetPaymentMethods(ctx context.Context, customer Customer) ([]PaymentMethod, error)
	DeletePaymentMethod(ctx context.Context, customer Customer, token string) error
	SetDefaultPaymentMethod(ctx context.Context, customer Customer, token string) error
}

// Customer identifies the payer on the gateway side.
type Customer struct {
	ID        uint
	Email     string
	FirstName string
	LastName  string
}

type PurchaseRequest struct {
	Customer    Customer
	Amount      decimal.Decimal
	Currency    string
	Description string
	// Nonce is a one-time payment token from the client. Empty means the
	// default stored payment method is charged.
	Nonce string
	// OrderID correlates a redirect back to a pending order.
	OrderID   string
	ReturnURL string
}

// Result is the gateway answer to a charge, void or refund.
type Result struct {
	Successful  bool
	Pending     bool
	Redirect    bool
	RedirectURL string
	Reference   string
	Message     string
	RawData     map[string]interface{}
}

type PaymentMethod struct {
	Token       string     `json:"token"`
	Gateway     string     `json:"gateway"`
	Type        string     `json:"type"`
	Description string     `json:"description"`
	Last4       string     `json:"last4,omitempty"`
	ExpiresAt   *time.Time `json:"expires_at,omitempty"`
	Default     bool       `json:"default"`
}
