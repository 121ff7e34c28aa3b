package paymentgateway

import (
	"context"
	"fmt"
	"sync"

	"github.com/samber/lo"

	"github.com/ptuchik/billing/internal/shared/id"
)

// RedirectNonce makes the sandbox answer with a redirect instead of charging.
const RedirectNonce = "redirect"

// SandboxGateway settles charges in memory. It approves or declines every
// charge depending on its configuration.
type SandboxGateway struct {
	name    string
	succeed bool
	cash    bool

	mu      sync.Mutex
	seq     int
	methods map[uint][]PaymentMethod
}

func NewSandboxGateway(name string, succeed, cash bool) *SandboxGateway {
	return &SandboxGateway{
		name:    name,
		succeed: succeed,
		cash:    cash,
		methods: make(map[uint][]PaymentMethod),
	}
}

func (g *SandboxGateway) Name() string { return g.name }

func (g *SandboxGateway) IsCash() bool { return g.cash }

func (g *SandboxGateway) nextReference(prefix string) string {
	g.seq++
	return fmt.Sprintf("%s_%s_%d", prefix, g.name, g.seq)
}

func (g *SandboxGateway) Purchase(ctx context.Context, req PurchaseRequest) (*Result, error) {
	if !req.Amount.IsPositive() {
		return nil, fmt.Errorf("charge amount must be positive, got %s", req.Amount)
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	reference := id.NewTransactionReference()
	raw := map[string]interface{}{
		"amount":   req.Amount.StringFixed(2),
		"currency": req.Currency,
		"order_id": req.OrderID,
	}

	switch {
	case req.Nonce == RedirectNonce:
		return &Result{
			Pending:     true,
			Redirect:    true,
			RedirectURL: fmt.Sprintf("https://sandbox.example.com/pay?order=%s&return=%s", req.OrderID, req.ReturnURL),
			Reference:   reference,
			Message:     "redirect",
			RawData:     raw,
		}, nil
	case req.Nonce == "" && len(g.methods[req.Customer.ID]) == 0 && !g.cash:
		return &Result{Reference: reference, Message: "no payment method", RawData: raw}, nil
	case g.cash:
		return &Result{Pending: true, Reference: reference, Message: "awaiting cash payment", RawData: raw}, nil
	case !g.succeed:
		return &Result{Reference: reference, Message: "declined", RawData: raw}, nil
	}
	return &Result{Successful: true, Reference: reference, Message: "approved", RawData: raw}, nil
}

func (g *SandboxGateway) Void(ctx context.Context, reference string) (*Result, error) {
	return &Result{Successful: true, Reference: reference, Message: "voided"}, nil
}

func (g *SandboxGateway) Refund(ctx context.Context, reference string) (*Result, error) {
	return &Result{Successful: true, Reference: reference, Message: "refunded"}, nil
}

func (g *SandboxGateway) CreatePaymentMethod(ctx context.Context, customer Customer, nonce string) (*PaymentMethod, error) {
	if nonce == "" {
		return nil, fmt.Errorf("payment method nonce is required")
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	last4 := nonce
	if len(last4) > 4 {
		last4 = last4[len(last4)-4:]
	}
	m := PaymentMethod{
		Token:       g.nextReference("PM"),
		Gateway:     g.name,
		Type:        "card",
		Description: "Sandbox card ending in " + last4,
		Last4:       last4,
		Default:     len(g.methods[customer.ID]) == 0,
	}
	g.methods[customer.ID] = append(g.methods[customer.ID], m)
	return &m, nil
}

func (g *SandboxGateway) GetPaymentMethods(ctx context.Context, customer Customer) ([]PaymentMethod, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]PaymentMethod, len(g.methods[customer.ID]))
	copy(out, g.methods[customer.ID])
	return out, nil
}

// DeletePaymentMethod removes token. The first remaining method becomes the
// default when the default one is removed.
func (g *SandboxGateway) DeletePaymentMethod(ctx context.Context, customer Customer, token string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	methods := g.methods[customer.ID]
	idx := lo.IndexOf(lo.Map(methods, func(m PaymentMethod, _ int) string { return m.Token }), token)
	if idx < 0 {
		return fmt.Errorf("payment method %s not found", token)
	}
	wasDefault := methods[idx].Default
	methods = append(methods[:idx], methods[idx+1:]...)
	if wasDefault && len(methods) > 0 {
		methods[0].Default = true
	}
	g.methods[customer.ID] = methods
	return nil
}

func (g *SandboxGateway) SetDefaultPaymentMethod(ctx context.Context, customer Customer, token string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	methods := g.methods[customer.ID]
	if !lo.ContainsBy(methods, func(m PaymentMethod) bool { return m.Token == token }) {
		return fmt.Errorf("payment method %s not found", token)
	}
	for i := range methods {
		methods[i].Default = methods[i].Token == token
	}
	return nil
}
