package paymentgateway

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ptuchik/billing/internal/domain/shared/money"
	"github.com/ptuchik/billing/internal/shared/config"
)

func TestSandboxGateway_Purchase(t *testing.T) {
	customer := Customer{ID: 1, Email: "jane@example.com"}

	tests := []struct {
		name           string
		succeed, cash  bool
		nonce          string
		wantSuccessful bool
		wantPending    bool
		wantRedirect   bool
	}{
		{"approved with nonce", true, false, "tok_visa", true, false, false},
		{"declined", false, false, "tok_visa", false, false, false},
		{"no stored method", true, false, "", false, false, false},
		{"cash stays pending", true, true, "", false, true, false},
		{"redirect", true, false, RedirectNonce, false, true, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := NewSandboxGateway("sandbox", tt.succeed, tt.cash)
			res, err := g.Purchase(context.Background(), PurchaseRequest{
				Customer: customer,
				Amount:   money.MustParse("9.99"),
				Currency: "USD",
				Nonce:    tt.nonce,
				OrderID:  "ord-1",
			})
			require.NoError(t, err)
			assert.Equal(t, tt.wantSuccessful, res.Successful)
			assert.Equal(t, tt.wantPending, res.Pending)
			assert.Equal(t, tt.wantRedirect, res.Redirect)
			assert.NotEmpty(t, res.Reference)
			if tt.wantRedirect {
				assert.Contains(t, res.RedirectURL, "order=ord-1")
			}
		})
	}
}

func TestSandboxGateway_RejectsZeroCharge(t *testing.T) {
	g := NewSandboxGateway("sandbox", true, false)
	_, err := g.Purchase(context.Background(), PurchaseRequest{Amount: money.MustParse("0"), Currency: "USD"})
	assert.Error(t, err)
}

func TestSandboxGateway_PaymentMethods(t *testing.T) {
	ctx := context.Background()
	g := NewSandboxGateway("sandbox", true, false)
	customer := Customer{ID: 7}

	first, err := g.CreatePaymentMethod(ctx, customer, "tok_4242")
	require.NoError(t, err)
	second, err := g.CreatePaymentMethod(ctx, customer, "tok_1881")
	require.NoError(t, err)
	assert.True(t, first.Default)
	assert.False(t, second.Default)
	assert.Equal(t, "1881", second.Last4)

	require.NoError(t, g.SetDefaultPaymentMethod(ctx, customer, second.Token))
	methods, err := g.GetPaymentMethods(ctx, customer)
	require.NoError(t, err)
	require.Len(t, methods, 2)
	assert.False(t, methods[0].Default)
	assert.True(t, methods[1].Default)

	require.NoError(t, g.DeletePaymentMethod(ctx, customer, second.Token))
	methods, err = g.GetPaymentMethods(ctx, customer)
	require.NoError(t, err)
	require.Len(t, methods, 1)
	assert.True(t, methods[0].Default, "the remaining method becomes the default")

	assert.Error(t, g.DeletePaymentMethod(ctx, customer, "missing"))
	assert.Error(t, g.SetDefaultPaymentMethod(ctx, customer, "missing"))

	// A stored method pays without a nonce.
	res, err := g.Purchase(ctx, PurchaseRequest{Customer: customer, Amount: money.MustParse("5"), Currency: "USD"})
	require.NoError(t, err)
	assert.True(t, res.Successful)
}

func TestNewRegistryFromConfig(t *testing.T) {
	r, err := NewRegistryFromConfig(config.BillingConfig{
		DefaultGateway: "card",
		Gateways: map[string]config.GatewayConfig{
			"card": {Driver: "sandbox", Succeed: true},
			"cash": {Driver: "sandbox", Cash: true},
		},
	})
	require.NoError(t, err)

	g, err := r.Resolve("", "USD")
	require.NoError(t, err)
	assert.Equal(t, "card", g.Name())
	g, err = r.Resolve("cash", "USD")
	require.NoError(t, err)
	assert.True(t, g.IsCash())

	_, err = NewRegistryFromConfig(config.BillingConfig{
		DefaultGateway: "card",
		Gateways:       map[string]config.GatewayConfig{"card": {Driver: "stripe"}},
	})
	assert.Error(t, err)

	_, err = NewRegistryFromConfig(config.BillingConfig{DefaultGateway: "missing"})
	assert.Error(t, err)
}
