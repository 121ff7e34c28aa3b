package paymentgateway

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type namedGateway struct {
	Gateway
	name string
}

func (g namedGateway) Name() string { return g.name }

func TestRegistry_Resolve(t *testing.T) {
	r := NewRegistry("card", map[string][]string{"amd": {"local", "card"}, "EUR": {"sepa"}})
	r.Register(namedGateway{name: "card"})
	r.Register(namedGateway{name: "local"})
	r.Register(namedGateway{name: "paypal"})

	tests := []struct {
		name     string
		gateway  string
		currency string
		want     string
		wantErr  bool
	}{
		{"default", "", "USD", "card", false},
		{"explicit", "paypal", "USD", "paypal", false},
		{"allowed for currency", "card", "AMD", "card", false},
		{"replaced by first allowed", "paypal", "AMD", "local", false},
		{"default not allowed", "", "AMD", "local", false},
		{"allowed gateway not registered", "", "EUR", "", true},
		{"unknown", "bitcoin", "USD", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, err := r.Resolve(tt.gateway, tt.currency)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, g.Name())
		})
	}

	assert.ElementsMatch(t, []string{"card", "local", "paypal"}, r.Names())
}
