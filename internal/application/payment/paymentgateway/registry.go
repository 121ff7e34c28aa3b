package paymentgateway

import (
	"fmt"
	"strings"
	"sync"

	"github.com/samber/lo"

	"github.com/ptuchik/billing/internal/shared/config"
)

// DriverSandbox is the only built-in gateway driver.
const DriverSandbox = "sandbox"

// Registry resolves gateways by name, honoring per-currency restrictions.
type Registry struct {
	mu          sync.RWMutex
	gateways    map[string]Gateway
	defaultName string
	limited     map[string][]string
}

// NewRegistry creates a registry. limited maps a currency to the only
// gateways allowed for it.
func NewRegistry(defaultName string, limited map[string][]string) *Registry {
	normalized := make(map[string][]string, len(limited))
	for currency, names := range limited {
		normalized[strings.ToUpper(currency)] = names
	}
	return &Registry{
		gateways:    make(map[string]Gateway),
		defaultName: defaultName,
		limited:     normalized,
	}
}

func (r *Registry) Register(g Gateway) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.gateways[g.Name()] = g
}

// Names lists the registered gateways.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return lo.Keys(r.gateways)
}

// Resolve returns the gateway to use for currency. An empty name selects the
// default gateway. When the currency only allows some gateways and name is
// not one of them, the first allowed gateway is used.
func (r *Registry) Resolve(name, currency string) (Gateway, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if name == "" {
		name = r.defaultName
	}
	if allowed := r.limited[strings.ToUpper(currency)]; len(allowed) > 0 && !lo.Contains(allowed, name) {
		name = allowed[0]
	}

	g, ok := r.gateways[name]
	if !ok {
		return nil, fmt.Errorf("invalid gateway %q", name)
	}
	return g, nil
}

// NewRegistryFromConfig registers every configured gateway.
func NewRegistryFromConfig(cfg config.BillingConfig) (*Registry, error) {
	r := NewRegistry(cfg.DefaultGateway, cfg.CurrencyLimitedGateways)
	for name, gc := range cfg.Gateways {
		switch strings.ToLower(gc.Driver) {
		case DriverSandbox, "":
			r.Register(NewSandboxGateway(name, gc.Succeed, gc.Cash))
		default:
			return nil, fmt.Errorf("gateway %q: unsupported driver %q", name, gc.Driver)
		}
	}
	if _, ok := r.gateways[cfg.DefaultGateway]; !ok && cfg.DefaultGateway != "" {
		return nil, fmt.Errorf("default gateway %q is not configured", cfg.DefaultGateway)
	}
	return r, nil
}
