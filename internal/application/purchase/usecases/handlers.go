package usecases

import (
	"context"
	"sync"

	"github.com/ptuchik/billing/internal/domain/purchase"
	"github.com/ptuchik/billing/internal/domain/shared/ref"
)

// DefaultPackageHandler considers a package in use for as long as its
// purchase exists and needs no activation hooks.
type DefaultPackageHandler struct{}

func (DefaultPackageHandler) IsInUse(context.Context, *purchase.Purchase) (bool, error) {
	return true, nil
}

func (DefaultPackageHandler) OnActivate(context.Context, *purchase.Purchase) error   { return nil }
func (DefaultPackageHandler) OnDeactivate(context.Context, *purchase.Purchase) error { return nil }

// HandlerRegistry maps package kinds to their handlers.
type HandlerRegistry struct {
	mu       sync.RWMutex
	handlers map[string]PackageHandler
	fallback PackageHandler
}

// NewHandlerRegistry creates a registry answering unknown kinds with
// fallback, or with DefaultPackageHandler when fallback is nil.
func NewHandlerRegistry(fallback PackageHandler) *HandlerRegistry {
	if fallback == nil {
		fallback = DefaultPackageHandler{}
	}
	return &HandlerRegistry{
		handlers: make(map[string]PackageHandler),
		fallback: fallback,
	}
}

func (r *HandlerRegistry) Register(kind string, h PackageHandler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers[kind] = h
}

func (r *HandlerRegistry) For(kind string) PackageHandler {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if h, ok := r.handlers[kind]; ok {
		return h
	}
	return r.fallback
}

// RefHostDescriber prints the raw reference.
type RefHostDescriber struct{}

func (RefHostDescriber) Describe(_ context.Context, host ref.Ref) string {
	return host.String()
}
