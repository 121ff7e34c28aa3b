package usecases

import (
	"context"
	"fmt"
	"time"

	"github.com/ptuchik/billing/internal/domain/customer"
	"github.com/ptuchik/billing/internal/domain/plan"
	"github.com/ptuchik/billing/internal/domain/purchase"
	"github.com/ptuchik/billing/internal/domain/shared/ref"
	"github.com/ptuchik/billing/internal/domain/subscription"
	"github.com/ptuchik/billing/internal/shared/errors"
	"github.com/ptuchik/billing/internal/shared/logger"
)

// placeholderKind is given to packages that were deleted and whose kind is unknown.
const placeholderKind = "removed"

// preparation is everything known about a plan purchase before pricing.
type preparation struct {
	customer *customer.Customer
	plan     *plan.Plan
	pkg      *plan.Package
	// purchase is unsaved when the host never bought the package.
	purchase *purchase.Purchase
	// current is the active subscription of purchase.
	current *subscription.Subscription
	// previous is the subscription the purchase replaces.
	previous  *subscription.Subscription
	currency  string
	trialDays int
}

// preparer loads purchase context without changing anything.
type preparer struct {
	repos    Repositories
	handlers *HandlerRegistry
	now      func() time.Time
	logger   logger.Interface
}

func (p *preparer) prepare(ctx context.Context, userID uint, host ref.Ref, alias, currency string) (*preparation, error) {
	if userID == 0 {
		return nil, errors.NewValidationError("user is required")
	}
	if host.IsZero() {
		return nil, errors.NewValidationError("host is required")
	}
	if alias == "" {
		return nil, errors.NewValidationError("plan alias is required")
	}

	c, err := p.repos.Customers.GetByID(ctx, userID)
	if err != nil {
		p.logger.Errorw("failed to get customer", "user_id", userID, "error", err)
		return nil, fmt.Errorf("failed to get customer: %w", err)
	}
	if c == nil {
		return nil, errors.NewNotFoundError("customer not found")
	}

	pl, err := p.repos.Plans.GetByAlias(ctx, alias)
	if err != nil {
		p.logger.Errorw("failed to get plan", "alias", alias, "error", err)
		return nil, fmt.Errorf("failed to get plan: %w", err)
	}
	if pl == nil {
		return nil, errors.NewNotFoundError("plan not found", alias)
	}
	if !pl.Visibility().Purchasable() {
		return nil, errors.NewValidationError("plan is disabled", alias)
	}

	pkg, err := p.loadPackage(ctx, pl.PackageID(), placeholderKind, pl.Alias())
	if err != nil {
		return nil, err
	}

	if currency == "" {
		currency = c.Currency()
	}

	prep := &preparation{
		customer:  c,
		plan:      pl,
		pkg:       pkg,
		currency:  currency,
		trialDays: pl.TrialDays(),
	}

	existing, err := p.repos.Purchases.GetByHostAndPackage(ctx, host, pkg.ID())
	if err != nil {
		return nil, fmt.Errorf("failed to get purchase: %w", err)
	}
	if existing != nil {
		prep.purchase = existing
		// A host gets the trial of a package once.
		prep.trialDays = 0
		prep.current, err = p.repos.Subscriptions.GetActiveByPurchase(ctx, existing.ID())
		if err != nil {
			return nil, fmt.Errorf("failed to get subscription: %w", err)
		}
	} else {
		prep.purchase, err = purchase.NewPurchase(userID, host, pkg.ID(), pkg.Kind(), pkg.Alias())
		if err != nil {
			return nil, errors.NewValidationError(err.Error())
		}
	}

	prep.previous, err = p.findPrevious(ctx, prep)
	if err != nil {
		return nil, err
	}
	return prep, nil
}

// loadPackage returns the package, or a placeholder when it was deleted.
func (p *preparer) loadPackage(ctx context.Context, id uint, kind, alias string) (*plan.Package, error) {
	pkg, err := p.repos.Packages.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get package: %w", err)
	}
	if pkg == nil {
		p.logger.Warnw("package not found, using placeholder", "package_id", id, "alias", alias)
		pkg = plan.NewPlaceholderPackage(id, kind, alias, p.now())
	}
	return pkg, nil
}

// findPrevious looks for the subscription a purchase replaces: the active
// subscription of another package of the same kind on the host. A one-time
// plan also replaces the purchase's own running subscription.
func (p *preparer) findPrevious(ctx context.Context, prep *preparation) (*subscription.Subscription, error) {
	if !prep.pkg.IsPlaceholder() {
		siblings, err := p.repos.Purchases.ListActiveByHostAndKind(ctx, prep.purchase.Host(), prep.pkg.Kind())
		if err != nil {
			return nil, fmt.Errorf("failed to list host purchases: %w", err)
		}
		for _, sibling := range siblings {
			if sibling.PackageID() == prep.pkg.ID() {
				continue
			}
			sub, err := p.repos.Subscriptions.GetActiveByPurchase(ctx, sibling.ID())
			if err != nil {
				return nil, fmt.Errorf("failed to get subscription: %w", err)
			}
			if sub != nil {
				return sub, nil
			}
		}
	}
	if !prep.plan.IsRecurring() {
		return prep.current, nil
	}
	return nil, nil
}
