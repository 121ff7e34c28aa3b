package http

import (
	"gorm.io/gorm"

	purchaseusecases "github.com/ptuchik/billing/internal/application/purchase/usecases"
	"github.com/ptuchik/billing/internal/domain/invoice"
	"github.com/ptuchik/billing/internal/domain/order"
	"github.com/ptuchik/billing/internal/infrastructure/repository"
	"github.com/ptuchik/billing/internal/shared/logger"
)

// repositories holds all repository instances used by the application.
type repositories struct {
	purchaseusecases.Repositories
	confirmations invoice.ConfirmationRepository
	orders        order.Repository
}

func newRepositories(db *gorm.DB, log logger.Interface) *repositories {
	return &repositories{
		Repositories: purchaseusecases.Repositories{
			Customers:     repository.NewCustomerRepository(db, log),
			Plans:         repository.NewPlanRepository(db, log),
			Packages:      repository.NewPackageRepository(db, log),
			Coupons:       repository.NewCouponRepository(db, log),
			Gifts:         repository.NewGiftRepository(db, log),
			Purchases:     repository.NewPurchaseRepository(db, log),
			Subscriptions: repository.NewSubscriptionRepository(db, log),
			Transactions:  repository.NewTransactionRepository(db, log),
		},
		confirmations: repository.NewConfirmationRepository(db, log),
		orders:        repository.NewOrderRepository(db, log),
	}
}
