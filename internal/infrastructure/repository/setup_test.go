package repository

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/ptuchik/billing/internal/domain/customer"
	"github.com/ptuchik/billing/internal/domain/plan"
	vo "github.com/ptuchik/billing/internal/domain/plan/valueobjects"
	"github.com/ptuchik/billing/internal/domain/purchase"
	"github.com/ptuchik/billing/internal/domain/shared/money"
	"github.com/ptuchik/billing/internal/domain/shared/ref"
	"github.com/ptuchik/billing/internal/domain/subscription"
	"github.com/ptuchik/billing/internal/infrastructure/persistence/models"
	"github.com/ptuchik/billing/internal/shared/logger"
)

// setupTestDB opens an in-memory sqlite database. A single connection keeps
// every query on the same in-memory database.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(models.All()...))
	return db
}

func testLogger() logger.Interface {
	return logger.NewLogger()
}

func createTestCustomer(t *testing.T, db *gorm.DB, email string) *customer.Customer {
	t.Helper()
	c := newTestCustomer(t, email)
	require.NoError(t, NewCustomerRepository(db, testLogger()).Create(ctxBG(), c))
	return c
}

func createTestPackage(t *testing.T, db *gorm.DB, kind, alias string) *plan.Package {
	t.Helper()
	p, err := plan.NewPackage(kind, alias, alias)
	require.NoError(t, err)
	require.NoError(t, NewPackageRepository(db, testLogger()).Create(ctxBG(), p))
	return p
}

func createTestPlan(t *testing.T, db *gorm.DB, packageID uint, alias string, price string) *plan.Plan {
	t.Helper()
	p, err := plan.NewPlan(packageID, alias, alias, money.Single("USD", decimal.RequireFromString(price)), vo.Monthly, 0)
	require.NoError(t, err)
	require.NoError(t, NewPlanRepository(db, testLogger()).Create(ctxBG(), p))
	return p
}

func createTestPurchase(t *testing.T, db *gorm.DB, userID uint, host ref.Ref, pkg *plan.Package) *purchase.Purchase {
	t.Helper()
	p, err := purchase.NewPurchase(userID, host, pkg.ID(), pkg.Kind(), pkg.Alias())
	require.NoError(t, err)
	p.Activate()
	require.NoError(t, NewPurchaseRepository(db, testLogger()).Create(ctxBG(), p))
	return p
}

func testTerms(autoRenew bool) subscription.Terms {
	return subscription.Terms{
		Alias:     "pro-monthly",
		Name:      "Pro",
		Price:     decimal.NewFromInt(10),
		Currency:  "USD",
		Frequency: vo.Monthly,
		AutoRenew: autoRenew,
	}
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 10, 0, 0, 0, time.UTC)
}

func newTestCustomer(t *testing.T, email string) *customer.Customer {
	t.Helper()
	c, err := customer.NewCustomer(email, "", "", "USD")
	require.NoError(t, err)
	return c
}

func createTestPlanUnsaved(t *testing.T, packageID uint, alias string) *plan.Plan {
	t.Helper()
	p, err := plan.NewPlan(packageID, alias, alias, money.Single("USD", decimal.NewFromInt(1)), vo.Monthly, 0)
	require.NoError(t, err)
	return p
}

func newUnsavedPurchase(t *testing.T, userID uint, host ref.Ref, pkg *plan.Package) *purchase.Purchase {
	t.Helper()
	p, err := purchase.NewPurchase(userID, host, pkg.ID(), pkg.Kind(), pkg.Alias())
	require.NoError(t, err)
	return p
}
