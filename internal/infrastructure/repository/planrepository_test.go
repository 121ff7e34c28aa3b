package repository

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ptuchik/billing/internal/domain/coupon"
	vo "github.com/ptuchik/billing/internal/domain/plan/valueobjects"
	"github.com/ptuchik/billing/internal/domain/shared/money"
	"github.com/ptuchik/billing/internal/shared/errors"
)

func TestPlanRepository_GetByAliasLoadsCoupons(t *testing.T) {
	db := setupTestDB(t)
	ctx := ctxBG()
	plans := NewPlanRepository(db, testLogger())
	coupons := NewCouponRepository(db, testLogger())

	pkg := createTestPackage(t, db, "hosting", "hosting-basic")
	p := createTestPlan(t, db, pkg.ID(), "basic-monthly", "10")

	discount, err := coupon.NewPercentCoupon("SAVE20", "Save 20", decimal.NewFromInt(20), coupon.RedeemManual, true)
	require.NoError(t, err)
	require.NoError(t, coupons.Create(ctx, discount))

	addon, err := coupon.NewCoupon("FREEDOMAIN", "Free domain", money.Single("USD", decimal.NewFromInt(12)), coupon.RedeemInternal, false)
	require.NoError(t, err)
	require.NoError(t, coupons.Create(ctx, addon))

	require.NoError(t, plans.AttachCoupon(ctx, p.ID(), discount.ID(), false))
	require.NoError(t, plans.AttachCoupon(ctx, p.ID(), addon.ID(), true))
	// attaching twice is a no-op
	require.NoError(t, plans.AttachCoupon(ctx, p.ID(), addon.ID(), true))

	found, err := plans.GetByAlias(ctx, "basic-monthly")
	require.NoError(t, err)
	require.NotNil(t, found)

	assert.Equal(t, vo.Monthly, found.Frequency())
	price, ok := found.Price().Get("USD")
	require.True(t, ok)
	assert.True(t, decimal.NewFromInt(10).Equal(price))

	require.Len(t, found.Coupons(), 1)
	assert.Equal(t, "SAVE20", found.Coupons()[0].Code())
	assert.True(t, found.Coupons()[0].Percent())
	require.Len(t, found.Addons(), 1)
	assert.Equal(t, "FREEDOMAIN", found.Addons()[0].Code())

	missing, err := plans.GetByAlias(ctx, "nope")
	assert.NoError(t, err)
	assert.Nil(t, missing)
}

func TestPlanRepository_ListVisible(t *testing.T) {
	db := setupTestDB(t)
	ctx := ctxBG()
	plans := NewPlanRepository(db, testLogger())

	pkg := createTestPackage(t, db, "hosting", "hosting-basic")
	createTestPlan(t, db, pkg.ID(), "basic-monthly", "10")
	hidden := createTestPlan(t, db, pkg.ID(), "basic-legacy", "8")

	hidden.SetVisibility(vo.VisibilityHidden)
	require.NoError(t, plans.Update(ctx, hidden))

	list, err := plans.ListVisible(ctx, pkg.ID())
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "basic-monthly", list[0].Alias())
}

func TestPlanRepository_DuplicateAlias(t *testing.T) {
	db := setupTestDB(t)
	pkg := createTestPackage(t, db, "hosting", "hosting-basic")
	createTestPlan(t, db, pkg.ID(), "basic-monthly", "10")

	dup := createTestPlanUnsaved(t, pkg.ID(), "basic-monthly")
	err := NewPlanRepository(db, testLogger()).Create(ctxBG(), dup)
	assert.True(t, errors.IsConflictError(err))
}

func TestPackageRepository_ListByKind(t *testing.T) {
	db := setupTestDB(t)
	ctx := ctxBG()
	repo := NewPackageRepository(db, testLogger())

	createTestPackage(t, db, "hosting", "hosting-basic")
	createTestPackage(t, db, "hosting", "hosting-pro")
	createTestPackage(t, db, "domain", "domain-com")

	list, err := repo.ListByKind(ctx, "hosting")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "hosting-basic", list[0].Alias())
	assert.Equal(t, "hosting-pro", list[1].Alias())

	found, err := repo.GetByAlias(ctx, "domain-com")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, "domain", found.Kind())
	assert.False(t, found.IsPlaceholder())
}
