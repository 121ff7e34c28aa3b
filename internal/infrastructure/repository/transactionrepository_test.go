package repository

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ptuchik/billing/internal/domain/coupon"
	"github.com/ptuchik/billing/internal/domain/order"
	"github.com/ptuchik/billing/internal/domain/shared/ref"
	"github.com/ptuchik/billing/internal/domain/transaction"
)

func recordTestTransaction(t *testing.T, repo transaction.Repository, userID, purchaseID uint, reference string, successful bool) *transaction.Transaction {
	t.Helper()
	tx, err := transaction.NewTransaction(transaction.Draft{
		UserID:     userID,
		PurchaseID: &purchaseID,
		Name:       "Pro",
		Type:       transaction.TypeIncome,
		Price:      decimal.NewFromInt(10),
		Discount:   decimal.NewFromInt(2),
		Currency:   "USD",
		Coupons:    []coupon.Snapshot{{ID: 1, Code: "SAVE20", Percent: true, PercentOff: decimal.NewFromInt(20)}},
		Gateway:    "sandbox",
	})
	require.NoError(t, err)
	tx.Record(transaction.Outcome{Reference: reference, Successful: successful, Message: "ok"}, decimal.NewFromInt(8))
	require.NoError(t, repo.Create(ctxBG(), tx))
	return tx
}

func TestTransactionRepository_Lookups(t *testing.T) {
	db := setupTestDB(t)
	ctx := ctxBG()
	repo := NewTransactionRepository(db, testLogger())

	first := recordTestTransaction(t, repo, 1, 10, "ref-1", true)
	recordTestTransaction(t, repo, 1, 10, "ref-2", false)

	t.Run("by reference", func(t *testing.T) {
		found, err := repo.GetByReference(ctx, "ref-1")
		require.NoError(t, err)
		require.NotNil(t, found)
		assert.Equal(t, first.ID(), found.ID())
		assert.True(t, decimal.NewFromInt(8).Equal(found.Summary()))
		require.Len(t, found.Coupons(), 1)
		assert.Equal(t, "SAVE20", found.Coupons()[0].Code)

		none, err := repo.GetByReference(ctx, "")
		assert.NoError(t, err)
		assert.Nil(t, none)
	})

	t.Run("last successful skips failures", func(t *testing.T) {
		found, err := repo.GetLastSuccessfulByPurchase(ctx, 10)
		require.NoError(t, err)
		require.NotNil(t, found)
		assert.Equal(t, first.ID(), found.ID())

		none, err := repo.GetLastSuccessfulByPurchase(ctx, 99)
		assert.NoError(t, err)
		assert.Nil(t, none)
	})

	t.Run("refund persists status", func(t *testing.T) {
		found, err := repo.GetByID(ctx, first.ID())
		require.NoError(t, err)
		require.NoError(t, found.Refund())
		require.NoError(t, repo.Update(ctx, found))

		reloaded, err := repo.GetByID(ctx, first.ID())
		require.NoError(t, err)
		assert.Equal(t, transaction.StatusRefunded, reloaded.Status())
	})

	t.Run("reused reference resolves to the latest row", func(t *testing.T) {
		latest := recordTestTransaction(t, repo, 1, 20, "ref-1", false)

		found, err := repo.GetByReference(ctx, "ref-1")
		require.NoError(t, err)
		require.NotNil(t, found)
		assert.Equal(t, latest.ID(), found.ID())
	})
}

func TestTransactionRepository_List(t *testing.T) {
	db := setupTestDB(t)
	ctx := ctxBG()
	repo := NewTransactionRepository(db, testLogger())

	for i := 0; i < 5; i++ {
		recordTestTransaction(t, repo, 1, 10, "", true)
	}
	recordTestTransaction(t, repo, 1, 11, "", false)
	recordTestTransaction(t, repo, 2, 12, "", true)

	failed := transaction.StatusFailed
	tests := []struct {
		name      string
		filter    transaction.ListFilter
		wantLen   int
		wantTotal int64
	}{
		{name: "user", filter: transaction.ListFilter{UserID: 1}, wantLen: 6, wantTotal: 6},
		{name: "paged", filter: transaction.ListFilter{UserID: 1, Page: 2, PageSize: 4}, wantLen: 2, wantTotal: 6},
		{name: "purchase", filter: transaction.ListFilter{PurchaseID: 12}, wantLen: 1, wantTotal: 1},
		{name: "status", filter: transaction.ListFilter{UserID: 1, Status: &failed}, wantLen: 1, wantTotal: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			list, total, err := repo.List(ctx, tt.filter)
			require.NoError(t, err)
			assert.Len(t, list, tt.wantLen)
			assert.Equal(t, tt.wantTotal, total)
		})
	}
}

func TestOrderRepository_Lifecycle(t *testing.T) {
	db := setupTestDB(t)
	ctx := ctxBG()
	repo := NewOrderRepository(db, testLogger())

	o, err := order.NewOrder("9b2f7c1e-0000-4000-8000-000000000001", 1, order.ActionCheckout,
		ref.New("site", 5), ref.New(order.ReferencePlan, 3), map[string]interface{}{"plan": "pro-monthly"})
	require.NoError(t, err)
	require.NoError(t, repo.Create(ctx, o))

	found, err := repo.GetByPublicID(ctx, o.PublicID())
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.True(t, found.IsPending())
	assert.Equal(t, "pro-monthly", found.StringParam("plan"))
	assert.Equal(t, ref.New("site", 5), found.Host())

	txID := uint(77)
	require.NoError(t, found.MarkDone(&txID))
	require.NoError(t, repo.Update(ctx, found))

	done, err := repo.GetByPublicID(ctx, o.PublicID())
	require.NoError(t, err)
	assert.Equal(t, order.StatusDone, done.Status())
	require.NotNil(t, done.TransactionID())
	assert.Equal(t, txID, *done.TransactionID())

	missing, err := repo.GetByPublicID(ctx, "nope")
	assert.NoError(t, err)
	assert.Nil(t, missing)
}
