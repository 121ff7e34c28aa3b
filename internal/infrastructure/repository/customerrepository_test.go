package repository

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ptuchik/billing/internal/shared/errors"
)

func ctxBG() context.Context {
	return context.Background()
}

func TestCustomerRepository_CreateAndGet(t *testing.T) {
	db := setupTestDB(t)
	repo := NewCustomerRepository(db, testLogger())
	ctx := ctxBG()

	c := createTestCustomer(t, db, "jane@example.com")
	assert.NotZero(t, c.ID())

	t.Run("by id", func(t *testing.T) {
		found, err := repo.GetByID(ctx, c.ID())
		require.NoError(t, err)
		require.NotNil(t, found)
		assert.Equal(t, "jane@example.com", found.Email())
		assert.Equal(t, "USD", found.Currency())
		assert.True(t, found.IsActive())
		assert.Empty(t, found.Coupons())
	})

	t.Run("by email", func(t *testing.T) {
		found, err := repo.GetByEmail(ctx, "jane@example.com")
		require.NoError(t, err)
		require.NotNil(t, found)
		assert.Equal(t, c.ID(), found.ID())
	})

	t.Run("missing returns nil", func(t *testing.T) {
		found, err := repo.GetByID(ctx, 999)
		assert.NoError(t, err)
		assert.Nil(t, found)
	})

	t.Run("duplicate email is a conflict", func(t *testing.T) {
		err := repo.Create(ctx, newTestCustomer(t, "jane@example.com"))
		assert.True(t, errors.IsConflictError(err))
	})
}

func TestCustomerRepository_Update(t *testing.T) {
	db := setupTestDB(t)
	repo := NewCustomerRepository(db, testLogger())
	ctx := ctxBG()

	c := createTestCustomer(t, db, "jane@example.com")

	loaded, err := repo.GetByID(ctx, c.ID())
	require.NoError(t, err)
	require.NoError(t, loaded.Credit(decimal.NewFromInt(5)))
	loaded.AddCoupons("WELCOME")
	require.NoError(t, repo.Update(ctx, loaded))

	found, err := repo.GetByID(ctx, c.ID())
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(5).Equal(found.Balance().Amount()))
	assert.Equal(t, []string{"WELCOME"}, found.Coupons())

	t.Run("unchanged entity saves", func(t *testing.T) {
		assert.NoError(t, repo.Update(ctx, found))
	})

	t.Run("stale copy is rejected", func(t *testing.T) {
		stale, err := repo.GetByID(ctx, c.ID())
		require.NoError(t, err)

		require.NoError(t, found.Credit(decimal.NewFromInt(1)))
		require.NoError(t, found.Credit(decimal.NewFromInt(1)))
		require.NoError(t, repo.Update(ctx, found))

		require.NoError(t, stale.Credit(decimal.NewFromInt(100)))
		err = repo.Update(ctx, stale)
		assert.True(t, errors.IsConflictError(err))
	})
}
