package handlers

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	subdto "github.com/ptuchik/billing/internal/application/subscription/dto"
	"github.com/ptuchik/billing/internal/application/subscription/usecases"
	"github.com/ptuchik/billing/internal/domain/invoice"
	"github.com/ptuchik/billing/internal/interfaces/http/handlers/testutil"
	"github.com/ptuchik/billing/internal/shared/errors"
	"github.com/ptuchik/billing/internal/shared/logger"
)

type mockGetSubscriptionUC struct {
	query  usecases.GetSubscriptionQuery
	result *subdto.SubscriptionDTO
	err    error
}

func (m *mockGetSubscriptionUC) Execute(ctx context.Context, query usecases.GetSubscriptionQuery) (*subdto.SubscriptionDTO, error) {
	m.query = query
	return m.result, m.err
}

type mockListSubscriptionsUC struct {
	query  usecases.ListUserSubscriptionsQuery
	result []*subdto.SubscriptionDTO
}

func (m *mockListSubscriptionsUC) Execute(ctx context.Context, query usecases.ListUserSubscriptionsQuery) ([]*subdto.SubscriptionDTO, error) {
	m.query = query
	return m.result, nil
}

type mockCancelUC struct {
	cmd usecases.CancelSubscriptionCommand
	err error
}

func (m *mockCancelUC) Execute(ctx context.Context, cmd usecases.CancelSubscriptionCommand) error {
	m.cmd = cmd
	return m.err
}

type mockAutoRenewUC struct {
	cmd usecases.SetAutoRenewCommand
}

func (m *mockAutoRenewUC) Execute(ctx context.Context, cmd usecases.SetAutoRenewCommand) error {
	m.cmd = cmd
	return nil
}

type mockProlongUC struct {
	cmd usecases.ProlongSubscriptionCommand
}

func (m *mockProlongUC) Execute(ctx context.Context, cmd usecases.ProlongSubscriptionCommand) error {
	m.cmd = cmd
	return nil
}

func TestSubscriptionHandler_ListSubscriptions(t *testing.T) {
	uc := &mockListSubscriptionsUC{result: []*subdto.SubscriptionDTO{{ID: 1, Alias: "pro"}}}
	h := NewSubscriptionHandler(nil, uc, nil, nil, nil, nil, logger.NewNopLogger())

	c, w := testutil.NewTestContext(http.MethodGet, "/subscriptions", nil)
	testutil.SetAuthContext(c, 3)
	testutil.SetQueryParams(c, map[string]string{"active": "true"})

	h.ListSubscriptions(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, uint(3), uc.query.UserID)
	assert.True(t, uc.query.ActiveOnly)
}

func TestSubscriptionHandler_GetSubscription(t *testing.T) {
	tests := []struct {
		name       string
		id         string
		err        error
		wantStatus int
	}{
		{name: "found", id: "4", wantStatus: http.StatusOK},
		{name: "someone else's", id: "4", err: errors.NewNotFoundError("subscription not found"), wantStatus: http.StatusNotFound},
		{name: "bad id", id: "abc", wantStatus: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uc := &mockGetSubscriptionUC{result: &subdto.SubscriptionDTO{ID: 4}, err: tt.err}
			h := NewSubscriptionHandler(uc, nil, nil, nil, nil, nil, logger.NewNopLogger())

			c, w := testutil.NewTestContext(http.MethodGet, "/subscriptions/"+tt.id, nil)
			testutil.SetAuthContext(c, 3)
			testutil.SetURLParam(c, "id", tt.id)

			h.GetSubscription(c)

			assert.Equal(t, tt.wantStatus, w.Code)
		})
	}
}

func TestSubscriptionHandler_Cancel(t *testing.T) {
	uc := &mockCancelUC{}
	h := NewSubscriptionHandler(nil, nil, uc, nil, nil, nil, logger.NewNopLogger())

	c, w := testutil.NewTestContext(http.MethodPost, "/subscriptions/4/cancel", CancelSubscriptionRequest{Immediate: true})
	testutil.SetAuthContext(c, 3)
	testutil.SetURLParam(c, "id", "4")

	h.CancelSubscription(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, usecases.CancelSubscriptionCommand{SubscriptionID: 4, UserID: 3, Immediate: true}, uc.cmd)
}

func TestSubscriptionHandler_AdminCancelHasNoOwner(t *testing.T) {
	uc := &mockCancelUC{}
	h := NewSubscriptionHandler(nil, nil, uc, nil, nil, nil, logger.NewNopLogger())

	c, w := testutil.NewTestContext(http.MethodPost, "/admin/subscriptions/4/cancel", nil)
	testutil.SetURLParam(c, "id", "4")

	h.AdminCancelSubscription(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, uint(0), uc.cmd.UserID)
	assert.False(t, uc.cmd.Immediate)
}

func TestSubscriptionHandler_SetAutoRenew(t *testing.T) {
	uc := &mockAutoRenewUC{}
	h := NewSubscriptionHandler(nil, nil, nil, uc, nil, nil, logger.NewNopLogger())

	off := false
	c, w := testutil.NewTestContext(http.MethodPut, "/subscriptions/4/auto-renew", SetAutoRenewRequest{AutoRenew: &off})
	testutil.SetAuthContext(c, 3)
	testutil.SetURLParam(c, "id", "4")

	h.SetAutoRenew(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.False(t, uc.cmd.AutoRenew)
	assert.Equal(t, uint(4), uc.cmd.SubscriptionID)
}

func TestSubscriptionHandler_RenewChecksOwnership(t *testing.T) {
	get := &mockGetSubscriptionUC{err: errors.NewNotFoundError("subscription not found")}
	renew := &mockPurchaseUC{result: &invoice.Invoice{Status: "success"}}
	h := NewSubscriptionHandler(get, nil, nil, nil, nil, renew, logger.NewNopLogger())

	c, w := testutil.NewTestContext(http.MethodPost, "/subscriptions/4/renew", nil)
	testutil.SetAuthContext(c, 3)
	testutil.SetURLParam(c, "id", "4")

	h.RenewSubscription(c)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Zero(t, renew.renewCmd.SubscriptionID)
}

func TestSubscriptionHandler_Renew(t *testing.T) {
	get := &mockGetSubscriptionUC{result: &subdto.SubscriptionDTO{ID: 4}}
	renew := &mockPurchaseUC{result: &invoice.Invoice{Status: "success"}}
	h := NewSubscriptionHandler(get, nil, nil, nil, nil, renew, logger.NewNopLogger())

	c, w := testutil.NewTestContext(http.MethodPost, "/subscriptions/4/renew", RenewSubscriptionRequest{PaymentNonce: "nonce"})
	testutil.SetAuthContext(c, 3)
	testutil.SetURLParam(c, "id", "4")

	h.RenewSubscription(c)

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, uint(4), renew.renewCmd.SubscriptionID)
	assert.Equal(t, "nonce", renew.renewCmd.PaymentNonce)
	assert.False(t, renew.renewCmd.LastAttempt)
}

func TestSubscriptionHandler_Prolong(t *testing.T) {
	uc := &mockProlongUC{}
	h := NewSubscriptionHandler(nil, nil, nil, nil, uc, nil, logger.NewNopLogger())

	c, w := testutil.NewTestContext(http.MethodPost, "/admin/subscriptions/4/prolong", ProlongSubscriptionRequest{Months: 2})
	testutil.SetURLParam(c, "id", "4")
	h.ProlongSubscription(c)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 2, uc.cmd.Months)

	c, w = testutil.NewTestContext(http.MethodPost, "/admin/subscriptions/4/prolong", ProlongSubscriptionRequest{Months: 0})
	testutil.SetURLParam(c, "id", "4")
	h.ProlongSubscription(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
