package handlers

import (
	"context"
	"net/http"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	purchasedto "github.com/ptuchik/billing/internal/application/purchase/dto"
	"github.com/ptuchik/billing/internal/application/purchase/usecases"
	"github.com/ptuchik/billing/internal/domain/invoice"
	"github.com/ptuchik/billing/internal/interfaces/http/handlers/testutil"
	"github.com/ptuchik/billing/internal/shared/constants"
	"github.com/ptuchik/billing/internal/shared/errors"
	"github.com/ptuchik/billing/internal/shared/logger"
)

type mockQuoteUC struct {
	query  usecases.GetQuoteQuery
	result *purchasedto.QuoteDTO
	err    error
}

func (m *mockQuoteUC) Execute(ctx context.Context, query usecases.GetQuoteQuery) (*purchasedto.QuoteDTO, error) {
	m.query = query
	return m.result, m.err
}

type mockPurchaseUC struct {
	cmd      usecases.PurchasePlanCommand
	renewCmd usecases.RenewCommand
	result   *invoice.Invoice
	err      error
}

func (m *mockPurchaseUC) Execute(ctx context.Context, cmd usecases.PurchasePlanCommand) (*invoice.Invoice, error) {
	m.cmd = cmd
	return m.result, m.err
}

func (m *mockPurchaseUC) Renew(ctx context.Context, cmd usecases.RenewCommand) (*invoice.Invoice, error) {
	m.renewCmd = cmd
	return m.result, m.err
}

type mockDeactivateUC struct {
	cmd usecases.DeactivatePurchaseCommand
	err error
}

func (m *mockDeactivateUC) Execute(ctx context.Context, cmd usecases.DeactivatePurchaseCommand) error {
	m.cmd = cmd
	return m.err
}

func TestPurchaseHandler_Quote(t *testing.T) {
	uc := &mockQuoteUC{result: &purchasedto.QuoteDTO{Plan: "pro", Summary: decimal.NewFromInt(8)}}
	h := NewPurchaseHandler(uc, nil, nil, logger.NewNopLogger())

	c, w := testutil.NewTestContext(http.MethodGet, "/plans/pro/quote", nil)
	testutil.SetAuthContext(c, 10)
	testutil.SetURLParam(c, "alias", "pro")
	testutil.SetQueryParams(c, map[string]string{"host": "site:5", "coupon": "OFF20"})

	h.Quote(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, uint(10), uc.query.UserID)
	assert.Equal(t, "site:5", uc.query.Host.String())
	assert.Equal(t, "pro", uc.query.PlanAlias)
	assert.Equal(t, "OFF20", uc.query.CouponCode)
}

func TestPurchaseHandler_QuoteInvalidHost(t *testing.T) {
	h := NewPurchaseHandler(&mockQuoteUC{}, nil, nil, logger.NewNopLogger())

	c, w := testutil.NewTestContext(http.MethodGet, "/plans/pro/quote", nil)
	testutil.SetAuthContext(c, 10)
	testutil.SetQueryParams(c, map[string]string{"host": "site"})

	h.Quote(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPurchaseHandler_Purchase(t *testing.T) {
	tests := []struct {
		name       string
		body       interface{}
		auth       bool
		result     *invoice.Invoice
		err        error
		wantStatus int
		wantReason string
	}{
		{
			name:       "paid",
			body:       PurchaseRequest{Host: "site:5", Plan: "pro"},
			auth:       true,
			result:     &invoice.Invoice{ID: "ch_1", Status: "success"},
			wantStatus: http.StatusCreated,
		},
		{
			name:       "redirect",
			body:       PurchaseRequest{Host: "site:5", Plan: "pro", ReturnURL: "https://shop.test/back"},
			auth:       true,
			result:     &invoice.Invoice{Status: "pending", RedirectURL: "https://pay.test/1"},
			wantStatus: http.StatusAccepted,
		},
		{
			name:       "anonymous",
			body:       PurchaseRequest{Host: "site:5", Plan: "pro"},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "missing plan",
			body:       map[string]string{"host": "site:5"},
			auth:       true,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "bad currency",
			body:       PurchaseRequest{Host: "site:5", Plan: "pro", Currency: "usd"},
			auth:       true,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "downgrade refused",
			body:       PurchaseRequest{Host: "site:5", Plan: "basic"},
			auth:       true,
			err:        errors.NewPolicyViolationError("downgrade_not_allowed", "downgrade is not allowed"),
			wantStatus: http.StatusUnprocessableEntity,
			wantReason: "downgrade_not_allowed",
		},
		{
			name:       "card declined",
			body:       PurchaseRequest{Host: "site:5", Plan: "pro"},
			auth:       true,
			err:        errors.NewPaymentFailedError("declined"),
			wantStatus: http.StatusPaymentRequired,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uc := &mockPurchaseUC{result: tt.result, err: tt.err}
			h := NewPurchaseHandler(nil, uc, nil, logger.NewNopLogger())

			c, w := testutil.NewTestContext(http.MethodPost, "/purchases", tt.body)
			c.Request.Header.Set(constants.HeaderDevice, "mobile")
			if tt.auth {
				testutil.SetAuthContext(c, 10)
			}

			h.Purchase(c)

			assert.Equal(t, tt.wantStatus, w.Code, w.Body.String())

			var resp testutil.APIResponse
			require.NoError(t, testutil.ParseResponse(w, &resp))
			if tt.wantStatus >= 400 {
				assert.False(t, resp.Success)
				require.NotNil(t, resp.Error)
				assert.Equal(t, tt.wantReason, resp.Error.Reason)
				return
			}
			assert.True(t, resp.Success)
			assert.Equal(t, invoice.DeviceMobile, uc.cmd.Device)
			assert.Equal(t, uint(10), uc.cmd.UserID)
		})
	}
}

func TestPurchaseHandler_DeactivatePurchase(t *testing.T) {
	uc := &mockDeactivateUC{}
	h := NewPurchaseHandler(nil, nil, uc, logger.NewNopLogger())

	c, w := testutil.NewTestContext(http.MethodPost, "/admin/purchases/7/deactivate", nil)
	testutil.SetURLParam(c, "id", "7")
	testutil.SetQueryParams(c, map[string]string{"expired": "true"})

	h.DeactivatePurchase(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, uint(7), uc.cmd.PurchaseID)
	assert.True(t, uc.cmd.Expired)
}
