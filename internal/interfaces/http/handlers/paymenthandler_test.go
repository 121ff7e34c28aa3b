package handlers

import (
	"context"
	"net/http"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	paymentdto "github.com/ptuchik/billing/internal/application/payment/dto"
	"github.com/ptuchik/billing/internal/application/payment/paymentgateway"
	"github.com/ptuchik/billing/internal/application/payment/usecases"
	"github.com/ptuchik/billing/internal/domain/order"
	"github.com/ptuchik/billing/internal/interfaces/http/handlers/testutil"
	"github.com/ptuchik/billing/internal/shared/errors"
	"github.com/ptuchik/billing/internal/shared/logger"
)

type mockListTransactionsUC struct {
	query usecases.ListTransactionsQuery
}

func (m *mockListTransactionsUC) Execute(ctx context.Context, query usecases.ListTransactionsQuery) (*usecases.ListTransactionsResult, error) {
	m.query = query
	return &usecases.ListTransactionsResult{
		Transactions: []*paymentdto.TransactionDTO{{ID: 1}},
		TotalCount:   1,
		Page:         query.Page,
		PageSize:     query.PageSize,
	}, nil
}

type mockRefillUC struct {
	cmd    usecases.RefillBalanceCommand
	result *paymentdto.TransactionDTO
	err    error
}

func (m *mockRefillUC) Execute(ctx context.Context, cmd usecases.RefillBalanceCommand) (*paymentdto.TransactionDTO, error) {
	m.cmd = cmd
	return m.result, m.err
}

type mockRefundUC struct {
	err error
}

func (m *mockRefundUC) Execute(ctx context.Context, cmd usecases.RefundTransactionCommand) (*paymentdto.TransactionDTO, error) {
	if m.err != nil {
		return nil, m.err
	}
	return &paymentdto.TransactionDTO{ID: cmd.TransactionID, Status: "refunded"}, nil
}

type mockCreateOrderUC struct {
	cmd usecases.CreateOrderCommand
}

func (m *mockCreateOrderUC) Execute(ctx context.Context, cmd usecases.CreateOrderCommand) (*paymentdto.OrderDTO, error) {
	m.cmd = cmd
	return &paymentdto.OrderDTO{ID: "ord_1", Action: string(cmd.Action), Status: "pending"}, nil
}

type mockCompleteOrderUC struct {
	cmd usecases.CompleteOrderCommand
}

func (m *mockCompleteOrderUC) Execute(ctx context.Context, cmd usecases.CompleteOrderCommand) (*paymentdto.CompletedOrderDTO, error) {
	m.cmd = cmd
	return &paymentdto.CompletedOrderDTO{Order: &paymentdto.OrderDTO{ID: cmd.OrderID, Status: "done"}}, nil
}

type mockCreateMethodUC struct {
	cmd usecases.CreatePaymentMethodCommand
}

func (m *mockCreateMethodUC) Execute(ctx context.Context, cmd usecases.CreatePaymentMethodCommand) (*paymentgateway.PaymentMethod, error) {
	m.cmd = cmd
	return &paymentgateway.PaymentMethod{Token: "pm_1", Gateway: "sandbox"}, nil
}

type mockDeleteMethodUC struct {
	cmd usecases.DeletePaymentMethodCommand
}

func (m *mockDeleteMethodUC) Execute(ctx context.Context, cmd usecases.DeletePaymentMethodCommand) error {
	m.cmd = cmd
	return nil
}

func TestPaymentHandler_ListMyTransactions(t *testing.T) {
	uc := &mockListTransactionsUC{}
	h := NewPaymentHandler(PaymentUseCases{ListTransactions: uc}, logger.NewNopLogger())

	c, w := testutil.NewTestContext(http.MethodGet, "/transactions", nil)
	testutil.SetAuthContext(c, 9)
	testutil.SetQueryParams(c, map[string]string{"status": "success", "page": "2", "page_size": "5"})

	h.ListMyTransactions(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, uint(9), uc.query.UserID)
	require.NotNil(t, uc.query.Status)
	assert.Equal(t, "success", *uc.query.Status)
	assert.Equal(t, 2, uc.query.Page)
	assert.Equal(t, 5, uc.query.PageSize)
}

func TestPaymentHandler_AdminListTransactions(t *testing.T) {
	uc := &mockListTransactionsUC{}
	h := NewPaymentHandler(PaymentUseCases{ListTransactions: uc}, logger.NewNopLogger())

	c, w := testutil.NewTestContext(http.MethodGet, "/admin/transactions", nil)
	h.ListTransactions(c)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Zero(t, uc.query.UserID)

	c, w = testutil.NewTestContext(http.MethodGet, "/admin/transactions", nil)
	testutil.SetQueryParams(c, map[string]string{"user_id": "x"})
	h.ListTransactions(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPaymentHandler_RefillBalance(t *testing.T) {
	tests := []struct {
		name       string
		body       RefillBalanceRequest
		result     *paymentdto.TransactionDTO
		err        error
		wantStatus int
	}{
		{
			name:       "charged",
			body:       RefillBalanceRequest{Amount: "25.50", Currency: "USD"},
			result:     &paymentdto.TransactionDTO{ID: 1, Status: "success"},
			wantStatus: http.StatusCreated,
		},
		{
			name:       "cash gateway",
			body:       RefillBalanceRequest{Amount: "10", Gateway: "cash"},
			result:     &paymentdto.TransactionDTO{ID: 2, Status: "pending"},
			wantStatus: http.StatusAccepted,
		},
		{
			name:       "bad amount",
			body:       RefillBalanceRequest{Amount: "-3"},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "declined",
			body:       RefillBalanceRequest{Amount: "10"},
			err:        errors.NewPaymentFailedError("declined"),
			wantStatus: http.StatusPaymentRequired,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uc := &mockRefillUC{result: tt.result, err: tt.err}
			h := NewPaymentHandler(PaymentUseCases{Refill: uc}, logger.NewNopLogger())

			c, w := testutil.NewTestContext(http.MethodPost, "/balance/refill", tt.body)
			testutil.SetAuthContext(c, 9)

			h.RefillBalance(c)

			assert.Equal(t, tt.wantStatus, w.Code, w.Body.String())
			if tt.result != nil {
				assert.True(t, decimal.RequireFromString(tt.body.Amount).Equal(uc.cmd.Amount))
			}
		})
	}
}

func TestPaymentHandler_RefundTransaction(t *testing.T) {
	h := NewPaymentHandler(PaymentUseCases{Refund: &mockRefundUC{}}, logger.NewNopLogger())

	c, w := testutil.NewTestContext(http.MethodPost, "/admin/transactions/5/refund", nil)
	testutil.SetURLParam(c, "id", "5")
	h.RefundTransaction(c)
	assert.Equal(t, http.StatusOK, w.Code)

	h = NewPaymentHandler(PaymentUseCases{Refund: &mockRefundUC{err: errors.NewConflictError("transaction cannot be refunded")}}, logger.NewNopLogger())
	c, w = testutil.NewTestContext(http.MethodPost, "/admin/transactions/5/refund", nil)
	testutil.SetURLParam(c, "id", "5")
	h.RefundTransaction(c)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestPaymentHandler_Orders(t *testing.T) {
	create := &mockCreateOrderUC{}
	complete := &mockCompleteOrderUC{}
	h := NewPaymentHandler(PaymentUseCases{CreateOrder: create, CompleteOrder: complete}, logger.NewNopLogger())

	c, w := testutil.NewTestContext(http.MethodPost, "/orders", CreateOrderRequest{Action: "checkout", Host: "site:5", Params: map[string]interface{}{"plan": "pro"}})
	testutil.SetAuthContext(c, 9)
	h.CreateOrder(c)
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, order.ActionCheckout, create.cmd.Action)
	assert.True(t, create.cmd.Reference.IsZero())

	c, w = testutil.NewTestContext(http.MethodPost, "/orders", CreateOrderRequest{Action: "refund", Host: "site:5"})
	testutil.SetAuthContext(c, 9)
	h.CreateOrder(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	c, w = testutil.NewTestContext(http.MethodPost, "/orders/ord_1/complete", GatewayResultRequest{Successful: true, Reference: "ch_9"})
	testutil.SetAuthContext(c, 9)
	testutil.SetURLParam(c, "id", "ord_1")
	h.CompleteOrder(c)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ord_1", complete.cmd.OrderID)
	assert.Equal(t, uint(9), complete.cmd.UserID)
	require.NotNil(t, complete.cmd.Payment)
	assert.Equal(t, "ch_9", complete.cmd.Payment.Reference)
}

func TestPaymentHandler_PaymentMethods(t *testing.T) {
	create := &mockCreateMethodUC{}
	del := &mockDeleteMethodUC{}
	h := NewPaymentHandler(PaymentUseCases{CreateMethod: create, DeleteMethod: del}, logger.NewNopLogger())

	c, w := testutil.NewTestContext(http.MethodPost, "/payment-methods", PaymentMethodRequest{Nonce: "tok"})
	testutil.SetAuthContext(c, 9)
	h.CreatePaymentMethod(c)
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "tok", create.cmd.Nonce)

	c, w = testutil.NewTestContext(http.MethodDelete, "/payment-methods/pm_1", nil)
	testutil.SetAuthContext(c, 9)
	testutil.SetURLParam(c, "token", "pm_1")
	h.DeletePaymentMethod(c)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "pm_1", del.cmd.Token)
}
