package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/ptuchik/billing/internal/application/payment/usecases"
	"github.com/ptuchik/billing/internal/domain/order"
	"github.com/ptuchik/billing/internal/domain/shared/ref"
	"github.com/ptuchik/billing/internal/shared/logger"
	"github.com/ptuchik/billing/internal/shared/utils"
)

// PaymentHandler serves balance refills, transactions, orders and stored
// payment methods.
type PaymentHandler struct {
	listTransactionsUseCase    listTransactionsUseCase
	refillUseCase              refillBalanceUseCase
	refundUseCase              refundTransactionUseCase
	voidUseCase                voidTransactionUseCase
	completeTransactionUseCase completeTransactionUseCase
	createOrderUseCase         createOrderUseCase
	completeOrderUseCase       completeOrderUseCase
	listMethodsUseCase         listPaymentMethodsUseCase
	createMethodUseCase        createPaymentMethodUseCase
	deleteMethodUseCase        deletePaymentMethodUseCase
	defaultMethodUseCase       setDefaultPaymentMethodUseCase
	logger                     logger.Interface
}

// PaymentUseCases groups the use cases PaymentHandler dispatches to.
type PaymentUseCases struct {
	ListTransactions    listTransactionsUseCase
	Refill              refillBalanceUseCase
	Refund              refundTransactionUseCase
	Void                voidTransactionUseCase
	CompleteTransaction completeTransactionUseCase
	CreateOrder         createOrderUseCase
	CompleteOrder       completeOrderUseCase
	ListMethods         listPaymentMethodsUseCase
	CreateMethod        createPaymentMethodUseCase
	DeleteMethod        deletePaymentMethodUseCase
	DefaultMethod       setDefaultPaymentMethodUseCase
}

func NewPaymentHandler(uc PaymentUseCases, logger logger.Interface) *PaymentHandler {
	return &PaymentHandler{
		listTransactionsUseCase:    uc.ListTransactions,
		refillUseCase:              uc.Refill,
		refundUseCase:              uc.Refund,
		voidUseCase:                uc.Void,
		completeTransactionUseCase: uc.CompleteTransaction,
		createOrderUseCase:         uc.CreateOrder,
		completeOrderUseCase:       uc.CompleteOrder,
		listMethodsUseCase:         uc.ListMethods,
		createMethodUseCase:        uc.CreateMethod,
		deleteMethodUseCase:        uc.DeleteMethod,
		defaultMethodUseCase:       uc.DefaultMethod,
		logger:                     logger,
	}
}

type RefillBalanceRequest struct {
	Amount       string                `json:"amount" binding:"required" validate:"decimal"`
	Currency     string                `json:"currency" validate:"omitempty,currency"`
	Gateway      string                `json:"gateway"`
	PaymentNonce string                `json:"payment_nonce"`
	OrderID      string                `json:"order_id"`
	ReturnURL    string                `json:"return_url" validate:"omitempty,url"`
	Payment      *GatewayResultRequest `json:"payment"`
}

type CompleteTransactionRequest struct {
	Successful bool   `json:"successful"`
	Message    string `json:"message"`
}

type CreateOrderRequest struct {
	Action    string                 `json:"action" binding:"required,oneof=checkout upgrade renew add_payment_method"`
	Host      string                 `json:"host" binding:"required"`
	Reference string                 `json:"reference"`
	Params    map[string]interface{} `json:"params"`
}

type PaymentMethodRequest struct {
	Gateway string `json:"gateway"`
	Nonce   string `json:"nonce" binding:"required"`
}

// ListMyTransactions godoc
// @Summary List my transactions
// @Tags Transactions
// @Produce json
// @Param page query int false "Page"
// @Param page_size query int false "Page size"
// @Param status query string false "failed|success|refunded|voided|pending"
// @Success 200 {object} utils.APIResponse{data=utils.ListResponse}
// @Router /transactions [get]
func (h *PaymentHandler) ListMyTransactions(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	h.listTransactions(c, userID)
}

// ListTransactions lists every user's transactions.
// @Summary List transactions
// @Tags Admin
// @Produce json
// @Param user_id query int false "User"
// @Success 200 {object} utils.APIResponse{data=utils.ListResponse}
// @Router /admin/transactions [get]
func (h *PaymentHandler) ListTransactions(c *gin.Context) {
	var userID uint
	if v := c.Query("user_id"); v != "" {
		id, err := parseUint(v)
		if err != nil {
			utils.ErrorResponse(c, http.StatusBadRequest, "invalid user_id")
			return
		}
		userID = id
	}
	h.listTransactions(c, userID)
}

func (h *PaymentHandler) listTransactions(c *gin.Context, userID uint) {
	p := utils.ParsePagination(c)
	query := usecases.ListTransactionsQuery{
		UserID:   userID,
		Page:     p.Page,
		PageSize: p.PageSize,
	}
	if status := c.Query("status"); status != "" {
		query.Status = &status
	}

	result, err := h.listTransactionsUseCase.Execute(c.Request.Context(), query)
	if err != nil {
		h.logger.Errorw("failed to list transactions", "error", err, "user_id", userID)
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.ListSuccessResponse(c, result.Transactions, result.TotalCount, result.Page, result.PageSize)
}

// RefillBalance godoc
// @Summary Top up my balance
// @Tags Transactions
// @Accept json
// @Produce json
// @Param request body RefillBalanceRequest true "Refill"
// @Success 201 {object} utils.APIResponse{data=dto.TransactionDTO}
// @Success 202 {object} utils.APIResponse{data=dto.TransactionDTO}
// @Failure 402 {object} utils.APIResponse
// @Router /balance/refill [post]
func (h *PaymentHandler) RefillBalance(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	var req RefillBalanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "invalid amount")
		return
	}

	tx, err := h.refillUseCase.Execute(c.Request.Context(), usecases.RefillBalanceCommand{
		UserID:       userID,
		Amount:       amount,
		Currency:     req.Currency,
		Gateway:      req.Gateway,
		PaymentNonce: req.PaymentNonce,
		OrderID:      req.OrderID,
		ReturnURL:    req.ReturnURL,
		Payment:      req.Payment.toResult(),
	})
	if err != nil {
		h.logger.Errorw("failed to refill balance", "error", err, "user_id", userID)
		utils.ErrorResponseWithError(c, err)
		return
	}

	if tx.RedirectURL != "" || tx.Status == "pending" {
		utils.AcceptedResponse(c, tx, "Payment is pending")
		return
	}
	utils.CreatedResponse(c, tx, "Balance refilled")
}

// RefundTransaction godoc
// @Summary Refund a transaction
// @Tags Admin
// @Param id path int true "Transaction ID"
// @Success 200 {object} utils.APIResponse{data=dto.TransactionDTO}
// @Router /admin/transactions/{id}/refund [post]
func (h *PaymentHandler) RefundTransaction(c *gin.Context) {
	transactionID, err := parseIDParam(c, "id")
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	tx, err := h.refundUseCase.Execute(c.Request.Context(), usecases.RefundTransactionCommand{TransactionID: transactionID})
	if err != nil {
		h.logger.Errorw("failed to refund transaction", "error", err, "transaction_id", transactionID)
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Transaction refunded", tx)
}

// VoidTransaction godoc
// @Summary Void a transaction
// @Tags Admin
// @Param id path int true "Transaction ID"
// @Success 200 {object} utils.APIResponse{data=dto.TransactionDTO}
// @Router /admin/transactions/{id}/void [post]
func (h *PaymentHandler) VoidTransaction(c *gin.Context) {
	transactionID, err := parseIDParam(c, "id")
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	tx, err := h.voidUseCase.Execute(c.Request.Context(), usecases.VoidTransactionCommand{TransactionID: transactionID})
	if err != nil {
		h.logger.Errorw("failed to void transaction", "error", err, "transaction_id", transactionID)
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Transaction voided", tx)
}

// CompleteTransaction settles a pending cash payment.
// @Summary Settle a pending transaction
// @Tags Admin
// @Accept json
// @Param id path int true "Transaction ID"
// @Param request body CompleteTransactionRequest true "Outcome"
// @Success 200 {object} utils.APIResponse{data=dto.TransactionDTO}
// @Router /admin/transactions/{id}/complete [post]
func (h *PaymentHandler) CompleteTransaction(c *gin.Context) {
	transactionID, err := parseIDParam(c, "id")
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	var req CompleteTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	tx, err := h.completeTransactionUseCase.Execute(c.Request.Context(), usecases.CompleteTransactionCommand{
		TransactionID: transactionID,
		Successful:    req.Successful,
		Message:       req.Message,
	})
	if err != nil {
		h.logger.Errorw("failed to complete transaction", "error", err, "transaction_id", transactionID)
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Transaction completed", tx)
}

// CreateOrder godoc
// @Summary Open an order before an off-site payment
// @Tags Orders
// @Accept json
// @Produce json
// @Param request body CreateOrderRequest true "Order"
// @Success 201 {object} utils.APIResponse{data=dto.OrderDTO}
// @Router /orders [post]
func (h *PaymentHandler) CreateOrder(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	var req CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	host, err := parseRef("host", req.Host)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	var reference ref.Ref
	if req.Reference != "" {
		if reference, err = parseRef("reference", req.Reference); err != nil {
			utils.ErrorResponseWithError(c, err)
			return
		}
	}

	o, err := h.createOrderUseCase.Execute(c.Request.Context(), usecases.CreateOrderCommand{
		UserID:    userID,
		Action:    order.Action(req.Action),
		Host:      host,
		Reference: reference,
		Params:    req.Params,
	})
	if err != nil {
		h.logger.Errorw("failed to create order", "error", err, "user_id", userID)
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.CreatedResponse(c, o, "Order created")
}

// CompleteOrder godoc
// @Summary Finish an order after the gateway redirect
// @Tags Orders
// @Accept json
// @Produce json
// @Param id path string true "Order ID"
// @Param request body GatewayResultRequest true "Gateway result"
// @Success 200 {object} utils.APIResponse{data=dto.CompletedOrderDTO}
// @Router /orders/{id}/complete [post]
func (h *PaymentHandler) CompleteOrder(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	var req GatewayResultRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.completeOrderUseCase.Execute(c.Request.Context(), usecases.CompleteOrderCommand{
		OrderID: c.Param("id"),
		UserID:  userID,
		Payment: req.toResult(),
	})
	if err != nil {
		h.logger.Errorw("failed to complete order", "error", err, "order_id", c.Param("id"), "user_id", userID)
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "", result)
}

// ListPaymentMethods godoc
// @Summary List my payment methods
// @Tags PaymentMethods
// @Produce json
// @Param gateway query string false "Gateway name"
// @Success 200 {object} utils.APIResponse{data=[]paymentgateway.PaymentMethod}
// @Router /payment-methods [get]
func (h *PaymentHandler) ListPaymentMethods(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	methods, err := h.listMethodsUseCase.Execute(c.Request.Context(), usecases.ListPaymentMethodsQuery{
		UserID:  userID,
		Gateway: c.Query("gateway"),
	})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "", methods)
}

// CreatePaymentMethod godoc
// @Summary Store a payment method
// @Tags PaymentMethods
// @Accept json
// @Produce json
// @Param request body PaymentMethodRequest true "Nonce"
// @Success 201 {object} utils.APIResponse{data=paymentgateway.PaymentMethod}
// @Router /payment-methods [post]
func (h *PaymentHandler) CreatePaymentMethod(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	var req PaymentMethodRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	method, err := h.createMethodUseCase.Execute(c.Request.Context(), usecases.CreatePaymentMethodCommand{
		UserID:  userID,
		Gateway: req.Gateway,
		Nonce:   req.Nonce,
	})
	if err != nil {
		h.logger.Errorw("failed to create payment method", "error", err, "user_id", userID)
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.CreatedResponse(c, method, "Payment method added")
}

// DeletePaymentMethod godoc
// @Summary Remove a payment method
// @Tags PaymentMethods
// @Param token path string true "Payment method token"
// @Param gateway query string false "Gateway name"
// @Success 200 {object} utils.APIResponse
// @Router /payment-methods/{token} [delete]
func (h *PaymentHandler) DeletePaymentMethod(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	err := h.deleteMethodUseCase.Execute(c.Request.Context(), usecases.DeletePaymentMethodCommand{
		UserID:  userID,
		Gateway: c.Query("gateway"),
		Token:   c.Param("token"),
	})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Payment method removed", nil)
}

// SetDefaultPaymentMethod godoc
// @Summary Make a payment method the default
// @Tags PaymentMethods
// @Param token path string true "Payment method token"
// @Param gateway query string false "Gateway name"
// @Success 200 {object} utils.APIResponse
// @Router /payment-methods/{token}/default [put]
func (h *PaymentHandler) SetDefaultPaymentMethod(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	err := h.defaultMethodUseCase.Execute(c.Request.Context(), usecases.SetDefaultPaymentMethodCommand{
		UserID:  userID,
		Gateway: c.Query("gateway"),
		Token:   c.Param("token"),
	})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Default payment method updated", nil)
}
