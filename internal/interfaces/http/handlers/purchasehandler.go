package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ptuchik/billing/internal/application/purchase/usecases"
	"github.com/ptuchik/billing/internal/domain/invoice"
	"github.com/ptuchik/billing/internal/domain/transaction"
	"github.com/ptuchik/billing/internal/shared/constants"
	"github.com/ptuchik/billing/internal/shared/logger"
	"github.com/ptuchik/billing/internal/shared/utils"
)

// PurchaseHandler prices and buys plans for hosts.
type PurchaseHandler struct {
	quoteUseCase      getQuoteUseCase
	purchaseUseCase   purchasePlanUseCase
	deactivateUseCase deactivatePurchaseUseCase
	logger            logger.Interface
}

func NewPurchaseHandler(
	quoteUC getQuoteUseCase,
	purchaseUC purchasePlanUseCase,
	deactivateUC deactivatePurchaseUseCase,
	logger logger.Interface,
) *PurchaseHandler {
	return &PurchaseHandler{
		quoteUseCase:      quoteUC,
		purchaseUseCase:   purchaseUC,
		deactivateUseCase: deactivateUC,
		logger:            logger,
	}
}

type PurchaseRequest struct {
	// Host is "<kind>:<id>" of the entity the package is bought for.
	Host         string                `json:"host" binding:"required"`
	Plan         string                `json:"plan" binding:"required"`
	Coupon       string                `json:"coupon"`
	PaymentNonce string                `json:"payment_nonce"`
	Gateway      string                `json:"gateway"`
	Currency     string                `json:"currency" validate:"omitempty,currency"`
	Reference    string                `json:"reference"`
	OrderID      string                `json:"order_id"`
	ReturnURL    string                `json:"return_url" validate:"omitempty,url"`
	Payment      *GatewayResultRequest `json:"payment"`
}

// Quote godoc
// @Summary Price a plan
// @Description Price, discounts and trial for buying a plan on a host. Nothing is charged.
// @Tags Purchases
// @Produce json
// @Param alias path string true "Plan alias"
// @Param host query string true "Host reference kind:id"
// @Param coupon query string false "Coupon code"
// @Param currency query string false "Currency override"
// @Success 200 {object} utils.APIResponse{data=dto.QuoteDTO}
// @Failure 422 {object} utils.APIResponse
// @Router /plans/{alias}/quote [get]
func (h *PurchaseHandler) Quote(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	host, err := parseRef("host", c.Query("host"))
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	quote, err := h.quoteUseCase.Execute(c.Request.Context(), usecases.GetQuoteQuery{
		UserID:     userID,
		Host:       host,
		PlanAlias:  c.Param("alias"),
		CouponCode: c.Query("coupon"),
		Currency:   c.Query("currency"),
	})
	if err != nil {
		h.logger.Warnw("failed to quote plan", "error", err, "user_id", userID, "plan", c.Param("alias"))
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "", quote)
}

// Purchase godoc
// @Summary Buy a plan
// @Description Buys, renews, switches or reactivates a plan on a host and returns the invoice.
// @Tags Purchases
// @Accept json
// @Produce json
// @Param X-Device header string false "Client device"
// @Param request body PurchaseRequest true "Purchase"
// @Success 201 {object} utils.APIResponse{data=invoice.Invoice}
// @Success 202 {object} utils.APIResponse{data=invoice.Invoice}
// @Failure 402 {object} utils.APIResponse
// @Failure 422 {object} utils.APIResponse
// @Router /purchases [post]
func (h *PurchaseHandler) Purchase(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	var req PurchaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warnw("invalid request body for purchase", "error", err)
		utils.ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	host, err := parseRef("host", req.Host)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	reference, err := parseOptionalRef("reference", req.Reference)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	inv, err := h.purchaseUseCase.Execute(c.Request.Context(), usecases.PurchasePlanCommand{
		UserID:       userID,
		Host:         host,
		PlanAlias:    req.Plan,
		CouponCode:   req.Coupon,
		PaymentNonce: req.PaymentNonce,
		Gateway:      req.Gateway,
		Currency:     req.Currency,
		Device:       invoice.ParseDevice(c.GetHeader(constants.HeaderDevice)),
		Reference:    reference,
		OrderID:      req.OrderID,
		ReturnURL:    req.ReturnURL,
		Payment:      req.Payment.toResult(),
	})
	if err != nil {
		h.logger.Errorw("failed to purchase plan", "error", err, "user_id", userID, "host", req.Host, "plan", req.Plan)
		utils.ErrorResponseWithError(c, err)
		return
	}

	respondInvoice(c, inv)
}

// DeactivatePurchase godoc
// @Summary Deactivate a purchase
// @Description Takes a package away from its host and ends the running subscription.
// @Tags Admin
// @Param id path int true "Purchase ID"
// @Param expired query bool false "Close on the end date instead of today"
// @Success 200 {object} utils.APIResponse
// @Router /admin/purchases/{id}/deactivate [post]
func (h *PurchaseHandler) DeactivatePurchase(c *gin.Context) {
	purchaseID, err := parseIDParam(c, "id")
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	cmd := usecases.DeactivatePurchaseCommand{
		PurchaseID: purchaseID,
		Expired:    c.Query("expired") == "true",
	}
	if err := h.deactivateUseCase.Execute(c.Request.Context(), cmd); err != nil {
		h.logger.Errorw("failed to deactivate purchase", "error", err, "purchase_id", purchaseID)
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Purchase deactivated", nil)
}

// respondInvoice answers 202 while the payment is still open.
func respondInvoice(c *gin.Context, inv *invoice.Invoice) {
	if inv.RedirectURL != "" || inv.Status == transaction.StatusPending.String() {
		utils.AcceptedResponse(c, inv, "Payment is pending")
		return
	}
	utils.CreatedResponse(c, inv, "Purchase completed")
}
