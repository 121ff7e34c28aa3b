package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	purchaseusecases "github.com/ptuchik/billing/internal/application/purchase/usecases"
	"github.com/ptuchik/billing/internal/application/subscription/usecases"
	"github.com/ptuchik/billing/internal/shared/logger"
	"github.com/ptuchik/billing/internal/shared/utils"
)

// SubscriptionHandler serves the customer's own subscriptions and the admin
// lifecycle operations on any subscription.
type SubscriptionHandler struct {
	getUseCase       getSubscriptionUseCase
	listUseCase      listUserSubscriptionsUseCase
	cancelUseCase    cancelSubscriptionUseCase
	autoRenewUseCase setAutoRenewUseCase
	prolongUseCase   prolongSubscriptionUseCase
	renewUseCase     purchasePlanUseCase
	logger           logger.Interface
}

func NewSubscriptionHandler(
	getUC getSubscriptionUseCase,
	listUC listUserSubscriptionsUseCase,
	cancelUC cancelSubscriptionUseCase,
	autoRenewUC setAutoRenewUseCase,
	prolongUC prolongSubscriptionUseCase,
	renewUC purchasePlanUseCase,
	logger logger.Interface,
) *SubscriptionHandler {
	return &SubscriptionHandler{
		getUseCase:       getUC,
		listUseCase:      listUC,
		cancelUseCase:    cancelUC,
		autoRenewUseCase: autoRenewUC,
		prolongUseCase:   prolongUC,
		renewUseCase:     renewUC,
		logger:           logger,
	}
}

type CancelSubscriptionRequest struct {
	Immediate bool `json:"immediate"`
}

type SetAutoRenewRequest struct {
	AutoRenew *bool `json:"auto_renew" binding:"required"`
}

type RenewSubscriptionRequest struct {
	Gateway      string                `json:"gateway"`
	PaymentNonce string                `json:"payment_nonce"`
	OrderID      string                `json:"order_id"`
	Payment      *GatewayResultRequest `json:"payment"`
}

type ProlongSubscriptionRequest struct {
	Months int `json:"months" binding:"required,min=1,max=120"`
}

// ListSubscriptions godoc
// @Summary List my subscriptions
// @Tags Subscriptions
// @Produce json
// @Param active query bool false "Only running subscriptions"
// @Success 200 {object} utils.APIResponse{data=[]dto.SubscriptionDTO}
// @Router /subscriptions [get]
func (h *SubscriptionHandler) ListSubscriptions(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	subs, err := h.listUseCase.Execute(c.Request.Context(), usecases.ListUserSubscriptionsQuery{
		UserID:     userID,
		ActiveOnly: c.Query("active") == "true",
	})
	if err != nil {
		h.logger.Errorw("failed to list subscriptions", "error", err, "user_id", userID)
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "", subs)
}

// GetSubscription godoc
// @Summary Get one of my subscriptions
// @Tags Subscriptions
// @Produce json
// @Param id path int true "Subscription ID"
// @Success 200 {object} utils.APIResponse{data=dto.SubscriptionDTO}
// @Failure 404 {object} utils.APIResponse
// @Router /subscriptions/{id} [get]
func (h *SubscriptionHandler) GetSubscription(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	subscriptionID, err := parseIDParam(c, "id")
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	sub, err := h.getUseCase.Execute(c.Request.Context(), usecases.GetSubscriptionQuery{
		SubscriptionID: subscriptionID,
		UserID:         userID,
	})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "", sub)
}

// CancelSubscription godoc
// @Summary Cancel one of my subscriptions
// @Tags Subscriptions
// @Accept json
// @Param id path int true "Subscription ID"
// @Param request body CancelSubscriptionRequest false "Cancel options"
// @Success 200 {object} utils.APIResponse
// @Router /subscriptions/{id}/cancel [post]
func (h *SubscriptionHandler) CancelSubscription(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	h.cancel(c, userID)
}

// AdminCancelSubscription cancels any subscription.
// @Summary Cancel a subscription
// @Tags Admin
// @Accept json
// @Param id path int true "Subscription ID"
// @Param request body CancelSubscriptionRequest false "Cancel options"
// @Success 200 {object} utils.APIResponse
// @Router /admin/subscriptions/{id}/cancel [post]
func (h *SubscriptionHandler) AdminCancelSubscription(c *gin.Context) {
	h.cancel(c, 0)
}

func (h *SubscriptionHandler) cancel(c *gin.Context, userID uint) {
	subscriptionID, err := parseIDParam(c, "id")
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	var req CancelSubscriptionRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.ErrorResponse(c, http.StatusBadRequest, err.Error())
			return
		}
	}

	err = h.cancelUseCase.Execute(c.Request.Context(), usecases.CancelSubscriptionCommand{
		SubscriptionID: subscriptionID,
		UserID:         userID,
		Immediate:      req.Immediate,
	})
	if err != nil {
		h.logger.Errorw("failed to cancel subscription", "error", err, "subscription_id", subscriptionID)
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Subscription cancelled", nil)
}

// SetAutoRenew godoc
// @Summary Turn automatic renewal on or off
// @Tags Subscriptions
// @Accept json
// @Param id path int true "Subscription ID"
// @Param request body SetAutoRenewRequest true "Auto renew"
// @Success 200 {object} utils.APIResponse
// @Router /subscriptions/{id}/auto-renew [put]
func (h *SubscriptionHandler) SetAutoRenew(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	subscriptionID, err := parseIDParam(c, "id")
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	var req SetAutoRenewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	err = h.autoRenewUseCase.Execute(c.Request.Context(), usecases.SetAutoRenewCommand{
		SubscriptionID: subscriptionID,
		UserID:         userID,
		AutoRenew:      *req.AutoRenew,
	})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Auto renew updated", nil)
}

// RenewSubscription godoc
// @Summary Renew one of my subscriptions now
// @Description Charges the next period, e.g. after a failed automatic renewal.
// @Tags Subscriptions
// @Accept json
// @Produce json
// @Param id path int true "Subscription ID"
// @Param request body RenewSubscriptionRequest false "Payment"
// @Success 201 {object} utils.APIResponse{data=invoice.Invoice}
// @Failure 402 {object} utils.APIResponse
// @Router /subscriptions/{id}/renew [post]
func (h *SubscriptionHandler) RenewSubscription(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	subscriptionID, err := parseIDParam(c, "id")
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	var req RenewSubscriptionRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.ErrorResponse(c, http.StatusBadRequest, err.Error())
			return
		}
	}

	// Ownership check; not found for other users' subscriptions.
	if _, err := h.getUseCase.Execute(c.Request.Context(), usecases.GetSubscriptionQuery{
		SubscriptionID: subscriptionID,
		UserID:         userID,
	}); err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	inv, err := h.renewUseCase.Renew(c.Request.Context(), purchaseusecases.RenewCommand{
		SubscriptionID: subscriptionID,
		Attempt:        1,
		Gateway:        req.Gateway,
		PaymentNonce:   req.PaymentNonce,
		OrderID:        req.OrderID,
		Payment:        req.Payment.toResult(),
	})
	if err != nil {
		h.logger.Errorw("failed to renew subscription", "error", err, "subscription_id", subscriptionID, "user_id", userID)
		utils.ErrorResponseWithError(c, err)
		return
	}

	respondInvoice(c, inv)
}

// ProlongSubscription godoc
// @Summary Prolong a subscription
// @Description Shifts the next billing date of an active subscription by whole months.
// @Tags Admin
// @Accept json
// @Param id path int true "Subscription ID"
// @Param request body ProlongSubscriptionRequest true "Months"
// @Success 200 {object} utils.APIResponse
// @Router /admin/subscriptions/{id}/prolong [post]
func (h *SubscriptionHandler) ProlongSubscription(c *gin.Context) {
	subscriptionID, err := parseIDParam(c, "id")
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	var req ProlongSubscriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	err = h.prolongUseCase.Execute(c.Request.Context(), usecases.ProlongSubscriptionCommand{
		SubscriptionID: subscriptionID,
		Months:         req.Months,
	})
	if err != nil {
		h.logger.Errorw("failed to prolong subscription", "error", err, "subscription_id", subscriptionID)
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Subscription prolonged", nil)
}
