package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/ptuchik/billing/internal/application/payment/paymentgateway"
	"github.com/ptuchik/billing/internal/domain/shared/ref"
	"github.com/ptuchik/billing/internal/interfaces/http/middleware"
	"github.com/ptuchik/billing/internal/shared/errors"
	"github.com/ptuchik/billing/internal/shared/utils"
)

// requireUser writes 401 and returns false when the request is anonymous.
func requireUser(c *gin.Context) (uint, bool) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		utils.ErrorResponse(c, http.StatusUnauthorized, "user not authenticated")
		return 0, false
	}
	return userID, true
}

func parseIDParam(c *gin.Context, name string) (uint, error) {
	n, err := parseUint(c.Param(name))
	if err != nil {
		return 0, errors.NewValidationError("invalid " + name)
	}
	return n, nil
}

func parseUint(s string) (uint, error) {
	n, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, err
	}
	if n == 0 {
		return 0, strconv.ErrRange
	}
	return uint(n), nil
}

func parseRef(field, s string) (ref.Ref, error) {
	r, err := ref.Parse(s)
	if err != nil {
		return ref.Ref{}, errors.NewValidationError("invalid "+field, err.Error())
	}
	return r, nil
}

func parseOptionalRef(field, s string) (*ref.Ref, error) {
	if s == "" {
		return nil, nil
	}
	r, err := parseRef(field, s)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// GatewayResultRequest is a gateway answer relayed after an off-site payment.
type GatewayResultRequest struct {
	Successful bool                   `json:"successful"`
	Pending    bool                   `json:"pending"`
	Reference  string                 `json:"reference"`
	Message    string                 `json:"message"`
	RawData    map[string]interface{} `json:"raw_data"`
}

func (r *GatewayResultRequest) toResult() *paymentgateway.Result {
	if r == nil {
		return nil
	}
	return &paymentgateway.Result{
		Successful: r.Successful,
		Pending:    r.Pending,
		Reference:  r.Reference,
		Message:    r.Message,
		RawData:    r.RawData,
	}
}
