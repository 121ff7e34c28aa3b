package usecases

import (
	"context"
	"fmt"

	"github.com/ptuchik/billing/internal/application/payment/dto"
	"github.com/ptuchik/billing/internal/domain/order"
	"github.com/ptuchik/billing/internal/domain/shared/ref"
	"github.com/ptuchik/billing/internal/shared/errors"
	"github.com/ptuchik/billing/internal/shared/id"
	"github.com/ptuchik/billing/internal/shared/logger"
)

// Order params read back when the order completes.
const (
	ParamPlan     = "plan"
	ParamCoupon   = "coupon"
	ParamCurrency = "currency"
	ParamGateway  = "gateway"
	ParamNonce    = "nonce"
	ParamDevice   = "device"
)

type CreateOrderCommand struct {
	UserID    uint
	Action    order.Action
	Host      ref.Ref
	Reference ref.Ref
	Params    map[string]interface{}
}

// CreateOrderUseCase records what the customer started before the gateway
// redirects them away.
type CreateOrderUseCase struct {
	orderRepo order.Repository
	logger    logger.Interface
}

func NewCreateOrderUseCase(orderRepo order.Repository, logger logger.Interface) *CreateOrderUseCase {
	return &CreateOrderUseCase{orderRepo: orderRepo, logger: logger}
}

func (uc *CreateOrderUseCase) Execute(ctx context.Context, cmd CreateOrderCommand) (*dto.OrderDTO, error) {
	switch cmd.Action {
	case order.ActionCheckout, order.ActionUpgrade:
		if alias, _ := cmd.Params[ParamPlan].(string); alias == "" {
			return nil, errors.NewValidationError("plan is required")
		}
		if cmd.Host.IsZero() {
			return nil, errors.NewValidationError("host is required")
		}
	case order.ActionRenew:
		if cmd.Reference.Kind != order.ReferenceSubscription || cmd.Reference.ID == 0 {
			return nil, errors.NewValidationError("renew orders must reference a subscription")
		}
	}

	o, err := order.NewOrder(id.NewOrderID(), cmd.UserID, cmd.Action, cmd.Host, cmd.Reference, cmd.Params)
	if err != nil {
		return nil, errors.NewValidationError(err.Error())
	}
	if err := uc.orderRepo.Create(ctx, o); err != nil {
		uc.logger.Errorw("failed to create order", "user_id", cmd.UserID, "action", cmd.Action, "error", err)
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	uc.logger.Infow("order created", "order_id", o.PublicID(), "user_id", o.UserID(), "action", o.Action())
	return dto.ToOrderDTO(o), nil
}
