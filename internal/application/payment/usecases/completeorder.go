package usecases

import (
	"context"
	"fmt"

	"github.com/ptuchik/billing/internal/application/payment/dto"
	"github.com/ptuchik/billing/internal/application/payment/paymentgateway"
	purchaseusecases "github.com/ptuchik/billing/internal/application/purchase/usecases"
	"github.com/ptuchik/billing/internal/domain/invoice"
	"github.com/ptuchik/billing/internal/domain/order"
	"github.com/ptuchik/billing/internal/domain/transaction"
	"github.com/ptuchik/billing/internal/shared/errors"
	"github.com/ptuchik/billing/internal/shared/logger"
)

type CompleteOrderCommand struct {
	OrderID string
	// UserID limits completion to the order's owner. Zero skips the check.
	UserID uint
	// Payment is what the gateway reported on the redirect back.
	Payment *paymentgateway.Result
}

// CompleteOrderUseCase resumes the action an order was created for once the
// customer returns from the gateway.
type CompleteOrderUseCase struct {
	orderRepo     order.Repository
	purchaser     Purchaser
	renewer       Renewer
	methodCreator *CreatePaymentMethodUseCase
	logger        logger.Interface
}

func NewCompleteOrderUseCase(
	orderRepo order.Repository,
	purchaser Purchaser,
	renewer Renewer,
	methodCreator *CreatePaymentMethodUseCase,
	logger logger.Interface,
) *CompleteOrderUseCase {
	return &CompleteOrderUseCase{
		orderRepo:     orderRepo,
		purchaser:     purchaser,
		renewer:       renewer,
		methodCreator: methodCreator,
		logger:        logger,
	}
}

func (uc *CompleteOrderUseCase) Execute(ctx context.Context, cmd CompleteOrderCommand) (*dto.CompletedOrderDTO, error) {
	o, err := uc.orderRepo.GetByPublicID(ctx, cmd.OrderID)
	if err != nil {
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	if o == nil || (cmd.UserID != 0 && o.UserID() != cmd.UserID) {
		return nil, errors.NewNotFoundError("order not found")
	}
	if !o.IsPending() {
		return nil, errors.NewConflictError(order.ErrOrderNotPending.Error(), "status: "+o.Status().String())
	}

	result := &dto.CompletedOrderDTO{}
	switch o.Action() {
	case order.ActionCheckout, order.ActionUpgrade:
		result.Invoice, err = uc.purchaser.Execute(ctx, purchaseusecases.PurchasePlanCommand{
			UserID:     o.UserID(),
			Host:       o.Host(),
			PlanAlias:  o.StringParam(ParamPlan),
			CouponCode: o.StringParam(ParamCoupon),
			Currency:   o.StringParam(ParamCurrency),
			Gateway:    o.StringParam(ParamGateway),
			Device:     invoice.ParseDevice(o.StringParam(ParamDevice)),
			OrderID:    o.PublicID(),
			Payment:    cmd.Payment,
		})
	case order.ActionRenew:
		result.Invoice, err = uc.renewer.Renew(ctx, purchaseusecases.RenewCommand{
			SubscriptionID: o.Reference().ID,
			Gateway:        o.StringParam(ParamGateway),
			OrderID:        o.PublicID(),
			Payment:        cmd.Payment,
		})
	case order.ActionAddPaymentMethod:
		nonce := o.StringParam(ParamNonce)
		if cmd.Payment != nil && cmd.Payment.Reference != "" {
			nonce = cmd.Payment.Reference
		}
		result.PaymentMethod, err = uc.methodCreator.Execute(ctx, CreatePaymentMethodCommand{
			UserID:  o.UserID(),
			Gateway: o.StringParam(ParamGateway),
			Nonce:   nonce,
		})
	default:
		err = errors.NewValidationError(order.ErrUnsupportedAction.Error())
	}

	if err != nil {
		if markErr := o.MarkFailed(err.Error()); markErr == nil {
			uc.save(ctx, o)
		}
		uc.logger.Warnw("order failed", "order_id", o.PublicID(), "action", o.Action(), "error", err)
		return nil, err
	}

	if result.Invoice != nil && result.Invoice.Status == transaction.StatusPending.String() {
		uc.logger.Infow("order still pending", "order_id", o.PublicID())
		result.Order = dto.ToOrderDTO(o)
		return result, nil
	}

	if err := o.MarkDone(transactionID(result.Invoice)); err != nil {
		return nil, errors.NewConflictError(err.Error())
	}
	uc.save(ctx, o)

	uc.logger.Infow("order completed", "order_id", o.PublicID(), "action", o.Action())
	result.Order = dto.ToOrderDTO(o)
	return result, nil
}

// save logs instead of failing: the action already ran.
func (uc *CompleteOrderUseCase) save(ctx context.Context, o *order.Order) {
	if err := uc.orderRepo.Update(ctx, o); err != nil {
		uc.logger.Errorw("failed to update order", "order_id", o.PublicID(), "status", o.Status().String(), "error", err)
	}
}

func transactionID(inv *invoice.Invoice) *uint {
	if inv == nil || inv.TransactionID == 0 {
		return nil
	}
	id := inv.TransactionID
	return &id
}
