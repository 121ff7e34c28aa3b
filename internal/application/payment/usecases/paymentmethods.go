package usecases

import (
	"context"
	"fmt"

	"github.com/ptuchik/billing/internal/application/payment/paymentgateway"
	"github.com/ptuchik/billing/internal/domain/customer"
	"github.com/ptuchik/billing/internal/shared/errors"
	"github.com/ptuchik/billing/internal/shared/logger"
)

// paymentMethods holds what the payment method use cases share. The gateway
// is the one the customer last paid with unless a command names another.
type paymentMethods struct {
	customerRepo customer.Repository
	gateways     GatewayResolver
	logger       logger.Interface
}

func (pm paymentMethods) load(ctx context.Context, userID uint, gatewayName string) (*customer.Customer, paymentgateway.Gateway, error) {
	c, err := pm.customerRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get customer: %w", err)
	}
	if c == nil {
		return nil, nil, errors.NewNotFoundError("customer not found")
	}
	if gatewayName == "" {
		gatewayName = c.PaymentGateway()
	}
	g, err := pm.gateways.Resolve(gatewayName, c.Currency())
	if err != nil {
		return nil, nil, errors.NewValidationError("invalid gateway", err.Error())
	}
	return c, g, nil
}

// sync keeps has_payment_method in line with what the gateway stores.
func (pm paymentMethods) sync(ctx context.Context, c *customer.Customer, g paymentgateway.Gateway) error {
	methods, err := g.GetPaymentMethods(ctx, gatewayCustomer(c))
	if err != nil {
		return fmt.Errorf("failed to list payment methods: %w", err)
	}
	c.SetHasPaymentMethod(len(methods) > 0)
	c.SetPaymentGateway(g.Name())
	if err := pm.customerRepo.Update(ctx, c); err != nil {
		return fmt.Errorf("failed to update customer: %w", err)
	}
	return nil
}

func gatewayCustomer(c *customer.Customer) paymentgateway.Customer {
	return paymentgateway.Customer{
		ID:        c.ID(),
		Email:     c.Email(),
		FirstName: c.FirstName(),
		LastName:  c.LastName(),
	}
}

type ListPaymentMethodsQuery struct {
	UserID  uint
	Gateway string
}

type ListPaymentMethodsUseCase struct {
	paymentMethods
}

func NewListPaymentMethodsUseCase(customerRepo customer.Repository, gateways GatewayResolver, logger logger.Interface) *ListPaymentMethodsUseCase {
	return &ListPaymentMethodsUseCase{paymentMethods{customerRepo: customerRepo, gateways: gateways, logger: logger}}
}

func (uc *ListPaymentMethodsUseCase) Execute(ctx context.Context, query ListPaymentMethodsQuery) ([]paymentgateway.PaymentMethod, error) {
	c, g, err := uc.load(ctx, query.UserID, query.Gateway)
	if err != nil {
		return nil, err
	}
	methods, err := g.GetPaymentMethods(ctx, gatewayCustomer(c))
	if err != nil {
		uc.logger.Errorw("failed to list payment methods", "user_id", c.ID(), "gateway", g.Name(), "error", err)
		return nil, fmt.Errorf("failed to list payment methods: %w", err)
	}
	if methods == nil {
		methods = []paymentgateway.PaymentMethod{}
	}
	return methods, nil
}

type CreatePaymentMethodCommand struct {
	UserID  uint
	Gateway string
	Nonce   string
}

type CreatePaymentMethodUseCase struct {
	paymentMethods
}

func NewCreatePaymentMethodUseCase(customerRepo customer.Repository, gateways GatewayResolver, logger logger.Interface) *CreatePaymentMethodUseCase {
	return &CreatePaymentMethodUseCase{paymentMethods{customerRepo: customerRepo, gateways: gateways, logger: logger}}
}

func (uc *CreatePaymentMethodUseCase) Execute(ctx context.Context, cmd CreatePaymentMethodCommand) (*paymentgateway.PaymentMethod, error) {
	if cmd.Nonce == "" {
		return nil, errors.NewValidationError("payment method nonce is required")
	}
	c, g, err := uc.load(ctx, cmd.UserID, cmd.Gateway)
	if err != nil {
		return nil, err
	}
	m, err := g.CreatePaymentMethod(ctx, gatewayCustomer(c), cmd.Nonce)
	if err != nil {
		uc.logger.Warnw("gateway rejected payment method", "user_id", c.ID(), "gateway", g.Name(), "error", err)
		return nil, errors.NewPaymentFailedError(err.Error())
	}

	c.SetHasPaymentMethod(true)
	c.SetPaymentGateway(g.Name())
	if err := uc.customerRepo.Update(ctx, c); err != nil {
		return nil, fmt.Errorf("failed to update customer: %w", err)
	}

	uc.logger.Infow("payment method added", "user_id", c.ID(), "gateway", g.Name(), "type", m.Type)
	return m, nil
}

type DeletePaymentMethodCommand struct {
	UserID  uint
	Gateway string
	Token   string
}

type DeletePaymentMethodUseCase struct {
	paymentMethods
}

func NewDeletePaymentMethodUseCase(customerRepo customer.Repository, gateways GatewayResolver, logger logger.Interface) *DeletePaymentMethodUseCase {
	return &DeletePaymentMethodUseCase{paymentMethods{customerRepo: customerRepo, gateways: gateways, logger: logger}}
}

func (uc *DeletePaymentMethodUseCase) Execute(ctx context.Context, cmd DeletePaymentMethodCommand) error {
	c, g, err := uc.load(ctx, cmd.UserID, cmd.Gateway)
	if err != nil {
		return err
	}
	if err := g.DeletePaymentMethod(ctx, gatewayCustomer(c), cmd.Token); err != nil {
		return errors.NewNotFoundError("payment method not found", err.Error())
	}
	if err := uc.sync(ctx, c, g); err != nil {
		uc.logger.Errorw("failed to sync payment method flag", "user_id", c.ID(), "error", err)
		return err
	}
	uc.logger.Infow("payment method deleted", "user_id", c.ID(), "gateway", g.Name(), "has_payment_method", c.HasPaymentMethod())
	return nil
}

type SetDefaultPaymentMethodCommand struct {
	UserID  uint
	Gateway string
	Token   string
}

type SetDefaultPaymentMethodUseCase struct {
	paymentMethods
}

func NewSetDefaultPaymentMethodUseCase(customerRepo customer.Repository, gateways GatewayResolver, logger logger.Interface) *SetDefaultPaymentMethodUseCase {
	return &SetDefaultPaymentMethodUseCase{paymentMethods{customerRepo: customerRepo, gateways: gateways, logger: logger}}
}

func (uc *SetDefaultPaymentMethodUseCase) Execute(ctx context.Context, cmd SetDefaultPaymentMethodCommand) error {
	c, g, err := uc.load(ctx, cmd.UserID, cmd.Gateway)
	if err != nil {
		return err
	}
	if err := g.SetDefaultPaymentMethod(ctx, gatewayCustomer(c), cmd.Token); err != nil {
		return errors.NewNotFoundError("payment method not found", err.Error())
	}
	return uc.sync(ctx, c, g)
}
