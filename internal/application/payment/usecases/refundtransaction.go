package usecases

import (
	"context"
	"fmt"

	"github.com/ptuchik/billing/internal/application/payment/dto"
	"github.com/ptuchik/billing/internal/application/payment/paymentgateway"
	"github.com/ptuchik/billing/internal/domain/transaction"
	"github.com/ptuchik/billing/internal/shared/errors"
	"github.com/ptuchik/billing/internal/shared/logger"
)

type RefundTransactionCommand struct {
	TransactionID uint
}

// RefundTransactionUseCase returns a settled charge to the payer.
type RefundTransactionUseCase struct {
	transactionRepo transaction.Repository
	gateways        GatewayResolver
	logger          logger.Interface
}

func NewRefundTransactionUseCase(
	transactionRepo transaction.Repository,
	gateways GatewayResolver,
	logger logger.Interface,
) *RefundTransactionUseCase {
	return &RefundTransactionUseCase{
		transactionRepo: transactionRepo,
		gateways:        gateways,
		logger:          logger,
	}
}

func (uc *RefundTransactionUseCase) Execute(ctx context.Context, cmd RefundTransactionCommand) (*dto.TransactionDTO, error) {
	tx, err := loadTransaction(ctx, uc.transactionRepo, cmd.TransactionID)
	if err != nil {
		return nil, err
	}
	if !tx.IsSuccessful() {
		return nil, errors.NewValidationError("only successful transactions can be refunded", "status: "+tx.Status().String())
	}

	if err := reverse(ctx, uc.gateways, tx, func(g paymentgateway.Gateway) (*paymentgateway.Result, error) {
		return g.Refund(ctx, tx.Reference())
	}); err != nil {
		uc.logger.Errorw("failed to refund transaction", "transaction_id", tx.ID(), "error", err)
		return nil, err
	}

	if err := tx.Refund(); err != nil {
		return nil, errors.NewValidationError(err.Error())
	}
	if err := uc.transactionRepo.Update(ctx, tx); err != nil {
		uc.logger.Errorw("failed to update refunded transaction", "transaction_id", tx.ID(), "error", err)
		return nil, fmt.Errorf("failed to update transaction: %w", err)
	}

	uc.logger.Infow("transaction refunded", "transaction_id", tx.ID(), "gateway", tx.Gateway(), "summary", tx.Summary())
	return dto.ToTransactionDTO(tx), nil
}

func loadTransaction(ctx context.Context, repo transaction.Repository, id uint) (*transaction.Transaction, error) {
	tx, err := repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get transaction: %w", err)
	}
	if tx == nil {
		return nil, errors.NewNotFoundError("transaction not found")
	}
	return tx, nil
}

// reverse asks the gateway that took the charge to undo it.
func reverse(ctx context.Context, gateways GatewayResolver, tx *transaction.Transaction, call func(g paymentgateway.Gateway) (*paymentgateway.Result, error)) error {
	if tx.Reference() == "" {
		return errors.NewValidationError("transaction was not charged through a gateway")
	}
	g, err := gateways.Resolve(tx.Gateway(), tx.Currency())
	if err != nil {
		return errors.NewValidationError("invalid gateway", err.Error())
	}
	res, err := call(g)
	if err != nil {
		return fmt.Errorf("gateway %s: %w", g.Name(), err)
	}
	if !res.Successful {
		return errors.NewPaymentFailedError(res.Message)
	}
	return nil
}
