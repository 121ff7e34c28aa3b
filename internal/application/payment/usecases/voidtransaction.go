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

type VoidTransactionCommand struct {
	TransactionID uint
}

// VoidTransactionUseCase cancels a charge before the gateway settles it.
type VoidTransactionUseCase struct {
	transactionRepo transaction.Repository
	gateways        GatewayResolver
	logger          logger.Interface
}

func NewVoidTransactionUseCase(
	transactionRepo transaction.Repository,
	gateways GatewayResolver,
	logger logger.Interface,
) *VoidTransactionUseCase {
	return &VoidTransactionUseCase{
		transactionRepo: transactionRepo,
		gateways:        gateways,
		logger:          logger,
	}
}

func (uc *VoidTransactionUseCase) Execute(ctx context.Context, cmd VoidTransactionCommand) (*dto.TransactionDTO, error) {
	tx, err := loadTransaction(ctx, uc.transactionRepo, cmd.TransactionID)
	if err != nil {
		return nil, err
	}
	if !tx.IsSuccessful() && !tx.IsPending() {
		return nil, errors.NewValidationError("only successful or pending transactions can be voided", "status: "+tx.Status().String())
	}

	if err := reverse(ctx, uc.gateways, tx, func(g paymentgateway.Gateway) (*paymentgateway.Result, error) {
		return g.Void(ctx, tx.Reference())
	}); err != nil {
		uc.logger.Errorw("failed to void transaction", "transaction_id", tx.ID(), "error", err)
		return nil, err
	}

	if err := tx.Void(); err != nil {
		return nil, errors.NewValidationError(err.Error())
	}
	if err := uc.transactionRepo.Update(ctx, tx); err != nil {
		uc.logger.Errorw("failed to update voided transaction", "transaction_id", tx.ID(), "error", err)
		return nil, fmt.Errorf("failed to update transaction: %w", err)
	}

	uc.logger.Infow("transaction voided", "transaction_id", tx.ID(), "gateway", tx.Gateway())
	return dto.ToTransactionDTO(tx), nil
}
