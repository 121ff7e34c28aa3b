package usecases

import (
	"context"
	"fmt"

	"github.com/ptuchik/billing/internal/application/payment/dto"
	"github.com/ptuchik/billing/internal/domain/customer"
	"github.com/ptuchik/billing/internal/domain/shared/money"
	"github.com/ptuchik/billing/internal/domain/transaction"
	"github.com/ptuchik/billing/internal/shared/errors"
	"github.com/ptuchik/billing/internal/shared/logger"
)

type CompleteTransactionCommand struct {
	TransactionID uint
	Successful    bool
	Message       string
}

// CompleteTransactionUseCase settles a pending balance refill, e.g. once a
// cash payment was received. Pending purchases settle through their order.
type CompleteTransactionUseCase struct {
	transactionRepo transaction.Repository
	customerRepo    customer.Repository
	converter       money.Converter
	txm             TransactionRunner
	logger          logger.Interface
}

func NewCompleteTransactionUseCase(
	transactionRepo transaction.Repository,
	customerRepo customer.Repository,
	converter money.Converter,
	txm TransactionRunner,
	logger logger.Interface,
) *CompleteTransactionUseCase {
	return &CompleteTransactionUseCase{
		transactionRepo: transactionRepo,
		customerRepo:    customerRepo,
		converter:       converter,
		txm:             txm,
		logger:          logger,
	}
}

func (uc *CompleteTransactionUseCase) Execute(ctx context.Context, cmd CompleteTransactionCommand) (*dto.TransactionDTO, error) {
	tx, err := loadTransaction(ctx, uc.transactionRepo, cmd.TransactionID)
	if err != nil {
		return nil, err
	}
	if tx.PurchaseID() != nil {
		return nil, errors.NewValidationError("pending purchases are completed through their order")
	}
	if err := tx.Complete(cmd.Successful, cmd.Message); err != nil {
		return nil, errors.NewValidationError(err.Error())
	}

	err = uc.txm.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := uc.transactionRepo.Update(ctx, tx); err != nil {
			return fmt.Errorf("failed to update transaction: %w", err)
		}
		if !tx.IsSuccessful() {
			return nil
		}
		c, err := uc.customerRepo.GetByID(ctx, tx.UserID())
		if err != nil {
			return fmt.Errorf("failed to get customer: %w", err)
		}
		if c == nil {
			return errors.NewNotFoundError("customer not found")
		}
		return creditRefill(ctx, uc.customerRepo, uc.converter, c, tx)
	})
	if err != nil {
		uc.logger.Errorw("failed to complete transaction", "transaction_id", tx.ID(), "error", err)
		return nil, err
	}

	uc.logger.Infow("pending transaction completed", "transaction_id", tx.ID(), "status", tx.Status().String())
	return dto.ToTransactionDTO(tx), nil
}
