package usecases

import (
	"context"
	"fmt"

	"github.com/ptuchik/billing/internal/application/payment/dto"
	"github.com/ptuchik/billing/internal/domain/transaction"
	"github.com/ptuchik/billing/internal/shared/errors"
	"github.com/ptuchik/billing/internal/shared/logger"
)

type ListTransactionsQuery struct {
	// UserID zero lists every user's transactions.
	UserID     uint
	PurchaseID uint
	Status     *string
	Page       int
	PageSize   int
}

type ListTransactionsResult struct {
	Transactions []*dto.TransactionDTO
	TotalCount   int64
	Page         int
	PageSize     int
}

type ListTransactionsUseCase struct {
	transactionRepo transaction.Repository
	logger          logger.Interface
}

func NewListTransactionsUseCase(transactionRepo transaction.Repository, logger logger.Interface) *ListTransactionsUseCase {
	return &ListTransactionsUseCase{transactionRepo: transactionRepo, logger: logger}
}

func (uc *ListTransactionsUseCase) Execute(ctx context.Context, query ListTransactionsQuery) (*ListTransactionsResult, error) {
	if query.PageSize <= 0 {
		query.PageSize = 20
	}
	if query.PageSize > 100 {
		query.PageSize = 100
	}
	if query.Page < 1 {
		query.Page = 1
	}

	filter := transaction.ListFilter{
		UserID:     query.UserID,
		PurchaseID: query.PurchaseID,
		Page:       query.Page,
		PageSize:   query.PageSize,
	}
	if query.Status != nil {
		status, err := transaction.ParseStatus(*query.Status)
		if err != nil {
			return nil, errors.NewValidationError("invalid status")
		}
		filter.Status = &status
	}

	txs, total, err := uc.transactionRepo.List(ctx, filter)
	if err != nil {
		uc.logger.Errorw("failed to list transactions", "user_id", query.UserID, "error", err)
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}

	return &ListTransactionsResult{
		Transactions: dto.ToTransactionDTOList(txs),
		TotalCount:   total,
		Page:         query.Page,
		PageSize:     query.PageSize,
	}, nil
}
