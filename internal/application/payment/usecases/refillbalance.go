package usecases

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/ptuchik/billing/internal/application/payment/dto"
	"github.com/ptuchik/billing/internal/application/payment/paymentgateway"
	"github.com/ptuchik/billing/internal/domain/customer"
	"github.com/ptuchik/billing/internal/domain/shared/money"
	"github.com/ptuchik/billing/internal/domain/transaction"
	"github.com/ptuchik/billing/internal/shared/db"
	"github.com/ptuchik/billing/internal/shared/errors"
	"github.com/ptuchik/billing/internal/shared/logger"
)

// RefillName is the transaction name of balance top-ups.
const RefillName = "Balance refill"

type RefillBalanceCommand struct {
	UserID       uint
	Amount       decimal.Decimal
	Currency     string
	Gateway      string
	PaymentNonce string
	OrderID      string
	ReturnURL    string
	// Payment settles a refill the gateway already answered, e.g. after a
	// redirect.
	Payment *paymentgateway.Result
}

// RefillBalanceUseCase charges the customer and credits the balance. Cash
// gateways leave the transaction pending until it is confirmed.
type RefillBalanceUseCase struct {
	customerRepo    customer.Repository
	transactionRepo transaction.Repository
	gateways        GatewayResolver
	converter       money.Converter
	txm             TransactionRunner
	logger          logger.Interface
}

func NewRefillBalanceUseCase(
	customerRepo customer.Repository,
	transactionRepo transaction.Repository,
	gateways GatewayResolver,
	converter money.Converter,
	txm TransactionRunner,
	logger logger.Interface,
) *RefillBalanceUseCase {
	return &RefillBalanceUseCase{
		customerRepo:    customerRepo,
		transactionRepo: transactionRepo,
		gateways:        gateways,
		converter:       converter,
		txm:             txm,
		logger:          logger,
	}
}

func (uc *RefillBalanceUseCase) Execute(ctx context.Context, cmd RefillBalanceCommand) (*dto.TransactionDTO, error) {
	amount := money.Round(cmd.Amount)
	if !amount.IsPositive() {
		return nil, errors.NewValidationError("refill amount must be positive")
	}
	c, err := uc.customerRepo.GetByID(ctx, cmd.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to get customer: %w", err)
	}
	if c == nil {
		return nil, errors.NewNotFoundError("customer not found")
	}
	currency := strings.ToUpper(cmd.Currency)
	if currency == "" {
		currency = c.Currency()
	}

	g, err := uc.gateways.Resolve(cmd.Gateway, currency)
	if err != nil {
		return nil, errors.NewValidationError("invalid gateway", err.Error())
	}
	tx, err := transaction.NewTransaction(transaction.Draft{
		UserID:   c.ID(),
		Name:     RefillName,
		Type:     transaction.TypeIncome,
		Price:    amount,
		Currency: currency,
		Gateway:  g.Name(),
	})
	if err != nil {
		return nil, errors.NewValidationError("invalid refill", err.Error())
	}

	payment := cmd.Payment
	if payment == nil {
		payment, err = g.Purchase(ctx, paymentgateway.PurchaseRequest{
			Customer:    paymentgateway.Customer{ID: c.ID(), Email: c.Email(), FirstName: c.FirstName(), LastName: c.LastName()},
			Amount:      amount,
			Currency:    currency,
			Description: RefillName,
			Nonce:       cmd.PaymentNonce,
			OrderID:     cmd.OrderID,
			ReturnURL:   cmd.ReturnURL,
		})
		if err != nil {
			payment = &paymentgateway.Result{Message: err.Error()}
		}
	}

	outcome := toOutcome(payment)
	if g.IsCash() && outcome.Successful {
		outcome.Pending = true
	}
	tx.Record(outcome, amount)

	if !tx.IsSuccessful() {
		if err := uc.transactionRepo.Create(db.WithoutTransaction(ctx), tx); err != nil {
			uc.logger.Errorw("failed to record refill", "user_id", c.ID(), "error", err)
			return nil, fmt.Errorf("failed to create transaction: %w", err)
		}
		if tx.IsFailed() {
			uc.logger.Warnw("balance refill failed", "user_id", c.ID(), "gateway", g.Name(), "message", payment.Message)
			return nil, errors.NewPaymentFailedError(payment.Message)
		}
		uc.logger.Infow("balance refill pending", "user_id", c.ID(), "transaction_id", tx.ID(), "gateway", g.Name())
		d := dto.ToTransactionDTO(tx)
		d.RedirectURL = payment.RedirectURL
		return d, nil
	}

	err = uc.txm.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := uc.transactionRepo.Create(ctx, tx); err != nil {
			return fmt.Errorf("failed to create transaction: %w", err)
		}
		return creditRefill(ctx, uc.customerRepo, uc.converter, c, tx)
	})
	if err != nil {
		uc.logger.Errorw("failed to credit refill", "user_id", c.ID(), "reference", tx.Reference(), "error", err)
		return nil, err
	}

	uc.logger.Infow("balance refilled", "user_id", c.ID(), "amount", amount, "currency", currency, "balance", c.Balance().Amount())
	return dto.ToTransactionDTO(tx), nil
}

// creditRefill adds the transaction summary, converted to the customer's
// currency, to the balance.
func creditRefill(ctx context.Context, repo customer.Repository, conv money.Converter, c *customer.Customer, tx *transaction.Transaction) error {
	amount := tx.Summary()
	if !strings.EqualFold(tx.Currency(), c.Currency()) {
		if conv == nil {
			return fmt.Errorf("%w: no converter for %s", money.ErrMissingAmount, tx.Currency())
		}
		converted, err := conv.Convert(amount, tx.Currency(), c.Currency())
		if err != nil {
			return fmt.Errorf("failed to convert refill: %w", err)
		}
		amount = converted
	}
	if err := c.Credit(amount); err != nil {
		return fmt.Errorf("failed to credit balance: %w", err)
	}
	if err := repo.Update(ctx, c); err != nil {
		return fmt.Errorf("failed to update customer: %w", err)
	}
	return nil
}

func toOutcome(r *paymentgateway.Result) transaction.Outcome {
	return transaction.Outcome{
		Reference:  r.Reference,
		Message:    r.Message,
		Data:       r.RawData,
		Pending:    r.Pending,
		Successful: r.Successful,
	}
}
