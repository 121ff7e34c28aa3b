// Package dto provides data transfer objects for payments and orders.
package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/ptuchik/billing/internal/application/payment/paymentgateway"
	"github.com/ptuchik/billing/internal/domain/invoice"
	"github.com/ptuchik/billing/internal/domain/order"
	"github.com/ptuchik/billing/internal/domain/transaction"
)

type TransactionDTO struct {
	ID             uint            `json:"id"`
	Reference      string          `json:"reference,omitempty"`
	UserID         uint            `json:"user_id"`
	PurchaseID     *uint           `json:"purchase_id,omitempty"`
	SubscriptionID *uint           `json:"subscription_id,omitempty"`
	Name           string          `json:"name"`
	Type           string          `json:"type"`
	Price          decimal.Decimal `json:"price"`
	Discount       decimal.Decimal `json:"discount"`
	Summary        decimal.Decimal `json:"summary"`
	Currency       string          `json:"currency"`
	Gateway        string          `json:"gateway"`
	Status         string          `json:"status"`
	Message        string          `json:"message,omitempty"`
	RedirectURL    string          `json:"redirect_url,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
}

func ToTransactionDTO(t *transaction.Transaction) *TransactionDTO {
	if t == nil {
		return nil
	}
	return &TransactionDTO{
		ID:             t.ID(),
		Reference:      t.Reference(),
		UserID:         t.UserID(),
		PurchaseID:     t.PurchaseID(),
		SubscriptionID: t.SubscriptionID(),
		Name:           t.Name(),
		Type:           t.Type().String(),
		Price:          t.Price(),
		Discount:       t.Discount(),
		Summary:        t.Summary(),
		Currency:       t.Currency(),
		Gateway:        t.Gateway(),
		Status:         t.Status().String(),
		Message:        t.Message(),
		CreatedAt:      t.CreatedAt(),
	}
}

func ToTransactionDTOList(txs []*transaction.Transaction) []*TransactionDTO {
	out := make([]*TransactionDTO, 0, len(txs))
	for _, t := range txs {
		out = append(out, ToTransactionDTO(t))
	}
	return out
}

type OrderDTO struct {
	ID            string                 `json:"id"`
	Action        string                 `json:"action"`
	Host          string                 `json:"host"`
	Reference     string                 `json:"reference,omitempty"`
	Params        map[string]interface{} `json:"params,omitempty"`
	Status        string                 `json:"status"`
	TransactionID *uint                  `json:"transaction_id,omitempty"`
	Message       string                 `json:"message,omitempty"`
	CreatedAt     time.Time              `json:"created_at"`
}

func ToOrderDTO(o *order.Order) *OrderDTO {
	if o == nil {
		return nil
	}
	d := &OrderDTO{
		ID:            o.PublicID(),
		Action:        string(o.Action()),
		Host:          o.Host().String(),
		Params:        o.Params(),
		Status:        o.Status().String(),
		TransactionID: o.TransactionID(),
		Message:       o.Message(),
		CreatedAt:     o.CreatedAt(),
	}
	if !o.Reference().IsZero() {
		d.Reference = o.Reference().String()
	}
	return d
}

// CompletedOrderDTO is the outcome of returning from a gateway redirect.
type CompletedOrderDTO struct {
	Order         *OrderDTO                     `json:"order"`
	Invoice       *invoice.Invoice              `json:"invoice,omitempty"`
	PaymentMethod *paymentgateway.PaymentMethod `json:"payment_method,omitempty"`
}
