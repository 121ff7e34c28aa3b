package invoice

import (
	"github.com/shopspring/decimal"

	"github.com/ptuchik/billing/internal/domain/transaction"
)

// Invoice is the read-only receipt returned by a purchase. It is never stored.
type Invoice struct {
	ID            string          `json:"id"`
	TransactionID uint            `json:"transaction_id,omitempty"`
	Price         decimal.Decimal `json:"price"`
	Discount      decimal.Decimal `json:"discount"`
	Summary       decimal.Decimal `json:"summary"`
	Currency      string          `json:"currency"`
	Status        string          `json:"status"`
	// Old marks an invoice for a purchase that charged nothing new, such as a
	// reactivation or a frequency switch.
	Old bool `json:"old"`
	// RedirectURL is set when the gateway needs the customer to finish the
	// payment elsewhere.
	RedirectURL        string        `json:"redirect_url,omitempty"`
	Confirmation       *Confirmation `json:"confirmation,omitempty"`
	AdditionalInvoices []*Invoice    `json:"additional_invoices,omitempty"`
}

// FromTransaction copies the amounts of tx. A nil tx yields an empty invoice.
func FromTransaction(tx *transaction.Transaction, old bool) *Invoice {
	inv := &Invoice{Old: old}
	if tx == nil {
		return inv
	}
	inv.ID = tx.Reference()
	inv.TransactionID = tx.ID()
	inv.Price = tx.Price()
	inv.Discount = tx.Discount()
	inv.Summary = tx.Summary()
	inv.Currency = tx.Currency()
	inv.Status = tx.Status().String()
	return inv
}
