package purchase

import (
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/ptuchik/billing/internal/domain/shared/events"
	"github.com/ptuchik/billing/internal/domain/shared/ref"
)

const (
	EventPurchaseFailed  = "purchase_failed"
	EventPurchaseSuccess = "purchase_success"
)

// Outcome describes one purchase attempt for listeners.
type Outcome struct {
	PurchaseID     uint            `json:"purchase_id"`
	UserID         uint            `json:"user_id"`
	Host           ref.Ref         `json:"host"`
	PackageID      uint            `json:"package_id"`
	PlanAlias      string          `json:"plan_alias"`
	SubscriptionID uint            `json:"subscription_id,omitempty"`
	TransactionID  uint            `json:"transaction_id,omitempty"`
	Summary        decimal.Decimal `json:"summary"`
	Currency       string          `json:"currency"`
	TrialDays      int             `json:"trial_days"`
	// Renewal is set when the charge was made by the renewal sweep.
	Renewal     bool   `json:"renewal"`
	Attempt     int    `json:"attempt,omitempty"`
	LastAttempt bool   `json:"last_attempt,omitempty"`
	Message     string `json:"message,omitempty"`
}

type PurchaseFailedEvent struct {
	events.BaseEvent
	Outcome
}

func NewPurchaseFailedEvent(o Outcome) *PurchaseFailedEvent {
	return &PurchaseFailedEvent{
		BaseEvent: events.NewBaseEvent(EventPurchaseFailed, strconv.FormatUint(uint64(o.PurchaseID), 10)),
		Outcome:   o,
	}
}

type PurchaseSuccessEvent struct {
	events.BaseEvent
	Outcome
}

func NewPurchaseSuccessEvent(o Outcome) *PurchaseSuccessEvent {
	return &PurchaseSuccessEvent{
		BaseEvent: events.NewBaseEvent(EventPurchaseSuccess, strconv.FormatUint(uint64(o.PurchaseID), 10)),
		Outcome:   o,
	}
}
