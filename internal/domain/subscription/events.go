package subscription

import (
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ptuchik/billing/internal/domain/shared/events"
)

const (
	EventStatusChange       = "subscription_status_change"
	EventExpirationReminder = "subscription_expiration_reminder"
)

// StatusChangedEvent is published whenever a sweep or an admin action moves
// a subscription to another status.
type StatusChangedEvent struct {
	events.BaseEvent
	SubscriptionID uint   `json:"subscription_id"`
	PurchaseID     uint   `json:"purchase_id"`
	UserID         uint   `json:"user_id"`
	From           Status `json:"from"`
	To             Status `json:"to"`
}

func NewStatusChangedEvent(s *Subscription, from Status) *StatusChangedEvent {
	return &StatusChangedEvent{
		BaseEvent:      events.NewBaseEvent(EventStatusChange, strconv.FormatUint(uint64(s.ID()), 10)),
		SubscriptionID: s.ID(),
		PurchaseID:     s.PurchaseID(),
		UserID:         s.UserID(),
		From:           from,
		To:             s.Status(),
	}
}

// ExpirationReminderEvent asks listeners to remind the customer of an
// upcoming charge.
type ExpirationReminderEvent struct {
	events.BaseEvent
	SubscriptionID  uint            `json:"subscription_id"`
	PurchaseID      uint            `json:"purchase_id"`
	UserID          uint            `json:"user_id"`
	Alias           string          `json:"alias"`
	Name            string          `json:"name"`
	Summary         decimal.Decimal `json:"summary"`
	Currency        string          `json:"currency"`
	NextBillingDate time.Time       `json:"next_billing_date"`
	AutoRenew       bool            `json:"auto_renew"`
}

func NewExpirationReminderEvent(s *Subscription, summary decimal.Decimal) *ExpirationReminderEvent {
	return &ExpirationReminderEvent{
		BaseEvent:       events.NewBaseEvent(EventExpirationReminder, strconv.FormatUint(uint64(s.ID()), 10)),
		SubscriptionID:  s.ID(),
		PurchaseID:      s.PurchaseID(),
		UserID:          s.UserID(),
		Alias:           s.Alias(),
		Name:            s.Name(),
		Summary:         summary,
		Currency:        s.Currency(),
		NextBillingDate: s.NextBillingDate(),
		AutoRenew:       s.AutoRenew(),
	}
}
