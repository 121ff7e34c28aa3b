package email

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ptuchik/billing/internal/application/purchase/testutil"
	"github.com/ptuchik/billing/internal/domain/customer"
	"github.com/ptuchik/billing/internal/domain/purchase"
	"github.com/ptuchik/billing/internal/domain/shared/events"
	"github.com/ptuchik/billing/internal/domain/subscription"
	"github.com/ptuchik/billing/internal/shared/biztime"
	"github.com/ptuchik/billing/internal/shared/config"
	"github.com/ptuchik/billing/internal/shared/logger"
)

type recordingSender struct {
	mu   sync.Mutex
	sent []Message
	err  error
}

func (s *recordingSender) Send(msg Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.sent = append(s.sent, msg)
	return nil
}

func (s *recordingSender) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sent)
}

func newTestMailer(t *testing.T) (*BillingMailer, *recordingSender) {
	t.Helper()
	biztime.MustInit("UTC")

	repo := testutil.NewMockCustomerRepository()
	c, err := customer.NewCustomer("jane@example.com", "Jane", "Doe", "USD")
	require.NoError(t, err)
	require.NoError(t, repo.Create(context.Background(), c))

	sender := &recordingSender{}
	return NewBillingMailer(repo, sender, logger.NewNopLogger()), sender
}

func TestBillingMailer_Handle(t *testing.T) {
	next := time.Date(2026, 7, 1, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name        string
		event       events.DomainEvent
		wantSent    bool
		wantSubject string
		wantBody    string
	}{
		{
			name: "paid purchase",
			event: purchase.NewPurchaseSuccessEvent(purchase.Outcome{
				UserID: 1, PlanAlias: "pro-monthly", Summary: decimal.RequireFromString("1234.5"), Currency: "usd",
			}),
			wantSent:    true,
			wantSubject: "Receipt for pro-monthly",
			wantBody:    "USD 1,234.50",
		},
		{
			name: "renewal",
			event: purchase.NewPurchaseSuccessEvent(purchase.Outcome{
				UserID: 1, PlanAlias: "pro-monthly", Summary: decimal.NewFromInt(10), Currency: "USD", Renewal: true,
			}),
			wantSent:    true,
			wantSubject: "pro-monthly renewed",
		},
		{
			name: "free purchase",
			event: purchase.NewPurchaseSuccessEvent(purchase.Outcome{
				UserID: 1, PlanAlias: "starter", Currency: "USD",
			}),
			wantSent:    true,
			wantSubject: "starter is active",
		},
		{
			name: "failed retryable renewal",
			event: purchase.NewPurchaseFailedEvent(purchase.Outcome{
				UserID: 1, PlanAlias: "pro-monthly", Summary: decimal.NewFromInt(10), Currency: "USD",
				Renewal: true, Attempt: 1, Message: "card declined",
			}),
			wantSent:    true,
			wantSubject: "Payment for pro-monthly failed",
			wantBody:    "We will try again soon",
		},
		{
			name: "expired",
			event: &subscription.StatusChangedEvent{
				BaseEvent: events.NewBaseEvent(subscription.EventStatusChange, "5"),
				UserID:    1,
				From:      subscription.StatusActive,
				To:        subscription.StatusExpired,
			},
			wantSent:    true,
			wantSubject: "Your subscription has expired",
		},
		{
			name: "activation is not mailed",
			event: &subscription.StatusChangedEvent{
				BaseEvent: events.NewBaseEvent(subscription.EventStatusChange, "5"),
				UserID:    1,
				From:      subscription.StatusTrialActive,
				To:        subscription.StatusActive,
			},
		},
		{
			name: "reminder with auto renew",
			event: &subscription.ExpirationReminderEvent{
				BaseEvent:       events.NewBaseEvent(subscription.EventExpirationReminder, "5"),
				UserID:          1,
				Name:            "Pro",
				Summary:         decimal.NewFromInt(10),
				Currency:        "USD",
				NextBillingDate: next,
				AutoRenew:       true,
			},
			wantSent:    true,
			wantSubject: "Pro renews on July 1, 2026",
			wantBody:    "USD 10.00",
		},
		{
			name: "reminder without payment method",
			event: &subscription.ExpirationReminderEvent{
				BaseEvent:       events.NewBaseEvent(subscription.EventExpirationReminder, "5"),
				UserID:          1,
				Alias:           "pro-monthly",
				NextBillingDate: next,
			},
			wantSent:    true,
			wantSubject: "pro-monthly expires on July 1, 2026",
			wantBody:    "Add a payment method",
		},
		{
			name: "unknown customer",
			event: purchase.NewPurchaseSuccessEvent(purchase.Outcome{
				UserID: 99, PlanAlias: "pro-monthly", Currency: "USD",
			}),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mailer, sender := newTestMailer(t)

			require.NoError(t, mailer.Handle(tt.event))

			if !tt.wantSent {
				assert.Empty(t, sender.sent)
				return
			}
			require.Len(t, sender.sent, 1)
			msg := sender.sent[0]
			assert.Equal(t, "jane@example.com", msg.To)
			assert.Equal(t, tt.wantSubject, msg.Subject)
			assert.Contains(t, msg.PlainBody, "Hi Jane,")
			assert.Contains(t, msg.PlainBody, tt.wantBody)
			assert.Contains(t, msg.HTMLBody, "<p>")
		})
	}
}

func TestBillingMailer_SendError(t *testing.T) {
	mailer, sender := newTestMailer(t)
	sender.err = errors.New("smtp down")

	err := mailer.Handle(purchase.NewPurchaseSuccessEvent(purchase.Outcome{UserID: 1, PlanAlias: "pro", Currency: "USD"}))
	assert.Error(t, err)
}

func TestBillingMailer_Register(t *testing.T) {
	mailer, sender := newTestMailer(t)

	dispatcher := events.NewInMemoryEventDispatcher(10, logger.NewNopLogger())
	require.NoError(t, mailer.Register(dispatcher))
	require.NoError(t, dispatcher.Start())
	t.Cleanup(func() { _ = dispatcher.Stop() })

	assert.True(t, mailer.CanHandle(purchase.EventPurchaseFailed))
	assert.False(t, mailer.CanHandle("order_completed"))

	require.NoError(t, dispatcher.Publish(purchase.NewPurchaseFailedEvent(purchase.Outcome{
		UserID: 1, PlanAlias: "pro", Summary: decimal.NewFromInt(5), Currency: "USD",
	})))
	assert.Eventually(t, func() bool { return sender.count() == 1 }, time.Second, 10*time.Millisecond)
}

func TestNewSender_Disabled(t *testing.T) {
	s := NewSender(configDisabled(), logger.NewNopLogger())
	assert.NoError(t, s.Send(Message{To: "a@example.com", Subject: "x"}))
}

func configDisabled() config.EmailConfig {
	return config.EmailConfig{Enabled: false}
}
