package email

import (
	"context"
	"fmt"
	"html"
	"strings"
	"time"

	invoiceservices "github.com/ptuchik/billing/internal/application/invoice/services"
	"github.com/ptuchik/billing/internal/domain/customer"
	"github.com/ptuchik/billing/internal/domain/purchase"
	"github.com/ptuchik/billing/internal/domain/shared/events"
	"github.com/ptuchik/billing/internal/domain/subscription"
	"github.com/ptuchik/billing/internal/shared/biztime"
	"github.com/ptuchik/billing/internal/shared/logger"
)

const handleTimeout = 30 * time.Second

// BillingMailer mails customers about purchases, failed renewals, status
// changes and upcoming charges. It is an event handler on the dispatcher.
type BillingMailer struct {
	customers customer.Repository
	sender    Sender
	logger    logger.Interface
}

func NewBillingMailer(customers customer.Repository, sender Sender, logger logger.Interface) *BillingMailer {
	return &BillingMailer{customers: customers, sender: sender, logger: logger}
}

// EventTypes lists the events the mailer subscribes to.
func (m *BillingMailer) EventTypes() []string {
	return []string{
		purchase.EventPurchaseSuccess,
		purchase.EventPurchaseFailed,
		subscription.EventStatusChange,
		subscription.EventExpirationReminder,
	}
}

// Register subscribes the mailer to every event it handles.
func (m *BillingMailer) Register(subscriber events.EventSubscriber) error {
	for _, t := range m.EventTypes() {
		if err := subscriber.Subscribe(t, m); err != nil {
			return fmt.Errorf("failed to subscribe mailer to %s: %w", t, err)
		}
	}
	return nil
}

func (m *BillingMailer) CanHandle(eventType string) bool {
	for _, t := range m.EventTypes() {
		if t == eventType {
			return true
		}
	}
	return false
}

func (m *BillingMailer) Handle(event events.DomainEvent) error {
	ctx, cancel := context.WithTimeout(context.Background(), handleTimeout)
	defer cancel()

	var (
		userID uint
		build  func(c *customer.Customer) (Message, bool)
	)

	switch e := event.(type) {
	case *purchase.PurchaseSuccessEvent:
		userID, build = e.UserID, func(c *customer.Customer) (Message, bool) { return purchaseSuccessMessage(c, e.Outcome) }
	case *purchase.PurchaseFailedEvent:
		userID, build = e.UserID, func(c *customer.Customer) (Message, bool) { return purchaseFailedMessage(c, e.Outcome) }
	case *subscription.StatusChangedEvent:
		userID, build = e.UserID, func(c *customer.Customer) (Message, bool) { return statusChangedMessage(c, e) }
	case *subscription.ExpirationReminderEvent:
		userID, build = e.UserID, func(c *customer.Customer) (Message, bool) { return reminderMessage(c, e) }
	default:
		return nil
	}

	c, err := m.customers.GetByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to load customer %d: %w", userID, err)
	}
	if c == nil || c.Email() == "" {
		m.logger.Warnw("no email address for event", "event_type", event.GetEventType(), "user_id", userID)
		return nil
	}

	msg, ok := build(c)
	if !ok {
		return nil
	}
	if err := m.sender.Send(msg); err != nil {
		m.logger.Errorw("failed to send billing email",
			"event_type", event.GetEventType(),
			"user_id", userID,
			"error", err)
		return err
	}

	m.logger.Infow("billing email sent", "event_type", event.GetEventType(), "user_id", userID)
	return nil
}

func greeting(c *customer.Customer) string {
	if c.FirstName() != "" {
		return "Hi " + c.FirstName() + ","
	}
	return "Hello,"
}

func newMessage(c *customer.Customer, subject string, lines ...string) Message {
	plain := greeting(c) + "\n\n" + strings.Join(lines, "\n\n") + "\n"

	var b strings.Builder
	b.WriteString("<html><body><p>")
	b.WriteString(html.EscapeString(greeting(c)))
	b.WriteString("</p>")
	for _, l := range lines {
		b.WriteString("<p>")
		b.WriteString(html.EscapeString(l))
		b.WriteString("</p>")
	}
	b.WriteString("</body></html>")

	return Message{To: c.Email(), Subject: subject, PlainBody: plain, HTMLBody: b.String()}
}

func purchaseSuccessMessage(c *customer.Customer, o purchase.Outcome) (Message, bool) {
	if !o.Summary.IsPositive() {
		return newMessage(c, fmt.Sprintf("%s is active", o.PlanAlias),
			fmt.Sprintf("Your %s plan is now active.", o.PlanAlias)), true
	}
	subject := fmt.Sprintf("Receipt for %s", o.PlanAlias)
	if o.Renewal {
		subject = fmt.Sprintf("%s renewed", o.PlanAlias)
	}
	return newMessage(c, subject,
		fmt.Sprintf("We received your payment of %s for %s.", invoiceservices.FormatAmount(o.Summary, o.Currency), o.PlanAlias)), true
}

func purchaseFailedMessage(c *customer.Customer, o purchase.Outcome) (Message, bool) {
	lines := []string{
		fmt.Sprintf("We could not charge %s for %s.", invoiceservices.FormatAmount(o.Summary, o.Currency), o.PlanAlias),
	}
	if o.Message != "" {
		lines = append(lines, "Reason: "+o.Message)
	}
	if o.Renewal && !o.LastAttempt {
		lines = append(lines, "We will try again soon. Please check your payment method.")
	}
	return newMessage(c, fmt.Sprintf("Payment for %s failed", o.PlanAlias), lines...), true
}

func statusChangedMessage(c *customer.Customer, e *subscription.StatusChangedEvent) (Message, bool) {
	switch e.To {
	case subscription.StatusExpired, subscription.StatusTrialExpired:
		return newMessage(c, "Your subscription has expired",
			"Your subscription has expired. Renew it any time to restore access."), true
	case subscription.StatusCancelled:
		return newMessage(c, "Your subscription was cancelled",
			"Your subscription was cancelled. Any unused balance was returned to your account."), true
	default:
		return Message{}, false
	}
}

func reminderMessage(c *customer.Customer, e *subscription.ExpirationReminderEvent) (Message, bool) {
	date := biztime.FormatInBizTimezone(e.NextBillingDate, "January 2, 2006")
	name := e.Name
	if name == "" {
		name = e.Alias
	}
	if e.AutoRenew {
		return newMessage(c, fmt.Sprintf("%s renews on %s", name, date),
			fmt.Sprintf("Your %s subscription renews on %s for %s.", name, date, invoiceservices.FormatAmount(e.Summary, e.Currency))), true
	}
	return newMessage(c, fmt.Sprintf("%s expires on %s", name, date),
		fmt.Sprintf("Your %s subscription expires on %s. Add a payment method to keep it running.", name, date)), true
}

var _ events.EventHandler = (*BillingMailer)(nil)
