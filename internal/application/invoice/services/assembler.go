package services

import (
	"context"
	"fmt"
	"strconv"

	"github.com/ptuchik/billing/internal/domain/customer"
	"github.com/ptuchik/billing/internal/domain/invoice"
	"github.com/ptuchik/billing/internal/shared/logger"
	"github.com/ptuchik/billing/internal/shared/services/markdown"
)

// Subject is what a confirmation message talks about.
type Subject struct {
	Invoice     *invoice.Invoice
	Pending     bool
	TrialDays   int
	PackageID   uint
	PackageName string
	Host        string
	Customer    *customer.Customer
	// SubscriptionName is empty for one-time purchases.
	SubscriptionName string
	Device           invoice.Device
}

// Assembler attaches the confirmation message to invoices. Nothing is stored.
type Assembler struct {
	confirmations invoice.ConfirmationRepository
	renderer      markdown.Renderer
	logger        logger.Interface
}

func NewAssembler(confirmations invoice.ConfirmationRepository, renderer markdown.Renderer, logger logger.Interface) *Assembler {
	return &Assembler{
		confirmations: confirmations,
		renderer:      renderer,
		logger:        logger,
	}
}

// Attach selects, fills and renders the confirmation for s.Invoice. An
// invoice with no matching template is left without a confirmation.
func (a *Assembler) Attach(ctx context.Context, s Subject) error {
	if s.Invoice == nil {
		return fmt.Errorf("invoice is required")
	}

	typ := invoice.DetermineType(s.Pending, s.Invoice.Summary, s.TrialDays)
	candidates, err := a.confirmations.ListByType(ctx, typ, s.PackageID)
	if err != nil {
		a.logger.Errorw("failed to list confirmations", "type", typ.String(), "package_id", s.PackageID, "error", err)
		return fmt.Errorf("failed to list confirmations: %w", err)
	}

	device := s.Device
	if device == "" {
		device = invoice.DeviceAll
	}
	selected := invoice.Select(candidates, s.PackageID, device)
	if selected == nil {
		a.logger.Warnw("no confirmation template found", "type", typ.String(), "package_id", s.PackageID)
		return nil
	}

	parsed := selected.Parse(a.replacements(s))
	body, err := a.renderer.ToHTMLSanitized(parsed.Body)
	if err != nil {
		return fmt.Errorf("failed to render confirmation body: %w", err)
	}
	parsed.Body = body
	s.Invoice.Confirmation = &parsed
	return nil
}

func (a *Assembler) replacements(s Subject) map[string]string {
	r := map[string]string{
		"host":         s.Host,
		"amount":       FormatAmount(s.Invoice.Summary, s.Invoice.Currency),
		"package":      s.PackageName,
		"reference":    s.Invoice.ID,
		"days":         strconv.Itoa(s.TrialDays),
		"subscription": s.SubscriptionName,
	}
	if c := s.Customer; c != nil {
		r["firstname"] = c.FirstName()
		r["lastname"] = c.LastName()
		r["email"] = c.Email()
	}
	return r
}
