package invoice

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// ConfirmationType selects which message is shown after a purchase.
type ConfirmationType int

const (
	ConfirmationPaid    ConfirmationType = 1
	ConfirmationTrial   ConfirmationType = 2
	ConfirmationFree    ConfirmationType = 3
	ConfirmationPending ConfirmationType = 4
	ConfirmationRefund  ConfirmationType = 5
)

var confirmationTypeNames = map[ConfirmationType]string{
	ConfirmationPaid:    "paid",
	ConfirmationTrial:   "trial",
	ConfirmationFree:    "free",
	ConfirmationPending: "pending",
	ConfirmationRefund:  "refund",
}

func (t ConfirmationType) String() string {
	if name, ok := confirmationTypeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("confirmation(%d)", int(t))
}

// ParseConfirmationType accepts the lowercase name of a type.
func ParseConfirmationType(s string) (ConfirmationType, error) {
	for t, name := range confirmationTypeNames {
		if strings.EqualFold(name, s) {
			return t, nil
		}
	}
	return 0, fmt.Errorf("unknown confirmation type %q", s)
}

// DetermineType picks the confirmation for a finished purchase: pending
// charges first, then paid, then trial, else free.
func DetermineType(pending bool, summary decimal.Decimal, trialDays int) ConfirmationType {
	switch {
	case pending:
		return ConfirmationPending
	case summary.IsPositive():
		return ConfirmationPaid
	case trialDays > 0:
		return ConfirmationTrial
	default:
		return ConfirmationFree
	}
}

// Device is the kind of client the purchase came from.
type Device string

const (
	DeviceAll     Device = "all"
	DeviceDesktop Device = "desktop"
	DeviceMobile  Device = "mobile"
)

// ParseDevice maps a client hint onto a device. Anything unknown is desktop.
func ParseDevice(s string) Device {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "mobile", "tablet", "ios", "android":
		return DeviceMobile
	default:
		return DeviceDesktop
	}
}

// Confirmation is a message template shown after a purchase. Templates with
// no package are the global defaults of their type.
type Confirmation struct {
	ID        uint             `json:"id"`
	Type      ConfirmationType `json:"type"`
	PackageID *uint            `json:"package_id,omitempty"`
	Device    Device           `json:"device"`
	Title     string           `json:"title"`
	Body      string           `json:"body"`
	Button    string           `json:"button"`
	URL       string           `json:"url"`
}

// IsGlobal reports whether c is a default template.
func (c *Confirmation) IsGlobal() bool {
	return c.PackageID == nil
}

// Parse returns a copy of c with every {{token}} replaced.
func (c Confirmation) Parse(replacements map[string]string) Confirmation {
	pairs := make([]string, 0, len(replacements)*2)
	for key, value := range replacements {
		pairs = append(pairs, "{{"+key+"}}", value)
	}
	r := strings.NewReplacer(pairs...)
	c.Title = r.Replace(c.Title)
	c.Body = r.Replace(c.Body)
	c.Button = r.Replace(c.Button)
	c.URL = r.Replace(c.URL)
	return c
}

// Select picks the template for a package and device among candidates of
// one type: the package override for the device, then the package override
// for all devices, then the global default.
func Select(candidates []*Confirmation, packageID uint, device Device) *Confirmation {
	var forAll, global *Confirmation
	for _, c := range candidates {
		if c == nil {
			continue
		}
		if c.IsGlobal() {
			if global == nil {
				global = c
			}
			continue
		}
		if *c.PackageID != packageID {
			continue
		}
		if c.Device == device {
			return c
		}
		if c.Device == DeviceAll && forAll == nil {
			forAll = c
		}
	}
	if forAll != nil {
		return forAll
	}
	return global
}
