package order

import (
	"errors"
	"fmt"
	"time"

	"github.com/ptuchik/billing/internal/domain/shared/ref"
)

var (
	ErrOrderNotFound     = errors.New("order not found")
	ErrOrderNotPending   = errors.New("order is not pending")
	ErrUnsupportedAction = errors.New("unsupported order action")
)

// Action is what the customer was doing when the gateway redirected away.
type Action string

const (
	ActionCheckout         Action = "checkout"
	ActionUpgrade          Action = "upgrade"
	ActionRenew            Action = "renew"
	ActionAddPaymentMethod Action = "add_payment_method"
)

func (a Action) IsValid() bool {
	switch a {
	case ActionCheckout, ActionUpgrade, ActionRenew, ActionAddPaymentMethod:
		return true
	}
	return false
}

type Status int

const (
	StatusPending Status = 0
	StatusDone    Status = 1
	StatusFailed  Status = 2
)

func (s Status) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusDone:
		return "done"
	case StatusFailed:
		return "failed"
	}
	return fmt.Sprintf("status(%d)", int(s))
}

// Reference kinds an order can point at.
const (
	ReferencePlan         = "plan"
	ReferenceSubscription = "subscription"
)

// Order correlates an asynchronous gateway redirect with the purchase the
// customer started.
type Order struct {
	id            uint
	publicID      string
	userID        uint
	action        Action
	host          ref.Ref
	reference     ref.Ref
	params        map[string]interface{}
	status        Status
	transactionID *uint
	message       string
	createdAt     time.Time
	updatedAt     time.Time
}

func NewOrder(publicID string, userID uint, action Action, host, reference ref.Ref, params map[string]interface{}) (*Order, error) {
	if !action.IsValid() {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedAction, action)
	}
	if publicID == "" {
		return nil, fmt.Errorf("order public ID is required")
	}
	if params == nil {
		params = map[string]interface{}{}
	}
	now := time.Now().UTC()
	return &Order{
		publicID:  publicID,
		userID:    userID,
		action:    action,
		host:      host,
		reference: reference,
		params:    params,
		status:    StatusPending,
		createdAt: now,
		updatedAt: now,
	}, nil
}

type OrderParams struct {
	ID            uint
	PublicID      string
	UserID        uint
	Action        Action
	Host          ref.Ref
	Reference     ref.Ref
	Params        map[string]interface{}
	Status        Status
	TransactionID *uint
	Message       string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func ReconstructOrder(p OrderParams) (*Order, error) {
	if p.ID == 0 {
		return nil, fmt.Errorf("order ID cannot be zero")
	}
	return &Order{
		id:            p.ID,
		publicID:      p.PublicID,
		userID:        p.UserID,
		action:        p.Action,
		host:          p.Host,
		reference:     p.Reference,
		params:        p.Params,
		status:        p.Status,
		transactionID: p.TransactionID,
		message:       p.Message,
		createdAt:     p.CreatedAt,
		updatedAt:     p.UpdatedAt,
	}, nil
}

func (o *Order) ID() uint { return o.id }

func (o *Order) SetID(id uint) error {
	if o.id != 0 {
		return fmt.Errorf("order ID is already set")
	}
	if id == 0 {
		return fmt.Errorf("order ID cannot be zero")
	}
	o.id = id
	return nil
}

func (o *Order) PublicID() string               { return o.publicID }
func (o *Order) UserID() uint                   { return o.userID }
func (o *Order) Action() Action                 { return o.action }
func (o *Order) Host() ref.Ref                  { return o.host }
func (o *Order) Reference() ref.Ref             { return o.reference }
func (o *Order) Params() map[string]interface{} { return o.params }
func (o *Order) Status() Status                 { return o.status }
func (o *Order) TransactionID() *uint           { return o.transactionID }
func (o *Order) Message() string                { return o.message }
func (o *Order) CreatedAt() time.Time           { return o.createdAt }
func (o *Order) UpdatedAt() time.Time           { return o.updatedAt }
func (o *Order) IsPending() bool                { return o.status == StatusPending }

// StringParam returns a string param or "".
func (o *Order) StringParam(key string) string {
	if v, ok := o.params[key].(string); ok {
		return v
	}
	return ""
}

// MarkDone closes the order with the transaction it produced, if any.
func (o *Order) MarkDone(transactionID *uint) error {
	if o.status != StatusPending {
		return ErrOrderNotPending
	}
	o.status = StatusDone
	o.transactionID = transactionID
	o.updatedAt = time.Now().UTC()
	return nil
}

func (o *Order) MarkFailed(message string) error {
	if o.status != StatusPending {
		return ErrOrderNotPending
	}
	o.status = StatusFailed
	o.message = message
	o.updatedAt = time.Now().UTC()
	return nil
}
