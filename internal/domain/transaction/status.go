package transaction

import "fmt"

type Status int

const (
	StatusFailed   Status = 0
	StatusSuccess  Status = 1
	StatusRefunded Status = 2
	StatusVoided   Status = 3
	StatusPending  Status = 4
)

func (s Status) String() string {
	switch s {
	case StatusFailed:
		return "failed"
	case StatusSuccess:
		return "success"
	case StatusRefunded:
		return "refunded"
	case StatusVoided:
		return "voided"
	case StatusPending:
		return "pending"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// Type tells whether money came in (a purchase or refill) or went out.
type Type int

const (
	TypeIncome  Type = 1
	TypeExpense Type = 2
)

func (t Type) String() string {
	if t == TypeExpense {
		return "expense"
	}
	return "income"
}

// ParseStatus reads a status name as printed by String.
func ParseStatus(s string) (Status, error) {
	for _, st := range []Status{StatusFailed, StatusSuccess, StatusRefunded, StatusVoided, StatusPending} {
		if st.String() == s {
			return st, nil
		}
	}
	return 0, fmt.Errorf("unknown transaction status %q", s)
}
