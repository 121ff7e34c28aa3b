package subscription

// Status is the externally visible state of a subscription. It is derived
// from the stored fields and never persisted.
type Status int

const (
	StatusNone         Status = 0
	StatusActive       Status = 2
	StatusExpired      Status = 3
	StatusCancelled    Status = 5
	StatusTrialActive  Status = 6
	StatusTrialExpired Status = 7
	StatusPending      Status = 8
)

var statusNames = map[Status]string{
	StatusNone:         "none",
	StatusActive:       "active",
	StatusExpired:      "expired",
	StatusCancelled:    "cancelled",
	StatusTrialActive:  "trial_active",
	StatusTrialExpired: "trial_expired",
	StatusPending:      "pending",
}

func (s Status) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return "unknown"
}

// IsLive reports whether the subscription still grants the package.
func (s Status) IsLive() bool {
	return s == StatusActive || s == StatusTrialActive
}
