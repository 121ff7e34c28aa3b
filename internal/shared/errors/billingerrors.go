package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
)

// Billing-specific error types
const (
	// ErrorTypePolicyViolation is raised before any gateway call or balance
	// mutation: disallowed downgrade, disallowed switch to lifetime, invalid or
	// exhausted coupon.
	ErrorTypePolicyViolation ErrorType = "policy_violation"
	// ErrorTypePaymentFailed wraps a declined or failed gateway call. A failed
	// transaction has already been recorded when it is returned.
	ErrorTypePaymentFailed ErrorType = "payment_failed"
	ErrorTypeTokenExpired  ErrorType = "token_expired"
	ErrorTypeTokenInvalid  ErrorType = "token_invalid"
)

// PolicyViolationError carries a machine-readable reason next to the message.
type PolicyViolationError struct {
	*AppError
	Reason string
}

func (e *PolicyViolationError) Error() string {
	return e.AppError.Error()
}

func (e *PolicyViolationError) Unwrap() error {
	return e.AppError
}

// NewPolicyViolationError creates a billing policy violation error.
func NewPolicyViolationError(reason, message string) *PolicyViolationError {
	return &PolicyViolationError{
		AppError: &AppError{
			Type:    ErrorTypePolicyViolation,
			Message: message,
			Code:    http.StatusUnprocessableEntity,
			Details: reason,
		},
		Reason: reason,
	}
}

// NewPaymentFailedError creates the error returned after a FAILED transaction.
// The gateway message is surfaced as "payment_processor: <message>".
func NewPaymentFailedError(gatewayMessage string) *AppError {
	return &AppError{
		Type:    ErrorTypePaymentFailed,
		Message: fmt.Sprintf("payment_processor: %s", gatewayMessage),
		Code:    http.StatusPaymentRequired,
	}
}

// NewTokenExpiredError creates an error for an expired bearer token.
func NewTokenExpiredError() *AppError {
	return &AppError{
		Type:    ErrorTypeTokenExpired,
		Message: "Token has expired",
		Code:    http.StatusUnauthorized,
	}
}

// NewTokenInvalidError creates an error for a malformed or forged bearer token.
func NewTokenInvalidError(details ...string) *AppError {
	return newAppError(ErrorTypeTokenInvalid, http.StatusUnauthorized, "Invalid token", details)
}

// IsPolicyViolation reports whether err is a billing policy violation.
func IsPolicyViolation(err error) bool {
	var pv *PolicyViolationError
	if stderrors.As(err, &pv) {
		return true
	}
	return hasType(err, ErrorTypePolicyViolation)
}

// PolicyReason returns the reason of a policy violation, or "".
func PolicyReason(err error) string {
	var pv *PolicyViolationError
	if stderrors.As(err, &pv) {
		return pv.Reason
	}
	return ""
}

// IsPaymentFailed reports whether err is a recorded gateway failure.
func IsPaymentFailed(err error) bool {
	return hasType(err, ErrorTypePaymentFailed)
}
