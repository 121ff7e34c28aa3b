package errors

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppErrorConstructors(t *testing.T) {
	tests := []struct {
		name     string
		err      *AppError
		wantType ErrorType
		wantCode int
	}{
		{"validation", NewValidationError("bad"), ErrorTypeValidation, http.StatusBadRequest},
		{"not found", NewNotFoundError("missing", "plan"), ErrorTypeNotFound, http.StatusNotFound},
		{"conflict", NewConflictError("dup"), ErrorTypeConflict, http.StatusConflict},
		{"internal", NewInternalError("boom"), ErrorTypeInternal, http.StatusInternalServerError},
		{"payment failed", NewPaymentFailedError("card declined"), ErrorTypePaymentFailed, http.StatusPaymentRequired},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantType, tt.err.Type)
			assert.Equal(t, tt.wantCode, tt.err.Code)
		})
	}
}

func TestPolicyViolation_Wrapped(t *testing.T) {
	err := fmt.Errorf("failed to purchase plan: %w", NewPolicyViolationError("downgrade_not_allowed", "Downgrade is not allowed"))

	assert.True(t, IsPolicyViolation(err))
	assert.Equal(t, "downgrade_not_allowed", PolicyReason(err))

	appErr := GetAppError(err)
	if assert.NotNil(t, appErr) {
		assert.Equal(t, http.StatusUnprocessableEntity, appErr.Code)
	}
	assert.False(t, IsPaymentFailed(err))
}

func TestPaymentFailedMessage(t *testing.T) {
	err := NewPaymentFailedError("insufficient funds")
	assert.Equal(t, "payment_processor: insufficient funds", err.Message)
	assert.True(t, IsPaymentFailed(fmt.Errorf("wrap: %w", err)))
}

func TestIsDuplicateError(t *testing.T) {
	assert.True(t, IsDuplicateError(fmt.Errorf("Error 1062: Duplicate entry 'x' for key 'uk'")))
	assert.True(t, IsDuplicateError(fmt.Errorf("UNIQUE constraint failed: subscriptions.active_purchase_key")))
	assert.False(t, IsDuplicateError(nil))
	assert.False(t, IsDuplicateError(fmt.Errorf("connection refused")))
}
