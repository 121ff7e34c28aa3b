package utils

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ptuchik/billing/internal/shared/constants"
	"github.com/ptuchik/billing/internal/shared/errors"
)

func TestErrorResponseWithError(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantType   string
		wantMsg    string
		wantReason string
	}{
		{
			name:       "declined payment keeps the gateway message",
			err:        fmt.Errorf("purchase: %w", errors.NewPaymentFailedError("card declined")),
			wantStatus: http.StatusPaymentRequired,
			wantType:   "payment_failed",
			wantMsg:    "payment_processor: card declined",
		},
		{
			name:       "policy violation carries its reason",
			err:        errors.NewPolicyViolationError("downgrade_not_allowed", "Downgrade is not allowed"),
			wantStatus: http.StatusUnprocessableEntity,
			wantType:   "policy_violation",
			wantMsg:    "Downgrade is not allowed",
			wantReason: "downgrade_not_allowed",
		},
		{
			name:       "not found",
			err:        errors.NewNotFoundError("subscription not found"),
			wantStatus: http.StatusNotFound,
			wantType:   "not_found",
			wantMsg:    "subscription not found",
		},
		{
			name:       "timeout",
			err:        fmt.Errorf("gateway: %w", context.DeadlineExceeded),
			wantStatus: http.StatusGatewayTimeout,
			wantType:   "internal_error",
			wantMsg:    constants.ErrMsgBillingTimeout,
		},
		{
			name:       "unknown error is not leaked",
			err:        fmt.Errorf("dial tcp 10.0.0.5:3306: connection refused"),
			wantStatus: http.StatusInternalServerError,
			wantType:   "internal_error",
			wantMsg:    constants.ErrMsgBillingInterrupted,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)

			ErrorResponseWithError(c, tt.err)

			assert.Equal(t, tt.wantStatus, w.Code)
			var body APIResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.False(t, body.Success)
			require.NotNil(t, body.Error)
			assert.Equal(t, tt.wantType, body.Error.Type)
			assert.Equal(t, tt.wantMsg, body.Error.Message)
			assert.Equal(t, tt.wantReason, body.Error.Reason)
			assert.Empty(t, body.Error.Details)
		})
	}
}
