package middleware

import (
	stderrors "errors"
	"net"
	"net/http"
	"runtime/debug"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/ptuchik/billing/internal/shared/constants"
	"github.com/ptuchik/billing/internal/shared/logger"
	"github.com/ptuchik/billing/internal/shared/utils"
)

var redactedHeaders = map[string]bool{
	constants.HeaderAuthorization: true,
	"Cookie":                      true,
}

// Recovery turns a panic into a 500. A panic may interrupt a purchase after
// the gateway was charged, so the client is told to check its transactions
// instead of blindly retrying.
func Recovery(log logger.Interface) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		args := []any{
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"error", recovered,
		}
		if userID, ok := c.Get(constants.ContextKeyUserID); ok {
			args = append(args, "user_id", userID)
		}
		if requestID := c.GetHeader(constants.HeaderXRequestID); requestID != "" {
			args = append(args, "request_id", requestID)
		}

		if clientGone(recovered) {
			log.Warnw("client disconnected during billing request", args...)
			c.Abort()
			return
		}

		args = append(args, "headers", safeHeaders(c.Request.Header), "stack", string(debug.Stack()))
		log.Errorw("panic in billing request", args...)

		utils.ErrorResponse(c, http.StatusInternalServerError, constants.ErrMsgBillingInterrupted)
	})
}

func safeHeaders(h http.Header) map[string]string {
	out := make(map[string]string, len(h))
	for k, v := range h {
		if redactedHeaders[k] {
			out[k] = "*"
			continue
		}
		out[k] = strings.Join(v, ", ")
	}
	return out
}

func clientGone(recovered interface{}) bool {
	err, ok := recovered.(error)
	if !ok {
		return false
	}
	var opErr *net.OpError
	if !stderrors.As(err, &opErr) || opErr.Err == nil {
		return false
	}
	msg := strings.ToLower(opErr.Err.Error())
	return strings.Contains(msg, "broken pipe") || strings.Contains(msg, "connection reset by peer")
}
