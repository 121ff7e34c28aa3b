package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/ptuchik/billing/internal/infrastructure/auth"
	"github.com/ptuchik/billing/internal/infrastructure/ratelimit"
	"github.com/ptuchik/billing/internal/shared/constants"
	"github.com/ptuchik/billing/internal/shared/logger"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubEnforcer struct {
	allowed map[string]bool
	err     error
}

func (s *stubEnforcer) Enforce(subject, resource, action string) (bool, error) {
	if s.err != nil {
		return false, s.err
	}
	return s.allowed[subject+"|"+resource], nil
}

type stubLimiter struct {
	allow bool
	err   error
	keys  []string
}

func (s *stubLimiter) Allow(ctx context.Context, key string, limits ratelimit.Limits) (bool, error) {
	s.keys = append(s.keys, key)
	return s.allow, s.err
}

func newEngine(handlers ...gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	handlers = append(handlers, func(c *gin.Context) {
		userID, _ := CurrentUserID(c)
		c.JSON(http.StatusOK, gin.H{"user_id": userID})
	})
	r.GET("/test", handlers...)
	return r
}

func TestAuthMiddleware_RequireAuth(t *testing.T) {
	jwtSvc := auth.NewJWTService("secret", "billing")
	valid, err := jwtSvc.Generate(5, "user", time.Hour)
	assert.NoError(t, err)
	expired, err := jwtSvc.Generate(5, "user", -time.Hour)
	assert.NoError(t, err)

	tests := []struct {
		name       string
		header     string
		wantStatus int
	}{
		{name: "valid", header: "Bearer " + valid, wantStatus: http.StatusOK},
		{name: "missing", header: "", wantStatus: http.StatusUnauthorized},
		{name: "wrong scheme", header: "Basic " + valid, wantStatus: http.StatusUnauthorized},
		{name: "expired", header: "Bearer " + expired, wantStatus: http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewAuthMiddleware(jwtSvc, logger.NewNopLogger())
			r := newEngine(m.RequireAuth())

			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/test", nil)
			if tt.header != "" {
				req.Header.Set(constants.HeaderAuthorization, tt.header)
			}
			r.ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
			if tt.wantStatus == http.StatusOK {
				assert.JSONEq(t, `{"user_id":5}`, w.Body.String())
			}
		})
	}
}

func TestPermissionMiddleware_RequirePermission(t *testing.T) {
	tests := []struct {
		name       string
		userID     uint
		role       string
		enforcer   *stubEnforcer
		wantStatus int
	}{
		{
			name:       "role allowed",
			userID:     1,
			role:       "admin",
			enforcer:   &stubEnforcer{allowed: map[string]bool{"admin|transactions": true}},
			wantStatus: http.StatusOK,
		},
		{
			name:       "user subject allowed",
			userID:     2,
			role:       "user",
			enforcer:   &stubEnforcer{allowed: map[string]bool{"user:2|transactions": true}},
			wantStatus: http.StatusOK,
		},
		{
			name:       "denied",
			userID:     3,
			role:       "user",
			enforcer:   &stubEnforcer{allowed: map[string]bool{}},
			wantStatus: http.StatusForbidden,
		},
		{
			name:       "anonymous",
			enforcer:   &stubEnforcer{},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "enforcer error",
			userID:     1,
			role:       "admin",
			enforcer:   &stubEnforcer{err: errors.New("db down")},
			wantStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewPermissionMiddleware(tt.enforcer, logger.NewNopLogger())
			setUser := func(c *gin.Context) {
				if tt.userID != 0 {
					c.Set(constants.ContextKeyUserID, tt.userID)
					c.Set(constants.ContextKeyUserRole, tt.role)
				}
			}
			r := newEngine(setUser, m.RequirePermission(constants.ResourceTransactions, constants.ActionManage))

			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/test", nil))

			assert.Equal(t, tt.wantStatus, w.Code)
		})
	}
}

func TestChargeRateLimit(t *testing.T) {
	tests := []struct {
		name       string
		limiter    *stubLimiter
		wantStatus int
	}{
		{name: "allowed", limiter: &stubLimiter{allow: true}, wantStatus: http.StatusOK},
		{name: "limited", limiter: &stubLimiter{allow: false}, wantStatus: http.StatusTooManyRequests},
		{name: "redis down fails open", limiter: &stubLimiter{err: errors.New("dial tcp")}, wantStatus: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setUser := func(c *gin.Context) { c.Set(constants.ContextKeyUserID, uint(8)) }
			r := newEngine(setUser, ChargeRateLimit(tt.limiter, ratelimit.Limits{PerMinute: 1}, logger.NewNopLogger()))

			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/test", nil))

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Equal(t, []string{"user:8"}, tt.limiter.keys)
		})
	}
}

func TestChargeRateLimit_NilLimiter(t *testing.T) {
	r := newEngine(ChargeRateLimit(nil, ratelimit.Limits{PerMinute: 1}, logger.NewNopLogger()))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/test", nil))

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestCORS(t *testing.T) {
	allowed := []string{"https://shop.example.com", "https://*.sites.example.com"}

	tests := []struct {
		name       string
		method     string
		origin     string
		wantOrigin string
		wantStatus int
	}{
		{"exact origin", http.MethodGet, "https://shop.example.com", "https://shop.example.com", http.StatusOK},
		{"subdomain pattern", http.MethodGet, "https://jane.sites.example.com", "https://jane.sites.example.com", http.StatusOK},
		{"pattern needs a subdomain", http.MethodGet, "https://sites.example.com", "", http.StatusOK},
		{"scheme must match", http.MethodGet, "http://jane.sites.example.com", "", http.StatusOK},
		{"unknown origin", http.MethodGet, "https://evil.example.org", "", http.StatusOK},
		{"preflight", http.MethodOptions, "https://shop.example.com", "https://shop.example.com", http.StatusNoContent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := gin.New()
			r.Use(CORS(allowed))
			r.GET("/test", func(c *gin.Context) { c.Status(http.StatusOK) })

			w := httptest.NewRecorder()
			req := httptest.NewRequest(tt.method, "/test", nil)
			req.Header.Set("Origin", tt.origin)
			r.ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Equal(t, tt.wantOrigin, w.Header().Get("Access-Control-Allow-Origin"))
			if tt.wantOrigin == "" {
				assert.Empty(t, w.Header().Get("Access-Control-Allow-Credentials"))
			}
			if tt.method == http.MethodOptions {
				assert.Contains(t, w.Header().Get("Access-Control-Allow-Headers"), constants.HeaderAuthorization)
			}
		})
	}
}

func TestSecurityHeaders_NoStore(t *testing.T) {
	r := newEngine(SecurityHeaders())
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/test", nil))

	assert.Equal(t, "no-store", w.Header().Get("Cache-Control"))
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
}

func TestRecovery(t *testing.T) {
	r := gin.New()
	r.Use(Recovery(logger.NewNopLogger()))
	r.POST("/purchases", func(c *gin.Context) { panic("gateway client is nil") })

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/purchases", nil)
	req.Header.Set(constants.HeaderAuthorization, "Bearer secret")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), constants.ErrMsgBillingInterrupted)
}

func TestSafeHeaders(t *testing.T) {
	h := http.Header{}
	h.Set(constants.HeaderAuthorization, "Bearer secret")
	h.Set("Cookie", "session=abc")
	h.Set(constants.HeaderXRequestID, "req-1")

	got := safeHeaders(h)
	assert.Equal(t, "*", got[constants.HeaderAuthorization])
	assert.Equal(t, "*", got["Cookie"])
	assert.Equal(t, "req-1", got[http.CanonicalHeaderKey(constants.HeaderXRequestID)])
}
