package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load("test")
	require.NoError(t, err)

	assert.Equal(t, "test", cfg.Server.Mode)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "USD", cfg.Billing.DefaultCurrency)
	assert.Equal(t, "sandbox", cfg.Billing.DefaultGateway)
	assert.Equal(t, "sandbox", cfg.Billing.Gateways["sandbox"].Driver)
	assert.True(t, cfg.Billing.Gateways["sandbox"].Succeed)
	assert.Equal(t, 3, cfg.Billing.Renewal.Attempts)
	assert.Equal(t, 7, cfg.Billing.Reminder.DaysBefore)
	assert.Equal(t, 5, cfg.Billing.ChargeRateLimit.PerMinute)
	assert.True(t, cfg.Scheduler.Enabled)
	assert.Same(t, cfg, Get())
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("BILLING_BILLING_DEFAULT_CURRENCY", "EUR")
	t.Setenv("BILLING_SERVER_PORT", "9090")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "EUR", cfg.Billing.DefaultCurrency)
	assert.Equal(t, 9090, cfg.Server.Port)
}
