package config

import (
	"fmt"
	"strings"
)

type ServerConfig struct {
	Host           string   `mapstructure:"host"`
	Port           int      `mapstructure:"port"`
	Mode           string   `mapstructure:"mode"`
	BaseURL        string   `mapstructure:"base_url"`
	Timezone       string   `mapstructure:"timezone"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

func (s *ServerConfig) GetAddr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

type DatabaseConfig struct {
	Driver          string `mapstructure:"driver"`
	Path            string `mapstructure:"path"`
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	Username        string `mapstructure:"username"`
	Password        string `mapstructure:"password"`
	Database        string `mapstructure:"database"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`
	MaxOpenConns    int    `mapstructure:"max_open_conns"`
	ConnMaxLifetime int    `mapstructure:"conn_max_lifetime"`
}

// GetDSN returns the MySQL DSN, or the file path for sqlite.
func (d *DatabaseConfig) GetDSN() string {
	if d.IsSQLite() {
		return d.Path
	}
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=UTC&multiStatements=true",
		d.Username, d.Password, d.Host, d.Port, d.Database)
}

func (d *DatabaseConfig) IsSQLite() bool {
	return strings.EqualFold(d.Driver, "sqlite")
}

type LoggerConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	OutputPath string `mapstructure:"output_path"`
}

type JWTConfig struct {
	Secret string `mapstructure:"secret"`
	Issuer string `mapstructure:"issuer"`
}

type AuthConfig struct {
	JWT JWTConfig `mapstructure:"jwt"`
}

type PermissionConfig struct {
	ModelPath string `mapstructure:"model_path"`
}

type EmailConfig struct {
	Enabled      bool   `mapstructure:"enabled"`
	SMTPHost     string `mapstructure:"smtp_host"`
	SMTPPort     int    `mapstructure:"smtp_port"`
	SMTPUser     string `mapstructure:"smtp_user"`
	SMTPPassword string `mapstructure:"smtp_password"`
	FromAddress  string `mapstructure:"from_address"`
	FromName     string `mapstructure:"from_name"`
}

type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

func (r *RedisConfig) GetAddr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

// GatewayConfig describes one configured payment gateway.
type GatewayConfig struct {
	Driver  string `mapstructure:"driver"`
	Cash    bool   `mapstructure:"cash"`
	Succeed bool   `mapstructure:"succeed"`
}

type RenewalConfig struct {
	Attempts          int `mapstructure:"attempts"`
	RetryIntervalDays int `mapstructure:"retry_interval_days"`
}

type ReminderConfig struct {
	DaysBefore int `mapstructure:"days_before"`
}

type GiftedCouponConfig struct {
	// By is "code" or "id".
	By       string `mapstructure:"by"`
	WithPlan bool   `mapstructure:"with_plan"`
}

// ChargeRateLimitConfig caps purchases and refills per user.
type ChargeRateLimitConfig struct {
	PerMinute int `mapstructure:"per_minute"`
	PerHour   int `mapstructure:"per_hour"`
}

type BillingConfig struct {
	DowngradeAllowed                 bool                     `mapstructure:"downgrade_allowed"`
	SwitchRecurringToLifetimeAllowed bool                     `mapstructure:"switch_recurring_to_lifetime_allowed"`
	DefaultCurrency                  string                   `mapstructure:"default_currency"`
	DefaultGateway                   string                   `mapstructure:"default_gateway"`
	Gateways                         map[string]GatewayConfig `mapstructure:"gateways"`
	CurrencyLimitedGateways          map[string][]string      `mapstructure:"currency_limited_gateways"`
	// Rates are units of the currency per one unit of the default currency.
	Rates             map[string]string     `mapstructure:"rates"`
	GiftedCoupons     GiftedCouponConfig    `mapstructure:"gifted_coupons"`
	Renewal           RenewalConfig         `mapstructure:"renewal"`
	Reminder          ReminderConfig        `mapstructure:"reminder"`
	ConfirmationsPath string                `mapstructure:"confirmations_path"`
	ChargeRateLimit   ChargeRateLimitConfig `mapstructure:"charge_rate_limit"`
}

type SchedulerConfig struct {
	Enabled      bool   `mapstructure:"enabled"`
	RenewCron    string `mapstructure:"renew_cron"`
	ExpireCron   string `mapstructure:"expire_cron"`
	ReminderCron string `mapstructure:"reminder_cron"`
}
