package constants

const (
	EnvDevelopment = "development"
	EnvTest        = "test"
	EnvProduction  = "production"

	// Default pagination
	DefaultPage     = 1
	DefaultPageSize = 20
	MaxPageSize     = 100

	// HTTP Headers
	HeaderAuthorization = "Authorization"
	HeaderXRequestID    = "X-Request-ID"
	HeaderUserAgent     = "User-Agent"
	HeaderDevice        = "X-Device"

	// Context keys
	ContextKeyUserID    = "user_id"
	ContextKeyUserRole  = "user_role"
	ContextKeyRequestID = "request_id"

	// Database table names
	TablePackages       = "packages"
	TablePlans          = "plans"
	TablePlanCoupons    = "plan_coupons"
	TableCoupons        = "coupons"
	TableGiftedCoupons  = "gifted_coupons"
	TableCustomers      = "customers"
	TablePurchases      = "purchases"
	TableSubscriptions  = "subscriptions"
	TableTransactions   = "transactions"
	TableOrders         = "orders"
	TableConfirmations  = "confirmations"
	TableGooseVersions  = "billing_data_versions"
	TableSchemaVersions = "schema_migrations"

	// Casbin resources guarded on the admin API
	ResourceTransactions  = "transactions"
	ResourceSubscriptions = "subscriptions"
	ResourceSweeps        = "sweeps"
	ActionManage          = "manage"

	ErrMsgBillingInterrupted = "Billing request was interrupted, check your transactions before retrying"
	ErrMsgBillingTimeout     = "Billing request timed out, check your transactions before retrying"
	ErrMsgUnauthorized       = "Unauthorized access"
	ErrMsgForbidden          = "Access forbidden"
)
