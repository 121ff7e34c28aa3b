package permission

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/ptuchik/billing/internal/shared/constants"
	"github.com/ptuchik/billing/internal/shared/logger"
)

func newTestEnforcer(t *testing.T) *Enforcer {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	e, err := NewEnforcer(db, "", logger.NewNopLogger())
	require.NoError(t, err)
	require.NoError(t, e.InitBillingPermissions())
	return e
}

func TestEnforcer_BillingPermissions(t *testing.T) {
	e := newTestEnforcer(t)
	require.NoError(t, e.AddRoleForUser("user:7", RoleAdmin))

	tests := []struct {
		name     string
		subject  string
		resource string
		want     bool
	}{
		{name: "admin role refunds", subject: RoleAdmin, resource: constants.ResourceTransactions, want: true},
		{name: "admin role runs sweeps", subject: RoleAdmin, resource: constants.ResourceSweeps, want: true},
		{name: "user granted admin", subject: "user:7", resource: constants.ResourceSubscriptions, want: true},
		{name: "plain user", subject: "user", resource: constants.ResourceTransactions, want: false},
		{name: "unknown resource", subject: RoleAdmin, resource: "plans", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			allowed, err := e.Enforce(tt.subject, tt.resource, constants.ActionManage)
			require.NoError(t, err)
			assert.Equal(t, tt.want, allowed)
		})
	}
}

func TestEnforcer_InitIsIdempotent(t *testing.T) {
	e := newTestEnforcer(t)
	require.NoError(t, e.InitBillingPermissions())

	roles, err := e.GetRolesForUser("user:1")
	require.NoError(t, err)
	assert.Empty(t, roles)
}

func TestLoadModel_MissingFileFallsBack(t *testing.T) {
	m, err := loadModel("does/not/exist.conf")
	require.NoError(t, err)
	assert.NotNil(t, m)
}
