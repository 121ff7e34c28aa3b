package migration

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/ptuchik/billing/internal/domain/invoice"
	"github.com/ptuchik/billing/internal/infrastructure/repository"
	sharedConfig "github.com/ptuchik/billing/internal/shared/config"
	"github.com/ptuchik/billing/internal/shared/logger"
)

const seedYAML = `
confirmations:
  - type: paid
    title: "Thank you for purchasing {{plan}}"
    body: "You were charged **{{amount}}**."
    button: "Continue"
    url: "{{url}}"
  - type: trial
    device: mobile
    title: "Your trial has started"
  - type: free
    title: "{{plan}} is active"
`

func writeSeedFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "confirmations.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func setupSeedDB(t *testing.T) *gorm.DB {
	t.Helper()
	// goose pins one connection while Go migrations use the pool, so an
	// in-memory database would be split across connections.
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "billing.db")), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, NewGormAutoMigrateStrategy().Migrate(db))
	return db
}

func TestLoadConfirmationSeeds(t *testing.T) {
	seeds, err := LoadConfirmationSeeds(writeSeedFile(t, seedYAML))
	require.NoError(t, err)
	require.Len(t, seeds, 3)

	assert.Equal(t, invoice.ConfirmationPaid, seeds[0].Type)
	assert.Equal(t, invoice.DeviceAll, seeds[0].Device)
	assert.Equal(t, "{{url}}", seeds[0].URL)
	assert.Equal(t, invoice.ConfirmationTrial, seeds[1].Type)
	assert.Equal(t, invoice.DeviceMobile, seeds[1].Device)
	assert.True(t, seeds[2].IsGlobal())
}

func TestLoadConfirmationSeeds_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{name: "unknown type", content: "confirmations:\n  - type: bogus\n"},
		{name: "malformed yaml", content: "confirmations: [\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadConfirmationSeeds(writeSeedFile(t, tt.content))
			assert.Error(t, err)
		})
	}

	_, err := LoadConfirmationSeeds(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestSeeder_Up(t *testing.T) {
	ctx := context.Background()
	db := setupSeedDB(t)
	repo := repository.NewConfirmationRepository(db, logger.NewLogger())
	cfg := &sharedConfig.DatabaseConfig{Driver: "sqlite"}

	seeder := NewSeeder(db, cfg, repo, writeSeedFile(t, seedYAML))
	require.NoError(t, seeder.Up(ctx))

	count, err := repo.CountGlobal(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)

	// second run is versioned out
	require.NoError(t, seeder.Up(ctx))
	count, err = repo.CountGlobal(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)

	statuses, err := seeder.Status(ctx)
	require.NoError(t, err)
	require.Len(t, statuses, 1)
	assert.Equal(t, int64(1), statuses[0].Source.Version)
	assert.False(t, statuses[0].AppliedAt.IsZero())
}

func TestSeeder_SkipsWhenDefaultsExist(t *testing.T) {
	ctx := context.Background()
	db := setupSeedDB(t)
	repo := repository.NewConfirmationRepository(db, logger.NewLogger())
	require.NoError(t, repo.Create(ctx, &invoice.Confirmation{Type: invoice.ConfirmationPaid, Title: "custom"}))

	seeder := NewSeeder(db, &sharedConfig.DatabaseConfig{Driver: "sqlite"}, repo, writeSeedFile(t, seedYAML))
	require.NoError(t, seeder.Up(ctx))

	count, err := repo.CountGlobal(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestNewManager_PicksStrategy(t *testing.T) {
	tests := []struct {
		name string
		env  string
		cfg  *sharedConfig.DatabaseConfig
		want string
	}{
		{name: "sqlite", env: "production", cfg: &sharedConfig.DatabaseConfig{Driver: "sqlite"}, want: "gorm_auto_migrate"},
		{name: "development mysql", env: "development", cfg: &sharedConfig.DatabaseConfig{Driver: "mysql"}, want: "gorm_auto_migrate"},
		{name: "production mysql", env: "production", cfg: &sharedConfig.DatabaseConfig{Driver: "mysql"}, want: "golang_migrate"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewManager(tt.env, tt.cfg)
			assert.Equal(t, tt.want, m.GetStrategy().GetName())
		})
	}
}

func TestGormAutoMigrateStrategy_NotVersioned(t *testing.T) {
	db := setupSeedDB(t)
	m := NewManagerWithStrategy(NewGormAutoMigrateStrategy())

	assert.ErrorIs(t, m.MigrateDown(db, 1), ErrNotVersioned)
	assert.ErrorIs(t, m.Force(db, 1), ErrNotVersioned)
	_, _, err := m.GetVersion(db)
	assert.ErrorIs(t, err, ErrNotVersioned)
}
