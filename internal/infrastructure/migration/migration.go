package migration

import (
	"fmt"
	"strings"

	"gorm.io/gorm"

	sharedConfig "github.com/ptuchik/billing/internal/shared/config"
	"github.com/ptuchik/billing/internal/shared/constants"
	"github.com/ptuchik/billing/internal/shared/logger"
)

// Manager handles database migrations with different strategies
type Manager struct {
	strategy Strategy
	logger   logger.Interface
}

// NewManager picks a strategy for the database: sqlite and development
// databases are auto-migrated, everything else runs the versioned scripts.
func NewManager(environment string, cfg *sharedConfig.DatabaseConfig) *Manager {
	var strategy Strategy

	switch {
	case cfg != nil && cfg.IsSQLite():
		strategy = NewGormAutoMigrateStrategy()
	case strings.EqualFold(environment, constants.EnvDevelopment):
		strategy = NewGormAutoMigrateStrategy()
	default:
		strategy = NewGolangMigrateStrategy()
	}

	return NewManagerWithStrategy(strategy)
}

// NewManagerWithStrategy creates a new migration manager with a specific strategy
func NewManagerWithStrategy(strategy Strategy) *Manager {
	return &Manager{
		strategy: strategy,
		logger:   logger.NewLogger().With("component", "migration.manager"),
	}
}

// Migrate executes the configured migration strategy
func (m *Manager) Migrate(db *gorm.DB) error {
	m.logger.Infow("starting database migration", "strategy", m.strategy.GetName())

	if err := m.strategy.Migrate(db); err != nil {
		m.logger.Errorw("migration failed",
			"strategy", m.strategy.GetName(),
			"error", err)
		return fmt.Errorf("migration failed with strategy %s: %w", m.strategy.GetName(), err)
	}

	m.logger.Infow("database migration completed successfully", "strategy", m.strategy.GetName())
	return nil
}

func (m *Manager) MigrateDown(db *gorm.DB, steps int) error {
	return m.strategy.MigrateDown(db, steps)
}

func (m *Manager) GetVersion(db *gorm.DB) (uint, bool, error) {
	return m.strategy.GetVersion(db)
}

func (m *Manager) Force(db *gorm.DB, version int) error {
	return m.strategy.Force(db, version)
}

// GetStrategy returns the current migration strategy
func (m *Manager) GetStrategy() Strategy {
	return m.strategy
}

// GetStrategyInfo returns information about the current strategy
func (m *Manager) GetStrategyInfo() map[string]interface{} {
	return map[string]interface{}{
		"name":        m.strategy.GetName(),
		"description": getStrategyDescription(m.strategy.GetName()),
	}
}

func getStrategyDescription(strategyName string) string {
	switch strategyName {
	case "gorm_auto_migrate":
		return "GORM AutoMigrate - schema derived from the persistence models"
	case "golang_migrate":
		return "golang-migrate - version-controlled SQL migration scripts"
	default:
		return "Unknown migration strategy"
	}
}
