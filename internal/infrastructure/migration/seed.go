package migration

import (
	"context"
	"database/sql"
	"fmt"
	"os"

	"github.com/pressly/goose/v3"
	"gopkg.in/yaml.v3"
	"gorm.io/gorm"

	"github.com/ptuchik/billing/internal/domain/invoice"
	sharedConfig "github.com/ptuchik/billing/internal/shared/config"
	"github.com/ptuchik/billing/internal/shared/constants"
	"github.com/ptuchik/billing/internal/shared/logger"
)

// ConfirmationSeed is one default template as written in the seed file.
type ConfirmationSeed struct {
	Type   string `yaml:"type"`
	Device string `yaml:"device"`
	Title  string `yaml:"title"`
	Body   string `yaml:"body"`
	Button string `yaml:"button"`
	URL    string `yaml:"url"`
}

type confirmationSeedFile struct {
	Confirmations []ConfirmationSeed `yaml:"confirmations"`
}

// LoadConfirmationSeeds reads default confirmation templates from a YAML file.
func LoadConfirmationSeeds(path string) ([]*invoice.Confirmation, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read confirmations file: %w", err)
	}

	var file confirmationSeedFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("failed to parse confirmations file: %w", err)
	}

	result := make([]*invoice.Confirmation, 0, len(file.Confirmations))
	for i, seed := range file.Confirmations {
		typ, err := invoice.ParseConfirmationType(seed.Type)
		if err != nil {
			return nil, fmt.Errorf("confirmation #%d: %w", i+1, err)
		}
		device := invoice.DeviceAll
		if seed.Device != "" {
			device = invoice.Device(seed.Device)
		}
		result = append(result, &invoice.Confirmation{
			Type:   typ,
			Device: device,
			Title:  seed.Title,
			Body:   seed.Body,
			Button: seed.Button,
			URL:    seed.URL,
		})
	}
	return result, nil
}

// Seeder runs Go data migrations with goose. Versions are tracked in their
// own table so they never collide with the schema scripts.
type Seeder struct {
	db            *gorm.DB
	dialect       goose.Dialect
	confirmations invoice.ConfirmationRepository
	seedPath      string
	logger        logger.Interface
}

func NewSeeder(db *gorm.DB, cfg *sharedConfig.DatabaseConfig, confirmations invoice.ConfirmationRepository, seedPath string) *Seeder {
	dialect := goose.DialectMySQL
	if cfg != nil && cfg.IsSQLite() {
		dialect = goose.DialectSQLite3
	}
	return &Seeder{
		db:            db,
		dialect:       dialect,
		confirmations: confirmations,
		seedPath:      seedPath,
		logger:        logger.NewLogger().With("component", "migration.seeder"),
	}
}

func (s *Seeder) provider() (*goose.Provider, error) {
	sqlDB, err := s.db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	return goose.NewProvider(s.dialect, sqlDB, nil,
		goose.WithTableName(constants.TableGooseVersions),
		goose.WithDisableGlobalRegistry(true),
		goose.WithGoMigrations(
			goose.NewGoMigration(1,
				&goose.GoFunc{RunDB: s.seedConfirmations, Mode: goose.TransactionDisabled},
				&goose.GoFunc{RunDB: s.noop, Mode: goose.TransactionDisabled},
			),
		),
	)
}

// Up applies every pending data migration.
func (s *Seeder) Up(ctx context.Context) error {
	p, err := s.provider()
	if err != nil {
		return err
	}

	results, err := p.Up(ctx)
	if err != nil {
		s.logger.Errorw("data migration failed", "error", err)
		return fmt.Errorf("failed to run data migrations: %w", err)
	}
	for _, r := range results {
		s.logger.Infow("data migration applied",
			"version", r.Source.Version,
			"duration", r.Duration.String())
	}
	return nil
}

// Status returns every known data migration with its state.
func (s *Seeder) Status(ctx context.Context) ([]*goose.MigrationStatus, error) {
	p, err := s.provider()
	if err != nil {
		return nil, err
	}
	return p.Status(ctx)
}

// seedConfirmations inserts the default templates unless some already exist.
func (s *Seeder) seedConfirmations(ctx context.Context, _ *sql.DB) error {
	count, err := s.confirmations.CountGlobal(ctx)
	if err != nil {
		return err
	}
	if count > 0 {
		s.logger.Infow("default confirmations already present, skipping seed", "count", count)
		return nil
	}

	seeds, err := LoadConfirmationSeeds(s.seedPath)
	if err != nil {
		return err
	}
	for _, c := range seeds {
		if err := s.confirmations.Create(ctx, c); err != nil {
			return fmt.Errorf("failed to seed %s confirmation: %w", c.Type, err)
		}
	}

	s.logger.Infow("default confirmations seeded", "count", len(seeds))
	return nil
}

func (s *Seeder) noop(context.Context, *sql.DB) error { return nil }
