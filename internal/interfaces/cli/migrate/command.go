package migrate

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/ptuchik/billing/internal/infrastructure/database"
	"github.com/ptuchik/billing/internal/infrastructure/migration"
	"github.com/ptuchik/billing/internal/infrastructure/repository"
	"github.com/ptuchik/billing/internal/interfaces/cli/bootstrap"
	"github.com/ptuchik/billing/internal/shared/constants"
)

const scriptsDir = "./internal/infrastructure/migration/scripts"

var (
	env     string
	name    string
	steps   int
	version int
)

func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Database migration tools",
		Long:  `Manage database migrations including running migrations, checking status, creating new migration files and seeding billing data.`,
	}

	cmd.PersistentFlags().StringVarP(&env, "env", "e", constants.EnvDevelopment, "Environment (development, test, production)")

	cmd.AddCommand(
		newUpCommand(),
		newDownCommand(),
		newStatusCommand(),
		newCreateCommand(),
		newForceCommand(),
		newSeedCommand(),
	)

	return cmd
}

func newUpCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "up",
		Short: "Run all pending migrations",
		Long:  `Apply all pending database migrations to bring the database schema up to date.`,
		RunE:  runUp,
	}
}

func newDownCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "down",
		Short: "Rollback migrations",
		Long:  `Rollback a specified number of database migrations.`,
		RunE:  runDown,
	}

	cmd.Flags().IntVarP(&steps, "steps", "n", 1, "Number of migrations to rollback")

	return cmd
}

func newStatusCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show migration status",
		Long:  `Display the current schema version and the state of every data seed.`,
		RunE:  runStatus,
	}
}

func newCreateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a new migration",
		Long:  `Create new up and down migration files with the specified name.`,
		RunE:  runCreate,
	}

	cmd.Flags().StringVarP(&name, "name", "n", "", "Name of the migration (required)")
	_ = cmd.MarkFlagRequired("name")

	return cmd
}

func newForceCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "force",
		Short: "Force the schema version",
		Long:  `Set the schema version without running migrations and clear the dirty flag.`,
		RunE:  runForce,
	}

	cmd.Flags().IntVarP(&version, "version", "v", 0, "Schema version to record (required)")
	_ = cmd.MarkFlagRequired("version")

	return cmd
}

func newSeedCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Apply pending data seeds",
		Long:  `Load billing reference data such as invoice confirmation messages.`,
		RunE:  runSeed,
	}
}

func initEnv() (*bootstrap.Env, *migration.Manager, error) {
	environment := bootstrap.ResolveEnv(env)
	e, err := bootstrap.Init(environment)
	if err != nil {
		return nil, nil, err
	}
	return e, migration.NewManager(environment, &e.Config.Database), nil
}

func runUp(cmd *cobra.Command, args []string) error {
	e, manager, err := initEnv()
	if err != nil {
		return err
	}
	defer e.Close()

	e.Logger.Infow("running up migrations", "environment", e.Name)

	if err := manager.Migrate(database.Get()); err != nil {
		e.Logger.Errorw("migration failed", "error", err)
		return fmt.Errorf("migration failed: %w", err)
	}

	e.Logger.Infow("migrations completed successfully")
	return nil
}

func runDown(cmd *cobra.Command, args []string) error {
	e, manager, err := initEnv()
	if err != nil {
		return err
	}
	defer e.Close()

	e.Logger.Infow("running down migrations", "environment", e.Name, "steps", steps)

	if err := manager.MigrateDown(database.Get(), steps); err != nil {
		e.Logger.Errorw("down migration failed", "error", err)
		return fmt.Errorf("down migration failed: %w", err)
	}

	e.Logger.Infow("down migration completed successfully")
	return nil
}

func runStatus(cmd *cobra.Command, args []string) error {
	e, manager, err := initEnv()
	if err != nil {
		return err
	}
	defer e.Close()

	current, dirty, err := manager.GetVersion(database.Get())
	if err != nil {
		e.Logger.Errorw("failed to get migration version", "error", err)
		return fmt.Errorf("failed to get migration version: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "\nMigration Status:\n")
	fmt.Fprintf(out, "  Environment:     %s\n", e.Name)
	fmt.Fprintf(out, "  Strategy:        %s\n", manager.GetStrategy().GetName())
	fmt.Fprintf(out, "  Current Version: %d\n", current)
	fmt.Fprintf(out, "  Dirty:           %t\n", dirty)

	statuses, err := newSeeder(e).Status(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to get seed status: %w", err)
	}
	fmt.Fprintf(out, "\nData Seeds:\n")
	for _, s := range statuses {
		applied := "pending"
		if !s.AppliedAt.IsZero() {
			applied = s.AppliedAt.Format("2006-01-02 15:04:05")
		}
		fmt.Fprintf(out, "  %-6d %-10s %s\n", s.Source.Version, s.State, applied)
	}

	return nil
}

func runCreate(cmd *cobra.Command, args []string) error {
	scriptsPath, err := filepath.Abs(scriptsDir)
	if err != nil {
		return fmt.Errorf("failed to get scripts path: %w", err)
	}

	up, down, err := migration.NewGenerator(scriptsPath).CreateMigration(name)
	if err != nil {
		return fmt.Errorf("failed to create migration: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Created %s\nCreated %s\n", up, down)
	return nil
}

func runForce(cmd *cobra.Command, args []string) error {
	e, manager, err := initEnv()
	if err != nil {
		return err
	}
	defer e.Close()

	e.Logger.Warnw("forcing schema version", "version", version)

	if err := manager.Force(database.Get(), version); err != nil {
		return fmt.Errorf("failed to force version: %w", err)
	}
	return nil
}

func runSeed(cmd *cobra.Command, args []string) error {
	e, _, err := initEnv()
	if err != nil {
		return err
	}
	defer e.Close()

	e.Logger.Infow("applying data seeds", "path", e.Config.Billing.ConfirmationsPath)
	if err := newSeeder(e).Up(cmd.Context()); err != nil {
		e.Logger.Errorw("seeding failed", "error", err)
		return fmt.Errorf("seeding failed: %w", err)
	}

	e.Logger.Infow("data seeds applied")
	return nil
}

func newSeeder(e *bootstrap.Env) *migration.Seeder {
	db := database.Get()
	return migration.NewSeeder(
		db,
		&e.Config.Database,
		repository.NewConfirmationRepository(db, e.Logger),
		e.Config.Billing.ConfirmationsPath,
	)
}
