// Package bootstrap loads configuration and opens shared resources for the
// command line entry points.
package bootstrap

import (
	"fmt"
	"os"

	"github.com/ptuchik/billing/internal/infrastructure/config"
	"github.com/ptuchik/billing/internal/infrastructure/database"
	"github.com/ptuchik/billing/internal/shared/biztime"
	"github.com/ptuchik/billing/internal/shared/logger"
)

// Env is an initialized process environment. Close releases it.
type Env struct {
	Name   string
	Config *config.Config
	Logger logger.Interface
}

// ResolveEnv lets the ENV variable override the --env flag.
func ResolveEnv(flag string) string {
	if v := os.Getenv("ENV"); v != "" {
		return v
	}
	return flag
}

// Init loads config, sets up logging and the business timezone and opens
// the database.
func Init(env string) (*Env, error) {
	cfg, err := config.Load(env)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if err := logger.Init(&cfg.Logger, MapEnvToGinMode(env)); err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	if err := biztime.Init(cfg.Server.Timezone); err != nil {
		return nil, fmt.Errorf("failed to initialize business timezone: %w", err)
	}

	if err := database.Init(&cfg.Database); err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	return &Env{Name: env, Config: cfg, Logger: logger.NewLogger()}, nil
}

func (e *Env) Close() {
	if err := database.Close(); err != nil {
		e.Logger.Warnw("failed to close database", "error", err)
	}
	_ = logger.Sync()
}

// MapEnvToGinMode converts an environment name to a gin mode.
func MapEnvToGinMode(environment string) string {
	switch environment {
	case "production", "prod", "release":
		return "release"
	case "test", "testing":
		return "test"
	default:
		return "debug"
	}
}
