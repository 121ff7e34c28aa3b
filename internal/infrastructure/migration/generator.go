package migration

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"time"

	"github.com/ptuchik/billing/internal/shared/logger"
)

// DefaultScriptsPath is where `migrate create` writes new scripts. They are
// embedded into the binary on the next build.
const DefaultScriptsPath = "internal/infrastructure/migration/scripts"

var (
	scriptNamePattern = regexp.MustCompile(`^(\d+)_.+\.(up|down)\.sql$`)
	migrationName     = regexp.MustCompile(`^[a-z0-9_]+$`)
)

// Generator handles creation of new migration files
type Generator struct {
	scriptsPath string
	logger      logger.Interface
}

func NewGenerator(scriptsPath string) *Generator {
	return &Generator{
		scriptsPath: scriptsPath,
		logger:      logger.NewLogger().With("component", "migration.generator"),
	}
}

// CreateMigration writes an up/down pair numbered after the latest script.
// It returns the paths of the created files.
func (g *Generator) CreateMigration(name string) (string, string, error) {
	if !migrationName.MatchString(name) {
		return "", "", fmt.Errorf("migration name must be snake_case, got %q", name)
	}

	if err := os.MkdirAll(g.scriptsPath, 0755); err != nil {
		return "", "", fmt.Errorf("failed to create scripts directory: %w", err)
	}

	next, err := g.nextSequence()
	if err != nil {
		return "", "", err
	}

	upFilePath := filepath.Join(g.scriptsPath, fmt.Sprintf("%06d_%s.up.sql", next, name))
	downFilePath := filepath.Join(g.scriptsPath, fmt.Sprintf("%06d_%s.down.sql", next, name))

	created := time.Now().Format("2006-01-02 15:04:05")
	if err := os.WriteFile(upFilePath, []byte(fmt.Sprintf("-- Migration: %s\n-- Created: %s\n\n", name, created)), 0644); err != nil {
		return "", "", fmt.Errorf("failed to create up migration file: %w", err)
	}
	if err := os.WriteFile(downFilePath, []byte(fmt.Sprintf("-- Rollback: %s\n-- Created: %s\n\n", name, created)), 0644); err != nil {
		return "", "", fmt.Errorf("failed to create down migration file: %w", err)
	}

	g.logger.Infow("migration files created successfully",
		"up_file", upFilePath,
		"down_file", downFilePath)

	return upFilePath, downFilePath, nil
}

func (g *Generator) nextSequence() (uint64, error) {
	entries, err := os.ReadDir(g.scriptsPath)
	if err != nil {
		return 0, fmt.Errorf("failed to read scripts directory: %w", err)
	}

	var latest uint64
	for _, entry := range entries {
		match := scriptNamePattern.FindStringSubmatch(entry.Name())
		if match == nil {
			continue
		}
		n, err := strconv.ParseUint(match[1], 10, 64)
		if err != nil {
			continue
		}
		if n > latest {
			latest = n
		}
	}
	return latest + 1, nil
}
