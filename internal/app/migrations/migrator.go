package migrations

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// Migrator applies numbered SQL files (e.g. "001_init.sql") exactly once each
type Migrator struct {
	db     *pgxpool.Pool
	logger zerolog.Logger
}

// NewMigrator creates a new migrator
func NewMigrator(db *pgxpool.Pool, lgr zerolog.Logger) *Migrator {
	return &Migrator{
		db:     db,
		logger: lgr,
	}
}

func (m *Migrator) ensureMigrationTableExists(ctx context.Context) error {
	_, err := m.db.Exec(ctx, `
	CREATE TABLE IF NOT EXISTS schema_migrations (
		version VARCHAR(255) PRIMARY KEY,
		applied_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
	);`)
	if err != nil {
		return fmt.Errorf("failed to create migration tracking table: %w", err)
	}
	return nil
}

// versionOf extracts "001" from "001_init.sql"
func versionOf(filename string) string {
	return strings.SplitN(filepath.Base(filename), "_", 2)[0]
}

// MigrateFromFile applies one SQL file and records its version in the same transaction
func (m *Migrator) MigrateFromFile(ctx context.Context, filePath string) error {
	version := versionOf(filePath)

	content, err := os.ReadFile(filePath)
	if err != nil {
		return fmt.Errorf("failed to read migration file: %w", err)
	}

	err = pgx.BeginFunc(ctx, m.db, func(tx pgx.Tx) error {
		var applied bool
		if err := tx.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM schema_migrations WHERE version = $1)`, version).Scan(&applied); err != nil {
			return fmt.Errorf("failed to check migration status: %w", err)
		}
		if applied {
			m.logger.Debug().Str("file", filePath).Msg("Migration already applied, skipping")
			return nil
		}

		if _, err := tx.Exec(ctx, string(content)); err != nil {
			return fmt.Errorf("error executing migration %s: %w", filepath.Base(filePath), err)
		}

		if _, err := tx.Exec(ctx, `INSERT INTO schema_migrations (version) VALUES ($1)`, version); err != nil {
			return fmt.Errorf("failed to record migration: %w", err)
		}

		m.logger.Info().Str("file", filePath).Msg("Migration applied")
		return nil
	})
	return err
}

// MigrateFromDirectory applies every *.sql file in dirPath in lexical order
func (m *Migrator) MigrateFromDirectory(ctx context.Context, dirPath string) error {
	if err := m.ensureMigrationTableExists(ctx); err != nil {
		return err
	}

	files, err := os.ReadDir(dirPath)
	if err != nil {
		return fmt.Errorf("failed to read migration directory: %w", err)
	}

	var sqlFiles []string
	for _, file := range files {
		if !file.IsDir() && strings.HasSuffix(file.Name(), ".sql") {
			sqlFiles = append(sqlFiles, file.Name())
		}
	}
	sort.Strings(sqlFiles)

	for _, file := range sqlFiles {
		if err := m.MigrateFromFile(ctx, filepath.Join(dirPath, file)); err != nil {
			return err
		}
	}

	return nil
}
