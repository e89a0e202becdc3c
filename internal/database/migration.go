package database

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/mattn/go-sqlite3"
	"github.com/sirupsen/logrus"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

// ExpectedTables lists the tables the local schema must contain
var ExpectedTables = []string{
	"galleries",
	"images",
	"contacts",
	"curation_records",
}

// MigrationManager handles database migrations
type MigrationManager struct {
	db     *sql.DB
	logger *logrus.Logger
	backup bool
}

// NewMigrationManager creates a new migration manager over the embedded migrations
func NewMigrationManager(db *sql.DB, logger *logrus.Logger) *MigrationManager {
	if logger == nil {
		logger = logrus.New()
	}
	return &MigrationManager{
		db:     db,
		logger: logger,
	}
}

// WithBackup makes Run and Rollback copy the database file first
func (m *MigrationManager) WithBackup() *MigrationManager {
	m.backup = true
	return m
}

// MigrationInfo contains information about a migration
type MigrationInfo struct {
	Version   uint
	Dirty     bool
	Applied   bool
	Timestamp time.Time
}

// RunMigrations executes all pending migrations
func (m *MigrationManager) RunMigrations() error {
	m.logger.Info("Starting database migrations...")
	m.maybeBackup("migration")

	return m.withMigrate(func(mg *migrate.Migrate) error {
		currentVersion, dirty, err := mg.Version()
		if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
			return fmt.Errorf("failed to get current migration version: %w", err)
		}

		if dirty {
			m.logger.Warn("Database is in dirty state, attempting to force version")
			if err := mg.Force(int(currentVersion)); err != nil {
				return fmt.Errorf("failed to force migration version: %w", err)
			}
		}

		m.logger.WithField("current_version", currentVersion).Info("Current migration version")

		if err := mg.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			return fmt.Errorf("failed to run migrations: %w", err)
		}

		newVersion, _, err := mg.Version()
		if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
			return fmt.Errorf("failed to get new migration version: %w", err)
		}

		m.logger.WithField("new_version", newVersion).Info("Migrations completed successfully")
		return nil
	})
}

// RollbackMigration rolls back the last migration
func (m *MigrationManager) RollbackMigration() error {
	m.logger.Info("Rolling back last migration...")
	m.maybeBackup("rollback")

	return m.withMigrate(func(mg *migrate.Migrate) error {
		currentVersion, _, err := mg.Version()
		if err != nil {
			if errors.Is(err, migrate.ErrNilVersion) {
				return fmt.Errorf("no migrations to rollback")
			}
			return fmt.Errorf("failed to get current migration version: %w", err)
		}

		m.logger.WithField("current_version", currentVersion).Info("Rolling back from version")

		if err := mg.Steps(-1); err != nil {
			return fmt.Errorf("failed to rollback migration: %w", err)
		}

		m.logger.Info("Rollback completed successfully")
		return nil
	})
}

// GetMigrationStatus returns the current migration status
func (m *MigrationManager) GetMigrationStatus() (*MigrationInfo, error) {
	info := &MigrationInfo{Timestamp: time.Now()}

	err := m.withMigrate(func(mg *migrate.Migrate) error {
		version, dirty, err := mg.Version()
		if errors.Is(err, migrate.ErrNilVersion) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to get migration version: %w", err)
		}

		info.Version = version
		info.Dirty = dirty
		info.Applied = true
		return nil
	})
	if err != nil {
		return nil, err
	}

	return info, nil
}

// ValidateSchema checks that every expected table exists
func (m *MigrationManager) ValidateSchema() error {
	m.logger.Info("Validating database schema...")

	for _, table := range ExpectedTables {
		var count int
		query := `SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name=?`
		if err := m.db.QueryRow(query, table).Scan(&count); err != nil {
			return fmt.Errorf("failed to check table %s: %w", table, err)
		}
		if count == 0 {
			return fmt.Errorf("expected table %s not found", table)
		}
	}

	m.logger.Info("Schema validation completed successfully")
	return nil
}

// withMigrate runs fn against a migrate instance backed by the embedded files.
// The instance itself is never closed because the sqlite3 driver would close
// the shared *sql.DB with it.
func (m *MigrationManager) withMigrate(fn func(*migrate.Migrate) error) error {
	source, err := iofs.New(migrationFiles, "migrations")
	if err != nil {
		return fmt.Errorf("failed to open migration source: %w", err)
	}
	defer source.Close()

	driver, err := sqlite3.WithInstance(m.db, &sqlite3.Config{})
	if err != nil {
		return fmt.Errorf("failed to create database driver: %w", err)
	}

	mg, err := migrate.NewWithInstance("iofs", source, "sqlite3", driver)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}

	return fn(mg)
}

func (m *MigrationManager) maybeBackup(reason string) {
	if !m.backup {
		return
	}
	if err := m.createBackup(); err != nil {
		m.logger.WithError(err).WithField("reason", reason).Warn("Failed to create database backup")
	}
}

// createBackup copies the main database file next to itself
func (m *MigrationManager) createBackup() error {
	var seq int
	var name, dbPath string
	if err := m.db.QueryRow("PRAGMA database_list").Scan(&seq, &name, &dbPath); err != nil {
		return fmt.Errorf("failed to query database list: %w", err)
	}

	if dbPath == "" || dbPath == ":memory:" {
		m.logger.Debug("Skipping backup for in-memory database")
		return nil
	}

	backupPath := fmt.Sprintf("%s.backup_%s", dbPath, time.Now().Format("20060102_150405"))

	src, err := os.Open(dbPath)
	if err != nil {
		return err
	}
	defer src.Close()

	dst, err := os.Create(backupPath)
	if err != nil {
		return err
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return fmt.Errorf("failed to create backup: %w", err)
	}

	m.logger.WithField("backup_path", backupPath).Info("Database backup created")
	return nil
}
