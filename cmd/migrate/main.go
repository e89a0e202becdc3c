package main

import (
	"flag"
	"fmt"
	"path/filepath"

	"github.com/sirupsen/logrus"

	"gallery-delivery-api/internal/config"
	"gallery-delivery-api/internal/database"
)

func main() {
	var (
		dbPath  = flag.String("db", config.GetEnv("DB_PATH", "./data/gallery.db"), "Database file path")
		action  = flag.String("action", "up", "Migration action: up, down, status, validate")
		backup  = flag.Bool("backup", true, "Copy the database file before up or down")
		verbose = flag.Bool("verbose", false, "Enable verbose logging")
	)
	flag.Parse()

	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	if *verbose {
		logger.SetLevel(logrus.DebugLevel)
	}

	absDBPath, err := filepath.Abs(*dbPath)
	if err != nil {
		logger.WithError(err).Fatal("Failed to get absolute database path")
	}

	logger.WithFields(logrus.Fields{
		"db_path": absDBPath,
		"action":  *action,
	}).Info("Starting migration tool")

	db, err := database.Open(absDBPath)
	if err != nil {
		logger.WithError(err).Fatal("Failed to open database")
	}
	defer db.Close()

	manager := database.NewMigrationManager(db, logger)
	if *backup {
		manager = manager.WithBackup()
	}

	switch *action {
	case "up":
		err = manager.RunMigrations()
	case "down":
		err = manager.RollbackMigration()
	case "status":
		err = showMigrationStatus(manager)
	case "validate":
		err = manager.ValidateSchema()
		if err == nil {
			fmt.Println("Schema validation passed successfully")
		}
	default:
		logger.WithField("action", *action).Fatal("Unknown action. Use: up, down, status, validate")
	}
	if err != nil {
		logger.WithError(err).WithField("action", *action).Fatal("Migration failed")
	}

	logger.Info("Migration tool completed successfully")
}

func showMigrationStatus(m *database.MigrationManager) error {
	status, err := m.GetMigrationStatus()
	if err != nil {
		return fmt.Errorf("failed to get migration status: %w", err)
	}

	fmt.Printf("Migration Status:\n")
	fmt.Printf("  Version: %d\n", status.Version)
	fmt.Printf("  Applied: %t\n", status.Applied)
	fmt.Printf("  Dirty: %t\n", status.Dirty)
	fmt.Printf("  Timestamp: %s\n", status.Timestamp.Format("2006-01-02 15:04:05"))
	return nil
}
