package database

import (
	"fmt"
	"os"

	"github.com/Gobusters/ectologger"
	"github.com/golang-migrate/migrate/v4"
	migratedb "github.com/golang-migrate/migrate/v4/database"
	_ "github.com/golang-migrate/migrate/v4/source/file"
)

type migrationLogger struct {
	ectologger.Logger
}

func (l migrationLogger) Verbose() bool { return true }

func (l migrationLogger) Printf(format string, v ...any) {
	l.Infof(format, v...)
}

// MigrationConfig controls schema migration at startup.
type MigrationConfig struct {
	FolderPath string `env:"DB_MIGRATION_PATH" envDefault:"db/pg"`
	// Version pins the schema; zero migrates to latest.
	Version uint `env:"DB_MIGRATION_VERSION"`
}

// MigrationService applies versioned SQL migrations.
type MigrationService struct {
	config MigrationConfig
	logger ectologger.Logger
}

func NewMigrationService(logger ectologger.Logger, config MigrationConfig) *MigrationService {
	return &MigrationService{config: config, logger: logger}
}

func (ms *MigrationService) resolveFolder() string {
	if _, err := os.Stat(ms.config.FolderPath); err == nil {
		return ms.config.FolderPath
	}
	wd, _ := os.Getwd()
	return wd + "/" + ms.config.FolderPath
}

// Migrate applies pending migrations against an open database driver.
func (ms *MigrationService) Migrate(databaseName string, driver migratedb.Driver) error {
	folder := ms.resolveFolder()
	if _, err := os.Stat(folder); err != nil {
		return fmt.Errorf("migration folder %s does not exist: %w", folder, err)
	}

	m, err := migrate.NewWithDatabaseInstance("file://"+folder, databaseName, driver)
	if err != nil {
		ms.logger.WithError(err).Error("Failed to create migrate instance")
		return err
	}
	m.Log = migrationLogger{Logger: ms.logger}

	if ms.config.Version != 0 {
		err = m.Migrate(ms.config.Version)
	} else {
		err = m.Up()
	}
	if err == migrate.ErrNoChange {
		ms.logger.Info("No new migrations to apply")
		return nil
	}
	if err != nil {
		version, dirty, _ := m.Version()
		ms.logger.WithError(err).Errorf("Failed to apply migrations. Database dirty=%t at version %d", dirty, version)
		return err
	}

	ms.logger.Info("Successfully applied migrations")
	return nil
}
