package initialize

import (
	"subsidy/config"
	"subsidy/internal/logger"
	. "subsidy/internal/models"

	migrate "github.com/rubenv/sql-migrate"
	"gorm.io/gorm"
)

func InitializeTables(db *gorm.DB, config config.Config, log logger.Logger) error {
	log = log.Function("InitializeTables")
	log.Info("Initializing schema")

	if err := db.AutoMigrate(
		&User{},
		&Request{},
		&Attachment{},
		&Expiration{},
		&Assignment{},
	); err != nil {
		return log.Err("failed to auto-migrate schema", err)
	}

	if err := runSQLMigrations(db, log); err != nil {
		return err
	}

	log.Info("Table initialization complete")
	return nil
}

// runSQLMigrations applies the versioned migrations that AutoMigrate cannot
// express, composite indexes mostly.
func runSQLMigrations(db *gorm.DB, log logger.Logger) error {
	sqlDB, err := db.DB()
	if err != nil {
		return log.Err("failed to get sql database", err)
	}

	migrations := &migrate.FileMigrationSource{Dir: "migrations"}

	applied, err := migrate.Exec(sqlDB, "sqlite3", migrations, migrate.Up)
	if err != nil {
		return log.Err("failed to apply sql migrations", err)
	}

	log.Info("Applied sql migrations", "count", applied)
	return nil
}
