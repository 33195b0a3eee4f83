package infra

import (
	"errors"
	"fmt"

	"firmeza/internal/model"

	migrate "github.com/golang-migrate/migrate/v4"
	// Register the postgres driver and the file source for golang-migrate.
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// DatabaseOptions selects how the schema is brought up to date.
type DatabaseOptions struct {
	// SQLMigrations runs the versioned files under MigrationsPath with
	// golang-migrate. When false, GORM AutoMigrate creates the tables.
	SQLMigrations  bool
	MigrationsPath string
}

// NewDatabase opens a GORM connection backed by pgx and migrates the schema.
func NewDatabase(dsn string, opts DatabaseOptions) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)

	if opts.SQLMigrations {
		if err := RunSQLMigrations(dsn, opts.MigrationsPath); err != nil {
			return nil, fmt.Errorf("sql migrations: %w", err)
		}
		return db, nil
	}
	if err := AutoMigrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

// AutoMigrate creates or updates every table. Tests call it on SQLite.
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(model.All()...); err != nil {
		return fmt.Errorf("AutoMigrate: %w", err)
	}
	return nil
}

// RunSQLMigrations applies the versioned migrations found at sourceURL
// (e.g. "file://migrations").
func RunSQLMigrations(dsn, sourceURL string) error {
	m, err := migrate.New(sourceURL, dsn)
	if err != nil {
		return err
	}
	defer m.Close()
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	return nil
}
