// Package db opens the Postgres database that stores executed batches and keeps
// its schema up to date.
package db

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// SetupDatabase runs pending migrations and opens a gorm connection.
func SetupDatabase(logger *logrus.Logger, config Config) (*gorm.DB, error) {
	logger.Debug("Starting database setup")

	if err := config.Validate(); err != nil {
		return nil, err
	}

	if err := RunMigrations(logger, config); err != nil {
		return nil, err
	}

	logger.Debug("Establishing GORM database connection")

	db, err := gorm.Open(postgres.Open(config.DSN()), &gorm.Config{
		Logger: NewGormLogrusLogger(logger),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	logger.Info("Database setup completed successfully")
	return db, nil
}
