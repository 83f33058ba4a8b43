// Package db owns database connection and schema migration.
package db

import (
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/jdvries/transportdesk/internal/models"
)

// Connect opens the PostgreSQL connection, retrying a few times so the
// application survives a database that is still starting up.
func Connect(dsn string) (*gorm.DB, error) {
	var conn *gorm.DB
	var err error
	for attempt := 0; attempt < 5; attempt++ {
		conn, err = gorm.Open(postgres.Open(dsn), &gorm.Config{})
		if err == nil {
			return conn, nil
		}
		time.Sleep(2 * time.Second)
	}
	return nil, fmt.Errorf("database connection failed: %w", err)
}

// Migrate applies the GORM auto-migrations for all models.
func Migrate(conn *gorm.DB) error {
	if err := conn.AutoMigrate(
		&models.Customer{},
		&models.LicensePlate{},
		&models.WeeklyLog{},
		&models.Day{},
		&models.WeeklyRate{},
		&models.Invoice{},
		&models.InvoiceLine{},
	); err != nil {
		return fmt.Errorf("migrations failed: %w", err)
	}
	return nil
}
