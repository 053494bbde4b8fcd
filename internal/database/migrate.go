package database

import (
	"fmt"

	"gorm.io/gorm"

	"bluemoon/internal/domain"
)

// Migrate creates or updates the tables. No ON DELETE CASCADE is declared;
// dependent rows are removed by the cascade engine.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(domain.Models()...); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}

// Ping checks that a connection can be acquired and used.
func Ping(db *gorm.DB) error {
	var ok int
	if err := db.Raw("SELECT 1").Scan(&ok).Error; err != nil {
		return Classify(err)
	}
	if ok != 1 {
		return fmt.Errorf("unexpected ping result %d", ok)
	}
	return nil
}
