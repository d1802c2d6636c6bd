package database

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/novatoken/marketplace/pkg/models"
)

// Migrate applies the schema for all marketplace tables.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.User{},
		&models.Collection{},
		&models.Item{},
		&models.Listing{},
		&models.Transaction{},
	); err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}
	return nil
}
