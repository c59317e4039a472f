package database

import (
	"fmt"

	"gorm.io/gorm"

	"immoprice/server/internal/models"
)

// MigrateSchema creates or updates the prediction log and training run tables
func MigrateSchema(db *gorm.DB) error {
	if err := db.AutoMigrate(&models.Prediction{}, &models.TrainingRun{}); err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}

	// Lookups by location and recency
	if err := db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_predictions_postal_created
		ON predictions(postal_code, created_at);
	`).Error; err != nil {
		return fmt.Errorf("failed to create predictions index: %w", err)
	}

	return nil
}

func (d *Database) RunMigrations() error {
	return MigrateSchema(d.db)
}
