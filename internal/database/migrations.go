package database

import (
	"gorm.io/gorm"

	"propertycrm/server/internal/models"
)

// MigrateSchema creates or updates the tables for every entity.
func MigrateSchema(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.Lead{},
		&models.Property{},
		&models.CustomerPreferenceProfile{},
		&models.Recommendation{},
	)
}

// createIndexes adds the composite indexes the struct tags cannot express.
func createIndexes(db *gorm.DB) error {
	stmts := []string{
		`CREATE INDEX IF NOT EXISTS idx_recommendations_customer_confidence
			ON recommendations(customer_id, status, confidence_score DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_leads_status_budget
			ON leads(status, budget_min, budget_max)`,
	}
	for _, stmt := range stmts {
		if err := db.Exec(stmt).Error; err != nil {
			return err
		}
	}
	return nil
}
