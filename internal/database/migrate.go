package database

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/noah-isme/scholartrack-api/internal/models"
)

// Models lists every persisted model in dependency order.
func Models() []interface{} {
	return []interface{}{
		&models.User{},
		&models.RequirementSet{},
		&models.Requirement{},
		&models.UserRequirementSet{},
		&models.Submission{},
		&models.SubmissionComment{},
		&models.Article{},
		&models.ActivityLog{},
	}
}

// Migrate brings the schema up to date.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	return nil
}
