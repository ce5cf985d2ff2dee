package db

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/yungbote/safetywatch-backend/internal/domain"
)

// AutoMigrateAll creates the observations table (id INTEGER PRIMARY KEY AUTOINCREMENT) if missing.
func AutoMigrateAll(db *gorm.DB) error {
	if err := db.AutoMigrate(&domain.Observation{}); err != nil {
		return fmt.Errorf("auto migrate observations: %w", err)
	}
	return nil
}
