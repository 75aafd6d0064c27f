package db

import (
	"fmt"

	"gorm.io/gorm"

	types "github.com/yungbote/academy-backend/internal/domain"
)

func AutoMigrateAll(db *gorm.DB) error {
	if err := db.AutoMigrate(types.AllModels()...); err != nil {
		return fmt.Errorf("automigrate: %w", err)
	}
	return nil
}

// EnsureImportIndexes adds the Postgres-only index backing the
// "import logs for a course, most recent first" query.
func EnsureImportIndexes(db *gorm.DB) error {
	if db.Dialector.Name() != "postgres" {
		return nil
	}
	if err := db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_import_log_course_recent
		ON import_log (course_id, created_at DESC);
	`).Error; err != nil {
		return fmt.Errorf("create idx_import_log_course_recent: %w", err)
	}
	return nil
}
