package database

import (
	"gorm.io/gorm"
)

// MigrateConstraints adds the case-insensitive indexes used by the admin search.
// Both PostgreSQL and SQLite accept expression indexes in this form.
func MigrateConstraints(db *gorm.DB) error {
	statements := []string{
		`CREATE INDEX IF NOT EXISTS idx_tags_name_lower ON tags (LOWER(name))`,
		`CREATE INDEX IF NOT EXISTS idx_tag_synonyms_name_lower ON tag_synonyms (LOWER(name))`,
		`CREATE INDEX IF NOT EXISTS idx_tag_translations_name_lower ON tag_translations (LOWER(name))`,
	}

	for _, stmt := range statements {
		if err := db.Exec(stmt).Error; err != nil {
			return err
		}
	}
	return nil
}
