package database

import (
	"tagging/internal/tags"
	"tagging/internal/users"

	"gorm.io/gorm"
)

func Migrate(db *gorm.DB) error {
	models := append([]interface{}{&users.User{}}, tags.Models()...)
	if err := db.AutoMigrate(models...); err != nil {
		return err
	}
	return MigrateConstraints(db)
}
