package repository

import (
	"fmt"

	"eventpass/internal/model"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Open opens (or creates) the local state database and migrates the
// schema. Everything the app persists across restarts lives here.
func Open(path string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open local database: %w", err)
	}

	if err := db.AutoMigrate(
		&model.Credential{},
		&model.CachedOrder{},
		&model.CachedTicket{},
	); err != nil {
		return nil, fmt.Errorf("migrate local database: %w", err)
	}

	return db, nil
}
