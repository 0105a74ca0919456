package database

import (
	"fmt"

	"github.com/Baaaki/event-manager/internal/models"
	"github.com/Baaaki/event-manager/pkg/logger"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// Connect opens the Postgres connection. Duplicate key errors are translated
// to gorm.ErrDuplicatedKey so repositories can detect unique index violations.
func Connect(databaseURL string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(databaseURL), &gorm.Config{
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}

	logger.Log.Info("Database connected successfully")
	return db, nil
}

// Migrate creates or updates the users and events tables.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&models.User{}, &models.Event{}); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	logger.Log.Info("Database migration completed",
		zap.Strings("tables", []string{"users", "events"}),
	)
	return nil
}
