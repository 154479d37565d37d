package database

import (
	"fmt"
	"log/slog"

	"reviewhub/internal/api/models"
	"reviewhub/internal/config"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// ConnectDB opens the postgres connection and applies the schema.
// TranslateError turns driver-specific unique violations into
// gorm.ErrDuplicatedKey, which the service layer relies on.
func ConnectDB(cfg *config.Config, logger *slog.Logger) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.DatabaseURL), &gorm.Config{
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := Migrate(db); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	logger.Info("Connected to the database successfully")
	return db, nil
}

// Migrate creates or updates the schema for all models.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Category{},
		&models.Genre{},
		&models.Title{},
		&models.Review{},
		&models.Comment{},
	)
}
