package service

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"testing"

	"reviewhub/database"
	"reviewhub/internal/api/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

const testSecret = "test-secret-0123456789-0123456789"

// newTestDB opens a private in-memory database with the full schema.
// TranslateError matches the production configuration so duplicate-key
// handling behaves the same under test.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, db.Exec("PRAGMA foreign_keys = ON").Error)
	require.NoError(t, database.Migrate(db))
	return db
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func seedUser(t *testing.T, db *gorm.DB, username, role string) *models.User {
	t.Helper()
	user := &models.User{
		Username: username,
		Email:    username + "@example.com",
		Role:     role,
	}
	require.NoError(t, db.WithContext(context.Background()).Create(user).Error)
	return user
}

func seedTitle(t *testing.T, db *gorm.DB, name string, year int) *models.Title {
	t.Helper()
	title := &models.Title{Name: name, Year: year}
	require.NoError(t, db.WithContext(context.Background()).Create(title).Error)
	return title
}
