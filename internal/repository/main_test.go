package repository

import (
	"fmt"
	"testing"

	"journals/internal/database"
	"journals/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupTestDB returns a fresh in-memory database with the full schema.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	return db
}

func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		Conn: db,
	}), &gorm.Config{})
	require.NoError(t, err)

	return gormDB, mock
}

func createUser(t *testing.T, db *gorm.DB, username string) *models.User {
	t.Helper()
	u := &models.User{Username: username, Email: username + "@example.com", Password: "x"}
	require.NoError(t, db.Create(u).Error)
	return u
}

func createJournal(t *testing.T, db *gorm.DB, owner *models.User, title string, private bool) *models.Journal {
	t.Helper()
	j := &models.Journal{Title: title, UserID: owner.ID, IsPrivate: private}
	require.NoError(t, db.Omit("User").Create(j).Error)
	return j
}

func createPost(t *testing.T, db *gorm.DB, owner *models.User, j *models.Journal, text string) *models.Post {
	t.Helper()
	p := &models.Post{Text: text, UserID: owner.ID, JournalID: j.ID, IsPrivate: j.IsPrivate}
	require.NoError(t, db.Omit("User", "Journal").Create(p).Error)
	return p
}
