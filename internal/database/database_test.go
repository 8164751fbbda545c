package database

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"journals/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func TestMigrateCreatesSchema(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), GormConfig())
	require.NoError(t, err)
	require.NoError(t, Migrate(db))

	for _, m := range PersistentModels() {
		assert.True(t, db.Migrator().HasTable(m), "%T", m)
	}
	assert.True(t, db.Migrator().HasIndex(&models.Follow{}, "idx_follow_pair"))
}

func TestTranslateErrorOnDuplicateFollow(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), GormConfig())
	require.NoError(t, err)
	require.NoError(t, Migrate(db))

	require.NoError(t, db.Create(&models.Follow{FollowerID: 1, FollowedID: 2}).Error)
	err = db.Create(&models.Follow{FollowerID: 1, FollowedID: 2}).Error
	assert.True(t, errors.Is(err, gorm.ErrDuplicatedKey), "got %v", err)
}

func TestReadDBFallback(t *testing.T) {
	assert.Nil(t, GetReadDB())

	db, err := gorm.Open(sqlite.Open(":memory:"), GormConfig())
	require.NoError(t, err)
	SetReadDB(db)
	t.Cleanup(func() { SetReadDB(nil) })
	assert.Same(t, db, GetReadDB())
}

func TestGormLoggerLevels(t *testing.T) {
	l := NewGormLogger(slog.Default())
	silent := l.LogMode(logger.Silent)
	// silent loggers never evaluate the SQL callback
	silent.Trace(context.Background(), time.Now(), func() (string, int64) {
		t.Fatal("sql callback evaluated for silent logger")
		return "", 0
	}, nil)

	called := false
	l.Trace(context.Background(), time.Now(), func() (string, int64) {
		called = true
		return "SELECT 1", 1
	}, gorm.ErrDuplicatedKey)
	assert.True(t, called)
}
