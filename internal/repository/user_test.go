package repository

import (
	"context"
	"regexp"
	"testing"

	"journals/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserRepository_GetByID(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "users" WHERE "users"."id" = $1 ORDER BY "users"."id" LIMIT $2`)).
		WithArgs(1, 1).
		WillReturnRows(sqlmock.NewRows([]string{"id", "username"}).AddRow(1, "ada"))

	user, err := repo.GetByID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "ada", user.Username)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "users" WHERE "users"."id" = $1 ORDER BY "users"."id" LIMIT $2`)).
		WithArgs(2, 1).
		WillReturnRows(sqlmock.NewRows([]string{"id", "username"}))

	_, err = repo.GetByID(ctx, 2)
	assert.True(t, models.HasCode(err, models.CodeNotFound))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_CreateDuplicate(t *testing.T) {
	db := setupTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &models.User{Username: "ada", Email: "ada@example.com", Password: "x"}))
	err := repo.Create(ctx, &models.User{Username: "ada", Email: "other@example.com", Password: "x"})
	require.Error(t, err)
	assert.True(t, models.HasCode(err, models.CodeValidation))

	got, err := repo.GetByUsername(ctx, "ADA")
	require.NoError(t, err)
	assert.Equal(t, "ada", got.Username)
}
