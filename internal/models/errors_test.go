package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusFor(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"Validation", NewValidationError("bad"), fiber.StatusBadRequest},
		{"Permission", NewPermissionDeniedError("no"), fiber.StatusForbidden},
		{"NotVisible", NewNotVisibleError("Journal", 1), fiber.StatusNotFound},
		{"NotFound", NewNotFoundError("Journal", 1), fiber.StatusNotFound},
		{"SelfFollow", NewSelfFollowError(), fiber.StatusBadRequest},
		{"DuplicateFollow", NewDuplicateFollowError(nil), fiber.StatusConflict},
		{"InvalidRequest", NewInvalidRequestError("x"), fiber.StatusBadRequest},
		{"Unauthorized", NewUnauthorizedError("x"), fiber.StatusUnauthorized},
		{"RateLimited", NewRateLimitedError("x"), fiber.StatusTooManyRequests},
		{"Wrapped", fmt.Errorf("ctx: %w", NewPermissionDeniedError("no")), fiber.StatusForbidden},
		{"Plain", errors.New("boom"), fiber.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StatusFor(tt.err))
		})
	}
}

func TestHasCode(t *testing.T) {
	t.Parallel()
	err := fmt.Errorf("follow: %w", NewDuplicateFollowError(errors.New("23505")))
	assert.True(t, HasCode(err, CodeDuplicateFollow))
	assert.False(t, HasCode(err, CodeSelfFollow))
	assert.False(t, HasCode(nil, CodeSelfFollow))
}

func TestJournalViewHidesHash(t *testing.T) {
	t.Parallel()
	hash := "$2a$10$abcdef"
	j := &Journal{ID: 4, Title: "t", UserID: 2, IsPrivate: true, PINHash: &hash, User: User{ID: 2, Username: "ann"}}

	v := j.View()
	assert.True(t, v.HasPIN)
	assert.Equal(t, "ann", v.Author)

	empty := ""
	j.PINHash = &empty
	assert.False(t, j.HasPIN())
}

func respond(t *testing.T, err error) (int, ErrorResponse) {
	t.Helper()
	app := fiber.New()
	app.Get("/", func(c *fiber.Ctx) error { return RespondWithAppError(c, err) })

	resp, testErr := app.Test(httptest.NewRequest("GET", "/", nil))
	require.NoError(t, testErr)
	defer resp.Body.Close()
	body, readErr := io.ReadAll(resp.Body)
	require.NoError(t, readErr)

	var out ErrorResponse
	require.NoError(t, json.Unmarshal(body, &out), string(body))
	return resp.StatusCode, out
}

func TestRespondWithError(t *testing.T) {
	t.Parallel()

	t.Run("NotVisibleLooksMissing", func(t *testing.T) {
		hiddenStatus, hidden := respond(t, NewNotVisibleError("Journal", 1))
		missingStatus, missing := respond(t, NewNotFoundError("Journal", 1))
		assert.Equal(t, missingStatus, hiddenStatus)
		assert.Equal(t, missing, hidden)
		assert.Equal(t, CodeNotFound, hidden.Code)
	})

	t.Run("WrappedNotVisible", func(t *testing.T) {
		_, got := respond(t, fmt.Errorf("load: %w", NewNotVisibleError("Post", 4)))
		assert.Equal(t, ErrorResponse{Error: "Post with ID 4 not found", Code: CodeNotFound}, got)
	})

	t.Run("DuplicateFollowOmitsDriverError", func(t *testing.T) {
		cause := errors.New(`UNIQUE constraint failed: idx_follow_pair (SQLSTATE 23505)`)
		err := NewDuplicateFollowError(cause)
		assert.ErrorIs(t, err, cause)

		status, got := respond(t, err)
		assert.Equal(t, fiber.StatusConflict, status)
		assert.Equal(t, ErrorResponse{Error: "You already follow this user", Code: CodeDuplicateFollow}, got)
	})

	t.Run("ValidationKeepsDetails", func(t *testing.T) {
		err := &AppError{Code: CodeValidation, Message: "bad pin", Err: errors.New("must be 4 digits")}
		_, got := respond(t, err)
		assert.Equal(t, "must be 4 digits", got.Details)
	})

	t.Run("InternalHidesDetails", func(t *testing.T) {
		status, got := respond(t, NewInternalError(errors.New("dial tcp 10.0.0.1:5432")))
		assert.Equal(t, fiber.StatusInternalServerError, status)
		assert.Empty(t, got.Details)
	})
}
