package service

import (
	"context"
	"testing"

	"journals/internal/access"
	"journals/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommentService_RequiresReadablePost(t *testing.T) {
	ctx := context.Background()
	journal := &models.Journal{ID: 2, UserID: 1, IsPrivate: true}
	post := &models.Post{ID: 4, UserID: 1, JournalID: 2, IsPrivate: true, Journal: journal}

	comments := noopCommentRepo(nil)
	comments.createFn = func(_ context.Context, c *models.Comment) error {
		c.ID = 30
		return nil
	}
	comments.getByIDFn = func(_ context.Context, id uint) (*models.Comment, error) {
		return &models.Comment{ID: id, PostID: 4, UserID: 1, Text: "mine"}, nil
	}
	svc := NewCommentService(comments, noopPostRepo(post), noopJournalRepo(journal), nil)

	_, err := svc.ListComments(ctx, access.User(9), 4, 20, 0)
	assert.True(t, models.HasCode(err, models.CodeNotVisible))

	_, err = svc.CreateComment(ctx, CreateCommentInput{Principal: access.User(9), PostID: 4, Text: "hi"})
	assert.True(t, models.HasCode(err, models.CodeNotVisible))

	_, err = svc.CreateComment(ctx, CreateCommentInput{Principal: access.Anonymous(), PostID: 4, Text: "hi"})
	assert.True(t, models.HasCode(err, models.CodeUnauthorized))

	_, err = svc.CreateComment(ctx, CreateCommentInput{Principal: access.User(1), PostID: 4, Text: ""})
	assert.True(t, models.HasCode(err, models.CodeValidation))

	c, err := svc.CreateComment(ctx, CreateCommentInput{Principal: access.User(1), PostID: 4, Text: "mine"})
	require.NoError(t, err)
	assert.Equal(t, uint(30), c.ID)

	_, err = svc.ListComments(ctx, access.User(1), 4, 20, 0)
	assert.NoError(t, err)
}

func TestCommentService_AuthorOnlyMutations(t *testing.T) {
	ctx := context.Background()
	stored := &models.Comment{ID: 7, PostID: 4, UserID: 3, Text: "orig"}

	var updated *models.Comment
	comments := noopCommentRepo(stored)
	comments.updateFn = func(_ context.Context, c *models.Comment) error {
		updated = c
		return nil
	}
	deleted := false
	comments.deleteFn = func(context.Context, uint) error {
		deleted = true
		return nil
	}
	svc := NewCommentService(comments, noopPostRepo(nil), noopJournalRepo(nil), nil)

	_, err := svc.UpdateComment(ctx, UpdateCommentInput{Principal: access.User(1), PostID: 4, CommentID: 7, Text: "x"})
	assert.True(t, models.HasCode(err, models.CodePermissionDenied))
	assert.Nil(t, updated)

	err = svc.DeleteComment(ctx, access.User(1), 4, 7)
	assert.True(t, models.HasCode(err, models.CodePermissionDenied))
	assert.False(t, deleted)

	// Comment ids are scoped to their post.
	err = svc.DeleteComment(ctx, access.User(3), 5, 7)
	assert.True(t, models.HasCode(err, models.CodeNotFound))

	c, err := svc.UpdateComment(ctx, UpdateCommentInput{Principal: access.User(3), PostID: 4, CommentID: 7, Text: "edited"})
	require.NoError(t, err)
	assert.Equal(t, "edited", c.Text)

	require.NoError(t, svc.DeleteComment(ctx, access.User(3), 4, 7))
	assert.True(t, deleted)
}
