package service

import (
	"context"
	"testing"
	"time"

	"journals/internal/access"
	"journals/internal/cache"
	"journals/internal/featureflags"
	"journals/internal/models"
	"journals/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreatePost_DerivesPrivacy(t *testing.T) {
	ctx := context.Background()

	for _, private := range []bool{false, true} {
		journals := noopJournalRepo(&models.Journal{ID: 2, UserID: 1, IsPrivate: private})
		var created *models.Post
		posts := noopPostRepo(nil)
		posts.createFn = func(_ context.Context, p *models.Post) error {
			p.ID = 11
			created = p
			return nil
		}
		posts.getByIDFn = func(context.Context, uint) (*models.Post, error) { return created, nil }
		tx := &txStub{}
		svc := NewPostService(tx, posts, journals, nil)

		post, err := svc.CreatePost(ctx, CreatePostInput{Principal: access.User(1), JournalID: 2, Text: "hello"})
		require.NoError(t, err)
		assert.Equal(t, private, post.IsPrivate)
		assert.Equal(t, uint(1), post.UserID)
		assert.Equal(t, 1, tx.calls)
	}
}

func TestCreatePost_Rejections(t *testing.T) {
	ctx := context.Background()
	posts := noopPostRepo(nil)
	posts.createFn = func(context.Context, *models.Post) error {
		t.Fatal("create must not run")
		return nil
	}
	svc := NewPostService(&txStub{}, posts, noopJournalRepo(&models.Journal{ID: 2, UserID: 1}), nil)

	tests := []struct {
		name string
		in   CreatePostInput
		code string
	}{
		{"Anonymous", CreatePostInput{JournalID: 2, Text: "x"}, models.CodeUnauthorized},
		{"No journal", CreatePostInput{Principal: access.User(1), Text: "x"}, models.CodeValidation},
		{"Empty text", CreatePostInput{Principal: access.User(1), JournalID: 2, Text: " "}, models.CodeValidation},
		{"Foreign journal", CreatePostInput{Principal: access.User(3), JournalID: 2, Text: "x"}, models.CodePermissionDenied},
		{"Missing journal", CreatePostInput{Principal: access.User(1), JournalID: 9, Text: "x"}, models.CodeNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreatePost(ctx, tt.in)
			assert.True(t, models.HasCode(err, tt.code), "got %v", err)
		})
	}
}

func TestUpdatePost(t *testing.T) {
	ctx := context.Background()
	stored := &models.Post{ID: 4, UserID: 1, JournalID: 2, Text: "old", IsPrivate: false}
	journals := noopJournalRepo(&models.Journal{ID: 2, UserID: 1, IsPrivate: true})

	t.Run("Re-derives from stored journal", func(t *testing.T) {
		var saved *models.Post
		posts := noopPostRepo(stored)
		posts.updateFn = func(_ context.Context, p *models.Post) error {
			saved = p
			return nil
		}
		svc := NewPostService(&txStub{}, posts, journals, nil)

		post, err := svc.UpdatePost(ctx, UpdatePostInput{Principal: access.User(1), PostID: 4, JournalID: 2, Text: "new"})
		require.NoError(t, err)
		require.NotNil(t, saved)
		assert.True(t, saved.IsPrivate)
		assert.Equal(t, "new", post.Text)
		assert.Equal(t, uint(2), post.JournalID)
	})

	t.Run("Journal is immutable", func(t *testing.T) {
		svc := NewPostService(&txStub{}, noopPostRepo(stored), journals, nil)
		_, err := svc.UpdatePost(ctx, UpdatePostInput{Principal: access.User(1), PostID: 4, JournalID: 3, Text: "new"})
		assert.True(t, models.HasCode(err, models.CodeValidation))
	})

	t.Run("Non-owner", func(t *testing.T) {
		svc := NewPostService(&txStub{}, noopPostRepo(stored), journals, nil)
		_, err := svc.UpdatePost(ctx, UpdatePostInput{Principal: access.User(2), PostID: 4, Text: "new"})
		assert.True(t, models.HasCode(err, models.CodePermissionDenied))

		err = svc.DeletePost(ctx, access.User(2), 4)
		assert.True(t, models.HasCode(err, models.CodePermissionDenied))
	})
}

func TestGetPost_Visibility(t *testing.T) {
	ctx := context.Background()
	journal := &models.Journal{ID: 2, UserID: 1, IsPrivate: true}
	// A private post written by someone other than the journal owner.
	post := &models.Post{ID: 4, UserID: 5, JournalID: 2, IsPrivate: true, Journal: journal}
	svc := NewPostService(&txStub{}, noopPostRepo(post), noopJournalRepo(journal), nil)

	for _, p := range []access.Principal{access.User(1), access.User(5)} {
		_, err := svc.GetPost(ctx, p, 4)
		assert.NoError(t, err)
	}
	for _, p := range []access.Principal{access.Anonymous(), access.User(9)} {
		_, err := svc.GetPost(ctx, p, 4)
		assert.True(t, models.HasCode(err, models.CodeNotVisible))
	}
}

func TestUnlockGrantOpensPostAndComments(t *testing.T) {
	setupRedis(t)
	ctx := context.Background()
	hash := "hashed:1234"
	journal := &models.Journal{ID: 2, UserID: 1, IsPrivate: true, PINHash: &hash}
	post := &models.Post{ID: 4, UserID: 1, JournalID: 2, IsPrivate: true, Journal: journal}
	comments := noopCommentRepo(nil)
	comments.listByPostFn = func(_ context.Context, postID uint, limit, offset int) ([]*models.Comment, error) {
		return []*models.Comment{{ID: 1, PostID: postID, UserID: 1, Text: "note"}}, nil
	}

	flags := featureflags.NewManager("")
	posts := NewPostService(&txStub{}, noopPostRepo(post), noopJournalRepo(journal), flags)
	commentSvc := NewCommentService(comments, noopPostRepo(post), noopJournalRepo(journal), flags)
	reader := access.User(9)

	_, err := posts.GetPost(ctx, reader, 4)
	require.True(t, models.HasCode(err, models.CodeNotVisible))

	require.NoError(t, cache.GrantUnlock(ctx, 2, 9, time.Minute))

	got, err := posts.GetPost(ctx, reader, 4)
	require.NoError(t, err)
	assert.Equal(t, uint(4), got.ID)

	list, err := commentSvc.ListComments(ctx, reader, 4, 20, 0)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	t.Run("OtherUserStillBlocked", func(t *testing.T) {
		_, err := posts.GetPost(ctx, access.User(8), 4)
		assert.True(t, models.HasCode(err, models.CodeNotVisible))
	})

	t.Run("FlagOff", func(t *testing.T) {
		off := NewPostService(&txStub{}, noopPostRepo(post), noopJournalRepo(journal), featureflags.NewManager("pin_unlock=off"))
		_, err := off.GetPost(ctx, reader, 4)
		assert.True(t, models.HasCode(err, models.CodeNotVisible))
	})
}

func TestListPosts_PassesFilter(t *testing.T) {
	posts := noopPostRepo(nil)
	var got repository.PostFilter
	posts.listFn = func(_ context.Context, p access.Principal, f repository.PostFilter, limit, offset int) ([]*models.Post, error) {
		got = f
		assert.Equal(t, access.User(3), p)
		assert.Equal(t, 10, limit)
		return nil, nil
	}
	svc := NewPostService(&txStub{}, posts, noopJournalRepo(nil), nil)

	_, err := svc.ListPosts(context.Background(), ListPostsInput{
		Principal: access.User(3), Search: " rain ", Author: "bob", JournalID: 7, Limit: 10,
	})
	require.NoError(t, err)
	assert.Equal(t, repository.PostFilter{Search: "rain", Author: "bob", JournalID: 7}, got)
}
