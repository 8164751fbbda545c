package service

import (
	"context"
	"errors"
	"testing"

	"journals/internal/access"
	"journals/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFollow(t *testing.T) {
	ctx := context.Background()

	t.Run("Rejections", func(t *testing.T) {
		follows := noopFollowRepo()
		follows.createFn = func(context.Context, *models.Follow) error {
			t.Fatal("create must not run")
			return nil
		}
		follows.existsFn = func(_ context.Context, followerID, followedID uint) (bool, error) {
			return followerID == 1 && followedID == 3, nil
		}
		svc := NewFollowService(follows, noopUserRepo(1, 2, 3))

		tests := []struct {
			name     string
			p        access.Principal
			followed uint
			code     string
		}{
			{"Anonymous", access.Anonymous(), 2, models.CodeUnauthorized},
			{"Missing target", access.User(1), 0, models.CodeValidation},
			{"Self", access.User(1), 1, models.CodeSelfFollow},
			{"Unknown user", access.User(1), 99, models.CodeNotFound},
			{"Duplicate", access.User(1), 3, models.CodeDuplicateFollow},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				_, err := svc.Follow(ctx, tt.p, tt.followed)
				assert.True(t, models.HasCode(err, tt.code), "got %v", err)
			})
		}
	})

	t.Run("Creates edge", func(t *testing.T) {
		follows := noopFollowRepo()
		var created *models.Follow
		follows.createFn = func(_ context.Context, f *models.Follow) error {
			created = f
			return nil
		}
		svc := NewFollowService(follows, noopUserRepo(1, 2))

		f, err := svc.Follow(ctx, access.User(1), 2)
		require.NoError(t, err)
		require.NotNil(t, created)
		assert.Equal(t, uint(1), f.FollowerID)
		assert.Equal(t, uint(2), f.FollowedID)
		assert.Equal(t, uint(2), f.Followed.ID)
	})

	t.Run("Race loser gets duplicate", func(t *testing.T) {
		follows := noopFollowRepo()
		follows.createFn = func(context.Context, *models.Follow) error {
			return models.NewDuplicateFollowError(errors.New("duplicate key value violates unique constraint"))
		}
		svc := NewFollowService(follows, noopUserRepo(1, 2))

		_, err := svc.Follow(ctx, access.User(1), 2)
		assert.True(t, models.HasCode(err, models.CodeDuplicateFollow))
	})
}

func TestUnfollow(t *testing.T) {
	ctx := context.Background()
	follows := noopFollowRepo()
	follows.deleteFn = func(_ context.Context, followerID, followedID uint) (bool, error) {
		return followedID == 2, nil
	}
	svc := NewFollowService(follows, noopUserRepo(1, 2))

	assert.NoError(t, svc.Unfollow(ctx, access.User(1), 2))
	assert.True(t, models.HasCode(svc.Unfollow(ctx, access.User(1), 3), models.CodeNotFound))
	assert.True(t, models.HasCode(svc.Unfollow(ctx, access.Anonymous(), 2), models.CodeUnauthorized))
}

func TestFollowListings(t *testing.T) {
	ctx := context.Background()
	follows := noopFollowRepo()
	var search string
	follows.listFollowingFn = func(_ context.Context, userID uint, s string, limit, offset int) ([]*models.Follow, error) {
		search = s
		return []*models.Follow{{FollowerID: userID, FollowedID: 2}}, nil
	}
	svc := NewFollowService(follows, noopUserRepo(1, 2))

	got, err := svc.ListFollowing(ctx, access.User(1), "bo", 20, 0)
	require.NoError(t, err)
	assert.Len(t, got, 1)
	assert.Equal(t, "bo", search)

	_, err = svc.ListFollowing(ctx, access.Anonymous(), "", 20, 0)
	assert.True(t, models.HasCode(err, models.CodeUnauthorized))

	_, err = svc.ListUserFollowers(ctx, 42, 20, 0)
	assert.True(t, models.HasCode(err, models.CodeNotFound))

	_, err = svc.ListUserFollowing(ctx, 2, 20, 0)
	assert.NoError(t, err)
}
