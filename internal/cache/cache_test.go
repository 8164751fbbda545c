package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRedis(t *testing.T) *miniredis.Miniredis {
	t.Helper()
	mr := miniredis.RunT(t)
	SetClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	t.Cleanup(func() { SetClient(nil) })
	return mr
}

type cachedUser struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
}

func TestAside(t *testing.T) {
	setupRedis(t)
	ctx := context.Background()

	calls := 0
	fetch := func(dest *cachedUser) func() error {
		return func() error {
			calls++
			*dest = cachedUser{ID: 7, Username: "ada"}
			return nil
		}
	}

	var first cachedUser
	require.NoError(t, Aside(ctx, UserKey(7), &first, UserTTL, fetch(&first)))
	assert.Equal(t, "ada", first.Username)

	var second cachedUser
	require.NoError(t, Aside(ctx, UserKey(7), &second, UserTTL, fetch(&second)))
	assert.Equal(t, "ada", second.Username)
	assert.Equal(t, 1, calls)

	InvalidateUser(ctx, 7)
	var third cachedUser
	require.NoError(t, Aside(ctx, UserKey(7), &third, UserTTL, fetch(&third)))
	assert.Equal(t, 2, calls)
}

func TestAsidePropagatesFetchError(t *testing.T) {
	setupRedis(t)
	var dest cachedUser
	err := Aside(context.Background(), UserKey(1), &dest, UserTTL, func() error {
		return errors.New("db down")
	})
	assert.EqualError(t, err, "db down")

	found, err := GetJSON(context.Background(), UserKey(1), &dest)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestUnlockGrants(t *testing.T) {
	mr := setupRedis(t)
	ctx := context.Background()

	assert.False(t, HasUnlock(ctx, 1, 2))
	require.NoError(t, GrantUnlock(ctx, 1, 2, time.Minute))
	require.NoError(t, GrantUnlock(ctx, 1, 3, time.Minute))
	require.NoError(t, GrantUnlock(ctx, 9, 2, time.Minute))
	assert.True(t, HasUnlock(ctx, 1, 2))
	assert.False(t, HasUnlock(ctx, 1, 0))

	mr.FastForward(2 * time.Minute)
	assert.False(t, HasUnlock(ctx, 1, 2))

	require.NoError(t, GrantUnlock(ctx, 1, 2, time.Minute))
	require.NoError(t, GrantUnlock(ctx, 1, 3, time.Minute))
	require.NoError(t, GrantUnlock(ctx, 9, 2, time.Minute))
	require.NoError(t, RevokeUnlocks(ctx, 1))
	assert.False(t, HasUnlock(ctx, 1, 2))
	assert.False(t, HasUnlock(ctx, 1, 3))
	assert.True(t, HasUnlock(ctx, 9, 2))

	require.NoError(t, GrantUnlock(ctx, 1, 3, time.Minute))
	require.NoError(t, RevokeUnlock(ctx, 9, 2))
	assert.False(t, HasUnlock(ctx, 9, 2))
	assert.True(t, HasUnlock(ctx, 1, 3))
}

func TestTokenBlacklist(t *testing.T) {
	setupRedis(t)
	ctx := context.Background()

	assert.False(t, IsTokenBlacklisted(ctx, "abc"))
	require.NoError(t, BlacklistToken(ctx, "abc", time.Hour))
	assert.True(t, IsTokenBlacklisted(ctx, "abc"))
	assert.False(t, IsTokenBlacklisted(ctx, ""))
}

func TestDisabledCache(t *testing.T) {
	SetClient(nil)
	ctx := context.Background()

	require.NoError(t, GrantUnlock(ctx, 1, 2, time.Minute))
	assert.False(t, HasUnlock(ctx, 1, 2))
	require.NoError(t, RevokeUnlocks(ctx, 1))
	require.NoError(t, BlacklistToken(ctx, "abc", time.Hour))
	assert.False(t, IsTokenBlacklisted(ctx, "abc"))

	calls := 0
	var dest cachedUser
	require.NoError(t, Aside(ctx, UserKey(1), &dest, UserTTL, func() error {
		calls++
		return nil
	}))
	assert.Equal(t, 1, calls)
}
