package cache

import (
	"context"
	"fmt"
	"time"
)

// GrantUnlock records that userID passed the PIN challenge for journalID.
// The grant expires after ttl; a non-positive ttl grants nothing.
func GrantUnlock(ctx context.Context, journalID, userID uint, ttl time.Duration) error {
	if client == nil || ttl <= 0 {
		return nil
	}
	return client.Set(ctx, UnlockKey(journalID, userID), "1", ttl).Err()
}

// HasUnlock reports whether userID holds a live grant for journalID.
func HasUnlock(ctx context.Context, journalID, userID uint) bool {
	if client == nil || userID == 0 {
		return false
	}
	n, err := client.Exists(ctx, UnlockKey(journalID, userID)).Result()
	return err == nil && n > 0
}

// RevokeUnlock drops userID's grant for journalID.
func RevokeUnlock(ctx context.Context, journalID, userID uint) error {
	if client == nil {
		return nil
	}
	return client.Del(ctx, UnlockKey(journalID, userID)).Err()
}

// RevokeUnlocks drops every grant for journalID. Called whenever the
// journal's PIN or privacy changes.
func RevokeUnlocks(ctx context.Context, journalID uint) error {
	if client == nil {
		return nil
	}
	iter := client.Scan(ctx, 0, fmt.Sprintf(UnlockJournalPattern, journalID), 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return err
	}
	if len(keys) == 0 {
		return nil
	}
	return client.Del(ctx, keys...).Err()
}

// BlacklistToken revokes a JWT by its jti until it would have expired anyway.
func BlacklistToken(ctx context.Context, jti string, ttl time.Duration) error {
	if client == nil || jti == "" || ttl <= 0 {
		return nil
	}
	return client.Set(ctx, TokenBlacklistKey(jti), "1", ttl).Err()
}

// IsTokenBlacklisted reports whether jti was revoked.
func IsTokenBlacklisted(ctx context.Context, jti string) bool {
	if client == nil || jti == "" {
		return false
	}
	n, err := client.Exists(ctx, TokenBlacklistKey(jti)).Result()
	return err == nil && n > 0
}
