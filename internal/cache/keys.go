package cache

import (
	"context"
	"fmt"
	"time"
)

const (
	UserKeyPrefix          = "user:%d"
	UnlockKeyPrefix        = "journal_unlock:%d:%d"
	UnlockJournalPattern   = "journal_unlock:%d:*"
	TokenBlacklistPrefix   = "blacklist:%s"
	ChallengeLimitResource = "pin_challenge"
)

const (
	UserTTL = 5 * time.Minute
)

func UserKey(userID uint) string {
	return fmt.Sprintf(UserKeyPrefix, userID)
}

// UnlockKey names the grant letting userID read private journalID.
func UnlockKey(journalID, userID uint) string {
	return fmt.Sprintf(UnlockKeyPrefix, journalID, userID)
}

func TokenBlacklistKey(jti string) string {
	return fmt.Sprintf(TokenBlacklistPrefix, jti)
}

func InvalidateUser(ctx context.Context, userID uint) {
	Invalidate(ctx, UserKey(userID))
}
