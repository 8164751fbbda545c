package service

import (
	"context"

	"journals/internal/access"
	"journals/internal/cache"
	"journals/internal/featureflags"
)

// hasUnlock reports whether p holds a live PIN unlock grant for journalID.
// Journal, post and comment reads all go through it so a grant opens the
// same content on every route.
func hasUnlock(ctx context.Context, flags *featureflags.Manager, p access.Principal, journalID uint) bool {
	if p.IsAnonymous() || !flags.Enabled(featureflags.PINUnlock, p.UserID) {
		return false
	}
	return cache.HasUnlock(ctx, journalID, p.UserID)
}
