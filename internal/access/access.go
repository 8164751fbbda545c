// Package access decides who may read or write journals, posts and comments.
// Every function takes the principal explicitly; nothing here reads request
// state.
package access

import (
	"journals/internal/models"

	"gorm.io/gorm"
)

// Principal is the identity an operation runs as. The zero value is anonymous.
type Principal struct {
	UserID uint
}

// Anonymous returns the unauthenticated principal.
func Anonymous() Principal {
	return Principal{}
}

// User returns the principal authenticated as userID.
func User(userID uint) Principal {
	return Principal{UserID: userID}
}

// IsAnonymous reports whether p is unauthenticated.
func (p Principal) IsAnonymous() bool {
	return p.UserID == 0
}

// Is reports whether p is the authenticated user userID.
func (p Principal) Is(userID uint) bool {
	return !p.IsAnonymous() && p.UserID == userID
}

// CanReadJournal: public journals are visible to anyone, private ones to
// their owner only.
func CanReadJournal(p Principal, j *models.Journal) bool {
	if !j.IsPrivate {
		return true
	}
	return p.Is(j.UserID)
}

// CanReadPost: a private post is visible to its own owner or to the owner of
// its journal. Both fields are checked; they are not assumed equal.
func CanReadPost(p Principal, post *models.Post, journalOwnerID uint) bool {
	if !post.IsPrivate {
		return true
	}
	return p.Is(post.UserID) || p.Is(journalOwnerID)
}

// RequireOwner fails with PermissionDenied unless p is ownerID. It is checked
// after lookup and before persistence, independently of read visibility.
func RequireOwner(p Principal, ownerID uint, action string) error {
	if !p.Is(ownerID) {
		return models.NewPermissionDeniedError("You can only " + action + " your own content")
	}
	return nil
}

// RequireJournalOwnerForPost fails unless p owns the journal a post is being
// created in.
func RequireJournalOwnerForPost(p Principal, j *models.Journal) error {
	if !p.Is(j.UserID) {
		return models.NewPermissionDeniedError("You can only add posts to your own journals")
	}
	return nil
}

// JournalScope restricts a journal query to what p may list: everything
// public plus everything p owns.
func JournalScope(p Principal) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if p.IsAnonymous() {
			return db.Where("journals.is_private = ?", false)
		}
		return db.Where("journals.is_private = ? OR journals.user_id = ?", false, p.UserID)
	}
}

// PostScope restricts a post query to what p may list: everything public,
// every post p owns, and every post inside a journal p owns.
func PostScope(p Principal) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if p.IsAnonymous() {
			return db.Where("posts.is_private = ?", false)
		}
		return db.Where(
			"posts.is_private = ? OR posts.user_id = ? OR posts.journal_id IN (SELECT id FROM journals WHERE user_id = ?)",
			false, p.UserID, p.UserID,
		)
	}
}
