// Package privacy keeps post privacy consistent with the owning journal.
//
// The journal is the only source of truth: every post persistence point
// calls DerivePostPrivacy against the journal row read at save time, and a
// journal whose flag flips triggers a bulk sweep over its posts. The sweep is
// best-effort under concurrency; the per-post derivation is what guarantees
// the invariant.
package privacy

import "journals/internal/models"

// DerivePostPrivacy returns the privacy a post inside j must carry.
func DerivePostPrivacy(j *models.Journal) bool {
	return j.IsPrivate
}

// ApplyToPost forces p.IsPrivate to match j, ignoring whatever p carried.
func ApplyToPost(p *models.Post, j *models.Journal) {
	p.IsPrivate = DerivePostPrivacy(j)
}

// NormalizeJournal clears the PIN hash of a public journal. A private
// journal keeps whatever hash it has, including none.
func NormalizeJournal(j *models.Journal) {
	if !j.IsPrivate {
		j.PINHash = nil
	}
}

// CascadeNeeded reports whether saving a journal with flag next requires the
// post sweep. prev is nil for creations, which never cascade.
func CascadeNeeded(prev *models.Journal, next bool) bool {
	return prev != nil && prev.IsPrivate != next
}
