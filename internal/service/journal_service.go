package service

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"journals/internal/access"
	"journals/internal/cache"
	"journals/internal/export"
	"journals/internal/featureflags"
	"journals/internal/middleware"
	"journals/internal/models"
	"journals/internal/observability"
	"journals/internal/privacy"
	"journals/internal/repository"
	"journals/internal/vault"

	"gorm.io/gorm"
)

const maxJournalTitleLen = 200

// JournalOptions are the configurable parts of journal access.
type JournalOptions struct {
	UnsetPINPolicy access.UnsetPINPolicy
	// UnlockTTL is how long a passed PIN challenge keeps a journal readable
	// for the challenger. Zero disables unlock grants.
	UnlockTTL time.Duration
}

type JournalService struct {
	tx          repository.Transactor
	journalRepo repository.JournalRepository
	postRepo    repository.PostRepository
	pins        vault.Vault
	flags       *featureflags.Manager
	opts        JournalOptions
}

// CreateJournalInput carries a new journal. PIN is nil or empty for none.
type CreateJournalInput struct {
	Principal   access.Principal
	Title       string
	Description *string
	ImageURL    *string
	IsPrivate   bool
	PIN         *string
}

// UpdateJournalInput replaces a journal's mutable fields. A nil PIN keeps the
// stored hash, an empty PIN clears it, anything else must be a valid PIN.
type UpdateJournalInput struct {
	Principal   access.Principal
	JournalID   uint
	Title       string
	Description *string
	ImageURL    *string
	IsPrivate   bool
	PIN         *string
}

type ChallengeInput struct {
	Principal access.Principal
	JournalID uint
	PIN       string
}

// ExportResult is a rendered journal export.
type ExportResult struct {
	Filename string
	Content  []byte
}

func NewJournalService(
	tx repository.Transactor,
	journalRepo repository.JournalRepository,
	postRepo repository.PostRepository,
	pins vault.Vault,
	flags *featureflags.Manager,
	opts JournalOptions,
) *JournalService {
	return &JournalService{
		tx:          tx,
		journalRepo: journalRepo,
		postRepo:    postRepo,
		pins:        pins,
		flags:       flags,
		opts:        opts,
	}
}

func validateJournalTitle(title string) error {
	if strings.TrimSpace(title) == "" {
		return models.NewValidationError("Title is required")
	}
	if len(title) > maxJournalTitleLen {
		return models.NewValidationError("Title too long (max 200 characters)")
	}
	return nil
}

// hashPIN resolves the tri-state PIN field. keep is true when pin is nil.
func (s *JournalService) hashPIN(pin *string) (hash *string, keep bool, err error) {
	if pin == nil {
		return nil, true, nil
	}
	if *pin == "" {
		return vault.Clear(), false, nil
	}
	if err := vault.ValidatePIN(*pin); err != nil {
		return nil, false, err
	}
	h, err := s.pins.Hash(*pin)
	if err != nil {
		return nil, false, err
	}
	return &h, false, nil
}

func (s *JournalService) CreateJournal(ctx context.Context, in CreateJournalInput) (*models.Journal, error) {
	if in.Principal.IsAnonymous() {
		return nil, models.NewUnauthorizedError("Authentication required")
	}
	if err := validateJournalTitle(in.Title); err != nil {
		return nil, err
	}
	hash, _, err := s.hashPIN(in.PIN)
	if err != nil {
		return nil, err
	}

	journal := &models.Journal{
		Title:       in.Title,
		Description: in.Description,
		ImageURL:    in.ImageURL,
		IsPrivate:   in.IsPrivate,
		PINHash:     hash,
		UserID:      in.Principal.UserID,
	}
	privacy.NormalizeJournal(journal)

	if err := s.journalRepo.Create(ctx, journal); err != nil {
		return nil, err
	}
	return s.journalRepo.GetByID(ctx, journal.ID)
}

// UpdateJournal saves the journal and, when its privacy flips, rewrites the
// privacy of every post in it within the same transaction.
func (s *JournalService) UpdateJournal(ctx context.Context, in UpdateJournalInput) (*models.Journal, error) {
	if err := validateJournalTitle(in.Title); err != nil {
		return nil, err
	}
	hash, keepPIN, err := s.hashPIN(in.PIN)
	if err != nil {
		return nil, err
	}

	var (
		journal  *models.Journal
		revoke   bool
		cascaded int64
		flipped  bool
	)
	err = s.tx.Transaction(ctx, func(tx *gorm.DB) error {
		journals := s.journalRepo.WithTx(tx)
		current, err := journals.GetForUpdate(ctx, in.JournalID)
		if err != nil {
			return err
		}
		if err := access.RequireOwner(in.Principal, current.UserID, "update"); err != nil {
			observability.AccessDenied.WithLabelValues("update_journal").Inc()
			return err
		}

		prev := *current
		current.Title = in.Title
		current.Description = in.Description
		current.ImageURL = in.ImageURL
		current.IsPrivate = in.IsPrivate
		if !keepPIN {
			current.PINHash = hash
		}
		privacy.NormalizeJournal(current)

		if err := journals.Update(ctx, current); err != nil {
			return err
		}

		if privacy.CascadeNeeded(&prev, current.IsPrivate) {
			n, err := s.postRepo.WithTx(tx).SetPrivacyByJournal(ctx, current.ID, current.IsPrivate)
			if err != nil {
				return err
			}
			cascaded = n
			flipped = true
		}
		revoke = flipped || !samePINHash(prev.PINHash, current.PINHash)
		journal = current
		return nil
	})
	if err != nil {
		return nil, err
	}

	if flipped {
		observability.PrivacyCascadePosts.Add(float64(cascaded))
		middleware.Logger.InfoContext(ctx, "journal privacy cascaded",
			slog.Uint64("journal_id", uint64(journal.ID)),
			slog.Bool("is_private", journal.IsPrivate),
			slog.Int64("posts", cascaded),
		)
	}
	if revoke {
		s.revokeUnlocks(ctx, journal.ID)
	}
	return journal, nil
}

func samePINHash(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func (s *JournalService) revokeUnlocks(ctx context.Context, journalID uint) {
	if err := cache.RevokeUnlocks(ctx, journalID); err != nil {
		middleware.Logger.WarnContext(ctx, "failed to revoke journal unlocks",
			slog.Uint64("journal_id", uint64(journalID)),
			slog.String("error", err.Error()),
		)
	}
}

// DeleteJournal removes the journal along with its posts and their comments.
func (s *JournalService) DeleteJournal(ctx context.Context, p access.Principal, journalID uint) error {
	journal, err := s.journalRepo.GetByID(ctx, journalID)
	if err != nil {
		return err
	}
	if err := access.RequireOwner(p, journal.UserID, "delete"); err != nil {
		observability.AccessDenied.WithLabelValues("delete_journal").Inc()
		return err
	}
	if err := s.journalRepo.Delete(ctx, journalID); err != nil {
		return err
	}
	s.revokeUnlocks(ctx, journalID)
	return nil
}

// canRead extends the read rule with live unlock grants.
func (s *JournalService) canRead(ctx context.Context, p access.Principal, j *models.Journal) bool {
	return access.CanReadJournal(p, j) || hasUnlock(ctx, s.flags, p, j.ID)
}

func (s *JournalService) GetJournal(ctx context.Context, p access.Principal, journalID uint) (*models.Journal, error) {
	journal, err := s.journalRepo.GetByID(ctx, journalID)
	if err != nil {
		return nil, err
	}
	if !s.canRead(ctx, p, journal) {
		observability.AccessDenied.WithLabelValues("read_journal").Inc()
		return nil, models.NewNotVisibleError("Journal", journalID)
	}
	return journal, nil
}

func (s *JournalService) ListJournals(ctx context.Context, p access.Principal, limit, offset int) ([]*models.Journal, error) {
	return s.journalRepo.List(ctx, p, limit, offset)
}

// ListJournalPosts returns the posts of a journal the principal may read,
// newest first.
func (s *JournalService) ListJournalPosts(ctx context.Context, p access.Principal, journalID uint, limit, offset int) ([]*models.Post, error) {
	if _, err := s.GetJournal(ctx, p, journalID); err != nil {
		return nil, err
	}
	return s.postRepo.ListByJournal(ctx, journalID, false, limit, offset)
}

// Challenge checks a submitted PIN. A verified PIN from an authenticated
// non-owner grants a temporary unlock when the pin_unlock flag is on. A
// journal without a PIN never hands out grants, whatever the unset policy.
func (s *JournalService) Challenge(ctx context.Context, in ChallengeInput) (bool, error) {
	journal, err := s.journalRepo.GetByID(ctx, in.JournalID)
	if err != nil {
		return false, err
	}

	valid, err := access.Challenge(journal, in.PIN, s.pins, s.opts.UnsetPINPolicy)
	if err != nil {
		observability.PINChallenges.WithLabelValues(observability.ChallengeRejected).Inc()
		return false, err
	}
	if !valid {
		observability.PINChallenges.WithLabelValues(observability.ChallengeInvalid).Inc()
		middleware.Logger.InfoContext(ctx, "pin challenge failed",
			slog.Uint64("journal_id", uint64(journal.ID)),
		)
		return false, nil
	}
	observability.PINChallenges.WithLabelValues(observability.ChallengeValid).Inc()

	p := in.Principal
	if journal.HasPIN() && !p.IsAnonymous() && !p.Is(journal.UserID) && s.flags.Enabled(featureflags.PINUnlock, p.UserID) {
		s.grantUnlock(ctx, journal, p.UserID)
	}
	return true, nil
}

// grantUnlock stores the grant and then reloads the journal. An update that
// committed in between may have revoked before the grant landed, so a changed
// PIN or privacy drops the grant again. Updates revoke after commit, which
// covers the other ordering.
func (s *JournalService) grantUnlock(ctx context.Context, verified *models.Journal, userID uint) {
	if err := cache.GrantUnlock(ctx, verified.ID, userID, s.opts.UnlockTTL); err != nil {
		middleware.Logger.WarnContext(ctx, "failed to store journal unlock",
			slog.Uint64("journal_id", uint64(verified.ID)),
			slog.String("error", err.Error()),
		)
		return
	}

	current, err := s.journalRepo.GetByID(ctx, verified.ID)
	if err == nil && current.IsPrivate == verified.IsPrivate && samePINHash(current.PINHash, verified.PINHash) {
		return
	}
	middleware.Logger.InfoContext(ctx, "journal changed during pin challenge, dropping unlock",
		slog.Uint64("journal_id", uint64(verified.ID)),
	)
	if err := cache.RevokeUnlock(ctx, verified.ID, userID); err != nil {
		middleware.Logger.WarnContext(ctx, "failed to drop journal unlock",
			slog.Uint64("journal_id", uint64(verified.ID)),
			slog.String("error", err.Error()),
		)
	}
}

// ExportJournal renders the journal and all its posts, oldest first. Only
// the owner may export.
func (s *JournalService) ExportJournal(ctx context.Context, p access.Principal, journalID uint) (*ExportResult, error) {
	if !s.flags.Enabled(featureflags.JournalExport, p.UserID) {
		return nil, models.NewNotFoundError("Journal export", journalID)
	}
	journal, err := s.journalRepo.GetByID(ctx, journalID)
	if err != nil {
		return nil, err
	}
	if err := access.RequireOwner(p, journal.UserID, "export"); err != nil {
		observability.AccessDenied.WithLabelValues("export_journal").Inc()
		return nil, err
	}
	posts, err := s.postRepo.ListByJournal(ctx, journalID, true, -1, 0)
	if err != nil {
		return nil, err
	}
	content, err := export.Bytes(journal, posts)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return &ExportResult{Filename: export.Filename(journal), Content: content}, nil
}
