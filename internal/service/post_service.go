package service

import (
	"context"
	"strings"

	"journals/internal/access"
	"journals/internal/featureflags"
	"journals/internal/models"
	"journals/internal/observability"
	"journals/internal/privacy"
	"journals/internal/repository"

	"gorm.io/gorm"
)

const maxPostTextLen = 50000

type PostService struct {
	tx          repository.Transactor
	postRepo    repository.PostRepository
	journalRepo repository.JournalRepository
	flags       *featureflags.Manager
}

// CreatePostInput has no privacy field: a post always takes its journal's.
type CreatePostInput struct {
	Principal access.Principal
	JournalID uint
	Text      string
	ImageURL  *string
}

// UpdatePostInput replaces a post's text and image. JournalID may repeat the
// post's journal or be zero; any other value is rejected.
type UpdatePostInput struct {
	Principal access.Principal
	PostID    uint
	JournalID uint
	Text      string
	ImageURL  *string
}

type ListPostsInput struct {
	Principal access.Principal
	Search    string
	Author    string
	JournalID uint
	Limit     int
	Offset    int
}

func NewPostService(
	tx repository.Transactor,
	postRepo repository.PostRepository,
	journalRepo repository.JournalRepository,
	flags *featureflags.Manager,
) *PostService {
	return &PostService{
		tx:          tx,
		postRepo:    postRepo,
		journalRepo: journalRepo,
		flags:       flags,
	}
}

func validatePostText(text string) error {
	if strings.TrimSpace(text) == "" {
		return models.NewValidationError("Text is required")
	}
	if len(text) > maxPostTextLen {
		return models.NewValidationError("Text too long (max 50000 characters)")
	}
	return nil
}

// CreatePost adds a post to a journal the principal owns. The journal row is
// read under a shared lock so its privacy cannot flip before commit.
func (s *PostService) CreatePost(ctx context.Context, in CreatePostInput) (*models.Post, error) {
	if in.Principal.IsAnonymous() {
		return nil, models.NewUnauthorizedError("Authentication required")
	}
	if in.JournalID == 0 {
		return nil, models.NewValidationError("Journal is required")
	}
	if err := validatePostText(in.Text); err != nil {
		return nil, err
	}

	post := &models.Post{
		Text:      in.Text,
		ImageURL:  in.ImageURL,
		UserID:    in.Principal.UserID,
		JournalID: in.JournalID,
	}
	err := s.tx.Transaction(ctx, func(tx *gorm.DB) error {
		journal, err := s.journalRepo.WithTx(tx).GetForShare(ctx, in.JournalID)
		if err != nil {
			return err
		}
		if err := access.RequireJournalOwnerForPost(in.Principal, journal); err != nil {
			observability.AccessDenied.WithLabelValues("create_post").Inc()
			return err
		}
		privacy.ApplyToPost(post, journal)
		return s.postRepo.WithTx(tx).Create(ctx, post)
	})
	if err != nil {
		return nil, err
	}
	return s.postRepo.GetByID(ctx, post.ID)
}

// UpdatePost rewrites the post and re-derives its privacy from the journal
// it already belongs to.
func (s *PostService) UpdatePost(ctx context.Context, in UpdatePostInput) (*models.Post, error) {
	if err := validatePostText(in.Text); err != nil {
		return nil, err
	}

	var post *models.Post
	err := s.tx.Transaction(ctx, func(tx *gorm.DB) error {
		posts := s.postRepo.WithTx(tx)
		current, err := posts.GetByID(ctx, in.PostID)
		if err != nil {
			return err
		}
		if err := access.RequireOwner(in.Principal, current.UserID, "update"); err != nil {
			observability.AccessDenied.WithLabelValues("update_post").Inc()
			return err
		}
		if in.JournalID != 0 && in.JournalID != current.JournalID {
			return models.NewValidationError("A post cannot be moved to another journal")
		}

		journal, err := s.journalRepo.WithTx(tx).GetForShare(ctx, current.JournalID)
		if err != nil {
			return err
		}
		current.Text = in.Text
		current.ImageURL = in.ImageURL
		privacy.ApplyToPost(current, journal)
		current.Journal = journal

		if err := posts.Update(ctx, current); err != nil {
			return err
		}
		post = current
		return nil
	})
	if err != nil {
		return nil, err
	}
	return post, nil
}

func (s *PostService) DeletePost(ctx context.Context, p access.Principal, postID uint) error {
	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		return err
	}
	if err := access.RequireOwner(p, post.UserID, "delete"); err != nil {
		observability.AccessDenied.WithLabelValues("delete_post").Inc()
		return err
	}
	return s.postRepo.Delete(ctx, postID)
}

func (s *PostService) GetPost(ctx context.Context, p access.Principal, postID uint) (*models.Post, error) {
	return readablePost(ctx, s.postRepo, s.journalRepo, s.flags, p, postID)
}

func (s *PostService) ListPosts(ctx context.Context, in ListPostsInput) ([]*models.Post, error) {
	filter := repository.PostFilter{
		Search:    strings.TrimSpace(in.Search),
		Author:    strings.TrimSpace(in.Author),
		JournalID: in.JournalID,
	}
	return s.postRepo.List(ctx, in.Principal, filter, in.Limit, in.Offset)
}

// readablePost loads a post and applies the read rule, honouring live unlock
// grants on its journal. It fails with NotVisible when p may not see it.
func readablePost(
	ctx context.Context,
	posts repository.PostRepository,
	journals repository.JournalRepository,
	flags *featureflags.Manager,
	p access.Principal,
	postID uint,
) (*models.Post, error) {
	post, err := posts.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	journal := post.Journal
	if journal == nil {
		if journal, err = journals.GetByID(ctx, post.JournalID); err != nil {
			return nil, err
		}
	}
	if !access.CanReadPost(p, post, journal.UserID) && !hasUnlock(ctx, flags, p, journal.ID) {
		observability.AccessDenied.WithLabelValues("read_post").Inc()
		return nil, models.NewNotVisibleError("Post", postID)
	}
	return post, nil
}
