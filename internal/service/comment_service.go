package service

import (
	"context"
	"strings"

	"journals/internal/access"
	"journals/internal/featureflags"
	"journals/internal/models"
	"journals/internal/observability"
	"journals/internal/repository"
)

const maxCommentTextLen = 10000

type CommentService struct {
	commentRepo repository.CommentRepository
	postRepo    repository.PostRepository
	journalRepo repository.JournalRepository
	flags       *featureflags.Manager
}

type CreateCommentInput struct {
	Principal access.Principal
	PostID    uint
	Text      string
}

type UpdateCommentInput struct {
	Principal access.Principal
	PostID    uint
	CommentID uint
	Text      string
}

func NewCommentService(
	commentRepo repository.CommentRepository,
	postRepo repository.PostRepository,
	journalRepo repository.JournalRepository,
	flags *featureflags.Manager,
) *CommentService {
	return &CommentService{
		commentRepo: commentRepo,
		postRepo:    postRepo,
		journalRepo: journalRepo,
		flags:       flags,
	}
}

func validateCommentText(text string) error {
	if strings.TrimSpace(text) == "" {
		return models.NewValidationError("Comment text is required")
	}
	if len(text) > maxCommentTextLen {
		return models.NewValidationError("Comment too long (max 10000 characters)")
	}
	return nil
}

func (s *CommentService) ListComments(ctx context.Context, p access.Principal, postID uint, limit, offset int) ([]*models.Comment, error) {
	if _, err := readablePost(ctx, s.postRepo, s.journalRepo, s.flags, p, postID); err != nil {
		return nil, err
	}
	return s.commentRepo.ListByPost(ctx, postID, limit, offset)
}

func (s *CommentService) CreateComment(ctx context.Context, in CreateCommentInput) (*models.Comment, error) {
	if in.Principal.IsAnonymous() {
		return nil, models.NewUnauthorizedError("Authentication required")
	}
	if err := validateCommentText(in.Text); err != nil {
		return nil, err
	}
	if _, err := readablePost(ctx, s.postRepo, s.journalRepo, s.flags, in.Principal, in.PostID); err != nil {
		return nil, err
	}

	comment := &models.Comment{
		Text:   in.Text,
		UserID: in.Principal.UserID,
		PostID: in.PostID,
	}
	if err := s.commentRepo.Create(ctx, comment); err != nil {
		return nil, err
	}
	return s.commentRepo.GetByID(ctx, comment.ID)
}

// commentOf loads a comment and checks it belongs to postID.
func (s *CommentService) commentOf(ctx context.Context, postID, commentID uint) (*models.Comment, error) {
	comment, err := s.commentRepo.GetByID(ctx, commentID)
	if err != nil {
		return nil, err
	}
	if comment.PostID != postID {
		return nil, models.NewNotFoundError("Comment", commentID)
	}
	return comment, nil
}

func (s *CommentService) UpdateComment(ctx context.Context, in UpdateCommentInput) (*models.Comment, error) {
	if err := validateCommentText(in.Text); err != nil {
		return nil, err
	}
	comment, err := s.commentOf(ctx, in.PostID, in.CommentID)
	if err != nil {
		return nil, err
	}
	if err := access.RequireOwner(in.Principal, comment.UserID, "update"); err != nil {
		observability.AccessDenied.WithLabelValues("update_comment").Inc()
		return nil, err
	}
	comment.Text = in.Text
	if err := s.commentRepo.Update(ctx, comment); err != nil {
		return nil, err
	}
	return comment, nil
}

func (s *CommentService) DeleteComment(ctx context.Context, p access.Principal, postID, commentID uint) error {
	comment, err := s.commentOf(ctx, postID, commentID)
	if err != nil {
		return err
	}
	if err := access.RequireOwner(p, comment.UserID, "delete"); err != nil {
		observability.AccessDenied.WithLabelValues("delete_comment").Inc()
		return err
	}
	return s.commentRepo.Delete(ctx, commentID)
}
