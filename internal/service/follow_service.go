package service

import (
	"context"
	"log/slog"

	"journals/internal/access"
	"journals/internal/middleware"
	"journals/internal/models"
	"journals/internal/observability"
	"journals/internal/repository"
)

type FollowService struct {
	followRepo repository.FollowRepository
	userRepo   repository.UserRepository
}

func NewFollowService(followRepo repository.FollowRepository, userRepo repository.UserRepository) *FollowService {
	return &FollowService{
		followRepo: followRepo,
		userRepo:   userRepo,
	}
}

// Follow creates the edge p -> followedID. Concurrent duplicates are settled
// by the unique pair index, so the loser also gets DuplicateFollow.
func (s *FollowService) Follow(ctx context.Context, p access.Principal, followedID uint) (*models.Follow, error) {
	if p.IsAnonymous() {
		return nil, models.NewUnauthorizedError("Authentication required")
	}
	if followedID == 0 {
		return nil, models.NewValidationError("followed_user_id is required")
	}
	if p.UserID == followedID {
		observability.FollowConflicts.WithLabelValues("self").Inc()
		return nil, models.NewSelfFollowError()
	}

	followed, err := s.userRepo.GetByID(ctx, followedID)
	if err != nil {
		return nil, err
	}

	exists, err := s.followRepo.Exists(ctx, p.UserID, followedID)
	if err != nil {
		return nil, err
	}
	if exists {
		observability.FollowConflicts.WithLabelValues("duplicate").Inc()
		return nil, models.NewDuplicateFollowError(nil)
	}

	follow := &models.Follow{FollowerID: p.UserID, FollowedID: followedID}
	if err := s.followRepo.Create(ctx, follow); err != nil {
		if models.HasCode(err, models.CodeDuplicateFollow) {
			observability.FollowConflicts.WithLabelValues("duplicate").Inc()
			middleware.Logger.InfoContext(ctx, "concurrent follow rejected by unique index",
				slog.Uint64("follower_id", uint64(p.UserID)),
				slog.Uint64("followed_id", uint64(followedID)),
				slog.String("error", err.Error()),
			)
		}
		return nil, err
	}
	follow.Followed = *followed
	return follow, nil
}

func (s *FollowService) Unfollow(ctx context.Context, p access.Principal, followedID uint) error {
	if p.IsAnonymous() {
		return models.NewUnauthorizedError("Authentication required")
	}
	removed, err := s.followRepo.Delete(ctx, p.UserID, followedID)
	if err != nil {
		return err
	}
	if !removed {
		return models.NewNotFoundError("Follow", followedID)
	}
	return nil
}

// ListFollowing returns the edges p follows, optionally filtered by the
// followed user's username.
func (s *FollowService) ListFollowing(ctx context.Context, p access.Principal, search string, limit, offset int) ([]*models.Follow, error) {
	if p.IsAnonymous() {
		return nil, models.NewUnauthorizedError("Authentication required")
	}
	return s.followRepo.ListFollowing(ctx, p.UserID, search, limit, offset)
}

func (s *FollowService) ListUserFollowing(ctx context.Context, userID uint, limit, offset int) ([]*models.Follow, error) {
	if _, err := s.userRepo.GetByID(ctx, userID); err != nil {
		return nil, err
	}
	return s.followRepo.ListFollowing(ctx, userID, "", limit, offset)
}

func (s *FollowService) ListUserFollowers(ctx context.Context, userID uint, limit, offset int) ([]*models.Follow, error) {
	if _, err := s.userRepo.GetByID(ctx, userID); err != nil {
		return nil, err
	}
	return s.followRepo.ListFollowers(ctx, userID, limit, offset)
}
