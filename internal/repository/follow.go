package repository

import (
	"context"
	"strings"

	"journals/internal/models"

	"gorm.io/gorm"
)

// FollowRepository defines persistence operations for follow edges.
type FollowRepository interface {
	// Create inserts the edge. A unique violation on the pair index
	// surfaces as a DuplicateFollow error.
	Create(ctx context.Context, follow *models.Follow) error
	Exists(ctx context.Context, followerID, followedID uint) (bool, error)
	// Delete removes the edge and reports whether one existed.
	Delete(ctx context.Context, followerID, followedID uint) (bool, error)
	ListFollowing(ctx context.Context, userID uint, search string, limit, offset int) ([]*models.Follow, error)
	ListFollowers(ctx context.Context, userID uint, limit, offset int) ([]*models.Follow, error)
}

type followRepository struct {
	db *gorm.DB
}

// NewFollowRepository creates a new follow repository
func NewFollowRepository(db *gorm.DB) FollowRepository {
	return &followRepository{db: db}
}

func (r *followRepository) Create(ctx context.Context, follow *models.Follow) error {
	if err := r.db.WithContext(ctx).Omit("Follower", "Followed").Create(follow).Error; err != nil {
		if isUniqueConstraintError(err) {
			return models.NewDuplicateFollowError(err)
		}
		return models.NewInternalError(err)
	}
	return nil
}

func (r *followRepository) Exists(ctx context.Context, followerID, followedID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Follow{}).
		Where("follower_id = ? AND followed_id = ?", followerID, followedID).
		Count(&count).Error
	if err != nil {
		return false, models.NewInternalError(err)
	}
	return count > 0, nil
}

func (r *followRepository) Delete(ctx context.Context, followerID, followedID uint) (bool, error) {
	res := r.db.WithContext(ctx).
		Where("follower_id = ? AND followed_id = ?", followerID, followedID).
		Delete(&models.Follow{})
	if res.Error != nil {
		return false, models.NewInternalError(res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (r *followRepository) ListFollowing(ctx context.Context, userID uint, search string, limit, offset int) ([]*models.Follow, error) {
	limit, offset = normalizePage(limit, offset)
	q := readDB(r.db, false).WithContext(ctx).
		Preload("Follower").
		Preload("Followed").
		Where("follows.follower_id = ?", userID)
	if s := strings.TrimSpace(search); s != "" {
		q = q.Joins("JOIN users followed_users ON followed_users.id = follows.followed_id").
			Where("LOWER(followed_users.username) LIKE ?", "%"+strings.ToLower(s)+"%")
	}

	var follows []*models.Follow
	if err := q.Order("follows.created_at DESC, follows.id DESC").Limit(limit).Offset(offset).Find(&follows).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return follows, nil
}

func (r *followRepository) ListFollowers(ctx context.Context, userID uint, limit, offset int) ([]*models.Follow, error) {
	limit, offset = normalizePage(limit, offset)
	var follows []*models.Follow
	err := readDB(r.db, false).WithContext(ctx).
		Preload("Follower").
		Preload("Followed").
		Where("follows.followed_id = ?", userID).
		Order("follows.created_at DESC, follows.id DESC").
		Limit(limit).
		Offset(offset).
		Find(&follows).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return follows, nil
}
