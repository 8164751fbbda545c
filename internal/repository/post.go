package repository

import (
	"context"
	"errors"
	"strings"

	"journals/internal/access"
	"journals/internal/models"

	"gorm.io/gorm"
)

// PostFilter narrows a post listing. Zero fields are ignored.
type PostFilter struct {
	Search    string
	Author    string
	JournalID uint
}

// PostRepository defines the interface for post data operations
type PostRepository interface {
	WithTx(tx *gorm.DB) PostRepository
	Create(ctx context.Context, post *models.Post) error
	GetByID(ctx context.Context, id uint) (*models.Post, error)
	List(ctx context.Context, p access.Principal, filter PostFilter, limit, offset int) ([]*models.Post, error)
	// ListByJournal returns a journal's posts without visibility filtering;
	// callers check journal visibility first. A negative limit returns all.
	ListByJournal(ctx context.Context, journalID uint, oldestFirst bool, limit, offset int) ([]*models.Post, error)
	Update(ctx context.Context, post *models.Post) error
	Delete(ctx context.Context, id uint) error
	// SetPrivacyByJournal is the bulk privacy sweep. It returns the number
	// of rows written.
	SetPrivacyByJournal(ctx context.Context, journalID uint, private bool) (int64, error)
}

type postRepository struct {
	db   *gorm.DB
	inTx bool
}

// NewPostRepository creates a new post repository
func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db}
}

func (r *postRepository) WithTx(tx *gorm.DB) PostRepository {
	return &postRepository{db: tx, inTx: true}
}

func (r *postRepository) Create(ctx context.Context, post *models.Post) error {
	if err := r.db.WithContext(ctx).Omit("User", "Journal").Create(post).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *postRepository) GetByID(ctx context.Context, id uint) (*models.Post, error) {
	var post models.Post
	err := readDB(r.db, r.inTx).WithContext(ctx).
		Preload("User").
		Preload("Journal").
		First(&post, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Post", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &post, nil
}

func (r *postRepository) List(ctx context.Context, p access.Principal, filter PostFilter, limit, offset int) ([]*models.Post, error) {
	limit, offset = normalizePage(limit, offset)
	q := readDB(r.db, r.inTx).WithContext(ctx).
		Model(&models.Post{}).
		Scopes(access.PostScope(p))

	if s := strings.TrimSpace(filter.Search); s != "" {
		q = q.Where("LOWER(posts.text) LIKE ?", "%"+strings.ToLower(s)+"%")
	}
	if a := strings.TrimSpace(filter.Author); a != "" {
		q = q.Where("posts.user_id IN (?)",
			r.db.Model(&models.User{}).Select("id").Where("LOWER(username) = ?", strings.ToLower(a)))
	}
	if filter.JournalID != 0 {
		q = q.Where("posts.journal_id = ?", filter.JournalID)
	}

	var posts []*models.Post
	err := q.Preload("User").
		Order("posts.created_at DESC, posts.id DESC").
		Limit(limit).
		Offset(offset).
		Find(&posts).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return posts, nil
}

func (r *postRepository) ListByJournal(ctx context.Context, journalID uint, oldestFirst bool, limit, offset int) ([]*models.Post, error) {
	order := "created_at DESC, id DESC"
	if oldestFirst {
		order = "created_at ASC, id ASC"
	}
	if limit >= 0 {
		limit, offset = normalizePage(limit, offset)
	}

	var posts []*models.Post
	err := readDB(r.db, r.inTx).WithContext(ctx).
		Preload("User").
		Where("journal_id = ?", journalID).
		Order(order).
		Limit(limit).
		Offset(offset).
		Find(&posts).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return posts, nil
}

func (r *postRepository) Update(ctx context.Context, post *models.Post) error {
	err := r.db.WithContext(ctx).
		Model(post).
		Select("Text", "ImageURL", "IsPrivate").
		Updates(post).Error
	if err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

// Delete removes the post and its comments.
func (r *postRepository) Delete(ctx context.Context, id uint) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("post_id = ?", id).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Post{}, id).Error
	})
	if err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *postRepository) SetPrivacyByJournal(ctx context.Context, journalID uint, private bool) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Post{}).
		Where("journal_id = ?", journalID).
		Update("is_private", private)
	if res.Error != nil {
		return 0, models.NewInternalError(res.Error)
	}
	return res.RowsAffected, nil
}
