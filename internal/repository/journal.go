package repository

import (
	"context"
	"errors"

	"journals/internal/access"
	"journals/internal/models"

	"gorm.io/gorm"
)

// JournalRepository defines persistence operations for journals.
type JournalRepository interface {
	WithTx(tx *gorm.DB) JournalRepository
	Create(ctx context.Context, journal *models.Journal) error
	GetByID(ctx context.Context, id uint) (*models.Journal, error)
	// GetForUpdate reads and row-locks a journal for the rest of the
	// transaction. Only meaningful on a repository bound with WithTx.
	GetForUpdate(ctx context.Context, id uint) (*models.Journal, error)
	// GetForShare reads a journal under a shared lock so a concurrent
	// privacy flip waits for the caller's transaction.
	GetForShare(ctx context.Context, id uint) (*models.Journal, error)
	List(ctx context.Context, p access.Principal, limit, offset int) ([]*models.Journal, error)
	Update(ctx context.Context, journal *models.Journal) error
	Delete(ctx context.Context, id uint) error
}

type journalRepository struct {
	db   *gorm.DB
	inTx bool
}

// NewJournalRepository creates a new journal repository
func NewJournalRepository(db *gorm.DB) JournalRepository {
	return &journalRepository{db: db}
}

func (r *journalRepository) WithTx(tx *gorm.DB) JournalRepository {
	return &journalRepository{db: tx, inTx: true}
}

func (r *journalRepository) Create(ctx context.Context, journal *models.Journal) error {
	if err := r.db.WithContext(ctx).Omit("User").Create(journal).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *journalRepository) GetByID(ctx context.Context, id uint) (*models.Journal, error) {
	return r.get(readDB(r.db, r.inTx).WithContext(ctx), id)
}

func (r *journalRepository) GetForUpdate(ctx context.Context, id uint) (*models.Journal, error) {
	return r.get(r.db.WithContext(ctx).Clauses(lockForUpdate), id)
}

func (r *journalRepository) GetForShare(ctx context.Context, id uint) (*models.Journal, error) {
	return r.get(r.db.WithContext(ctx).Clauses(lockForShare), id)
}

func (r *journalRepository) get(db *gorm.DB, id uint) (*models.Journal, error) {
	var journal models.Journal
	if err := db.Preload("User").First(&journal, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Journal", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &journal, nil
}

// List returns the journals p may see, most recently updated first.
func (r *journalRepository) List(ctx context.Context, p access.Principal, limit, offset int) ([]*models.Journal, error) {
	limit, offset = normalizePage(limit, offset)
	var journals []*models.Journal
	err := readDB(r.db, r.inTx).WithContext(ctx).
		Scopes(access.JournalScope(p)).
		Preload("User").
		Order("journals.updated_at DESC, journals.title").
		Limit(limit).
		Offset(offset).
		Find(&journals).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return journals, nil
}

// Update writes every mutable column, including a nil PINHash.
func (r *journalRepository) Update(ctx context.Context, journal *models.Journal) error {
	err := r.db.WithContext(ctx).
		Model(journal).
		Select("Title", "Description", "ImageURL", "IsPrivate", "PINHash", "UpdatedAt").
		Updates(journal).Error
	if err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

// Delete removes the journal together with its posts and their comments.
func (r *journalRepository) Delete(ctx context.Context, id uint) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("post_id IN (?)", tx.Model(&models.Post{}).Select("id").Where("journal_id = ?", id)).
			Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("journal_id = ?", id).Delete(&models.Post{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Journal{}, id).Error
	})
	if err != nil {
		return models.NewInternalError(err)
	}
	return nil
}
