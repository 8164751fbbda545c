package service

import (
	"context"

	"journals/internal/access"
	"journals/internal/models"
	"journals/internal/repository"

	"gorm.io/gorm"
)

// txStub runs fn with a nil transaction; stub repositories ignore it.
type txStub struct {
	calls int
}

func (s *txStub) Transaction(_ context.Context, fn func(tx *gorm.DB) error) error {
	s.calls++
	return fn(nil)
}

type journalRepoStub struct {
	createFn       func(context.Context, *models.Journal) error
	getByIDFn      func(context.Context, uint) (*models.Journal, error)
	getForUpdateFn func(context.Context, uint) (*models.Journal, error)
	getForShareFn  func(context.Context, uint) (*models.Journal, error)
	listFn         func(context.Context, access.Principal, int, int) ([]*models.Journal, error)
	updateFn       func(context.Context, *models.Journal) error
	deleteFn       func(context.Context, uint) error
}

func (s *journalRepoStub) WithTx(*gorm.DB) repository.JournalRepository { return s }
func (s *journalRepoStub) Create(ctx context.Context, j *models.Journal) error {
	return s.createFn(ctx, j)
}
func (s *journalRepoStub) GetByID(ctx context.Context, id uint) (*models.Journal, error) {
	return s.getByIDFn(ctx, id)
}
func (s *journalRepoStub) GetForUpdate(ctx context.Context, id uint) (*models.Journal, error) {
	return s.getForUpdateFn(ctx, id)
}
func (s *journalRepoStub) GetForShare(ctx context.Context, id uint) (*models.Journal, error) {
	return s.getForShareFn(ctx, id)
}
func (s *journalRepoStub) List(ctx context.Context, p access.Principal, limit, offset int) ([]*models.Journal, error) {
	return s.listFn(ctx, p, limit, offset)
}
func (s *journalRepoStub) Update(ctx context.Context, j *models.Journal) error {
	return s.updateFn(ctx, j)
}
func (s *journalRepoStub) Delete(ctx context.Context, id uint) error {
	return s.deleteFn(ctx, id)
}

// noopJournalRepo serves every lookup from journal, or NotFound when nil.
func noopJournalRepo(journal *models.Journal) *journalRepoStub {
	get := func(_ context.Context, id uint) (*models.Journal, error) {
		if journal == nil || journal.ID != id {
			return nil, models.NewNotFoundError("Journal", id)
		}
		cp := *journal
		return &cp, nil
	}
	return &journalRepoStub{
		createFn:       func(context.Context, *models.Journal) error { return nil },
		getByIDFn:      get,
		getForUpdateFn: get,
		getForShareFn:  get,
		listFn: func(context.Context, access.Principal, int, int) ([]*models.Journal, error) {
			return nil, nil
		},
		updateFn: func(context.Context, *models.Journal) error { return nil },
		deleteFn: func(context.Context, uint) error { return nil },
	}
}

type postRepoStub struct {
	createFn              func(context.Context, *models.Post) error
	getByIDFn             func(context.Context, uint) (*models.Post, error)
	listFn                func(context.Context, access.Principal, repository.PostFilter, int, int) ([]*models.Post, error)
	listByJournalFn       func(context.Context, uint, bool, int, int) ([]*models.Post, error)
	updateFn              func(context.Context, *models.Post) error
	deleteFn              func(context.Context, uint) error
	setPrivacyByJournalFn func(context.Context, uint, bool) (int64, error)
}

func (s *postRepoStub) WithTx(*gorm.DB) repository.PostRepository { return s }
func (s *postRepoStub) Create(ctx context.Context, p *models.Post) error {
	return s.createFn(ctx, p)
}
func (s *postRepoStub) GetByID(ctx context.Context, id uint) (*models.Post, error) {
	return s.getByIDFn(ctx, id)
}
func (s *postRepoStub) List(ctx context.Context, p access.Principal, f repository.PostFilter, limit, offset int) ([]*models.Post, error) {
	return s.listFn(ctx, p, f, limit, offset)
}
func (s *postRepoStub) ListByJournal(ctx context.Context, journalID uint, oldestFirst bool, limit, offset int) ([]*models.Post, error) {
	return s.listByJournalFn(ctx, journalID, oldestFirst, limit, offset)
}
func (s *postRepoStub) Update(ctx context.Context, p *models.Post) error {
	return s.updateFn(ctx, p)
}
func (s *postRepoStub) Delete(ctx context.Context, id uint) error {
	return s.deleteFn(ctx, id)
}
func (s *postRepoStub) SetPrivacyByJournal(ctx context.Context, journalID uint, private bool) (int64, error) {
	return s.setPrivacyByJournalFn(ctx, journalID, private)
}

// noopPostRepo serves GetByID from post, or NotFound when nil.
func noopPostRepo(post *models.Post) *postRepoStub {
	return &postRepoStub{
		createFn: func(context.Context, *models.Post) error { return nil },
		getByIDFn: func(_ context.Context, id uint) (*models.Post, error) {
			if post == nil || post.ID != id {
				return nil, models.NewNotFoundError("Post", id)
			}
			cp := *post
			return &cp, nil
		},
		listFn: func(context.Context, access.Principal, repository.PostFilter, int, int) ([]*models.Post, error) {
			return nil, nil
		},
		listByJournalFn: func(context.Context, uint, bool, int, int) ([]*models.Post, error) {
			return nil, nil
		},
		updateFn: func(context.Context, *models.Post) error { return nil },
		deleteFn: func(context.Context, uint) error { return nil },
		setPrivacyByJournalFn: func(context.Context, uint, bool) (int64, error) {
			return 0, nil
		},
	}
}

type commentRepoStub struct {
	createFn     func(context.Context, *models.Comment) error
	getByIDFn    func(context.Context, uint) (*models.Comment, error)
	listByPostFn func(context.Context, uint, int, int) ([]*models.Comment, error)
	updateFn     func(context.Context, *models.Comment) error
	deleteFn     func(context.Context, uint) error
}

func (s *commentRepoStub) Create(ctx context.Context, c *models.Comment) error {
	return s.createFn(ctx, c)
}
func (s *commentRepoStub) GetByID(ctx context.Context, id uint) (*models.Comment, error) {
	return s.getByIDFn(ctx, id)
}
func (s *commentRepoStub) ListByPost(ctx context.Context, postID uint, limit, offset int) ([]*models.Comment, error) {
	return s.listByPostFn(ctx, postID, limit, offset)
}
func (s *commentRepoStub) Update(ctx context.Context, c *models.Comment) error {
	return s.updateFn(ctx, c)
}
func (s *commentRepoStub) Delete(ctx context.Context, id uint) error {
	return s.deleteFn(ctx, id)
}

func noopCommentRepo(comment *models.Comment) *commentRepoStub {
	return &commentRepoStub{
		createFn: func(context.Context, *models.Comment) error { return nil },
		getByIDFn: func(_ context.Context, id uint) (*models.Comment, error) {
			if comment == nil || comment.ID != id {
				return nil, models.NewNotFoundError("Comment", id)
			}
			cp := *comment
			return &cp, nil
		},
		listByPostFn: func(context.Context, uint, int, int) ([]*models.Comment, error) {
			return nil, nil
		},
		updateFn: func(context.Context, *models.Comment) error { return nil },
		deleteFn: func(context.Context, uint) error { return nil },
	}
}

type followRepoStub struct {
	createFn        func(context.Context, *models.Follow) error
	existsFn        func(context.Context, uint, uint) (bool, error)
	deleteFn        func(context.Context, uint, uint) (bool, error)
	listFollowingFn func(context.Context, uint, string, int, int) ([]*models.Follow, error)
	listFollowersFn func(context.Context, uint, int, int) ([]*models.Follow, error)
}

func (s *followRepoStub) Create(ctx context.Context, f *models.Follow) error {
	return s.createFn(ctx, f)
}
func (s *followRepoStub) Exists(ctx context.Context, followerID, followedID uint) (bool, error) {
	return s.existsFn(ctx, followerID, followedID)
}
func (s *followRepoStub) Delete(ctx context.Context, followerID, followedID uint) (bool, error) {
	return s.deleteFn(ctx, followerID, followedID)
}
func (s *followRepoStub) ListFollowing(ctx context.Context, userID uint, search string, limit, offset int) ([]*models.Follow, error) {
	return s.listFollowingFn(ctx, userID, search, limit, offset)
}
func (s *followRepoStub) ListFollowers(ctx context.Context, userID uint, limit, offset int) ([]*models.Follow, error) {
	return s.listFollowersFn(ctx, userID, limit, offset)
}

func noopFollowRepo() *followRepoStub {
	return &followRepoStub{
		createFn: func(context.Context, *models.Follow) error { return nil },
		existsFn: func(context.Context, uint, uint) (bool, error) { return false, nil },
		deleteFn: func(context.Context, uint, uint) (bool, error) { return true, nil },
		listFollowingFn: func(context.Context, uint, string, int, int) ([]*models.Follow, error) {
			return nil, nil
		},
		listFollowersFn: func(context.Context, uint, int, int) ([]*models.Follow, error) {
			return nil, nil
		},
	}
}

type userRepoStub struct {
	getByIDFn       func(context.Context, uint) (*models.User, error)
	getByUsernameFn func(context.Context, string) (*models.User, error)
	createFn        func(context.Context, *models.User) error
}

func (s *userRepoStub) GetByID(ctx context.Context, id uint) (*models.User, error) {
	return s.getByIDFn(ctx, id)
}
func (s *userRepoStub) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return s.getByUsernameFn(ctx, username)
}
func (s *userRepoStub) Create(ctx context.Context, u *models.User) error {
	return s.createFn(ctx, u)
}

// noopUserRepo knows the users with the given ids.
func noopUserRepo(ids ...uint) *userRepoStub {
	known := make(map[uint]bool, len(ids))
	for _, id := range ids {
		known[id] = true
	}
	return &userRepoStub{
		getByIDFn: func(_ context.Context, id uint) (*models.User, error) {
			if !known[id] {
				return nil, models.NewNotFoundError("User", id)
			}
			return &models.User{ID: id}, nil
		},
		getByUsernameFn: func(_ context.Context, username string) (*models.User, error) {
			return nil, models.NewNotFoundError("User", username)
		},
		createFn: func(context.Context, *models.User) error { return nil },
	}
}
