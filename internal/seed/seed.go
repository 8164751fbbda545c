// Package seed populates a development database with users, journals,
// posts, comments and follows. Content goes through the services, so the
// seeded data obeys the same privacy and PIN rules as live traffic.
package seed

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"journals/internal/access"
	"journals/internal/featureflags"
	"journals/internal/middleware"
	"journals/internal/models"
	"journals/internal/repository"
	"journals/internal/service"
	"journals/internal/vault"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// DefaultPassword is the login password of every seeded user.
const DefaultPassword = "password123"

// Options configures the seeder.
type Options struct {
	NumUsers        int
	JournalsPerUser int
	PostsPerJournal int
	CommentsPerPost int
	FollowsPerUser  int
	// PrivatePercent is the share of journals created private, 0-100.
	PrivatePercent int
	// PINPercent is the share of private journals that get a PIN, 0-100.
	PINPercent int
	// SkipBcrypt stores passwords in clear and hashes PINs at minimum cost.
	// Only for tests and throwaway databases.
	SkipBcrypt bool
	// RandSeed makes a run reproducible. Zero seeds from the clock.
	RandSeed int64
}

// DefaultOptions is a small but varied dataset.
func DefaultOptions() Options {
	return Options{
		NumUsers:        20,
		JournalsPerUser: 2,
		PostsPerJournal: 5,
		CommentsPerPost: 2,
		FollowsPerUser:  4,
		PrivatePercent:  30,
		PINPercent:      50,
	}
}

// Summary reports what a run created. PINs maps seeded journal IDs to their
// clear PIN so the challenge flow can be tried by hand.
type Summary struct {
	Users    int
	Journals int
	Posts    int
	Comments int
	Follows  int
	PINs     map[uint]string
}

// Seeder writes demo data.
type Seeder struct {
	db       *gorm.DB
	opts     Options
	journals *service.JournalService
	posts    *service.PostService
	comments *service.CommentService
	follows  *service.FollowService
}

// NewSeeder builds a seeder backed by the real repositories and services.
func NewSeeder(db *gorm.DB, opts Options) *Seeder {
	cost := bcrypt.DefaultCost
	if opts.SkipBcrypt {
		cost = bcrypt.MinCost
	}
	tx := repository.NewTransactor(db)
	journalRepo := repository.NewJournalRepository(db)
	postRepo := repository.NewPostRepository(db)
	flags := featureflags.NewManager("")

	return &Seeder{
		db:   db,
		opts: opts,
		journals: service.NewJournalService(tx, journalRepo, postRepo, vault.NewBcryptVault(cost),
			flags, service.JournalOptions{UnsetPINPolicy: access.UnsetPINAllow}),
		posts:    service.NewPostService(tx, postRepo, journalRepo, flags),
		comments: service.NewCommentService(repository.NewCommentRepository(db), postRepo, journalRepo, flags),
		follows:  service.NewFollowService(repository.NewFollowRepository(db), repository.NewUserRepository(db)),
	}
}

// ClearAll removes every row the seeder can create.
func (s *Seeder) ClearAll() error {
	session := s.db.Session(&gorm.Session{AllowGlobalUpdate: true})
	for _, model := range []any{&models.Comment{}, &models.Post{}, &models.Journal{}, &models.Follow{}, &models.User{}} {
		if err := session.Delete(model).Error; err != nil {
			return fmt.Errorf("clear %T: %w", model, err)
		}
	}
	middleware.Logger.Info("seed data cleared")
	return nil
}

// Run creates the configured dataset.
func (s *Seeder) Run(ctx context.Context) (*Summary, error) {
	seed := s.opts.RandSeed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	gofakeit.Seed(seed)

	sum := &Summary{PINs: make(map[uint]string)}

	users, err := s.createUsers(s.opts.NumUsers)
	if err != nil {
		return nil, fmt.Errorf("failed to create users: %w", err)
	}
	sum.Users = len(users)

	for _, u := range users {
		owner := access.User(u.ID)
		for i := 0; i < s.opts.JournalsPerUser; i++ {
			journal, pin, err := s.createJournal(ctx, owner)
			if err != nil {
				return nil, fmt.Errorf("failed to create journal: %w", err)
			}
			sum.Journals++
			if pin != "" {
				sum.PINs[journal.ID] = pin
			}

			for j := 0; j < s.opts.PostsPerJournal; j++ {
				post, err := s.posts.CreatePost(ctx, service.CreatePostInput{
					Principal: owner,
					JournalID: journal.ID,
					Text:      gofakeit.Paragraph(1, 3, 12, " "),
				})
				if err != nil {
					return nil, fmt.Errorf("failed to create post: %w", err)
				}
				sum.Posts++

				n, err := s.createComments(ctx, users, post)
				if err != nil {
					return nil, err
				}
				sum.Comments += n
			}
		}
	}

	if sum.Follows, err = s.createFollows(ctx, users); err != nil {
		return nil, err
	}

	middleware.Logger.Info("seed complete",
		slog.Int64("rand_seed", seed),
		slog.Int("users", sum.Users),
		slog.Int("journals", sum.Journals),
		slog.Int("posts", sum.Posts),
		slog.Int("comments", sum.Comments),
		slog.Int("follows", sum.Follows),
	)
	return sum, nil
}

// createUsers inserts users directly: account management is owned by the
// auth endpoints, not a service.
func (s *Seeder) createUsers(n int) ([]*models.User, error) {
	password := DefaultPassword
	if !s.opts.SkipBcrypt {
		hashed, err := bcrypt.GenerateFromPassword([]byte(DefaultPassword), bcrypt.DefaultCost)
		if err != nil {
			return nil, err
		}
		password = string(hashed)
	}

	users := make([]*models.User, 0, n)
	for i := 0; i < n; i++ {
		users = append(users, &models.User{
			Username: fmt.Sprintf("%s%d", gofakeit.Username(), i),
			Email:    fmt.Sprintf("user%d.%s", i, gofakeit.Email()),
			Password: password,
		})
	}
	if len(users) == 0 {
		return users, nil
	}
	if err := s.db.Create(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

func (s *Seeder) createJournal(ctx context.Context, owner access.Principal) (*models.Journal, string, error) {
	in := service.CreateJournalInput{
		Principal: owner,
		Title:     truncate(gofakeit.Sentence(3), 200),
		IsPrivate: chance(s.opts.PrivatePercent),
	}
	if gofakeit.Bool() {
		desc := gofakeit.Sentence(12)
		in.Description = &desc
	}

	var pin string
	if in.IsPrivate && chance(s.opts.PINPercent) {
		pin = gofakeit.Numerify("####")
		in.PIN = &pin
	}

	journal, err := s.journals.CreateJournal(ctx, in)
	if err != nil {
		return nil, "", err
	}
	return journal, pin, nil
}

// createComments adds comments from random users. Users that cannot see the
// post are skipped.
func (s *Seeder) createComments(ctx context.Context, users []*models.User, post *models.Post) (int, error) {
	created := 0
	for i := 0; i < s.opts.CommentsPerPost; i++ {
		author := users[gofakeit.Number(0, len(users)-1)]
		_, err := s.comments.CreateComment(ctx, service.CreateCommentInput{
			Principal: access.User(author.ID),
			PostID:    post.ID,
			Text:      gofakeit.Sentence(8),
		})
		if models.HasCode(err, models.CodeNotVisible) {
			continue
		}
		if err != nil {
			return created, fmt.Errorf("failed to create comment: %w", err)
		}
		created++
	}
	return created, nil
}

func (s *Seeder) createFollows(ctx context.Context, users []*models.User) (int, error) {
	if len(users) < 2 {
		return 0, nil
	}
	created := 0
	for _, u := range users {
		for i := 0; i < s.opts.FollowsPerUser; i++ {
			target := users[gofakeit.Number(0, len(users)-1)]
			_, err := s.follows.Follow(ctx, access.User(u.ID), target.ID)
			switch {
			case err == nil:
				created++
			case models.HasCode(err, models.CodeSelfFollow), models.HasCode(err, models.CodeDuplicateFollow):
			default:
				return created, fmt.Errorf("failed to create follow: %w", err)
			}
		}
	}
	return created, nil
}

func chance(percent int) bool {
	if percent <= 0 {
		return false
	}
	return gofakeit.Number(1, 100) <= percent
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
