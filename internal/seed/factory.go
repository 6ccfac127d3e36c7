// Package seed fills a database with demo users, posts, likes and comments.
// It is intended for development and testing only.
package seed

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"inkwell/internal/access"
	"inkwell/internal/middleware"
	"inkwell/internal/models"
	"inkwell/internal/repository"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// DefaultPassword is the password of every seeded account.
const DefaultPassword = "password123"

// Options controls how much data Seed creates.
type Options struct {
	Users              int
	Posts              int
	MaxLikesPerPost    int
	MaxCommentsPerPost int
	// MaxDays spreads post timestamps over this many days back from now.
	MaxDays int
	// Seed makes generated content reproducible when non-zero.
	Seed int64
}

// Summary counts what Seed created.
type Summary struct {
	Users    int
	Posts    int
	Likes    int
	Comments int
}

// Factory builds entities and persists them through the repositories.
type Factory struct {
	db       *gorm.DB
	store    *repository.Store
	opts     Options
	faker    *gofakeit.Faker
	password string
	now      func() time.Time
}

// NewFactory creates a Factory over db.
func NewFactory(db *gorm.DB, opts Options) *Factory {
	if opts.MaxDays <= 0 {
		opts.MaxDays = 90
	}
	seed := opts.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Factory{
		db:    db,
		store: repository.NewStore(db),
		opts:  opts,
		faker: gofakeit.New(seed),
		now:   func() time.Time { return time.Now().UTC() },
	}
}

func (f *Factory) passwordHash() (string, error) {
	if f.password != "" {
		return f.password, nil
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(DefaultPassword), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	f.password = string(hash)
	return f.password, nil
}

// username returns a fake name that passes sign-up validation and never
// starts with the admin prefix.
func (f *Factory) username(n int) string {
	name := fmt.Sprintf("%s%d", f.faker.Username(), n)
	if access.ValidateUsername(name) != nil || strings.HasPrefix(name, "admin") {
		name = fmt.Sprintf("user%d", n)
	}
	return name
}

// CreateUser persists a regular account. n keeps names and emails unique
// within a run.
func (f *Factory) CreateUser(ctx context.Context, n int) (*models.User, error) {
	hash, err := f.passwordHash()
	if err != nil {
		return nil, err
	}
	name := f.username(n)
	user := &models.User{
		Email:     strings.ToLower(name) + "@example.com",
		Username:  name,
		Password:  hash,
		Role:      models.RoleUser,
		CreatedAt: f.now(),
	}
	if err := f.store.Users.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// CreatePost persists a post by author dated somewhere in the last MaxDays.
func (f *Factory) CreatePost(ctx context.Context, author *models.User) (*models.Post, error) {
	back := time.Duration(f.faker.Number(0, f.opts.MaxDays*24*60)) * time.Minute
	post := &models.Post{
		Title:     strings.TrimSuffix(f.faker.Sentence(5), "."),
		Content:   f.faker.Paragraph(1, 3, 8, "\n"),
		UserID:    author.ID,
		CreatedAt: f.now().Add(-back),
	}
	if err := f.store.Posts.Create(ctx, post); err != nil {
		return nil, err
	}
	return post, nil
}

// Like records user's like on post. An existing like is not an error.
func (f *Factory) Like(ctx context.Context, user *models.User, post *models.Post) (bool, error) {
	err := f.store.Likes.Create(ctx, &models.Like{UserID: user.ID, PostID: post.ID, CreatedAt: f.now()})
	if errors.Is(err, repository.ErrDuplicate) {
		return false, nil
	}
	return err == nil, err
}

// Comment stores a comment by user on post.
func (f *Factory) Comment(ctx context.Context, user *models.User, post *models.Post) (*models.Comment, error) {
	comment := &models.Comment{
		PostID:    post.ID,
		UserID:    user.ID,
		Content:   f.faker.Sentence(f.faker.Number(3, 15)),
		CreatedAt: post.CreatedAt.Add(time.Duration(f.faker.Number(1, 600)) * time.Minute),
	}
	if err := f.store.Comments.Create(ctx, comment); err != nil {
		return nil, err
	}
	return comment, nil
}

// Seed creates Options.Users users and Options.Posts posts, then likes from
// distinct users and comments from random users on each post.
func (f *Factory) Seed(ctx context.Context) (*Summary, error) {
	if f.opts.Users <= 0 {
		return nil, errors.New("at least one user is required")
	}
	sum := &Summary{}

	users := make([]*models.User, 0, f.opts.Users)
	for i := 0; i < f.opts.Users; i++ {
		u, err := f.CreateUser(ctx, i+1)
		if err != nil {
			return nil, fmt.Errorf("create user: %w", err)
		}
		users = append(users, u)
	}
	sum.Users = len(users)

	for i := 0; i < f.opts.Posts; i++ {
		author := users[f.faker.Number(0, len(users)-1)]
		post, err := f.CreatePost(ctx, author)
		if err != nil {
			return nil, fmt.Errorf("create post: %w", err)
		}
		sum.Posts++

		likers := f.pick(users, f.faker.Number(0, min(f.opts.MaxLikesPerPost, len(users))))
		for _, u := range likers {
			ok, err := f.Like(ctx, u, post)
			if err != nil {
				return nil, fmt.Errorf("like post: %w", err)
			}
			if ok {
				sum.Likes++
			}
		}

		for c := f.faker.Number(0, max(f.opts.MaxCommentsPerPost, 0)); c > 0; c-- {
			if _, err := f.Comment(ctx, users[f.faker.Number(0, len(users)-1)], post); err != nil {
				return nil, fmt.Errorf("comment: %w", err)
			}
			sum.Comments++
		}
	}

	middleware.Logger.InfoContext(ctx, "seed complete",
		slog.Int("users", sum.Users),
		slog.Int("posts", sum.Posts),
		slog.Int("likes", sum.Likes),
		slog.Int("comments", sum.Comments),
	)
	return sum, nil
}

// pick returns n distinct users.
func (f *Factory) pick(users []*models.User, n int) []*models.User {
	shuffled := append([]*models.User(nil), users...)
	f.faker.ShuffleAnySlice(shuffled)
	return shuffled[:n]
}

// ClearAll deletes every row, children first.
func (f *Factory) ClearAll(ctx context.Context) error {
	return f.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, model := range []any{&models.Like{}, &models.Comment{}, &models.DeletedPost{}, &models.Post{}, &models.User{}} {
			if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(model).Error; err != nil {
				return fmt.Errorf("clear %T: %w", model, err)
			}
		}
		return nil
	})
}
