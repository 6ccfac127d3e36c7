package service

import (
	"context"
	"testing"
	"time"

	"inkwell/internal/access"
	"inkwell/internal/database"
	"inkwell/internal/featureflags"
	"inkwell/internal/models"
	"inkwell/internal/repository"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// postRepoStub is a stub for repository.PostRepository.
type postRepoStub struct {
	createFn     func(context.Context, *models.Post) error
	getByIDFn    func(context.Context, uint) (*models.Post, error)
	listFn       func(context.Context) ([]models.Post, error)
	listByUserFn func(context.Context, uint) ([]models.Post, error)
	deleteFn     func(context.Context, uint) error
}

func (s *postRepoStub) Create(ctx context.Context, p *models.Post) error { return s.createFn(ctx, p) }
func (s *postRepoStub) GetByID(ctx context.Context, id uint) (*models.Post, error) {
	return s.getByIDFn(ctx, id)
}
func (s *postRepoStub) List(ctx context.Context) ([]models.Post, error) { return s.listFn(ctx) }
func (s *postRepoStub) ListByUser(ctx context.Context, userID uint) ([]models.Post, error) {
	return s.listByUserFn(ctx, userID)
}
func (s *postRepoStub) Delete(ctx context.Context, id uint) error { return s.deleteFn(ctx, id) }

func noopPostRepo() *postRepoStub {
	return &postRepoStub{
		createFn: func(_ context.Context, _ *models.Post) error { return nil },
		getByIDFn: func(_ context.Context, id uint) (*models.Post, error) {
			return &models.Post{ID: id, UserID: 1}, nil
		},
		listFn:       func(_ context.Context) ([]models.Post, error) { return []models.Post{}, nil },
		listByUserFn: func(_ context.Context, _ uint) ([]models.Post, error) { return []models.Post{}, nil },
		deleteFn:     func(_ context.Context, _ uint) error { return nil },
	}
}

// likeRepoStub is a stub for repository.LikeRepository.
type likeRepoStub struct {
	findFn         func(context.Context, uint, uint) (*models.Like, error)
	createFn       func(context.Context, *models.Like) error
	deleteFn       func(context.Context, uint) error
	countByPostFn  func(context.Context, uint) (int64, error)
	countByPostsFn func(context.Context, []uint) (map[uint]int64, error)
	deleteByPostFn func(context.Context, uint) error
}

func (s *likeRepoStub) Find(ctx context.Context, userID, postID uint) (*models.Like, error) {
	return s.findFn(ctx, userID, postID)
}
func (s *likeRepoStub) Create(ctx context.Context, l *models.Like) error { return s.createFn(ctx, l) }
func (s *likeRepoStub) Delete(ctx context.Context, id uint) error       { return s.deleteFn(ctx, id) }
func (s *likeRepoStub) CountByPost(ctx context.Context, postID uint) (int64, error) {
	return s.countByPostFn(ctx, postID)
}
func (s *likeRepoStub) CountByPosts(ctx context.Context, ids []uint) (map[uint]int64, error) {
	return s.countByPostsFn(ctx, ids)
}
func (s *likeRepoStub) DeleteByPost(ctx context.Context, postID uint) error {
	return s.deleteByPostFn(ctx, postID)
}

func noopLikeRepo() *likeRepoStub {
	return &likeRepoStub{
		findFn:        func(_ context.Context, _, _ uint) (*models.Like, error) { return nil, nil },
		createFn:      func(_ context.Context, _ *models.Like) error { return nil },
		deleteFn:      func(_ context.Context, _ uint) error { return nil },
		countByPostFn: func(_ context.Context, _ uint) (int64, error) { return 0, nil },
		countByPostsFn: func(_ context.Context, _ []uint) (map[uint]int64, error) {
			return map[uint]int64{}, nil
		},
		deleteByPostFn: func(_ context.Context, _ uint) error { return nil },
	}
}

// commentRepoStub is a stub for repository.CommentRepository.
type commentRepoStub struct {
	createFn       func(context.Context, *models.Comment) error
	getByIDFn      func(context.Context, uint) (*models.Comment, error)
	listByPostFn   func(context.Context, uint) ([]models.Comment, error)
	listByPostsFn  func(context.Context, []uint) ([]models.Comment, error)
	countByPostsFn func(context.Context, []uint) (int64, error)
	deleteFn       func(context.Context, uint) error
	deleteByPostFn func(context.Context, uint) error
}

func (s *commentRepoStub) Create(ctx context.Context, c *models.Comment) error {
	return s.createFn(ctx, c)
}
func (s *commentRepoStub) GetByID(ctx context.Context, id uint) (*models.Comment, error) {
	return s.getByIDFn(ctx, id)
}
func (s *commentRepoStub) ListByPost(ctx context.Context, postID uint) ([]models.Comment, error) {
	return s.listByPostFn(ctx, postID)
}
func (s *commentRepoStub) ListByPosts(ctx context.Context, ids []uint) ([]models.Comment, error) {
	return s.listByPostsFn(ctx, ids)
}
func (s *commentRepoStub) CountByPosts(ctx context.Context, ids []uint) (int64, error) {
	return s.countByPostsFn(ctx, ids)
}
func (s *commentRepoStub) Delete(ctx context.Context, id uint) error { return s.deleteFn(ctx, id) }
func (s *commentRepoStub) DeleteByPost(ctx context.Context, postID uint) error {
	return s.deleteByPostFn(ctx, postID)
}

func noopCommentRepo() *commentRepoStub {
	return &commentRepoStub{
		createFn: func(_ context.Context, _ *models.Comment) error { return nil },
		getByIDFn: func(_ context.Context, id uint) (*models.Comment, error) {
			return &models.Comment{ID: id}, nil
		},
		listByPostFn:   func(_ context.Context, _ uint) ([]models.Comment, error) { return []models.Comment{}, nil },
		listByPostsFn:  func(_ context.Context, _ []uint) ([]models.Comment, error) { return []models.Comment{}, nil },
		countByPostsFn: func(_ context.Context, _ []uint) (int64, error) { return 0, nil },
		deleteFn:       func(_ context.Context, _ uint) error { return nil },
		deleteByPostFn: func(_ context.Context, _ uint) error { return nil },
	}
}

// userRepoStub is a stub for repository.UserRepository.
type userRepoStub struct {
	getByIDFn       func(context.Context, uint) (*models.User, error)
	getByEmailFn    func(context.Context, string) (*models.User, error)
	getByUsernameFn func(context.Context, string) (*models.User, error)
	createFn        func(context.Context, *models.User) error
	updateRoleFn    func(context.Context, uint, int) error
}

func (s *userRepoStub) GetByID(ctx context.Context, id uint) (*models.User, error) {
	return s.getByIDFn(ctx, id)
}
func (s *userRepoStub) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.getByEmailFn(ctx, email)
}
func (s *userRepoStub) GetByUsername(ctx context.Context, name string) (*models.User, error) {
	return s.getByUsernameFn(ctx, name)
}
func (s *userRepoStub) Create(ctx context.Context, u *models.User) error { return s.createFn(ctx, u) }
func (s *userRepoStub) UpdateRole(ctx context.Context, id uint, role int) error {
	return s.updateRoleFn(ctx, id, role)
}

func noopUserRepo() *userRepoStub {
	return &userRepoStub{
		getByIDFn: func(_ context.Context, id uint) (*models.User, error) {
			return &models.User{ID: id, Username: "user"}, nil
		},
		getByEmailFn:    func(_ context.Context, _ string) (*models.User, error) { return nil, nil },
		getByUsernameFn: func(_ context.Context, _ string) (*models.User, error) { return nil, nil },
		createFn:        func(_ context.Context, _ *models.User) error { return nil },
		updateRoleFn:    func(_ context.Context, _ uint, _ int) error { return nil },
	}
}

// archiveRepoStub is a stub for repository.DeletedPostRepository.
type archiveRepoStub struct {
	createFn       func(context.Context, *models.DeletedPost) error
	listByAuthorFn func(context.Context, uint) ([]models.DeletedPost, error)
}

func (s *archiveRepoStub) Create(ctx context.Context, d *models.DeletedPost) error {
	return s.createFn(ctx, d)
}
func (s *archiveRepoStub) ListByAuthor(ctx context.Context, id uint) ([]models.DeletedPost, error) {
	return s.listByAuthorFn(ctx, id)
}

func noopArchiveRepo() *archiveRepoStub {
	return &archiveRepoStub{
		createFn:       func(_ context.Context, _ *models.DeletedPost) error { return nil },
		listByAuthorFn: func(_ context.Context, _ uint) ([]models.DeletedPost, error) { return []models.DeletedPost{}, nil },
	}
}

func noopRepos() repository.Repos {
	return repository.Repos{
		Users:    noopUserRepo(),
		Posts:    noopPostRepo(),
		Likes:    noopLikeRepo(),
		Comments: noopCommentRepo(),
		Archive:  noopArchiveRepo(),
	}
}

// txStub runs the callback directly against the same stub repositories.
type txStub struct {
	repos repository.Repos
}

func (t txStub) InTx(_ context.Context, fn func(repository.Repos) error) error {
	return fn(t.repos)
}

// invalidationCounter records feed invalidations.
type invalidationCounter struct {
	calls int
}

func (c *invalidationCounter) InvalidateFeeds(context.Context) { c.calls++ }

func fixedClock(t time.Time) Clock {
	return func() time.Time { return t }
}

func defaultGate() *access.Gate {
	return access.NewGate(featureflags.NewManager(""))
}

func assertAppErrorCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	require.Equal(t, code, models.ErrorCode(err), "unexpected error: %v", err)
}

func assertValidationError(t *testing.T, err error) {
	t.Helper()
	assertAppErrorCode(t, err, models.CodeValidation)
}

// setupStore returns a Store over a migrated in-memory SQLite database.
func setupStore(t *testing.T) *repository.Store {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Discard})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, database.Migrate(db))
	return repository.NewStore(db)
}

func seedUser(t *testing.T, store *repository.Store, username string, role int) *models.User {
	t.Helper()
	u := &models.User{Email: username + "@example.com", Username: username, Password: "x", Role: role}
	require.NoError(t, store.Users.Create(context.Background(), u))
	return u
}

func seedPost(t *testing.T, store *repository.Store, author *models.User, title string, at time.Time) *models.Post {
	t.Helper()
	p := &models.Post{Title: title, Content: title + " content", UserID: author.ID, CreatedAt: at}
	require.NoError(t, store.Posts.Create(context.Background(), p))
	return p
}

func countRows(t *testing.T, store *repository.Store, model any, where string, args ...any) int64 {
	t.Helper()
	var n int64
	require.NoError(t, store.DB().Model(model).Where(where, args...).Count(&n).Error)
	return n
}
