package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"inkwell/internal/models"
	"inkwell/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStubEngagement(r repository.Repos, feeds FeedInvalidator) *EngagementService {
	return newEngagementService(txStub{repos: r}, r, defaultGate(), feeds, nil)
}

func TestEngagementService_ToggleLike_PostNotFound(t *testing.T) {
	t.Parallel()

	r := noopRepos()
	posts := noopPostRepo()
	posts.getByIDFn = func(_ context.Context, id uint) (*models.Post, error) {
		return nil, models.NewNotFoundError("Post", id)
	}
	likes := noopLikeRepo()
	likes.createFn = func(_ context.Context, _ *models.Like) error {
		t.Fatal("no like may be written for a missing post")
		return nil
	}
	r.Posts, r.Likes = posts, likes

	_, err := newStubEngagement(r, nil).ToggleLike(context.Background(), 1, 99)
	assertAppErrorCode(t, err, models.CodeNotFound)
}

func TestEngagementService_ToggleLike_ConcurrentInsertReportsLiked(t *testing.T) {
	t.Parallel()

	r := noopRepos()
	likes := noopLikeRepo()
	likes.createFn = func(_ context.Context, _ *models.Like) error { return repository.ErrDuplicate }
	likes.countByPostFn = func(_ context.Context, _ uint) (int64, error) { return 1, nil }
	r.Likes = likes

	res, err := newStubEngagement(r, nil).ToggleLike(context.Background(), 1, 2)
	require.NoError(t, err)
	assert.Equal(t, models.LikeStatusLiked, res.Status)
	assert.Equal(t, int64(1), res.Likes)
}

func TestEngagementService_ToggleLike_InvalidatesFeeds(t *testing.T) {
	t.Parallel()

	counter := &invalidationCounter{}
	_, err := newStubEngagement(noopRepos(), counter).ToggleLike(context.Background(), 1, 2)
	require.NoError(t, err)
	assert.Equal(t, 1, counter.calls)
}

func TestEngagementService_ToggleLike_IsItsOwnInverse(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()
	author := seedUser(t, store, "author", 0)
	fan := seedUser(t, store, "fan", 0)
	post := seedPost(t, store, author, "p", time.Now().UTC())
	svc := NewEngagementService(store, defaultGate(), nil, nil)

	res, err := svc.ToggleLike(ctx, fan.ID, post.ID)
	require.NoError(t, err)
	assert.Equal(t, &models.LikeResult{Status: models.LikeStatusLiked, Likes: 1}, res)

	res, err = svc.ToggleLike(ctx, fan.ID, post.ID)
	require.NoError(t, err)
	assert.Equal(t, &models.LikeResult{Status: models.LikeStatusUnliked, Likes: 0}, res)

	assert.Zero(t, countRows(t, store, &models.Like{}, "post_id = ?", post.ID))

	count, err := svc.LikeCount(ctx, post.ID)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestEngagementService_LikeCount_UnknownPostIsZero(t *testing.T) {
	store := setupStore(t)
	svc := NewEngagementService(store, defaultGate(), nil, nil)

	count, err := svc.LikeCount(context.Background(), 4242)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestEngagementService_AddComment_Validation(t *testing.T) {
	t.Parallel()

	r := noopRepos()
	comments := noopCommentRepo()
	comments.createFn = func(_ context.Context, _ *models.Comment) error {
		t.Fatal("invalid comments must not be stored")
		return nil
	}
	r.Comments = comments
	svc := newStubEngagement(r, nil)
	ctx := context.Background()

	t.Run("empty content", func(t *testing.T) {
		_, err := svc.AddComment(ctx, AddCommentInput{UserID: 1, PostID: 1})
		assertValidationError(t, err)
		assert.Contains(t, err.Error(), "content empty")
	})

	t.Run("whitespace content", func(t *testing.T) {
		_, err := svc.AddComment(ctx, AddCommentInput{UserID: 1, PostID: 1, Content: " \n\t "})
		assertValidationError(t, err)
	})

	t.Run("content too long", func(t *testing.T) {
		_, err := svc.AddComment(ctx, AddCommentInput{UserID: 1, PostID: 1, Content: strings.Repeat("x", 10001)})
		assertValidationError(t, err)
	})
}

func TestEngagementService_AddComment_StampsClock(t *testing.T) {
	t.Parallel()

	at := time.Date(2024, 2, 2, 10, 0, 0, 0, time.UTC)
	var stored *models.Comment
	r := noopRepos()
	comments := noopCommentRepo()
	comments.createFn = func(_ context.Context, c *models.Comment) error {
		c.ID = 42
		stored = c
		return nil
	}
	comments.getByIDFn = func(_ context.Context, id uint) (*models.Comment, error) {
		return stored, nil
	}
	r.Comments = comments

	svc := newEngagementService(txStub{repos: r}, r, defaultGate(), nil, fixedClock(at))
	got, err := svc.AddComment(context.Background(), AddCommentInput{UserID: 3, PostID: 7, Content: "nice"})
	require.NoError(t, err)
	assert.Equal(t, uint(42), got.ID)
	assert.Equal(t, at, got.CreatedAt)
	assert.Equal(t, uint(7), got.PostID)
}

func TestEngagementService_AddComment_LengthCountsCharacters(t *testing.T) {
	t.Parallel()

	r := noopRepos()
	comments := noopCommentRepo()
	var stored *models.Comment
	comments.createFn = func(_ context.Context, c *models.Comment) error {
		c.ID = 9
		stored = c
		return nil
	}
	comments.getByIDFn = func(_ context.Context, id uint) (*models.Comment, error) {
		return stored, nil
	}
	r.Comments = comments
	svc := newStubEngagement(r, nil)
	ctx := context.Background()

	// 10000 three-byte runes is 30000 bytes but still within the limit.
	atLimit := strings.Repeat("€", 10000)
	got, err := svc.AddComment(ctx, AddCommentInput{UserID: 1, PostID: 1, Content: atLimit})
	require.NoError(t, err)
	assert.Equal(t, atLimit, got.Content)

	_, err = svc.AddComment(ctx, AddCommentInput{UserID: 1, PostID: 1, Content: atLimit + "€"})
	assertValidationError(t, err)
}

func TestEngagementService_DeleteComment_NonAuthorForbidden(t *testing.T) {
	t.Parallel()

	r := noopRepos()
	comments := noopCommentRepo()
	comments.getByIDFn = func(_ context.Context, id uint) (*models.Comment, error) {
		return &models.Comment{ID: id, UserID: 5}, nil
	}
	comments.deleteFn = func(_ context.Context, _ uint) error {
		t.Fatal("forbidden delete must not touch the store")
		return nil
	}
	r.Comments = comments

	_, err := newStubEngagement(r, nil).DeleteComment(context.Background(), 6, 1)
	assertAppErrorCode(t, err, models.CodeForbidden)
}

func TestEngagementService_DeleteComment_NotFound(t *testing.T) {
	t.Parallel()

	r := noopRepos()
	comments := noopCommentRepo()
	comments.getByIDFn = func(_ context.Context, id uint) (*models.Comment, error) {
		return nil, models.NewNotFoundError("Comment", id)
	}
	r.Comments = comments

	_, err := newStubEngagement(r, nil).DeleteComment(context.Background(), 1, 1)
	assertAppErrorCode(t, err, models.CodeNotFound)
}

func TestEngagementService_CommentLifecycle(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()
	author := seedUser(t, store, "author", 0)
	reader := seedUser(t, store, "reader", 0)
	admin := seedUser(t, store, "boss", 1)
	post := seedPost(t, store, author, "p", time.Now().UTC())
	svc := NewEngagementService(store, defaultGate(), nil, nil)

	first, err := svc.AddComment(ctx, AddCommentInput{UserID: reader.ID, PostID: post.ID, Content: "first"})
	require.NoError(t, err)
	assert.Equal(t, "reader", first.User.Username)
	_, err = svc.AddComment(ctx, AddCommentInput{UserID: author.ID, PostID: post.ID, Content: "second"})
	require.NoError(t, err)

	list, err := svc.ListComments(ctx, post.ID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "first", list[0].Content)
	assert.Equal(t, "reader", list[0].Username)
	assert.Equal(t, "author", list[1].Username)

	_, err = svc.DeleteComment(ctx, admin.ID, first.ID)
	assertAppErrorCode(t, err, models.CodeForbidden)
	assert.Equal(t, int64(2), countRows(t, store, &models.Comment{}, "post_id = ?", post.ID))

	_, err = svc.DeleteComment(ctx, reader.ID, first.ID)
	require.NoError(t, err)

	list, err = svc.ListComments(ctx, post.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "second", list[0].Content)

	_, err = svc.ListComments(ctx, 9999)
	assertAppErrorCode(t, err, models.CodeNotFound)
}

func TestEngagementService_EmptyCommentLeavesNoRow(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()
	author := seedUser(t, store, "author", 0)
	post := seedPost(t, store, author, "p", time.Now().UTC())
	svc := NewEngagementService(store, defaultGate(), nil, nil)

	_, err := svc.AddComment(ctx, AddCommentInput{UserID: author.ID, PostID: post.ID, Content: ""})
	assertValidationError(t, err)
	assert.Zero(t, countRows(t, store, &models.Comment{}, "post_id = ?", post.ID))
}
