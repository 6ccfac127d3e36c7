package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"inkwell/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostService_Publish_Validation(t *testing.T) {
	t.Parallel()

	r := noopRepos()
	posts := noopPostRepo()
	posts.createFn = func(_ context.Context, _ *models.Post) error {
		t.Fatal("invalid posts must not be stored")
		return nil
	}
	r.Posts = posts
	svc := NewPostService(r, defaultGate(), nil, nil)

	tests := []struct {
		name string
		in   PublishInput
	}{
		{"missing title", PublishInput{AuthorID: 1, Content: "body"}},
		{"missing content", PublishInput{AuthorID: 1, Title: "title"}},
		{"blank title", PublishInput{AuthorID: 1, Title: "   ", Content: "body"}},
		{"title too long", PublishInput{AuthorID: 1, Title: strings.Repeat("t", 256), Content: "body"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Publish(context.Background(), tt.in)
			assertValidationError(t, err)
		})
	}
}

func TestPostService_Publish_StoresAndInvalidates(t *testing.T) {
	store := setupStore(t)
	author := seedUser(t, store, "writer", models.RoleUser)
	at := time.Date(2024, 4, 4, 4, 0, 0, 0, time.UTC)
	counter := &invalidationCounter{}
	svc := NewPostService(store.Repos, defaultGate(), counter, fixedClock(at))

	post, err := svc.Publish(context.Background(), PublishInput{AuthorID: author.ID, Title: " Title ", Content: "Body"})
	require.NoError(t, err)
	assert.Equal(t, "Title", post.Title)
	assert.Equal(t, "writer", post.User.Username)
	assert.True(t, at.Equal(post.CreatedAt))
	assert.Equal(t, 1, counter.calls)

	got, err := svc.GetPost(context.Background(), post.ID)
	require.NoError(t, err)
	assert.Equal(t, post.ID, got.ID)
}

func TestPostService_Profile_Totals(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()
	author := seedUser(t, store, "author", models.RoleUser)
	a := seedUser(t, store, "alice", models.RoleUser)
	b := seedUser(t, store, "bob", models.RoleUser)
	p1 := seedPost(t, store, author, "one", time.Now().UTC())
	p2 := seedPost(t, store, author, "two", time.Now().UTC())
	p3 := seedPost(t, store, author, "three", time.Now().UTC())

	engagement := NewEngagementService(store, defaultGate(), nil, nil)
	for _, like := range []struct{ user, post uint }{{a.ID, p1.ID}, {b.ID, p1.ID}, {a.ID, p2.ID}, {a.ID, p3.ID}} {
		_, err := engagement.ToggleLike(ctx, like.user, like.post)
		require.NoError(t, err)
	}
	_, err := engagement.AddComment(ctx, AddCommentInput{UserID: a.ID, PostID: p2.ID, Content: "c1"})
	require.NoError(t, err)
	_, err = engagement.AddComment(ctx, AddCommentInput{UserID: b.ID, PostID: p2.ID, Content: "c2"})
	require.NoError(t, err)

	// Deleting p3 drops its like from the totals and adds an archived entry.
	_, err = NewArchiveService(store, defaultGate(), nil, nil).DeletePost(ctx, author.ID, p3.ID)
	require.NoError(t, err)

	profile, err := NewPostService(store.Repos, defaultGate(), nil, nil).Profile(ctx, author.ID)
	require.NoError(t, err)
	assert.Equal(t, "author", profile.User.Username)
	assert.Len(t, profile.Posts, 2)
	assert.Equal(t, int64(3), profile.TotalLikes)
	assert.Equal(t, int64(2), profile.TotalComments)
	assert.Equal(t, 1, profile.ArchivedCount)
	require.Len(t, profile.Archived, 1)
	assert.Equal(t, "three", profile.Archived[0].Title)
}

func TestPostService_Profile_EmptyAccount(t *testing.T) {
	store := setupStore(t)
	user := seedUser(t, store, "quiet", models.RoleUser)

	profile, err := NewPostService(store.Repos, defaultGate(), nil, nil).Profile(context.Background(), user.ID)
	require.NoError(t, err)
	assert.NotNil(t, profile.Posts)
	assert.Empty(t, profile.Posts)
	assert.Zero(t, profile.TotalLikes)
	assert.Zero(t, profile.TotalComments)
	assert.Zero(t, profile.ArchivedCount)
}

func TestPostService_AdminPosts(t *testing.T) {
	t.Parallel()

	r := noopRepos()
	users := noopUserRepo()
	users.getByIDFn = func(_ context.Context, id uint) (*models.User, error) {
		role := models.RoleUser
		if id == 1 {
			role = models.RoleAdmin
		}
		return &models.User{ID: id, Role: role}, nil
	}
	posts := noopPostRepo()
	posts.listFn = func(_ context.Context) ([]models.Post, error) {
		return []models.Post{{ID: 3}, {ID: 2}}, nil
	}
	r.Users, r.Posts = users, posts
	svc := NewPostService(r, defaultGate(), nil, nil)

	list, err := svc.AdminPosts(context.Background(), 1)
	require.NoError(t, err)
	assert.Len(t, list, 2)

	_, err = svc.AdminPosts(context.Background(), 2)
	assertAppErrorCode(t, err, models.CodeForbidden)
}
