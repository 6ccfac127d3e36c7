package service

import (
	"context"
	"strings"
	"unicode/utf8"

	"inkwell/internal/access"
	"inkwell/internal/models"
	"inkwell/internal/repository"
)

const maxTitleLen = 255

// PostService publishes posts and builds the profile and admin views.
type PostService struct {
	posts    repository.PostRepository
	likes    repository.LikeRepository
	comments repository.CommentRepository
	users    repository.UserRepository
	archive  repository.DeletedPostRepository
	gate     *access.Gate
	feeds    FeedInvalidator
	now      Clock
}

// PublishInput carries a new post. AuthorID always comes from the
// authenticated session, never from the request body.
type PublishInput struct {
	AuthorID uint
	Title    string
	Content  string
}

// NewPostService creates a PostService. feeds and now may be nil.
func NewPostService(r repository.Repos, gate *access.Gate, feeds FeedInvalidator, now Clock) *PostService {
	return &PostService{
		posts:    r.Posts,
		likes:    r.Likes,
		comments: r.Comments,
		users:    r.Users,
		archive:  r.Archive,
		gate:     gate,
		feeds:    orNoop(feeds),
		now:      orUTC(now),
	}
}

// Publish stores a post written by in.AuthorID.
func (s *PostService) Publish(ctx context.Context, in PublishInput) (*models.Post, error) {
	title := strings.TrimSpace(in.Title)
	content := strings.TrimSpace(in.Content)
	if title == "" || content == "" {
		return nil, models.NewValidationError("title and content are required")
	}
	if utf8.RuneCountInString(title) > maxTitleLen {
		return nil, models.NewValidationError("title must not exceed 255 characters")
	}

	post := &models.Post{
		Title:     title,
		Content:   content,
		UserID:    in.AuthorID,
		CreatedAt: s.now(),
	}
	if err := s.posts.Create(ctx, post); err != nil {
		return nil, err
	}

	s.feeds.InvalidateFeeds(ctx)
	return s.posts.GetByID(ctx, post.ID)
}

// GetPost loads a single post with its author.
func (s *PostService) GetPost(ctx context.Context, postID uint) (*models.Post, error) {
	return s.posts.GetByID(ctx, postID)
}

// Profile gathers userID's posts, the engagement they received and the
// posts they have deleted.
func (s *PostService) Profile(ctx context.Context, userID uint) (*models.Profile, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	posts, err := s.posts.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	ids := make([]uint, len(posts))
	for i, p := range posts {
		ids[i] = p.ID
	}

	likeCounts, err := s.likes.CountByPosts(ctx, ids)
	if err != nil {
		return nil, err
	}
	var totalLikes int64
	for _, n := range likeCounts {
		totalLikes += n
	}

	totalComments, err := s.comments.CountByPosts(ctx, ids)
	if err != nil {
		return nil, err
	}

	archived, err := s.archive.ListByAuthor(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &models.Profile{
		User:          *user,
		Posts:         posts,
		TotalLikes:    totalLikes,
		TotalComments: totalComments,
		Archived:      archived,
		ArchivedCount: len(archived),
	}, nil
}

// AdminPosts lists every post for an administrator.
func (s *PostService) AdminPosts(ctx context.Context, actorID uint) ([]models.Post, error) {
	actor, err := s.users.GetByID(ctx, actorID)
	if err != nil {
		return nil, err
	}
	if !s.gate.CanViewAdminPanel(actor) {
		return nil, models.NewForbiddenError("Admin access required")
	}
	return s.posts.List(ctx)
}
