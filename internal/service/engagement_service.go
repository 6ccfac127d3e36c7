package service

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	"inkwell/internal/access"
	"inkwell/internal/models"
	"inkwell/internal/observability"
	"inkwell/internal/repository"

	"go.opentelemetry.io/otel/attribute"
)

const maxCommentLen = 10000

// errLikeRace aborts a toggle whose insert lost a race to a concurrent like.
var errLikeRace = errors.New("like inserted concurrently")

// EngagementService records likes and comments on posts.
type EngagementService struct {
	tx       repository.Transactor
	posts    repository.PostRepository
	likes    repository.LikeRepository
	comments repository.CommentRepository
	users    repository.UserRepository
	gate     *access.Gate
	feeds    FeedInvalidator
	now      Clock
}

// AddCommentInput carries a new comment.
type AddCommentInput struct {
	UserID  uint
	PostID  uint
	Content string
}

// NewEngagementService builds the service over store. feeds and now may be nil.
func NewEngagementService(store *repository.Store, gate *access.Gate, feeds FeedInvalidator, now Clock) *EngagementService {
	return newEngagementService(store, store.Repos, gate, feeds, now)
}

func newEngagementService(tx repository.Transactor, r repository.Repos, gate *access.Gate, feeds FeedInvalidator, now Clock) *EngagementService {
	return &EngagementService{
		tx:       tx,
		posts:    r.Posts,
		likes:    r.Likes,
		comments: r.Comments,
		users:    r.Users,
		gate:     gate,
		feeds:    orNoop(feeds),
		now:      orUTC(now),
	}
}

// ToggleLike likes the post for userID, or removes the like if one exists.
func (s *EngagementService) ToggleLike(ctx context.Context, userID, postID uint) (result *models.LikeResult, err error) {
	ctx, span := observability.StartSpan(ctx, "EngagementService.ToggleLike", attribute.Int64("post.id", int64(postID)))
	defer func() { span.End(err) }()

	if _, err := s.posts.GetByID(ctx, postID); err != nil {
		return nil, err
	}

	status := models.LikeStatusLiked
	err = s.tx.InTx(ctx, func(r repository.Repos) error {
		existing, err := r.Likes.Find(ctx, userID, postID)
		if err != nil {
			return err
		}
		if existing != nil {
			status = models.LikeStatusUnliked
			return r.Likes.Delete(ctx, existing.ID)
		}
		err = r.Likes.Create(ctx, &models.Like{UserID: userID, PostID: postID, CreatedAt: s.now()})
		if errors.Is(err, repository.ErrDuplicate) {
			return errLikeRace
		}
		return err
	})
	// Losing the race means the pair exists, which is the state a like asks for.
	if errors.Is(err, errLikeRace) {
		status, err = models.LikeStatusLiked, nil
	}
	if err != nil {
		return nil, err
	}

	count, err := s.likes.CountByPost(ctx, postID)
	if err != nil {
		return nil, err
	}

	observability.LikesToggled.WithLabelValues(status).Inc()
	s.feeds.InvalidateFeeds(ctx)
	return &models.LikeResult{Status: status, Likes: count}, nil
}

// LikeCount returns the number of likes on postID. Unknown posts have zero.
func (s *EngagementService) LikeCount(ctx context.Context, postID uint) (int64, error) {
	return s.likes.CountByPost(ctx, postID)
}

// AddComment stores a comment by in.UserID on in.PostID.
func (s *EngagementService) AddComment(ctx context.Context, in AddCommentInput) (*models.Comment, error) {
	if _, err := s.posts.GetByID(ctx, in.PostID); err != nil {
		return nil, err
	}
	if strings.TrimSpace(in.Content) == "" {
		return nil, models.NewValidationError("content empty")
	}
	if utf8.RuneCountInString(in.Content) > maxCommentLen {
		return nil, models.NewValidationError("Comment too long (max 10000 characters)")
	}

	comment := &models.Comment{
		PostID:    in.PostID,
		UserID:    in.UserID,
		Content:   in.Content,
		CreatedAt: s.now(),
	}
	if err := s.comments.Create(ctx, comment); err != nil {
		return nil, err
	}

	observability.CommentsTotal.WithLabelValues("created").Inc()
	s.feeds.InvalidateFeeds(ctx)
	return s.comments.GetByID(ctx, comment.ID)
}

// DeleteComment removes commentID if userID wrote it, returning the removed row.
func (s *EngagementService) DeleteComment(ctx context.Context, userID, commentID uint) (*models.Comment, error) {
	comment, err := s.comments.GetByID(ctx, commentID)
	if err != nil {
		return nil, err
	}
	if !s.gate.CanDeleteComment(&models.User{ID: userID}, comment) {
		return nil, models.NewForbiddenError("You can only delete your own comments")
	}
	if err := s.comments.Delete(ctx, commentID); err != nil {
		return nil, err
	}

	observability.CommentsTotal.WithLabelValues("deleted").Inc()
	s.feeds.InvalidateFeeds(ctx)
	return comment, nil
}

// ListComments returns the post's comments oldest first with author names.
func (s *EngagementService) ListComments(ctx context.Context, postID uint) ([]models.CommentView, error) {
	if _, err := s.posts.GetByID(ctx, postID); err != nil {
		return nil, err
	}
	comments, err := s.comments.ListByPost(ctx, postID)
	if err != nil {
		return nil, err
	}

	views := make([]models.CommentView, len(comments))
	for i, c := range comments {
		views[i] = c.View()
	}
	return views, nil
}
