package service

import (
	"context"
	"log/slog"

	"inkwell/internal/access"
	"inkwell/internal/middleware"
	"inkwell/internal/models"
	"inkwell/internal/observability"
	"inkwell/internal/repository"

	"go.opentelemetry.io/otel/attribute"
)

// ArchiveService deletes posts by archiving a snapshot and removing the post
// together with its likes and comments.
type ArchiveService struct {
	tx      repository.Transactor
	posts   repository.PostRepository
	users   repository.UserRepository
	archive repository.DeletedPostRepository
	gate    *access.Gate
	feeds   FeedInvalidator
	now     Clock
}

// NewArchiveService builds the service over store. feeds and now may be nil.
func NewArchiveService(store *repository.Store, gate *access.Gate, feeds FeedInvalidator, now Clock) *ArchiveService {
	return newArchiveService(store, store.Repos, gate, feeds, now)
}

func newArchiveService(tx repository.Transactor, r repository.Repos, gate *access.Gate, feeds FeedInvalidator, now Clock) *ArchiveService {
	return &ArchiveService{
		tx:      tx,
		posts:   r.Posts,
		users:   r.Users,
		archive: r.Archive,
		gate:    gate,
		feeds:   orNoop(feeds),
		now:     orUTC(now),
	}
}

// DeletePost archives and removes postID on behalf of actorID. Authorization
// happens before any write; the archive insert and the three deletes commit
// or roll back together.
func (s *ArchiveService) DeletePost(ctx context.Context, actorID, postID uint) (archived *models.DeletedPost, err error) {
	ctx, span := observability.StartSpan(ctx, "ArchiveService.DeletePost", attribute.Int64("post.id", int64(postID)))
	defer func() { span.End(err) }()

	post, err := s.posts.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	actor, err := s.users.GetByID(ctx, actorID)
	if err != nil {
		if models.ErrorCode(err) == models.CodeNotFound {
			return nil, models.NewUnauthorizedError("account no longer exists")
		}
		return nil, err
	}
	if !s.gate.CanDeletePost(actor, post) {
		return nil, models.NewForbiddenError("You can only delete your own posts")
	}

	snapshot := models.ArchiveOf(post, s.now())
	err = s.tx.InTx(ctx, func(r repository.Repos) error {
		if err := r.Archive.Create(ctx, snapshot); err != nil {
			return err
		}
		if err := r.Likes.DeleteByPost(ctx, post.ID); err != nil {
			return err
		}
		if err := r.Comments.DeleteByPost(ctx, post.ID); err != nil {
			return err
		}
		return r.Posts.Delete(ctx, post.ID)
	})
	if err != nil {
		return nil, err
	}

	observability.PostsArchived.Inc()
	if actor.ID != post.UserID {
		middleware.Logger.WarnContext(ctx, "post deleted by administrator",
			slog.String("audit", "post_delete"),
			slog.Uint64("post_id", uint64(post.ID)),
			slog.Uint64("author_id", uint64(post.UserID)),
			slog.String("actor", actor.Username),
		)
	}
	s.feeds.InvalidateFeeds(ctx)
	return snapshot, nil
}

// ListArchived returns authorID's deleted posts, most recent first.
func (s *ArchiveService) ListArchived(ctx context.Context, authorID uint) ([]models.DeletedPost, error) {
	return s.archive.ListByAuthor(ctx, authorID)
}
