package service

import (
	"context"

	"inkwell/internal/cache"
	"inkwell/internal/models"
	"inkwell/internal/observability"
	"inkwell/internal/repository"

	"go.opentelemetry.io/otel/attribute"
)

// FeedService assembles sorted feeds, serving them from Redis when cached.
type FeedService struct {
	posts    repository.PostRepository
	likes    repository.LikeRepository
	comments repository.CommentRepository
	cache    *cache.Cache
}

// NewFeedService creates a FeedService. c may wrap a nil client.
func NewFeedService(
	posts repository.PostRepository,
	likes repository.LikeRepository,
	comments repository.CommentRepository,
	c *cache.Cache,
) *FeedService {
	return &FeedService{posts: posts, likes: likes, comments: comments, cache: c}
}

// Feed returns every post with its engagement, sorted by order.
func (s *FeedService) Feed(ctx context.Context, order SortOrder) (entries []models.FeedEntry, err error) {
	ctx, span := observability.StartSpan(ctx, "FeedService.Feed", attribute.String("feed.order", string(order)))
	defer func() { span.End(err) }()

	hit, err := s.cache.AsideGuarded(ctx, cache.FeedKey(string(order)), cache.FeedGenerationKey, &entries, cache.FeedTTL, func() error {
		built, loadErr := s.load(ctx)
		if loadErr != nil {
			return loadErr
		}
		SortFeed(built, order)
		entries = built
		return nil
	})
	if err != nil {
		return nil, err
	}

	result := "miss"
	if hit {
		result = "hit"
	}
	observability.FeedCacheResults.WithLabelValues(result).Inc()

	if entries == nil {
		entries = []models.FeedEntry{}
	}
	return entries, nil
}

// load reads posts newest first with like counts and comments in three queries.
func (s *FeedService) load(ctx context.Context) ([]models.FeedEntry, error) {
	posts, err := s.posts.List(ctx)
	if err != nil {
		return nil, err
	}
	if len(posts) == 0 {
		return []models.FeedEntry{}, nil
	}

	ids := make([]uint, len(posts))
	for i, p := range posts {
		ids[i] = p.ID
	}

	counts, err := s.likes.CountByPosts(ctx, ids)
	if err != nil {
		return nil, err
	}
	comments, err := s.comments.ListByPosts(ctx, ids)
	if err != nil {
		return nil, err
	}
	return BuildFeed(posts, counts, comments), nil
}
