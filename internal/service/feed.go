package service

import (
	"fmt"
	"slices"
	"strings"

	"inkwell/internal/models"
)

// SortOrder selects how a feed is ordered.
type SortOrder string

const (
	// SortNewest keeps posts newest first.
	SortNewest SortOrder = "newest"
	// SortLikes orders by like count, most liked first.
	SortLikes SortOrder = "likes"
	// SortComments orders by comment count, most commented first.
	SortComments SortOrder = "comments"
)

// SortOrders lists every supported ordering.
var SortOrders = []SortOrder{SortNewest, SortLikes, SortComments}

// ParseSortOrder maps a query value onto a SortOrder. The empty string means
// newest; "best" and "commented" are accepted aliases.
func ParseSortOrder(raw string) (SortOrder, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "new", "newest":
		return SortNewest, nil
	case "best", "likes":
		return SortLikes, nil
	case "commented", "comments":
		return SortComments, nil
	}
	return "", models.NewValidationError(fmt.Sprintf("unknown sort order %q", raw))
}

// BuildFeed pairs each post with its like count and comments, keeping the
// order of posts. Comments keep their input order within each post.
func BuildFeed(posts []models.Post, likeCounts map[uint]int64, comments []models.Comment) []models.FeedEntry {
	byPost := make(map[uint][]models.Comment, len(posts))
	for _, c := range comments {
		byPost[c.PostID] = append(byPost[c.PostID], c)
	}

	entries := make([]models.FeedEntry, 0, len(posts))
	for _, p := range posts {
		postComments := byPost[p.ID]
		if postComments == nil {
			postComments = []models.Comment{}
		}
		entries = append(entries, models.FeedEntry{
			Post:         p,
			LikeCount:    likeCounts[p.ID],
			Comments:     postComments,
			CommentCount: len(postComments),
		})
	}
	return entries
}

// SortFeed reorders entries in place. The sort is stable, so entries with
// equal counts stay in their incoming (newest first) order.
func SortFeed(entries []models.FeedEntry, order SortOrder) {
	switch order {
	case SortLikes:
		slices.SortStableFunc(entries, func(a, b models.FeedEntry) int {
			return compareDesc(a.LikeCount, b.LikeCount)
		})
	case SortComments:
		slices.SortStableFunc(entries, func(a, b models.FeedEntry) int {
			return compareDesc(int64(a.CommentCount), int64(b.CommentCount))
		})
	}
}

func compareDesc(a, b int64) int {
	switch {
	case a > b:
		return -1
	case a < b:
		return 1
	}
	return 0
}
