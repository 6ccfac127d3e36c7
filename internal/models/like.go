package models

import "time"

// Like represents a user's like on a post.
// The combination of UserID and PostID must be unique.
type Like struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_like_user_post" json:"user_id"`
	PostID    uint      `gorm:"not null;uniqueIndex:idx_like_user_post;index" json:"post_id"`
	CreatedAt time.Time `json:"created_at"`
}

// Like toggle outcomes.
const (
	LikeStatusLiked   = "liked"
	LikeStatusUnliked = "unliked"
)

// LikeResult is the outcome of toggling a like.
type LikeResult struct {
	Status string `json:"status"`
	Likes  int64  `json:"likes"`
}
