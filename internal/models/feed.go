package models

// FeedEntry is a post together with its engagement, as shown in a feed.
type FeedEntry struct {
	Post         Post      `json:"post"`
	LikeCount    int64     `json:"like_count"`
	Comments     []Comment `json:"comments"`
	CommentCount int       `json:"comment_count"`
}

// Profile aggregates a user's own posts and archive.
type Profile struct {
	User          User          `json:"user"`
	Posts         []Post        `json:"posts"`
	TotalLikes    int64         `json:"total_likes"`
	TotalComments int64         `json:"total_comments"`
	Archived      []DeletedPost `json:"archived"`
	ArchivedCount int           `json:"archived_count"`
}
