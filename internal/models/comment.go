package models

import (
	"encoding/json"
	"time"
)

// Comment represents a comment on a post.
type Comment struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	PostID    uint      `gorm:"not null;index" json:"post_id"`
	UserID    uint      `gorm:"not null;index" json:"user_id"`
	User      User      `gorm:"foreignKey:UserID" json:"user"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// MarshalJSON renders the author as an Author so comments never expose emails.
func (c Comment) MarshalJSON() ([]byte, error) {
	type comment Comment
	return json.Marshal(struct {
		comment
		User Author `json:"user"`
	}{comment(c), c.User.Author()})
}

// CommentView is the wire shape of a comment in a post's comment list.
type CommentView struct {
	ID        uint      `json:"id"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
	Username  string    `json:"username"`
}

// View flattens the comment for listing. User must be preloaded.
func (c Comment) View() CommentView {
	return CommentView{
		ID:        c.ID,
		Content:   c.Content,
		Timestamp: c.CreatedAt,
		Username:  c.User.Username,
	}
}
