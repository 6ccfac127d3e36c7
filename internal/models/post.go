package models

import (
	"encoding/json"
	"time"
)

// Post represents a published post.
type Post struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Title     string    `gorm:"size:255;not null" json:"title"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	UserID    uint      `gorm:"not null;index" json:"user_id"`
	User      User      `gorm:"foreignKey:UserID" json:"user"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
}

// MarshalJSON renders the author as an Author so posts never expose emails.
func (p Post) MarshalJSON() ([]byte, error) {
	type post Post
	return json.Marshal(struct {
		post
		User Author `json:"user"`
	}{post(p), p.User.Author()})
}
