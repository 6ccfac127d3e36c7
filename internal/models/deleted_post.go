package models

import "time"

// DeletedPost is the archived snapshot written when a post is deleted.
// Rows are append-only.
type DeletedPost struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	UserPostedID   uint      `gorm:"not null;index" json:"user_posted_id"`
	OriginalPostID uint      `gorm:"not null" json:"original_post_id"`
	Title          string    `gorm:"size:255;not null" json:"title"`
	Content        string    `gorm:"type:text;not null" json:"content"`
	DeletedAt      time.Time `gorm:"not null;index" json:"deleted_at"`
}

// ArchiveOf builds the snapshot of p taken at the given instant.
func ArchiveOf(p *Post, at time.Time) *DeletedPost {
	return &DeletedPost{
		UserPostedID:   p.UserID,
		OriginalPostID: p.ID,
		Title:          p.Title,
		Content:        p.Content,
		DeletedAt:      at,
	}
}
