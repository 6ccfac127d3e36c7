// Package models contains data structures for the application's domain models.
package models

import "time"

// Role values stored on User.Role.
const (
	RoleUser  = 0
	RoleAdmin = 1
)

// User represents a registered account.
type User struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Email     string    `gorm:"uniqueIndex;not null" json:"email"`
	Username  string    `gorm:"uniqueIndex;not null" json:"username"`
	Password  string    `gorm:"not null" json:"-"`
	Role      int       `gorm:"not null;default:0" json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

// IsAdmin reports whether the role flag grants administrative rights.
func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}

// Author is the public view of a user attached to content. It never
// carries the email address.
type Author struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
}

// Author returns the public view of u.
func (u User) Author() Author {
	return Author{ID: u.ID, Username: u.Username}
}
