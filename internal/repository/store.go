package repository

import (
	"context"

	"gorm.io/gorm"
)

// Repos is the set of repositories bound to one database handle.
type Repos struct {
	Users    UserRepository
	Posts    PostRepository
	Likes    LikeRepository
	Comments CommentRepository
	Archive  DeletedPostRepository
}

// Transactor runs fn with repositories bound to a single transaction.
// Returning an error from fn rolls back every write made through them.
type Transactor interface {
	InTx(ctx context.Context, fn func(r Repos) error) error
}

// Store owns the primary database handle and hands out repositories.
type Store struct {
	Repos
	db *gorm.DB
}

// NewStore returns a Store whose repositories share db.
func NewStore(db *gorm.DB) *Store {
	return &Store{Repos: newRepos(db), db: db}
}

func newRepos(db *gorm.DB) Repos {
	return Repos{
		Users:    NewUserRepository(db),
		Posts:    NewPostRepository(db),
		Likes:    NewLikeRepository(db),
		Comments: NewCommentRepository(db),
		Archive:  NewDeletedPostRepository(db),
	}
}

// InTx implements Transactor.
func (s *Store) InTx(ctx context.Context, fn func(r Repos) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(newRepos(tx))
	})
}

// DB exposes the underlying handle for health checks and shutdown.
func (s *Store) DB() *gorm.DB {
	return s.db
}
