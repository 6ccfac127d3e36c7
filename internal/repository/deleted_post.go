package repository

import (
	"context"

	"inkwell/internal/models"

	"gorm.io/gorm"
)

// DeletedPostRepository is the append-only archive of deleted posts.
type DeletedPostRepository interface {
	Create(ctx context.Context, archived *models.DeletedPost) error
	ListByAuthor(ctx context.Context, authorID uint) ([]models.DeletedPost, error)
}

type deletedPostRepository struct {
	db *gorm.DB
}

// NewDeletedPostRepository returns a new DeletedPostRepository implementation.
func NewDeletedPostRepository(db *gorm.DB) DeletedPostRepository {
	return &deletedPostRepository{db: db}
}

func (r *deletedPostRepository) Create(ctx context.Context, archived *models.DeletedPost) error {
	if err := r.db.WithContext(ctx).Create(archived).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

// ListByAuthor returns the author's archived posts, most recent deletion first.
func (r *deletedPostRepository) ListByAuthor(ctx context.Context, authorID uint) ([]models.DeletedPost, error) {
	archived := []models.DeletedPost{}
	err := r.db.WithContext(ctx).
		Where("user_posted_id = ?", authorID).
		Order("deleted_at DESC").
		Order("id DESC").
		Find(&archived).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return archived, nil
}
