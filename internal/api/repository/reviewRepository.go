package repository

import (
	"context"

	"reviewhub/internal/api/models"

	"gorm.io/gorm"
)

type ReviewRepository interface {
	Create(ctx context.Context, review *models.Review) error
	Update(ctx context.Context, review *models.Review) error
	Delete(ctx context.Context, titleID, id int64) error
	GetByID(ctx context.Context, titleID, id int64) (*models.Review, error)
	GetByTitleAndAuthor(ctx context.Context, titleID int64, authorID string) (*models.Review, error)
	ListByTitle(ctx context.Context, titleID int64, page, pageSize int) ([]models.Review, int64, error)
}

type reviewRepository struct {
	db *gorm.DB
}

func NewReviewRepository(db *gorm.DB) ReviewRepository {
	return &reviewRepository{db: db}
}

// Create inserts a review. The composite unique index on
// (title_id, author_id) makes a concurrent duplicate surface as
// gorm.ErrDuplicatedKey rather than slipping past the service-level check.
func (r *reviewRepository) Create(ctx context.Context, review *models.Review) error {
	if err := r.db.WithContext(ctx).Create(review).Error; err != nil {
		return err
	}
	return r.db.WithContext(ctx).Preload("Author").First(review, review.ID).Error
}

func (r *reviewRepository) Update(ctx context.Context, review *models.Review) error {
	return r.db.WithContext(ctx).Omit("Author", "Title").Save(review).Error
}

func (r *reviewRepository) Delete(ctx context.Context, titleID, id int64) error {
	result := r.db.WithContext(ctx).
		Where("title_id = ? AND id = ?", titleID, id).
		Delete(&models.Review{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *reviewRepository) GetByID(ctx context.Context, titleID, id int64) (*models.Review, error) {
	var review models.Review
	err := r.db.WithContext(ctx).
		Where("title_id = ? AND id = ?", titleID, id).
		Preload("Author").
		First(&review).Error
	if err != nil {
		return nil, err
	}
	return &review, nil
}

func (r *reviewRepository) GetByTitleAndAuthor(ctx context.Context, titleID int64, authorID string) (*models.Review, error) {
	var review models.Review
	err := r.db.WithContext(ctx).
		Where("title_id = ? AND author_id = ?", titleID, authorID).
		Preload("Author").
		First(&review).Error
	if err != nil {
		return nil, err
	}
	return &review, nil
}

// ListByTitle returns reviews for a title, newest first.
func (r *reviewRepository) ListByTitle(ctx context.Context, titleID int64, page, pageSize int) ([]models.Review, int64, error) {
	var reviews []models.Review
	var total int64

	if err := r.db.WithContext(ctx).Model(&models.Review{}).Where("title_id = ?", titleID).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := r.db.WithContext(ctx).
		Where("title_id = ?", titleID).
		Preload("Author").
		Order("created_at DESC").
		Limit(pageSize).
		Offset(offset).
		Find(&reviews).Error
	if err != nil {
		return nil, 0, err
	}

	return reviews, total, nil
}
