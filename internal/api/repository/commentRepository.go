package repository

import (
	"context"

	"reviewhub/internal/api/models"

	"gorm.io/gorm"
)

type CommentRepo struct {
	db *gorm.DB
}

func NewCommentRepo(db *gorm.DB) *CommentRepo {
	return &CommentRepo{db: db}
}

func (r *CommentRepo) Create(ctx context.Context, comment *models.Comment) error {
	if err := r.db.WithContext(ctx).Create(comment).Error; err != nil {
		return err
	}
	return r.db.WithContext(ctx).Preload("Author").First(comment, comment.ID).Error
}

func (r *CommentRepo) Update(ctx context.Context, comment *models.Comment) error {
	return r.db.WithContext(ctx).Omit("Author", "Review").Save(comment).Error
}

func (r *CommentRepo) Delete(ctx context.Context, reviewID, id int64) error {
	result := r.db.WithContext(ctx).
		Where("review_id = ? AND id = ?", reviewID, id).
		Delete(&models.Comment{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *CommentRepo) GetByID(ctx context.Context, reviewID, id int64) (*models.Comment, error) {
	var comment models.Comment
	err := r.db.WithContext(ctx).
		Where("review_id = ? AND id = ?", reviewID, id).
		Preload("Author").
		First(&comment).Error
	if err != nil {
		return nil, err
	}
	return &comment, nil
}

// ListByReview returns comments for a review, newest first.
func (r *CommentRepo) ListByReview(ctx context.Context, reviewID int64, page, pageSize int) ([]models.Comment, int64, error) {
	var comments []models.Comment
	var total int64

	if err := r.db.WithContext(ctx).Model(&models.Comment{}).Where("review_id = ?", reviewID).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := r.db.WithContext(ctx).
		Where("review_id = ?", reviewID).
		Preload("Author").
		Order("created_at DESC").
		Limit(pageSize).
		Offset(offset).
		Find(&comments).Error
	if err != nil {
		return nil, 0, err
	}

	return comments, total, nil
}
