package repository

import (
	"context"
	"fmt"

	"reviewhub/internal/api/models"

	"gorm.io/gorm"
)

type CategoryRepo struct {
	db *gorm.DB
}

func NewCategoryRepo(db *gorm.DB) *CategoryRepo {
	return &CategoryRepo{db: db}
}

func (r *CategoryRepo) Create(ctx context.Context, c *models.Category) error {
	return r.db.WithContext(ctx).Create(c).Error
}

func (r *CategoryRepo) GetBySlug(ctx context.Context, slug string) (*models.Category, error) {
	var c models.Category
	if err := r.db.WithContext(ctx).Where("slug = ?", slug).First(&c).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

// List returns categories with an optional substring search on name.
func (r *CategoryRepo) List(ctx context.Context, search string, page, pageSize int) ([]models.Category, int64, error) {
	var list []models.Category
	var total int64

	q := r.db.WithContext(ctx).Model(&models.Category{})
	if search != "" {
		q = q.Where("name LIKE ?", "%"+search+"%")
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count categories: %w", err)
	}

	offset := (page - 1) * pageSize
	if err := q.Order("name asc").Limit(pageSize).Offset(offset).Find(&list).Error; err != nil {
		return nil, 0, fmt.Errorf("get categories: %w", err)
	}

	return list, total, nil
}

// DeleteBySlug removes a category; titles referencing it fall back to a
// null category via the FK's SET NULL.
func (r *CategoryRepo) DeleteBySlug(ctx context.Context, slug string) error {
	result := r.db.WithContext(ctx).Where("slug = ?", slug).Delete(&models.Category{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
