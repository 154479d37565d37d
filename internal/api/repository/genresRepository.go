package repository

import (
	"context"
	"fmt"

	"reviewhub/internal/api/models"

	"gorm.io/gorm"
)

type GenreRepo struct {
	db *gorm.DB
}

func NewGenreRepo(db *gorm.DB) *GenreRepo {
	return &GenreRepo{db: db}
}

func (r *GenreRepo) Create(ctx context.Context, g *models.Genre) error {
	return r.db.WithContext(ctx).Create(g).Error
}

func (r *GenreRepo) GetBySlug(ctx context.Context, slug string) (*models.Genre, error) {
	var g models.Genre
	if err := r.db.WithContext(ctx).Where("slug = ?", slug).First(&g).Error; err != nil {
		return nil, err
	}
	return &g, nil
}

// GetBySlugs resolves a set of genre slugs; the caller checks the count to
// detect unknown slugs.
func (r *GenreRepo) GetBySlugs(ctx context.Context, slugs []string) ([]models.Genre, error) {
	list := make([]models.Genre, 0, len(slugs))
	if len(slugs) == 0 {
		return list, nil
	}
	if err := r.db.WithContext(ctx).Where("slug IN ?", slugs).Find(&list).Error; err != nil {
		return nil, fmt.Errorf("get genres by slugs: %w", err)
	}
	return list, nil
}

// List returns genres with an optional substring search on name.
func (r *GenreRepo) List(ctx context.Context, search string, page, pageSize int) ([]models.Genre, int64, error) {
	var list []models.Genre
	var total int64

	q := r.db.WithContext(ctx).Model(&models.Genre{})
	if search != "" {
		q = q.Where("name LIKE ?", "%"+search+"%")
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count genres: %w", err)
	}

	offset := (page - 1) * pageSize
	if err := q.Order("name asc").Limit(pageSize).Offset(offset).Find(&list).Error; err != nil {
		return nil, 0, fmt.Errorf("get genres: %w", err)
	}

	return list, total, nil
}

func (r *GenreRepo) DeleteBySlug(ctx context.Context, slug string) error {
	result := r.db.WithContext(ctx).Where("slug = ?", slug).Delete(&models.Genre{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
