package repository

import (
	"context"
	"fmt"

	"reviewhub/internal/api/dto"
	"reviewhub/internal/api/models"

	"gorm.io/gorm"
)

// ratingSelect computes the derived rating on read. AVG over zero rows is
// NULL, which scans into a nil *float64.
const ratingSelect = "titles.*, (SELECT AVG(score) FROM reviews WHERE reviews.title_id = titles.id) AS rating"

type TitleRepo struct {
	db *gorm.DB
}

func NewTitleRepo(db *gorm.DB) *TitleRepo {
	return &TitleRepo{db: db}
}

func (r *TitleRepo) Create(ctx context.Context, t *models.Title) error {
	if err := r.db.WithContext(ctx).Create(t).Error; err != nil {
		return fmt.Errorf("create title: %w", err)
	}
	return nil
}

func (r *TitleRepo) GetByID(ctx context.Context, id int64) (*models.Title, error) {
	var t models.Title
	err := r.db.WithContext(ctx).
		Select(ratingSelect).
		Preload("Category").
		Preload("Genres").
		First(&t, id).Error
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// Exists is a cheap parent check for the nested review routes.
func (r *TitleRepo) Exists(ctx context.Context, id int64) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Title{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// List applies the title filters and pagination. Substring filters use LIKE
// directly so matching stays case-sensitive on PostgreSQL.
func (r *TitleRepo) List(ctx context.Context, filter dto.TitleFilter, page, pageSize int) ([]models.Title, int64, error) {
	var list []models.Title
	var total int64

	q := r.db.WithContext(ctx).Model(&models.Title{})
	if filter.Name != "" {
		q = q.Where("titles.name LIKE ?", "%"+filter.Name+"%")
	}
	if filter.Year != nil {
		q = q.Where("titles.year = ?", *filter.Year)
	}
	if filter.Genre != "" {
		q = q.Where(
			"EXISTS (SELECT 1 FROM title_genres tg JOIN genres g ON g.id = tg.genre_id WHERE tg.title_id = titles.id AND g.slug LIKE ?)",
			"%"+filter.Genre+"%",
		)
	}
	if filter.Category != "" {
		q = q.Where(
			"EXISTS (SELECT 1 FROM categories c WHERE c.id = titles.category_id AND c.slug LIKE ?)",
			"%"+filter.Category+"%",
		)
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count titles: %w", err)
	}

	order := "titles.name asc"
	switch filter.Ordering {
	case "", "name":
	case "-name":
		order = "titles.name desc"
	case "year":
		order = "titles.year asc"
	case "-year":
		order = "titles.year desc"
	}

	offset := (page - 1) * pageSize
	err := q.Select(ratingSelect).
		Preload("Category").
		Preload("Genres").
		Order(order).
		Limit(pageSize).
		Offset(offset).
		Find(&list).Error
	if err != nil {
		return nil, 0, fmt.Errorf("get titles: %w", err)
	}

	return list, total, nil
}

// Update saves scalar fields and, when genres is non-nil, replaces the
// genre associations.
func (r *TitleRepo) Update(ctx context.Context, t *models.Title, genres []models.Genre) error {
	tx := r.db.WithContext(ctx).Begin()
	if err := tx.Omit("Genres", "Category").Save(t).Error; err != nil {
		tx.Rollback()
		return fmt.Errorf("update title: %w", err)
	}
	if genres != nil {
		if err := tx.Model(t).Association("Genres").Replace(genres); err != nil {
			tx.Rollback()
			return fmt.Errorf("replace genres: %w", err)
		}
	}
	return tx.Commit().Error
}

func (r *TitleRepo) Delete(ctx context.Context, id int64) error {
	result := r.db.WithContext(ctx).Delete(&models.Title{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
