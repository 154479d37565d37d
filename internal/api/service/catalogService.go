package service

import (
	"context"
	"errors"

	"reviewhub/internal/api/dto"
	"reviewhub/internal/api/models"
	"reviewhub/internal/api/repository"
	"reviewhub/internal/api/validation"

	"gorm.io/gorm"
)

// Category and genre services are deliberately thin: create, list with a
// name search, delete by slug.

type CategoryService interface {
	Create(ctx context.Context, req dto.CreateCategoryDTO) (*models.Category, error)
	List(ctx context.Context, search string, page, pageSize int) (*dto.PaginatedCategoryResponse, error)
	Delete(ctx context.Context, slug string) error
}

type categoryService struct {
	repo *repository.CategoryRepo
}

func NewCategoryService(repo *repository.CategoryRepo) CategoryService {
	return &categoryService{repo: repo}
}

func (s *categoryService) Create(ctx context.Context, req dto.CreateCategoryDTO) (*models.Category, error) {
	if ferr := validation.ValidateSlug(req.Slug); ferr != nil {
		return nil, ferr
	}
	category := &models.Category{Name: req.Name, Slug: req.Slug}
	if err := s.repo.Create(ctx, category); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, validation.NewFieldError("slug", "category with this name or slug already exists")
		}
		return nil, err
	}
	return category, nil
}

func (s *categoryService) List(ctx context.Context, search string, page, pageSize int) (*dto.PaginatedCategoryResponse, error) {
	list, total, err := s.repo.List(ctx, search, page, pageSize)
	if err != nil {
		return nil, err
	}
	responses := make([]dto.CategoryResponse, 0, len(list))
	for i := range list {
		responses = append(responses, *dto.FromModelToCategoryResponse(&list[i]))
	}
	return dto.NewPaginatedCategoryResponse(responses, int(total), page, pageSize), nil
}

func (s *categoryService) Delete(ctx context.Context, slug string) error {
	if err := s.repo.DeleteBySlug(ctx, slug); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}
	return nil
}

type GenreService interface {
	Create(ctx context.Context, req dto.CreateGenreDTO) (*models.Genre, error)
	List(ctx context.Context, search string, page, pageSize int) (*dto.PaginatedGenreResponse, error)
	Delete(ctx context.Context, slug string) error
}

type genreService struct {
	repo *repository.GenreRepo
}

func NewGenreService(repo *repository.GenreRepo) GenreService {
	return &genreService{repo: repo}
}

func (s *genreService) Create(ctx context.Context, req dto.CreateGenreDTO) (*models.Genre, error) {
	if ferr := validation.ValidateSlug(req.Slug); ferr != nil {
		return nil, ferr
	}
	genre := &models.Genre{Name: req.Name, Slug: req.Slug}
	if err := s.repo.Create(ctx, genre); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, validation.NewFieldError("slug", "genre with this name or slug already exists")
		}
		return nil, err
	}
	return genre, nil
}

func (s *genreService) List(ctx context.Context, search string, page, pageSize int) (*dto.PaginatedGenreResponse, error) {
	list, total, err := s.repo.List(ctx, search, page, pageSize)
	if err != nil {
		return nil, err
	}
	responses := make([]dto.GenreResponse, 0, len(list))
	for i := range list {
		responses = append(responses, *dto.FromModelToGenreResponse(&list[i]))
	}
	return dto.NewPaginatedGenreResponse(responses, int(total), page, pageSize), nil
}

func (s *genreService) Delete(ctx context.Context, slug string) error {
	if err := s.repo.DeleteBySlug(ctx, slug); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}
	return nil
}
