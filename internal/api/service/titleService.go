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

type TitleService interface {
	Create(ctx context.Context, req dto.CreateTitleDTO) (*dto.TitleResponse, error)
	List(ctx context.Context, filter dto.TitleFilter, page, pageSize int) (*dto.PaginatedTitleResponse, error)
	GetByID(ctx context.Context, id int64) (*dto.TitleResponse, error)
	PartialUpdate(ctx context.Context, id int64, req dto.UpdateTitleDTO) (*dto.TitleResponse, error)
	Delete(ctx context.Context, id int64) error
}

type titleService struct {
	titleRepo    *repository.TitleRepo
	categoryRepo *repository.CategoryRepo
	genreRepo    *repository.GenreRepo
}

func NewTitleService(
	titleRepo *repository.TitleRepo,
	categoryRepo *repository.CategoryRepo,
	genreRepo *repository.GenreRepo,
) TitleService {
	return &titleService{
		titleRepo:    titleRepo,
		categoryRepo: categoryRepo,
		genreRepo:    genreRepo,
	}
}

func (s *titleService) Create(ctx context.Context, req dto.CreateTitleDTO) (*dto.TitleResponse, error) {
	if ferr := validation.ValidateYear(req.Year); ferr != nil {
		return nil, ferr
	}

	title := &models.Title{
		Name:        req.Name,
		Year:        req.Year,
		Description: req.Description,
	}

	if req.Category != nil {
		category, err := s.resolveCategory(ctx, *req.Category)
		if err != nil {
			return nil, err
		}
		title.CategoryID = &category.ID
	}
	genres, err := s.resolveGenres(ctx, req.Genre)
	if err != nil {
		return nil, err
	}
	title.Genres = genres

	if err := s.titleRepo.Create(ctx, title); err != nil {
		return nil, err
	}
	return s.GetByID(ctx, title.ID)
}

func (s *titleService) List(ctx context.Context, filter dto.TitleFilter, page, pageSize int) (*dto.PaginatedTitleResponse, error) {
	titles, total, err := s.titleRepo.List(ctx, filter, page, pageSize)
	if err != nil {
		return nil, err
	}

	responses := make([]dto.TitleResponse, 0, len(titles))
	for i := range titles {
		responses = append(responses, *dto.FromModelToTitleResponse(&titles[i]))
	}
	return dto.NewPaginatedTitleResponse(responses, int(total), page, pageSize), nil
}

func (s *titleService) GetByID(ctx context.Context, id int64) (*dto.TitleResponse, error) {
	title, err := s.titleRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return dto.FromModelToTitleResponse(title), nil
}

func (s *titleService) PartialUpdate(ctx context.Context, id int64, req dto.UpdateTitleDTO) (*dto.TitleResponse, error) {
	title, err := s.titleRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if req.Name != nil {
		title.Name = *req.Name
	}
	if req.Year != nil {
		if ferr := validation.ValidateYear(*req.Year); ferr != nil {
			return nil, ferr
		}
		title.Year = *req.Year
	}
	if req.Description != nil {
		title.Description = *req.Description
	}
	if req.Category != nil {
		category, err := s.resolveCategory(ctx, *req.Category)
		if err != nil {
			return nil, err
		}
		title.CategoryID = &category.ID
	}

	var genres []models.Genre
	if req.Genre != nil {
		genres, err = s.resolveGenres(ctx, *req.Genre)
		if err != nil {
			return nil, err
		}
	}

	if err := s.titleRepo.Update(ctx, title, genres); err != nil {
		return nil, err
	}
	return s.GetByID(ctx, id)
}

func (s *titleService) Delete(ctx context.Context, id int64) error {
	if err := s.titleRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}
	return nil
}

// resolveCategory maps a category slug to its record; an unknown slug is a
// validation failure, not a 404, because it arrives in the request body.
func (s *titleService) resolveCategory(ctx context.Context, slug string) (*models.Category, error) {
	category, err := s.categoryRepo.GetBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, validation.NewFieldError("category", "unknown category slug")
		}
		return nil, err
	}
	return category, nil
}

func (s *titleService) resolveGenres(ctx context.Context, slugs []string) ([]models.Genre, error) {
	genres, err := s.genreRepo.GetBySlugs(ctx, slugs)
	if err != nil {
		return nil, err
	}
	if len(genres) != len(slugs) {
		return nil, validation.NewFieldError("genre", "unknown genre slug")
	}
	return genres, nil
}
