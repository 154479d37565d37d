package dto

import "reviewhub/internal/api/models"

// Categories and genres share the same shape: a unique name plus a
// URL-safe slug used as the lookup key.

// CreateCategoryDTO for POST /api/v1/categories
type CreateCategoryDTO struct {
	Name string `json:"name" binding:"required,max=256"`
	Slug string `json:"slug" binding:"required,max=50"`
}

type CategoryResponse struct {
	Name string `json:"name"`
	Slug string `json:"slug"`
}

func FromModelToCategoryResponse(c *models.Category) *CategoryResponse {
	return &CategoryResponse{Name: c.Name, Slug: c.Slug}
}

// PaginatedCategoryResponse for returning paginated categories
type PaginatedCategoryResponse struct {
	Data       []CategoryResponse `json:"data"`
	Page       int                `json:"page"`
	PageSize   int                `json:"page_size"`
	Total      int                `json:"total"`
	TotalPages int                `json:"total_pages"`
}

func NewPaginatedCategoryResponse(data []CategoryResponse, total, page, pageSize int) *PaginatedCategoryResponse {
	return &PaginatedCategoryResponse{
		Data:       data,
		Page:       page,
		PageSize:   pageSize,
		Total:      total,
		TotalPages: totalPages(total, pageSize),
	}
}

// CreateGenreDTO for POST /api/v1/genres
type CreateGenreDTO struct {
	Name string `json:"name" binding:"required,max=256"`
	Slug string `json:"slug" binding:"required,max=50"`
}

type GenreResponse struct {
	Name string `json:"name"`
	Slug string `json:"slug"`
}

func FromModelToGenreResponse(g *models.Genre) *GenreResponse {
	return &GenreResponse{Name: g.Name, Slug: g.Slug}
}

// PaginatedGenreResponse for returning paginated genres
type PaginatedGenreResponse struct {
	Data       []GenreResponse `json:"data"`
	Page       int             `json:"page"`
	PageSize   int             `json:"page_size"`
	Total      int             `json:"total"`
	TotalPages int             `json:"total_pages"`
}

func NewPaginatedGenreResponse(data []GenreResponse, total, page, pageSize int) *PaginatedGenreResponse {
	return &PaginatedGenreResponse{
		Data:       data,
		Page:       page,
		PageSize:   pageSize,
		Total:      total,
		TotalPages: totalPages(total, pageSize),
	}
}
