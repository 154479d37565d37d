package dto

import "reviewhub/internal/api/models"

// CreateTitleDTO used for POST /api/v1/titles.
// Category and genres are referenced by slug, matching the public API.
type CreateTitleDTO struct {
	Name        string   `json:"name" binding:"required,max=256"`
	Year        int      `json:"year" binding:"required"`
	Description string   `json:"description"`
	Category    *string  `json:"category,omitempty"`
	Genre       []string `json:"genre,omitempty"`
}

// UpdateTitleDTO used for PATCH /api/v1/titles/:id (partial updates only)
type UpdateTitleDTO struct {
	Name        *string   `json:"name,omitempty" binding:"omitempty,max=256"`
	Year        *int      `json:"year,omitempty"`
	Description *string   `json:"description,omitempty"`
	Category    *string   `json:"category,omitempty"`
	Genre       *[]string `json:"genre,omitempty"`
}

// TitleFilter holds the list query parameters.
type TitleFilter struct {
	Name     string `form:"name"`
	Genre    string `form:"genre"`
	Category string `form:"category"`
	Year     *int   `form:"year"`
	Ordering string `form:"ordering"`
}

type TitleResponse struct {
	ID          int64             `json:"id"`
	Name        string            `json:"name"`
	Year        int               `json:"year"`
	Rating      *float64          `json:"rating"`
	Description string            `json:"description"`
	Genre       []GenreResponse   `json:"genre"`
	Category    *CategoryResponse `json:"category"`
}

// FromModelToTitleResponse converts a Title model to TitleResponse DTO
func FromModelToTitleResponse(t *models.Title) *TitleResponse {
	genres := make([]GenreResponse, 0, len(t.Genres))
	for i := range t.Genres {
		genres = append(genres, *FromModelToGenreResponse(&t.Genres[i]))
	}
	resp := &TitleResponse{
		ID:          t.ID,
		Name:        t.Name,
		Year:        t.Year,
		Rating:      t.Rating,
		Description: t.Description,
		Genre:       genres,
	}
	if t.Category != nil {
		resp.Category = FromModelToCategoryResponse(t.Category)
	}
	return resp
}

// PaginatedTitleResponse for returning paginated titles
type PaginatedTitleResponse struct {
	Data       []TitleResponse `json:"data"`
	Page       int             `json:"page"`
	PageSize   int             `json:"page_size"`
	Total      int             `json:"total"`
	TotalPages int             `json:"total_pages"`
}

func NewPaginatedTitleResponse(data []TitleResponse, total, page, pageSize int) *PaginatedTitleResponse {
	return &PaginatedTitleResponse{
		Data:       data,
		Page:       page,
		PageSize:   pageSize,
		Total:      total,
		TotalPages: totalPages(total, pageSize),
	}
}
