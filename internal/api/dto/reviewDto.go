package dto

import (
	"time"

	"reviewhub/internal/api/models"
)

// CreateReviewDTO for creating a review under a title
type CreateReviewDTO struct {
	Text  string `json:"text" binding:"required"`
	Score int    `json:"score" binding:"required"`
}

// UpdateReviewDTO for partial review updates
type UpdateReviewDTO struct {
	Text  *string `json:"text,omitempty"`
	Score *int    `json:"score,omitempty"`
}

// ReviewResponse for returning review information; author is the username.
type ReviewResponse struct {
	ID      int64     `json:"id"`
	Text    string    `json:"text"`
	Author  string    `json:"author"`
	Score   int       `json:"score"`
	PubDate time.Time `json:"pub_date"`
}

// FromModelToReviewResponse converts a Review model to ReviewResponse DTO
func FromModelToReviewResponse(review *models.Review) *ReviewResponse {
	return &ReviewResponse{
		ID:      review.ID,
		Text:    review.Text,
		Author:  review.Author.Username,
		Score:   review.Score,
		PubDate: review.CreatedAt,
	}
}

// PaginatedReviewResponse for returning paginated reviews
type PaginatedReviewResponse struct {
	Data       []ReviewResponse `json:"data"`
	Page       int              `json:"page"`
	PageSize   int              `json:"page_size"`
	Total      int              `json:"total"`
	TotalPages int              `json:"total_pages"`
}

func NewPaginatedReviewResponse(data []ReviewResponse, total, page, pageSize int) *PaginatedReviewResponse {
	return &PaginatedReviewResponse{
		Data:       data,
		Page:       page,
		PageSize:   pageSize,
		Total:      total,
		TotalPages: totalPages(total, pageSize),
	}
}
