package dto

import (
	"time"

	"reviewhub/internal/api/models"
)

// CreateCommentDTO for creating a comment under a review
type CreateCommentDTO struct {
	Text string `json:"text" binding:"required"`
}

// UpdateCommentDTO for partial comment updates
type UpdateCommentDTO struct {
	Text *string `json:"text,omitempty"`
}

// CommentResponse for returning comment information; author is the username.
type CommentResponse struct {
	ID      int64     `json:"id"`
	Text    string    `json:"text"`
	Author  string    `json:"author"`
	PubDate time.Time `json:"pub_date"`
}

// FromModelToCommentResponse converts a Comment model to CommentResponse DTO
func FromModelToCommentResponse(comment *models.Comment) *CommentResponse {
	return &CommentResponse{
		ID:      comment.ID,
		Text:    comment.Text,
		Author:  comment.Author.Username,
		PubDate: comment.CreatedAt,
	}
}

// PaginatedCommentResponse for returning paginated comments
type PaginatedCommentResponse struct {
	Data       []CommentResponse `json:"data"`
	Page       int               `json:"page"`
	PageSize   int               `json:"page_size"`
	Total      int               `json:"total"`
	TotalPages int               `json:"total_pages"`
}

func NewPaginatedCommentResponse(data []CommentResponse, total, page, pageSize int) *PaginatedCommentResponse {
	return &PaginatedCommentResponse{
		Data:       data,
		Page:       page,
		PageSize:   pageSize,
		Total:      total,
		TotalPages: totalPages(total, pageSize),
	}
}
