package dto

import "reviewhub/internal/api/models"

// CreateUserDTO for POST /api/v1/users (admin only)
type CreateUserDTO struct {
	Username  string `json:"username" binding:"required"`
	Email     string `json:"email" binding:"required,email,max=254"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Bio       string `json:"bio"`
	Role      string `json:"role"`
}

// UpdateUserDTO for PATCH /api/v1/users/:username and /users/me
// (partial updates only; nil fields are left untouched)
type UpdateUserDTO struct {
	Username  *string `json:"username,omitempty"`
	Email     *string `json:"email,omitempty" binding:"omitempty,email,max=254"`
	FirstName *string `json:"first_name,omitempty"`
	LastName  *string `json:"last_name,omitempty"`
	Bio       *string `json:"bio,omitempty"`
	Role      *string `json:"role,omitempty"`
}

type UserResponse struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Bio       string `json:"bio"`
	Role      string `json:"role"`
}

// FromModelToUserResponse converts a User model to UserResponse DTO
func FromModelToUserResponse(user *models.User) *UserResponse {
	return &UserResponse{
		Username:  user.Username,
		Email:     user.Email,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		Bio:       user.Bio,
		Role:      user.Role,
	}
}

// PaginatedUserResponse for returning paginated users
type PaginatedUserResponse struct {
	Data       []UserResponse `json:"data"`
	Page       int            `json:"page"`
	PageSize   int            `json:"page_size"`
	Total      int            `json:"total"`
	TotalPages int            `json:"total_pages"`
}

func NewPaginatedUserResponse(data []UserResponse, total, page, pageSize int) *PaginatedUserResponse {
	return &PaginatedUserResponse{
		Data:       data,
		Page:       page,
		PageSize:   pageSize,
		Total:      total,
		TotalPages: totalPages(total, pageSize),
	}
}
