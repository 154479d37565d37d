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

type UserService interface {
	Create(ctx context.Context, req dto.CreateUserDTO) (*models.User, error)
	List(ctx context.Context, search string, page, pageSize int) (*dto.PaginatedUserResponse, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	PartialUpdate(ctx context.Context, username string, req dto.UpdateUserDTO) (*models.User, error)
	Delete(ctx context.Context, username string) error
	UpdateSelf(ctx context.Context, user *models.User, req dto.UpdateUserDTO) (*models.User, error)
}

type userService struct {
	userRepo repository.UserRepository
}

func NewUserService(userRepo repository.UserRepository) UserService {
	return &userService{userRepo: userRepo}
}

// Create adds a user directly (admin flow, no confirmation email).
func (s *userService) Create(ctx context.Context, req dto.CreateUserDTO) (*models.User, error) {
	if ferr := validation.ValidateUsername(req.Username); ferr != nil {
		return nil, ferr
	}
	role := req.Role
	if role == "" {
		role = models.RoleUser
	}
	if ferr := validation.ValidateRole(role); ferr != nil {
		return nil, ferr
	}
	if err := s.checkUnique(ctx, req.Username, req.Email, ""); err != nil {
		return nil, err
	}

	user := &models.User{
		Username:  req.Username,
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Bio:       req.Bio,
		Role:      role,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, s.translateDuplicate(ctx, user, err)
	}
	return user, nil
}

func (s *userService) List(ctx context.Context, search string, page, pageSize int) (*dto.PaginatedUserResponse, error) {
	users, total, err := s.userRepo.List(ctx, search, page, pageSize)
	if err != nil {
		return nil, err
	}

	responses := make([]dto.UserResponse, 0, len(users))
	for i := range users {
		responses = append(responses, *dto.FromModelToUserResponse(&users[i]))
	}
	return dto.NewPaginatedUserResponse(responses, int(total), page, pageSize), nil
}

func (s *userService) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	user, err := s.userRepo.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return user, nil
}

// PartialUpdate is the admin PATCH: every field including role is writable.
func (s *userService) PartialUpdate(ctx context.Context, username string, req dto.UpdateUserDTO) (*models.User, error) {
	user, err := s.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if err := s.applyUpdate(ctx, user, req, true); err != nil {
		return nil, err
	}
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, s.translateDuplicate(ctx, user, err)
	}
	return user, nil
}

// UpdateSelf is the /users/me PATCH: a submitted role is silently ignored
// so nobody can self-promote.
func (s *userService) UpdateSelf(ctx context.Context, user *models.User, req dto.UpdateUserDTO) (*models.User, error) {
	if err := s.applyUpdate(ctx, user, req, false); err != nil {
		return nil, err
	}
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, s.translateDuplicate(ctx, user, err)
	}
	return user, nil
}

func (s *userService) Delete(ctx context.Context, username string) error {
	if err := s.userRepo.Delete(ctx, username); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}
	return nil
}

func (s *userService) applyUpdate(ctx context.Context, user *models.User, req dto.UpdateUserDTO, allowRole bool) error {
	if req.Username != nil && *req.Username != user.Username {
		if ferr := validation.ValidateUsername(*req.Username); ferr != nil {
			return ferr
		}
		if err := s.checkUnique(ctx, *req.Username, "", user.ID); err != nil {
			return err
		}
		user.Username = *req.Username
	}
	if req.Email != nil && *req.Email != user.Email {
		if err := s.checkUnique(ctx, "", *req.Email, user.ID); err != nil {
			return err
		}
		user.Email = *req.Email
	}
	if req.FirstName != nil {
		user.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		user.LastName = *req.LastName
	}
	if req.Bio != nil {
		user.Bio = *req.Bio
	}
	if allowRole && req.Role != nil {
		if ferr := validation.ValidateRole(*req.Role); ferr != nil {
			return ferr
		}
		user.Role = *req.Role
	}
	return nil
}

// translateDuplicate resolves a store-level uniqueness violation (a race
// that slipped past checkUnique) into the same field error the check
// produces for the slower request.
func (s *userService) translateDuplicate(ctx context.Context, user *models.User, err error) error {
	if !errors.Is(err, gorm.ErrDuplicatedKey) {
		return err
	}
	if cerr := s.checkUnique(ctx, user.Username, user.Email, user.ID); cerr != nil {
		return cerr
	}
	return ErrConflict
}

// checkUnique rejects a username or email already owned by a different user.
func (s *userService) checkUnique(ctx context.Context, username, email, selfID string) error {
	if username != "" {
		other, err := s.userRepo.FindByUsername(ctx, username)
		if err == nil && other.ID != selfID {
			return validation.NewFieldError("username", "username already in use")
		}
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
	}
	if email != "" {
		other, err := s.userRepo.FindByEmail(ctx, email)
		if err == nil && other.ID != selfID {
			return validation.NewFieldError("email", "email already in use")
		}
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
	}
	return nil
}
