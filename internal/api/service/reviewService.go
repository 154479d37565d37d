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

type ReviewService interface {
	Create(ctx context.Context, titleID int64, author *models.User, req dto.CreateReviewDTO) (*dto.ReviewResponse, error)
	List(ctx context.Context, titleID int64, page, pageSize int) (*dto.PaginatedReviewResponse, error)
	GetByID(ctx context.Context, titleID, id int64) (*dto.ReviewResponse, error)
	PartialUpdate(ctx context.Context, titleID, id int64, actor *models.User, req dto.UpdateReviewDTO) (*dto.ReviewResponse, error)
	Delete(ctx context.Context, titleID, id int64, actor *models.User) error
}

type reviewService struct {
	reviewRepo repository.ReviewRepository
	titleRepo  *repository.TitleRepo
}

func NewReviewService(reviewRepo repository.ReviewRepository, titleRepo *repository.TitleRepo) ReviewService {
	return &reviewService{reviewRepo: reviewRepo, titleRepo: titleRepo}
}

// canModify implements the author-or-moderator-or-admin object permission.
func canModify(actor *models.User, authorID string) bool {
	return actor.ID == authorID || actor.IsModerator() || actor.IsAdmin()
}

// Create attaches the path-resolved title and the requesting user. A second
// review for the same (title, author) pair is rejected up front, and the
// unique index catches the race when two requests pass the check together.
func (s *reviewService) Create(ctx context.Context, titleID int64, author *models.User, req dto.CreateReviewDTO) (*dto.ReviewResponse, error) {
	if err := s.requireTitle(ctx, titleID); err != nil {
		return nil, err
	}
	if ferr := validation.ValidateScore(req.Score); ferr != nil {
		return nil, ferr
	}

	if _, err := s.reviewRepo.GetByTitleAndAuthor(ctx, titleID, author.ID); err == nil {
		return nil, ErrConflict
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	review := &models.Review{
		TitleID:  titleID,
		AuthorID: author.ID,
		Text:     req.Text,
		Score:    req.Score,
	}
	if err := s.reviewRepo.Create(ctx, review); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrConflict
		}
		return nil, err
	}
	return dto.FromModelToReviewResponse(review), nil
}

func (s *reviewService) List(ctx context.Context, titleID int64, page, pageSize int) (*dto.PaginatedReviewResponse, error) {
	if err := s.requireTitle(ctx, titleID); err != nil {
		return nil, err
	}

	reviews, total, err := s.reviewRepo.ListByTitle(ctx, titleID, page, pageSize)
	if err != nil {
		return nil, err
	}

	responses := make([]dto.ReviewResponse, 0, len(reviews))
	for i := range reviews {
		responses = append(responses, *dto.FromModelToReviewResponse(&reviews[i]))
	}
	return dto.NewPaginatedReviewResponse(responses, int(total), page, pageSize), nil
}

func (s *reviewService) GetByID(ctx context.Context, titleID, id int64) (*dto.ReviewResponse, error) {
	review, err := s.getReview(ctx, titleID, id)
	if err != nil {
		return nil, err
	}
	return dto.FromModelToReviewResponse(review), nil
}

func (s *reviewService) PartialUpdate(ctx context.Context, titleID, id int64, actor *models.User, req dto.UpdateReviewDTO) (*dto.ReviewResponse, error) {
	review, err := s.getReview(ctx, titleID, id)
	if err != nil {
		return nil, err
	}
	if !canModify(actor, review.AuthorID) {
		return nil, ErrForbidden
	}

	if req.Text != nil {
		review.Text = *req.Text
	}
	if req.Score != nil {
		if ferr := validation.ValidateScore(*req.Score); ferr != nil {
			return nil, ferr
		}
		review.Score = *req.Score
	}

	if err := s.reviewRepo.Update(ctx, review); err != nil {
		return nil, err
	}
	return dto.FromModelToReviewResponse(review), nil
}

func (s *reviewService) Delete(ctx context.Context, titleID, id int64, actor *models.User) error {
	review, err := s.getReview(ctx, titleID, id)
	if err != nil {
		return err
	}
	if !canModify(actor, review.AuthorID) {
		return ErrForbidden
	}

	if err := s.reviewRepo.Delete(ctx, titleID, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}
	return nil
}

func (s *reviewService) getReview(ctx context.Context, titleID, id int64) (*models.Review, error) {
	review, err := s.reviewRepo.GetByID(ctx, titleID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return review, nil
}

func (s *reviewService) requireTitle(ctx context.Context, titleID int64) error {
	exists, err := s.titleRepo.Exists(ctx, titleID)
	if err != nil {
		return err
	}
	if !exists {
		return ErrNotFound
	}
	return nil
}
