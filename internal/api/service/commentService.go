package service

import (
	"context"
	"errors"

	"reviewhub/internal/api/dto"
	"reviewhub/internal/api/models"
	"reviewhub/internal/api/repository"

	"gorm.io/gorm"
)

type CommentService interface {
	Create(ctx context.Context, titleID, reviewID int64, author *models.User, req dto.CreateCommentDTO) (*dto.CommentResponse, error)
	List(ctx context.Context, titleID, reviewID int64, page, pageSize int) (*dto.PaginatedCommentResponse, error)
	GetByID(ctx context.Context, titleID, reviewID, id int64) (*dto.CommentResponse, error)
	PartialUpdate(ctx context.Context, titleID, reviewID, id int64, actor *models.User, req dto.UpdateCommentDTO) (*dto.CommentResponse, error)
	Delete(ctx context.Context, titleID, reviewID, id int64, actor *models.User) error
}

type commentService struct {
	commentRepo *repository.CommentRepo
	reviewRepo  repository.ReviewRepository
}

func NewCommentService(commentRepo *repository.CommentRepo, reviewRepo repository.ReviewRepository) CommentService {
	return &commentService{commentRepo: commentRepo, reviewRepo: reviewRepo}
}

// Create attaches the path-resolved review and the requesting user. The
// review lookup is scoped by title so a review id under the wrong title
// is a 404, not a leak.
func (s *commentService) Create(ctx context.Context, titleID, reviewID int64, author *models.User, req dto.CreateCommentDTO) (*dto.CommentResponse, error) {
	if err := s.requireReview(ctx, titleID, reviewID); err != nil {
		return nil, err
	}

	comment := &models.Comment{
		ReviewID: reviewID,
		AuthorID: author.ID,
		Text:     req.Text,
	}
	if err := s.commentRepo.Create(ctx, comment); err != nil {
		return nil, err
	}
	return dto.FromModelToCommentResponse(comment), nil
}

func (s *commentService) List(ctx context.Context, titleID, reviewID int64, page, pageSize int) (*dto.PaginatedCommentResponse, error) {
	if err := s.requireReview(ctx, titleID, reviewID); err != nil {
		return nil, err
	}

	comments, total, err := s.commentRepo.ListByReview(ctx, reviewID, page, pageSize)
	if err != nil {
		return nil, err
	}

	responses := make([]dto.CommentResponse, 0, len(comments))
	for i := range comments {
		responses = append(responses, *dto.FromModelToCommentResponse(&comments[i]))
	}
	return dto.NewPaginatedCommentResponse(responses, int(total), page, pageSize), nil
}

func (s *commentService) GetByID(ctx context.Context, titleID, reviewID, id int64) (*dto.CommentResponse, error) {
	comment, err := s.getComment(ctx, titleID, reviewID, id)
	if err != nil {
		return nil, err
	}
	return dto.FromModelToCommentResponse(comment), nil
}

func (s *commentService) PartialUpdate(ctx context.Context, titleID, reviewID, id int64, actor *models.User, req dto.UpdateCommentDTO) (*dto.CommentResponse, error) {
	comment, err := s.getComment(ctx, titleID, reviewID, id)
	if err != nil {
		return nil, err
	}
	if !canModify(actor, comment.AuthorID) {
		return nil, ErrForbidden
	}

	if req.Text != nil {
		comment.Text = *req.Text
	}

	if err := s.commentRepo.Update(ctx, comment); err != nil {
		return nil, err
	}
	return dto.FromModelToCommentResponse(comment), nil
}

func (s *commentService) Delete(ctx context.Context, titleID, reviewID, id int64, actor *models.User) error {
	comment, err := s.getComment(ctx, titleID, reviewID, id)
	if err != nil {
		return err
	}
	if !canModify(actor, comment.AuthorID) {
		return ErrForbidden
	}

	if err := s.commentRepo.Delete(ctx, reviewID, comment.ID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}
	return nil
}

func (s *commentService) getComment(ctx context.Context, titleID, reviewID, id int64) (*models.Comment, error) {
	if err := s.requireReview(ctx, titleID, reviewID); err != nil {
		return nil, err
	}
	comment, err := s.commentRepo.GetByID(ctx, reviewID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return comment, nil
}

func (s *commentService) requireReview(ctx context.Context, titleID, reviewID int64) error {
	if _, err := s.reviewRepo.GetByID(ctx, titleID, reviewID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}
	return nil
}
