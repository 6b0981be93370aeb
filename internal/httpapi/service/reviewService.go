package service

import (
	"context"
	"errors"

	"yamdb/internal/cache"
	"yamdb/internal/httpapi/dto"
	"yamdb/internal/httpapi/models"
	"yamdb/internal/httpapi/repository"

	"gorm.io/gorm"
)

var (
	ErrReviewNotFound  = errors.New("review not found")
	ErrReviewExists    = errors.New("you have already reviewed this title")
	ErrScoreOutOfRange = errors.New("score must be between 1 and 10")
)

type ReviewService interface {
	ListByTitle(ctx context.Context, titleID int64, page, pageSize int) (*dto.PaginatedReviewResponse, error)
	GetByID(ctx context.Context, titleID, reviewID int64) (*dto.ReviewResponse, error)
	Create(ctx context.Context, titleID int64, authorID string, input dto.CreateReviewDTO) (*dto.ReviewResponse, error)
	Update(ctx context.Context, titleID, reviewID int64, input dto.UpdateReviewDTO) (*dto.ReviewResponse, error)
	Delete(ctx context.Context, titleID, reviewID int64) error

	// AuthorID exposes ownership for the permission check without
	// leaking the model to the handler
	AuthorID(ctx context.Context, titleID, reviewID int64) (string, error)
}

type reviewService struct {
	reviewRepo repository.ReviewRepository
	titleRepo  repository.TitleRepository
	ratings    *cache.RatingCache
}

func NewReviewService(
	reviewRepo repository.ReviewRepository,
	titleRepo repository.TitleRepository,
	ratings *cache.RatingCache,
) ReviewService {
	return &reviewService{
		reviewRepo: reviewRepo,
		titleRepo:  titleRepo,
		ratings:    ratings,
	}
}

func (s *reviewService) ensureTitle(ctx context.Context, titleID int64) error {
	if _, err := s.titleRepo.GetByID(ctx, titleID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrTitleNotFound
		}
		return err
	}
	return nil
}

func (s *reviewService) ListByTitle(ctx context.Context, titleID int64, page, pageSize int) (*dto.PaginatedReviewResponse, error) {
	if err := s.ensureTitle(ctx, titleID); err != nil {
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

func (s *reviewService) GetByID(ctx context.Context, titleID, reviewID int64) (*dto.ReviewResponse, error) {
	review, err := s.reviewRepo.GetByID(ctx, titleID, reviewID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrReviewNotFound
		}
		return nil, err
	}
	return dto.FromModelToReviewResponse(review), nil
}

// Create adds the author's review for a title. Uniqueness rides on the
// storage constraint: a duplicate insert comes back as ErrReviewExists
// no matter how the requests interleave.
func (s *reviewService) Create(ctx context.Context, titleID int64, authorID string, input dto.CreateReviewDTO) (*dto.ReviewResponse, error) {
	if input.Score < 1 || input.Score > 10 {
		return nil, ErrScoreOutOfRange
	}
	if err := s.ensureTitle(ctx, titleID); err != nil {
		return nil, err
	}

	review := &models.Review{
		TitleID:  titleID,
		AuthorID: authorID,
		Text:     input.Text,
		Score:    input.Score,
	}
	if err := s.reviewRepo.Create(ctx, review); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrReviewExists
		}
		return nil, err
	}

	s.ratings.Invalidate(ctx, titleID)

	// reload with the author preloaded
	review, err := s.reviewRepo.GetByID(ctx, titleID, review.ID)
	if err != nil {
		return nil, err
	}
	return dto.FromModelToReviewResponse(review), nil
}

func (s *reviewService) Update(ctx context.Context, titleID, reviewID int64, input dto.UpdateReviewDTO) (*dto.ReviewResponse, error) {
	review, err := s.reviewRepo.GetByID(ctx, titleID, reviewID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrReviewNotFound
		}
		return nil, err
	}

	if input.Text != nil {
		review.Text = *input.Text
	}
	if input.Score != nil {
		if *input.Score < 1 || *input.Score > 10 {
			return nil, ErrScoreOutOfRange
		}
		review.Score = *input.Score
	}

	if err := s.reviewRepo.Update(ctx, review); err != nil {
		return nil, err
	}

	s.ratings.Invalidate(ctx, titleID)
	return dto.FromModelToReviewResponse(review), nil
}

func (s *reviewService) Delete(ctx context.Context, titleID, reviewID int64) error {
	if err := s.reviewRepo.Delete(ctx, titleID, reviewID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrReviewNotFound
		}
		return err
	}
	s.ratings.Invalidate(ctx, titleID)
	return nil
}

func (s *reviewService) AuthorID(ctx context.Context, titleID, reviewID int64) (string, error) {
	review, err := s.reviewRepo.GetByID(ctx, titleID, reviewID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrReviewNotFound
		}
		return "", err
	}
	return review.AuthorID, nil
}
