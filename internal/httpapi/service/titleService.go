package service

import (
	"context"
	"errors"
	"time"

	"yamdb/internal/cache"
	"yamdb/internal/httpapi/dto"
	"yamdb/internal/httpapi/models"
	"yamdb/internal/httpapi/repository"

	"gorm.io/gorm"
)

var (
	ErrTitleNotFound = errors.New("title not found")
	ErrYearInFuture  = errors.New("year cannot be greater than the current year")
)

type TitleService interface {
	List(ctx context.Context, filter repository.TitleFilter, page, pageSize int) (*dto.PaginatedTitleResponse, error)
	GetByID(ctx context.Context, id int64) (*dto.TitleResponse, error)
	Create(ctx context.Context, input dto.CreateTitleDTO) (*dto.TitleResponse, error)
	Update(ctx context.Context, id int64, input dto.UpdateTitleDTO) (*dto.TitleResponse, error)
	Delete(ctx context.Context, id int64) error
}

type titleService struct {
	titleRepo    repository.TitleRepository
	reviewRepo   repository.ReviewRepository
	categoryRepo *repository.CategoryRepo
	genreRepo    *repository.GenreRepo
	ratings      *cache.RatingCache
}

func NewTitleService(
	titleRepo repository.TitleRepository,
	reviewRepo repository.ReviewRepository,
	categoryRepo *repository.CategoryRepo,
	genreRepo *repository.GenreRepo,
	ratings *cache.RatingCache,
) TitleService {
	return &titleService{
		titleRepo:    titleRepo,
		reviewRepo:   reviewRepo,
		categoryRepo: categoryRepo,
		genreRepo:    genreRepo,
		ratings:      ratings,
	}
}

func (s *titleService) List(ctx context.Context, filter repository.TitleFilter, page, pageSize int) (*dto.PaginatedTitleResponse, error) {
	titles, total, err := s.titleRepo.List(ctx, filter, page, pageSize)
	if err != nil {
		return nil, err
	}

	ids := make([]int64, 0, len(titles))
	for _, t := range titles {
		ids = append(ids, t.ID)
	}
	averages, err := s.reviewRepo.AverageScores(ctx, ids)
	if err != nil {
		return nil, err
	}

	responses := make([]dto.TitleResponse, 0, len(titles))
	for i := range titles {
		var rating *float64
		if avg, ok := averages[titles[i].ID]; ok {
			avg := avg
			rating = &avg
		}
		responses = append(responses, *dto.TitleFromModel(&titles[i], rating))
	}
	return dto.NewPaginatedTitleResponse(responses, int(total), page, pageSize), nil
}

func (s *titleService) GetByID(ctx context.Context, id int64) (*dto.TitleResponse, error) {
	title, err := s.titleRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTitleNotFound
		}
		return nil, err
	}

	rating, err := s.rating(ctx, id)
	if err != nil {
		return nil, err
	}
	return dto.TitleFromModel(title, rating), nil
}

// rating returns the mean review score for the title, going through the
// redis cache when one is wired.
func (s *titleService) rating(ctx context.Context, titleID int64) (*float64, error) {
	if rating, hit := s.ratings.Get(ctx, titleID); hit {
		return rating, nil
	}
	rating, err := s.reviewRepo.AverageScore(ctx, titleID)
	if err != nil {
		return nil, err
	}
	s.ratings.Set(ctx, titleID, rating)
	return rating, nil
}

func (s *titleService) Create(ctx context.Context, input dto.CreateTitleDTO) (*dto.TitleResponse, error) {
	if input.Year > time.Now().Year() {
		return nil, ErrYearInFuture
	}

	title := &models.Title{
		Name:        input.Name,
		Year:        input.Year,
		Description: input.Description,
	}

	if input.Category != nil {
		category, err := s.categoryRepo.GetBySlug(ctx, *input.Category)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrCategoryNotFound
			}
			return nil, err
		}
		title.CategoryID = &category.ID
		title.Category = category
	}

	var genres []models.Genre
	if len(input.Genre) > 0 {
		var err error
		genres, err = s.genreRepo.GetBySlugs(ctx, input.Genre)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrGenreNotFound
			}
			return nil, err
		}
		title.Genres = genres
	}

	if err := s.titleRepo.Create(ctx, title); err != nil {
		return nil, err
	}
	// fresh title, no reviews yet
	return dto.TitleFromModel(title, nil), nil
}

func (s *titleService) Update(ctx context.Context, id int64, input dto.UpdateTitleDTO) (*dto.TitleResponse, error) {
	title, err := s.titleRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTitleNotFound
		}
		return nil, err
	}

	if input.Name != nil {
		title.Name = *input.Name
	}
	if input.Year != nil {
		if *input.Year > time.Now().Year() {
			return nil, ErrYearInFuture
		}
		title.Year = *input.Year
	}
	if input.Description != nil {
		title.Description = input.Description
	}
	if input.Category != nil {
		if *input.Category == "" {
			title.CategoryID = nil
			title.Category = nil
		} else {
			category, err := s.categoryRepo.GetBySlug(ctx, *input.Category)
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return nil, ErrCategoryNotFound
				}
				return nil, err
			}
			title.CategoryID = &category.ID
			title.Category = category
		}
	}

	if err := s.titleRepo.Update(ctx, title); err != nil {
		return nil, err
	}

	if input.Genre != nil {
		genres, err := s.genreRepo.GetBySlugs(ctx, input.Genre)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrGenreNotFound
			}
			return nil, err
		}
		if err := s.titleRepo.ReplaceGenres(ctx, title, genres); err != nil {
			return nil, err
		}
	}

	rating, err := s.rating(ctx, id)
	if err != nil {
		return nil, err
	}
	return dto.TitleFromModel(title, rating), nil
}

func (s *titleService) Delete(ctx context.Context, id int64) error {
	if err := s.titleRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrTitleNotFound
		}
		return err
	}
	s.ratings.Invalidate(ctx, id)
	return nil
}
