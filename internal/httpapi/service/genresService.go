package service

import (
	"context"
	"errors"

	"yamdb/internal/httpapi/dto"
	"yamdb/internal/httpapi/models"
	"yamdb/internal/httpapi/repository"

	"gorm.io/gorm"
)

var (
	ErrGenreNotFound = errors.New("genre not found")
	ErrGenreExists   = errors.New("genre name or slug already in use")
)

type GenreService interface {
	List(ctx context.Context, search string, page, pageSize int) (*dto.PaginatedGenreResponse, error)
	GetBySlug(ctx context.Context, slug string) (*dto.GenreResponse, error)
	Create(ctx context.Context, input dto.CreateGenreDTO) (*dto.GenreResponse, error)
	Update(ctx context.Context, slug string, input dto.UpdateGenreDTO) (*dto.GenreResponse, error)
	Delete(ctx context.Context, slug string) error
}

type genreService struct {
	repo *repository.GenreRepo
}

func NewGenreService(repo *repository.GenreRepo) GenreService {
	return &genreService{repo: repo}
}

func (s *genreService) List(ctx context.Context, search string, page, pageSize int) (*dto.PaginatedGenreResponse, error) {
	genres, total, err := s.repo.GetAll(ctx, search, page, pageSize)
	if err != nil {
		return nil, err
	}

	responses := make([]dto.GenreResponse, 0, len(genres))
	for _, g := range genres {
		responses = append(responses, dto.GenreFromModel(g))
	}
	return dto.NewPaginatedGenreResponse(responses, int(total), page, pageSize), nil
}

func (s *genreService) GetBySlug(ctx context.Context, slug string) (*dto.GenreResponse, error) {
	genre, err := s.repo.GetBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrGenreNotFound
		}
		return nil, err
	}
	resp := dto.GenreFromModel(*genre)
	return &resp, nil
}

func (s *genreService) Create(ctx context.Context, input dto.CreateGenreDTO) (*dto.GenreResponse, error) {
	if err := validateSlug(input.Slug); err != nil {
		return nil, err
	}

	genre := &models.Genre{Name: input.Name, Slug: input.Slug}
	if err := s.repo.Create(ctx, genre); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrGenreExists
		}
		return nil, err
	}
	resp := dto.GenreFromModel(*genre)
	return &resp, nil
}

func (s *genreService) Update(ctx context.Context, slug string, input dto.UpdateGenreDTO) (*dto.GenreResponse, error) {
	genre, err := s.repo.GetBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrGenreNotFound
		}
		return nil, err
	}

	if input.Name != nil {
		genre.Name = *input.Name
	}

	if err := s.repo.Update(ctx, genre); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrGenreExists
		}
		return nil, err
	}
	resp := dto.GenreFromModel(*genre)
	return &resp, nil
}

func (s *genreService) Delete(ctx context.Context, slug string) error {
	if err := s.repo.Delete(ctx, slug); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrGenreNotFound
		}
		return err
	}
	return nil
}
