package service

import (
	"context"
	"errors"
	"regexp"

	"yamdb/internal/httpapi/dto"
	"yamdb/internal/httpapi/models"
	"yamdb/internal/httpapi/repository"

	"gorm.io/gorm"
)

var (
	ErrCategoryNotFound = errors.New("category not found")
	ErrCategoryExists   = errors.New("category name or slug already in use")
	ErrInvalidSlug      = errors.New("slug may contain only letters, digits, hyphens and underscores")
)

var slugPattern = regexp.MustCompile(`^[-a-zA-Z0-9_]+$`)

func validateSlug(slug string) error {
	if !slugPattern.MatchString(slug) {
		return ErrInvalidSlug
	}
	return nil
}

type CategoryService interface {
	List(ctx context.Context, search string, page, pageSize int) (*dto.PaginatedCategoryResponse, error)
	GetBySlug(ctx context.Context, slug string) (*dto.CategoryResponse, error)
	Create(ctx context.Context, input dto.CreateCategoryDTO) (*dto.CategoryResponse, error)
	Update(ctx context.Context, slug string, input dto.UpdateCategoryDTO) (*dto.CategoryResponse, error)
	Delete(ctx context.Context, slug string) error
}

type categoryService struct {
	repo *repository.CategoryRepo
}

func NewCategoryService(repo *repository.CategoryRepo) CategoryService {
	return &categoryService{repo: repo}
}

func (s *categoryService) List(ctx context.Context, search string, page, pageSize int) (*dto.PaginatedCategoryResponse, error) {
	categories, total, err := s.repo.GetAll(ctx, search, page, pageSize)
	if err != nil {
		return nil, err
	}

	responses := make([]dto.CategoryResponse, 0, len(categories))
	for i := range categories {
		responses = append(responses, dto.CategoryFromModel(&categories[i]))
	}
	return dto.NewPaginatedCategoryResponse(responses, int(total), page, pageSize), nil
}

func (s *categoryService) GetBySlug(ctx context.Context, slug string) (*dto.CategoryResponse, error) {
	category, err := s.repo.GetBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCategoryNotFound
		}
		return nil, err
	}
	resp := dto.CategoryFromModel(category)
	return &resp, nil
}

func (s *categoryService) Create(ctx context.Context, input dto.CreateCategoryDTO) (*dto.CategoryResponse, error) {
	if err := validateSlug(input.Slug); err != nil {
		return nil, err
	}

	category := &models.Category{Name: input.Name, Slug: input.Slug}
	if err := s.repo.Create(ctx, category); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrCategoryExists
		}
		return nil, err
	}
	resp := dto.CategoryFromModel(category)
	return &resp, nil
}

func (s *categoryService) Update(ctx context.Context, slug string, input dto.UpdateCategoryDTO) (*dto.CategoryResponse, error) {
	category, err := s.repo.GetBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCategoryNotFound
		}
		return nil, err
	}

	if input.Name != nil {
		category.Name = *input.Name
	}

	if err := s.repo.Update(ctx, category); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrCategoryExists
		}
		return nil, err
	}
	resp := dto.CategoryFromModel(category)
	return &resp, nil
}

func (s *categoryService) Delete(ctx context.Context, slug string) error {
	if err := s.repo.Delete(ctx, slug); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrCategoryNotFound
		}
		return err
	}
	return nil
}
