package service

import (
	"context"
	"testing"

	"yamdb/internal/httpapi/dto"
	"yamdb/internal/httpapi/models"
	"yamdb/internal/httpapi/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// MockReviewRepository mocks the ReviewRepository interface
type MockReviewRepository struct {
	mock.Mock
}

func (m *MockReviewRepository) Create(ctx context.Context, review *models.Review) error {
	args := m.Called(ctx, review)
	return args.Error(0)
}

func (m *MockReviewRepository) Update(ctx context.Context, review *models.Review) error {
	args := m.Called(ctx, review)
	return args.Error(0)
}

func (m *MockReviewRepository) Delete(ctx context.Context, titleID, reviewID int64) error {
	args := m.Called(ctx, titleID, reviewID)
	return args.Error(0)
}

func (m *MockReviewRepository) GetByID(ctx context.Context, titleID, reviewID int64) (*models.Review, error) {
	args := m.Called(ctx, titleID, reviewID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Review), args.Error(1)
}

func (m *MockReviewRepository) ListByTitle(ctx context.Context, titleID int64, page, pageSize int) ([]models.Review, int64, error) {
	args := m.Called(ctx, titleID, page, pageSize)
	return args.Get(0).([]models.Review), args.Get(1).(int64), args.Error(2)
}

func (m *MockReviewRepository) AverageScore(ctx context.Context, titleID int64) (*float64, error) {
	args := m.Called(ctx, titleID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*float64), args.Error(1)
}

func (m *MockReviewRepository) AverageScores(ctx context.Context, titleIDs []int64) (map[int64]float64, error) {
	args := m.Called(ctx, titleIDs)
	return args.Get(0).(map[int64]float64), args.Error(1)
}

// MockTitleRepository mocks the TitleRepository interface
type MockTitleRepository struct {
	mock.Mock
}

func (m *MockTitleRepository) List(ctx context.Context, filter repository.TitleFilter, page, pageSize int) ([]models.Title, int64, error) {
	args := m.Called(ctx, filter, page, pageSize)
	return args.Get(0).([]models.Title), args.Get(1).(int64), args.Error(2)
}

func (m *MockTitleRepository) GetByID(ctx context.Context, id int64) (*models.Title, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Title), args.Error(1)
}

func (m *MockTitleRepository) Create(ctx context.Context, t *models.Title) error {
	args := m.Called(ctx, t)
	return args.Error(0)
}

func (m *MockTitleRepository) Update(ctx context.Context, t *models.Title) error {
	args := m.Called(ctx, t)
	return args.Error(0)
}

func (m *MockTitleRepository) ReplaceGenres(ctx context.Context, t *models.Title, genres []models.Genre) error {
	args := m.Called(ctx, t, genres)
	return args.Error(0)
}

func (m *MockTitleRepository) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func TestReviewCreate_Duplicate(t *testing.T) {
	reviewRepo := new(MockReviewRepository)
	titleRepo := new(MockTitleRepository)
	svc := NewReviewService(reviewRepo, titleRepo, nil)

	titleRepo.On("GetByID", mock.Anything, int64(1)).Return(&models.Title{ID: 1}, nil)
	reviewRepo.On("Create", mock.Anything, mock.AnythingOfType("*models.Review")).
		Return(repository.ErrDuplicate)

	_, err := svc.Create(context.Background(), 1, "user-1", dto.CreateReviewDTO{Text: "again", Score: 5})
	assert.ErrorIs(t, err, ErrReviewExists)
}

func TestReviewCreate_Success(t *testing.T) {
	reviewRepo := new(MockReviewRepository)
	titleRepo := new(MockTitleRepository)
	svc := NewReviewService(reviewRepo, titleRepo, nil)

	titleRepo.On("GetByID", mock.Anything, int64(1)).Return(&models.Title{ID: 1}, nil)
	reviewRepo.On("Create", mock.Anything, mock.AnythingOfType("*models.Review")).
		Run(func(args mock.Arguments) {
			args.Get(1).(*models.Review).ID = 42
		}).
		Return(nil)
	reviewRepo.On("GetByID", mock.Anything, int64(1), int64(42)).Return(&models.Review{
		ID:       42,
		TitleID:  1,
		AuthorID: "user-1",
		Text:     "solid",
		Score:    8,
		Author:   models.User{Username: "alice"},
	}, nil)

	resp, err := svc.Create(context.Background(), 1, "user-1", dto.CreateReviewDTO{Text: "solid", Score: 8})
	require.NoError(t, err)

	assert.Equal(t, int64(42), resp.ID)
	assert.Equal(t, "alice", resp.Author)
	assert.Equal(t, 8, resp.Score)

	reviewRepo.AssertExpectations(t)
}

func TestReviewCreate_UnknownTitle(t *testing.T) {
	reviewRepo := new(MockReviewRepository)
	titleRepo := new(MockTitleRepository)
	svc := NewReviewService(reviewRepo, titleRepo, nil)

	titleRepo.On("GetByID", mock.Anything, int64(99)).Return(nil, gorm.ErrRecordNotFound)

	_, err := svc.Create(context.Background(), 99, "user-1", dto.CreateReviewDTO{Text: "x", Score: 5})
	assert.ErrorIs(t, err, ErrTitleNotFound)
}

func TestReviewCreate_ScoreOutOfRange(t *testing.T) {
	svc := NewReviewService(new(MockReviewRepository), new(MockTitleRepository), nil)

	_, err := svc.Create(context.Background(), 1, "user-1", dto.CreateReviewDTO{Text: "x", Score: 11})
	assert.ErrorIs(t, err, ErrScoreOutOfRange)

	_, err = svc.Create(context.Background(), 1, "user-1", dto.CreateReviewDTO{Text: "x", Score: 0})
	assert.ErrorIs(t, err, ErrScoreOutOfRange)
}

func TestReviewUpdate_ScoreValidated(t *testing.T) {
	reviewRepo := new(MockReviewRepository)
	svc := NewReviewService(reviewRepo, new(MockTitleRepository), nil)

	reviewRepo.On("GetByID", mock.Anything, int64(1), int64(2)).Return(&models.Review{
		ID: 2, TitleID: 1, Score: 5,
	}, nil)

	bad := 0
	_, err := svc.Update(context.Background(), 1, 2, dto.UpdateReviewDTO{Score: &bad})
	assert.ErrorIs(t, err, ErrScoreOutOfRange)
}

func TestReviewDelete_NotFound(t *testing.T) {
	reviewRepo := new(MockReviewRepository)
	svc := NewReviewService(reviewRepo, new(MockTitleRepository), nil)

	reviewRepo.On("Delete", mock.Anything, int64(1), int64(2)).Return(gorm.ErrRecordNotFound)

	err := svc.Delete(context.Background(), 1, 2)
	assert.ErrorIs(t, err, ErrReviewNotFound)
}

func TestReviewListByTitle_UnknownTitle(t *testing.T) {
	reviewRepo := new(MockReviewRepository)
	titleRepo := new(MockTitleRepository)
	svc := NewReviewService(reviewRepo, titleRepo, nil)

	titleRepo.On("GetByID", mock.Anything, int64(7)).Return(nil, gorm.ErrRecordNotFound)

	_, err := svc.ListByTitle(context.Background(), 7, 1, 10)
	assert.ErrorIs(t, err, ErrTitleNotFound)
}
