package service

import (
	"context"
	"testing"
	"time"

	"yamdb/internal/httpapi/dto"
	"yamdb/internal/httpapi/models"
	"yamdb/internal/httpapi/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestTitleCreate_YearInFuture(t *testing.T) {
	svc := NewTitleService(new(MockTitleRepository), new(MockReviewRepository), nil, nil, nil)

	_, err := svc.Create(context.Background(), dto.CreateTitleDTO{
		Name: "From the future",
		Year: time.Now().Year() + 1,
	})
	assert.ErrorIs(t, err, ErrYearInFuture)
}

func TestTitleGetByID_NoReviewsMeansNilRating(t *testing.T) {
	titleRepo := new(MockTitleRepository)
	reviewRepo := new(MockReviewRepository)
	svc := NewTitleService(titleRepo, reviewRepo, nil, nil, nil)

	titleRepo.On("GetByID", mock.Anything, int64(1)).Return(&models.Title{
		ID: 1, Name: "Unreviewed", Year: 2020,
	}, nil)
	reviewRepo.On("AverageScore", mock.Anything, int64(1)).Return(nil, nil)

	resp, err := svc.GetByID(context.Background(), 1)
	require.NoError(t, err)

	assert.Nil(t, resp.Rating)
	assert.Equal(t, "Unreviewed", resp.Name)
}

func TestTitleGetByID_RatingIsMeanOfScores(t *testing.T) {
	titleRepo := new(MockTitleRepository)
	reviewRepo := new(MockReviewRepository)
	svc := NewTitleService(titleRepo, reviewRepo, nil, nil, nil)

	avg := 7.5
	titleRepo.On("GetByID", mock.Anything, int64(2)).Return(&models.Title{ID: 2, Name: "Rated", Year: 2019}, nil)
	reviewRepo.On("AverageScore", mock.Anything, int64(2)).Return(&avg, nil)

	resp, err := svc.GetByID(context.Background(), 2)
	require.NoError(t, err)

	require.NotNil(t, resp.Rating)
	assert.Equal(t, 7.5, *resp.Rating)
}

func TestTitleGetByID_NotFound(t *testing.T) {
	titleRepo := new(MockTitleRepository)
	svc := NewTitleService(titleRepo, new(MockReviewRepository), nil, nil, nil)

	titleRepo.On("GetByID", mock.Anything, int64(404)).Return(nil, gorm.ErrRecordNotFound)

	_, err := svc.GetByID(context.Background(), 404)
	assert.ErrorIs(t, err, ErrTitleNotFound)
}

func TestTitleList_BatchesRatings(t *testing.T) {
	titleRepo := new(MockTitleRepository)
	reviewRepo := new(MockReviewRepository)
	svc := NewTitleService(titleRepo, reviewRepo, nil, nil, nil)

	titles := []models.Title{
		{ID: 1, Name: "First", Year: 2001},
		{ID: 2, Name: "Second", Year: 2002},
	}
	titleRepo.On("List", mock.Anything, repository.TitleFilter{}, 1, 10).
		Return(titles, int64(2), nil)
	reviewRepo.On("AverageScores", mock.Anything, []int64{1, 2}).
		Return(map[int64]float64{1: 9.0}, nil)

	resp, err := svc.List(context.Background(), repository.TitleFilter{}, 1, 10)
	require.NoError(t, err)
	require.Len(t, resp.Data, 2)

	require.NotNil(t, resp.Data[0].Rating)
	assert.Equal(t, 9.0, *resp.Data[0].Rating)
	assert.Nil(t, resp.Data[1].Rating)
	assert.Equal(t, 2, resp.Total)
}

func TestTitleDelete_NotFound(t *testing.T) {
	titleRepo := new(MockTitleRepository)
	svc := NewTitleService(titleRepo, new(MockReviewRepository), nil, nil, nil)

	titleRepo.On("Delete", mock.Anything, int64(9)).Return(gorm.ErrRecordNotFound)

	err := svc.Delete(context.Background(), 9)
	assert.ErrorIs(t, err, ErrTitleNotFound)
}
