package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"yamdb/internal/httpapi/dto"
	"yamdb/internal/httpapi/models"
	"yamdb/internal/httpapi/service"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// MockCategoryService mocks the CategoryService interface
type MockCategoryService struct {
	mock.Mock
}

func (m *MockCategoryService) List(ctx context.Context, search string, page, pageSize int) (*dto.PaginatedCategoryResponse, error) {
	args := m.Called(ctx, search, page, pageSize)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.PaginatedCategoryResponse), args.Error(1)
}

func (m *MockCategoryService) GetBySlug(ctx context.Context, slug string) (*dto.CategoryResponse, error) {
	args := m.Called(ctx, slug)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.CategoryResponse), args.Error(1)
}

func (m *MockCategoryService) Create(ctx context.Context, input dto.CreateCategoryDTO) (*dto.CategoryResponse, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.CategoryResponse), args.Error(1)
}

func (m *MockCategoryService) Update(ctx context.Context, slug string, input dto.UpdateCategoryDTO) (*dto.CategoryResponse, error) {
	args := m.Called(ctx, slug, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.CategoryResponse), args.Error(1)
}

func (m *MockCategoryService) Delete(ctx context.Context, slug string) error {
	args := m.Called(ctx, slug)
	return args.Error(0)
}

func newCategoryRouter(svc *MockCategoryService, authOptional gin.HandlerFunc) *gin.Engine {
	router := setupRouter()
	handler := NewCategoryHandler(svc)
	handler.RegisterRoutes(router.Group("/categories"), authOptional)
	return router
}

func patchJSON(router *gin.Engine, path, payload string) *http.Request {
	req, _ := http.NewRequest("PATCH", path, bytes.NewBufferString(payload))
	req.Header.Set("Content-Type", "application/json")
	return req
}

// The slug is the category's identity: a PATCH carrying a new slug must
// update the name only and leave the slug as it was.
func TestCategoryUpdate_SlugImmutable(t *testing.T) {
	svc := new(MockCategoryService)
	router := newCategoryRouter(svc, identity("user-9", "root", models.RoleAdmin))

	name := "Movies"
	svc.On("Update", mock.Anything, "films", dto.UpdateCategoryDTO{Name: &name}).
		Return(&dto.CategoryResponse{Name: "Movies", Slug: "films"}, nil)

	req := patchJSON(router, "/categories/films", `{"name":"Movies","slug":"cinema"}`)
	w := performRequest(router, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp dto.CategoryResponse
	json.Unmarshal(w.Body.Bytes(), &resp)
	assert.Equal(t, "films", resp.Slug)
	assert.Equal(t, "Movies", resp.Name)

	svc.AssertExpectations(t)
}

func TestCategoryCreate_BadSlugIsFieldError(t *testing.T) {
	svc := new(MockCategoryService)
	router := newCategoryRouter(svc, identity("user-9", "root", models.RoleAdmin))

	svc.On("Create", mock.Anything, dto.CreateCategoryDTO{Name: "Movies", Slug: "no spaces"}).
		Return(nil, service.ErrInvalidSlug)

	w := postJSON(router, "/categories", dto.CreateCategoryDTO{Name: "Movies", Slug: "no spaces"})

	assert.Equal(t, http.StatusBadRequest, w.Code)

	var body map[string]string
	json.Unmarshal(w.Body.Bytes(), &body)
	assert.Contains(t, body, "slug")

	svc.AssertExpectations(t)
}
