package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"yamdb/internal/httpapi/dto"
	"yamdb/internal/httpapi/models"
	"yamdb/internal/httpapi/service"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// MockAuthService mocks the AuthService interface
type MockAuthService struct {
	mock.Mock
}

func (m *MockAuthService) Signup(ctx context.Context, username, email string) (*models.User, error) {
	args := m.Called(ctx, username, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockAuthService) IssueToken(ctx context.Context, username, confirmationCode string) (string, error) {
	args := m.Called(ctx, username, confirmationCode)
	return args.String(0), args.Error(1)
}

func (m *MockAuthService) ValidateToken(tokenString string) (*service.Claims, error) {
	args := m.Called(tokenString)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.Claims), args.Error(1)
}

func setupRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	return gin.New()
}

func postJSON(router *gin.Engine, path string, payload any) *httptest.ResponseRecorder {
	body, _ := json.Marshal(payload)
	req, _ := http.NewRequest("POST", path, bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	return performRequest(router, req)
}

func performRequest(router *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestSignup_Success(t *testing.T) {
	mockAuthService := new(MockAuthService)
	handler := NewAuthHandler(mockAuthService)
	router := setupRouter()
	router.POST("/signup", handler.Signup)

	user := &models.User{ID: "user-123", Username: "alice", Email: "alice@example.com"}
	mockAuthService.On("Signup", mock.Anything, "alice", "alice@example.com").Return(user, nil)

	w := postJSON(router, "/signup", dto.SignupRequest{
		Username: "alice",
		Email:    "alice@example.com",
	})

	assert.Equal(t, http.StatusOK, w.Code)

	var response dto.SignupResponse
	json.Unmarshal(w.Body.Bytes(), &response)
	assert.Equal(t, "alice", response.Username)
	assert.Equal(t, "alice@example.com", response.Email)

	mockAuthService.AssertExpectations(t)
}

func TestSignup_ReservedUsername(t *testing.T) {
	mockAuthService := new(MockAuthService)
	handler := NewAuthHandler(mockAuthService)
	router := setupRouter()
	router.POST("/signup", handler.Signup)

	mockAuthService.On("Signup", mock.Anything, "me", "me@example.com").
		Return(nil, service.ErrUsernameReserved)

	w := postJSON(router, "/signup", dto.SignupRequest{
		Username: "me",
		Email:    "me@example.com",
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)

	// the offending field is the key, so clients can show the message
	// next to the right input
	var body map[string]string
	json.Unmarshal(w.Body.Bytes(), &body)
	assert.Contains(t, body, "username")

	mockAuthService.AssertExpectations(t)
}

func TestSignup_MissingEmail(t *testing.T) {
	mockAuthService := new(MockAuthService)
	handler := NewAuthHandler(mockAuthService)
	router := setupRouter()
	router.POST("/signup", handler.Signup)

	w := postJSON(router, "/signup", map[string]string{"username": "alice"})

	assert.Equal(t, http.StatusBadRequest, w.Code)

	var body map[string]string
	json.Unmarshal(w.Body.Bytes(), &body)
	assert.Contains(t, body, "email")
	assert.NotContains(t, body, "error")
}

func TestSignup_InvalidJSON(t *testing.T) {
	mockAuthService := new(MockAuthService)
	handler := NewAuthHandler(mockAuthService)
	router := setupRouter()
	router.POST("/signup", handler.Signup)

	req, _ := http.NewRequest("POST", "/signup", bytes.NewBufferString("not json"))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestToken_Success(t *testing.T) {
	mockAuthService := new(MockAuthService)
	handler := NewAuthHandler(mockAuthService)
	router := setupRouter()
	router.POST("/token", handler.Token)

	mockAuthService.On("IssueToken", mock.Anything, "alice", "secret-code").
		Return("signed.jwt.token", nil)

	w := postJSON(router, "/token", dto.TokenRequest{
		Username:         "alice",
		ConfirmationCode: "secret-code",
	})

	assert.Equal(t, http.StatusCreated, w.Code)

	var response dto.TokenResponse
	json.Unmarshal(w.Body.Bytes(), &response)
	assert.Equal(t, "signed.jwt.token", response.Token)

	mockAuthService.AssertExpectations(t)
}

func TestToken_UnknownUser(t *testing.T) {
	mockAuthService := new(MockAuthService)
	handler := NewAuthHandler(mockAuthService)
	router := setupRouter()
	router.POST("/token", handler.Token)

	mockAuthService.On("IssueToken", mock.Anything, "ghost", "whatever").
		Return("", service.ErrUserNotFound)

	w := postJSON(router, "/token", dto.TokenRequest{
		Username:         "ghost",
		ConfirmationCode: "whatever",
	})

	assert.Equal(t, http.StatusNotFound, w.Code)
	mockAuthService.AssertExpectations(t)
}

func TestToken_WrongCode(t *testing.T) {
	mockAuthService := new(MockAuthService)
	handler := NewAuthHandler(mockAuthService)
	router := setupRouter()
	router.POST("/token", handler.Token)

	mockAuthService.On("IssueToken", mock.Anything, "alice", "wrong").
		Return("", service.ErrInvalidCode)

	w := postJSON(router, "/token", dto.TokenRequest{
		Username:         "alice",
		ConfirmationCode: "wrong",
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)

	var body map[string]string
	json.Unmarshal(w.Body.Bytes(), &body)
	assert.Contains(t, body, "confirmation_code")

	mockAuthService.AssertExpectations(t)
}
