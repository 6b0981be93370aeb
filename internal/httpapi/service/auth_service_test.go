package service

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"yamdb/internal/config"
	"yamdb/internal/httpapi/auth"
	"yamdb/internal/httpapi/models"
	"yamdb/internal/notify"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// MockUserRepository mocks the UserRepository interface
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) Update(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) Delete(ctx context.Context, username string) error {
	args := m.Called(ctx, username)
	return args.Error(0)
}

func (m *MockUserRepository) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) FindByID(ctx context.Context, id string) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) List(ctx context.Context, search string, page, pageSize int) ([]models.User, int64, error) {
	args := m.Called(ctx, search, page, pageSize)
	return args.Get(0).([]models.User), args.Get(1).(int64), args.Error(2)
}

// fakeSender records outbound messages for inspection
type fakeSender struct {
	sent []notify.Message
}

func (f *fakeSender) Send(_ context.Context, msg notify.Message) error {
	f.sent = append(f.sent, msg)
	return nil
}

func testConfig() *config.Config {
	return &config.Config{
		JWTSecret: "0123456789abcdef0123456789abcdef",
		JWTExpiry: time.Hour,
	}
}

func newTestAuthService(repo *MockUserRepository, sender notify.Sender) AuthService {
	return NewAuthService(repo, sender, slog.Default(), testConfig())
}

func TestSignup_ReservedUsername(t *testing.T) {
	svc := newTestAuthService(new(MockUserRepository), &fakeSender{})

	_, err := svc.Signup(context.Background(), "me", "me@example.com")
	assert.ErrorIs(t, err, ErrUsernameReserved)
}

func TestSignup_InvalidUsername(t *testing.T) {
	svc := newTestAuthService(new(MockUserRepository), &fakeSender{})

	_, err := svc.Signup(context.Background(), "bad name!", "a@example.com")
	assert.ErrorIs(t, err, ErrUsernameInvalid)
}

func TestSignup_NewUser(t *testing.T) {
	repo := new(MockUserRepository)
	sender := &fakeSender{}
	svc := newTestAuthService(repo, sender)

	repo.On("FindByUsername", mock.Anything, "alice").Return(nil, gorm.ErrRecordNotFound)
	repo.On("FindByEmail", mock.Anything, "alice@example.com").Return(nil, gorm.ErrRecordNotFound)
	repo.On("Create", mock.Anything, mock.AnythingOfType("*models.User")).Return(nil)

	user, err := svc.Signup(context.Background(), "alice", "alice@example.com")
	require.NoError(t, err)

	assert.Equal(t, "alice", user.Username)
	assert.Equal(t, models.RoleUser, user.Role)
	assert.NotEmpty(t, user.ConfirmationCode)

	require.Len(t, sender.sent, 1)
	assert.Equal(t, "alice@example.com", sender.sent[0].Recipient)
	assert.Contains(t, sender.sent[0].Body, "confirmation code")

	repo.AssertExpectations(t)
}

func TestSignup_SameIdentityRotatesCode(t *testing.T) {
	repo := new(MockUserRepository)
	sender := &fakeSender{}
	svc := newTestAuthService(repo, sender)

	_, oldHash, err := auth.GenerateCode()
	require.NoError(t, err)
	existing := &models.User{
		ID:               "user-1",
		Username:         "alice",
		Email:            "alice@example.com",
		Role:             models.RoleUser,
		ConfirmationCode: oldHash,
	}

	repo.On("FindByUsername", mock.Anything, "alice").Return(existing, nil)
	repo.On("FindByEmail", mock.Anything, "alice@example.com").Return(existing, nil)
	repo.On("Update", mock.Anything, existing).Return(nil)

	user, err := svc.Signup(context.Background(), "alice", "alice@example.com")
	require.NoError(t, err)

	assert.Equal(t, "user-1", user.ID)
	assert.NotEqual(t, oldHash, user.ConfirmationCode)
	assert.Len(t, sender.sent, 1)

	repo.AssertExpectations(t)
}

func TestSignup_UsernameTaken(t *testing.T) {
	repo := new(MockUserRepository)
	svc := newTestAuthService(repo, &fakeSender{})

	existing := &models.User{Username: "alice", Email: "other@example.com"}
	repo.On("FindByUsername", mock.Anything, "alice").Return(existing, nil)
	repo.On("FindByEmail", mock.Anything, "alice@example.com").Return(nil, gorm.ErrRecordNotFound)

	_, err := svc.Signup(context.Background(), "alice", "alice@example.com")
	assert.ErrorIs(t, err, ErrNameInUse)
}

func TestSignup_EmailTaken(t *testing.T) {
	repo := new(MockUserRepository)
	svc := newTestAuthService(repo, &fakeSender{})

	existing := &models.User{Username: "bob", Email: "alice@example.com"}
	repo.On("FindByUsername", mock.Anything, "alice").Return(nil, gorm.ErrRecordNotFound)
	repo.On("FindByEmail", mock.Anything, "alice@example.com").Return(existing, nil)

	_, err := svc.Signup(context.Background(), "alice", "alice@example.com")
	assert.ErrorIs(t, err, ErrEmailInUse)
}

func TestIssueToken_UnknownUser(t *testing.T) {
	repo := new(MockUserRepository)
	svc := newTestAuthService(repo, &fakeSender{})

	repo.On("FindByUsername", mock.Anything, "ghost").Return(nil, gorm.ErrRecordNotFound)

	_, err := svc.IssueToken(context.Background(), "ghost", "whatever")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestIssueToken_WrongCode(t *testing.T) {
	repo := new(MockUserRepository)
	svc := newTestAuthService(repo, &fakeSender{})

	_, hash, err := auth.GenerateCode()
	require.NoError(t, err)
	user := &models.User{ID: "user-1", Username: "alice", ConfirmationCode: hash}
	repo.On("FindByUsername", mock.Anything, "alice").Return(user, nil)

	_, err = svc.IssueToken(context.Background(), "alice", "wrong-code")
	assert.ErrorIs(t, err, ErrInvalidCode)
}

func TestIssueToken_Success(t *testing.T) {
	repo := new(MockUserRepository)
	svc := newTestAuthService(repo, &fakeSender{})

	code, hash, err := auth.GenerateCode()
	require.NoError(t, err)
	user := &models.User{
		ID:               "user-1",
		Username:         "alice",
		Role:             models.RoleModerator,
		ConfirmationCode: hash,
	}
	repo.On("FindByUsername", mock.Anything, "alice").Return(user, nil)

	token, err := svc.IssueToken(context.Background(), "alice", code)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	// token carries identity and the role at issuance time
	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "alice", claims.Username)
	assert.Equal(t, models.RoleModerator, claims.Role)
	assert.True(t, claims.ExpiresAt.After(time.Now()))
}

func TestValidateToken_Garbage(t *testing.T) {
	svc := newTestAuthService(new(MockUserRepository), &fakeSender{})

	_, err := svc.ValidateToken("not.a.token")
	assert.Error(t, err)
}
