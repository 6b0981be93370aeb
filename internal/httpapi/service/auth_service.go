package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"time"

	"yamdb/internal/config"
	"yamdb/internal/httpapi/auth"
	"yamdb/internal/httpapi/models"
	"yamdb/internal/httpapi/repository"
	"yamdb/internal/notify"

	"github.com/golang-jwt/jwt/v5"
	"gorm.io/gorm"
)

var (
	ErrUsernameReserved = errors.New("username 'me' is reserved")
	ErrUsernameInvalid  = errors.New("invalid characters in username")
	ErrNameInUse        = errors.New("username already in use")
	ErrEmailInUse       = errors.New("email already in use")
	ErrUserNotFound     = errors.New("user not found")
	ErrInvalidCode      = errors.New("invalid confirmation code")
	ErrInvalidToken     = errors.New("invalid token")
)

// usernamePattern matches letters, digits and @/./+/-/_ only
var usernamePattern = regexp.MustCompile(`^[\w.@+-]+$`)

// dummyHash keeps the unknown-username path doing the same bcrypt work as
// the known-username path
const dummyHash = "$2a$10$7EqJtq98hPqEX7fNZaFWoOHi6VbU5h6K9v8u5rO0m3j0h6dX5r8e"

// Claims is what a bearer token carries: identity plus the role at
// issuance time.
type Claims struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

type AuthService interface {
	Signup(ctx context.Context, username, email string) (*models.User, error)
	IssueToken(ctx context.Context, username, confirmationCode string) (string, error)
	ValidateToken(tokenString string) (*Claims, error)
}

type authService struct {
	userRepo  repository.UserRepository
	sender    notify.Sender
	logger    *slog.Logger
	jwtSecret string
	jwtExpiry time.Duration
}

func NewAuthService(
	userRepo repository.UserRepository,
	sender notify.Sender,
	logger *slog.Logger,
	cfg *config.Config,
) AuthService {
	return &authService{
		userRepo:  userRepo,
		sender:    sender,
		logger:    logger,
		jwtSecret: cfg.JWTSecret,
		jwtExpiry: cfg.JWTExpiry,
	}
}

// ValidateUsername applies the signup username rules: the reserved "me"
// and anything outside [\w.@+-] are rejected.
func ValidateUsername(username string) error {
	if username == "me" {
		return ErrUsernameReserved
	}
	if !usernamePattern.MatchString(username) {
		return ErrUsernameInvalid
	}
	return nil
}

// Signup creates the user (or re-requests the code for an existing one)
// and emails a fresh confirmation code. Re-signup with the same
// username+email pair is idempotent apart from the code rotation; either
// field colliding with a different identity is a conflict.
func (s *authService) Signup(ctx context.Context, username, email string) (*models.User, error) {
	if err := ValidateUsername(username); err != nil {
		return nil, err
	}

	byName, err := s.userRepo.FindByUsername(ctx, username)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	byEmail, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	if byName != nil {
		if byName.Email != email {
			return nil, ErrNameInUse
		}
		// same identity asking again: rotate the code, keep the row
		code, hash, err := auth.GenerateCode()
		if err != nil {
			return nil, err
		}
		byName.ConfirmationCode = hash
		if err := s.userRepo.Update(ctx, byName); err != nil {
			return nil, err
		}
		s.emailCode(ctx, byName, code)
		return byName, nil
	}
	if byEmail != nil {
		return nil, ErrEmailInUse
	}

	code, hash, err := auth.GenerateCode()
	if err != nil {
		return nil, err
	}
	user := &models.User{
		Username:         username,
		Email:            email,
		Role:             models.RoleUser,
		ConfirmationCode: hash,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		// two signups racing on the same unique value
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrNameInUse
		}
		return nil, err
	}

	s.emailCode(ctx, user, code)
	return user, nil
}

// emailCode sends the confirmation code out of band. The user row is
// already committed; a failed send is logged, not propagated.
func (s *authService) emailCode(ctx context.Context, user *models.User, code string) {
	msg := notify.Message{
		Subject:   "Confirmation code for API access",
		Body:      fmt.Sprintf("Greetings, %s!\nTo finish registration, use this confirmation code: %s", user.Username, code),
		Recipient: user.Email,
	}
	if err := s.sender.Send(ctx, msg); err != nil {
		s.logger.Warn("failed to send confirmation code", "username", user.Username, "error", err)
	}
}

// IssueToken exchanges username + confirmation code for a bearer token.
// The code is not rotated on issuance.
func (s *authService) IssueToken(ctx context.Context, username, confirmationCode string) (string, error) {
	user, err := s.userRepo.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			auth.VerifyCode(dummyHash, confirmationCode)
			return "", ErrUserNotFound
		}
		return "", err
	}

	if err := auth.VerifyCode(user.ConfirmationCode, confirmationCode); err != nil {
		return "", ErrInvalidCode
	}

	now := time.Now()
	claims := Claims{
		UserID:   user.ID,
		Username: user.Username,
		Role:     user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(s.jwtExpiry)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.jwtSecret))
}

func (s *authService) ValidateToken(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("invalid signing method")
		}
		return []byte(s.jwtSecret), nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
