package service

import (
	"context"
	"errors"
	"log/slog"

	"yamdb/internal/httpapi/auth"
	"yamdb/internal/httpapi/dto"
	"yamdb/internal/httpapi/models"
	"yamdb/internal/httpapi/repository"
	"yamdb/internal/notify"

	"gorm.io/gorm"
)

type UserService interface {
	List(ctx context.Context, search string, page, pageSize int) (*dto.PaginatedUserResponse, error)
	Create(ctx context.Context, input dto.CreateUserDTO) (*dto.UserResponse, error)
	GetByUsername(ctx context.Context, username string) (*dto.UserResponse, error)
	Update(ctx context.Context, username string, input dto.UpdateUserDTO, allowRoleChange bool) (*dto.UserResponse, error)
	Delete(ctx context.Context, username string) error
}

type userService struct {
	userRepo repository.UserRepository
	sender   notify.Sender
	logger   *slog.Logger
}

func NewUserService(userRepo repository.UserRepository, sender notify.Sender, logger *slog.Logger) UserService {
	return &userService{
		userRepo: userRepo,
		sender:   sender,
		logger:   logger,
	}
}

func (s *userService) List(ctx context.Context, search string, page, pageSize int) (*dto.PaginatedUserResponse, error) {
	users, total, err := s.userRepo.List(ctx, search, page, pageSize)
	if err != nil {
		return nil, err
	}

	responses := make([]dto.UserResponse, 0, len(users))
	for i := range users {
		responses = append(responses, *dto.UserFromModel(&users[i]))
	}
	return dto.NewPaginatedUserResponse(responses, int(total), page, pageSize), nil
}

// Create is the admin path for making users. It follows the same
// code-generation step as signup so the new user can immediately request
// a token; there is no separate activation hook.
func (s *userService) Create(ctx context.Context, input dto.CreateUserDTO) (*dto.UserResponse, error) {
	if err := ValidateUsername(input.Username); err != nil {
		return nil, err
	}

	if _, err := s.userRepo.FindByUsername(ctx, input.Username); err == nil {
		return nil, ErrNameInUse
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	if _, err := s.userRepo.FindByEmail(ctx, input.Email); err == nil {
		return nil, ErrEmailInUse
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	role := input.Role
	if role == "" {
		role = models.RoleUser
	}

	code, hash, err := auth.GenerateCode()
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Username:         input.Username,
		Email:            input.Email,
		FirstName:        input.FirstName,
		LastName:         input.LastName,
		Bio:              input.Bio,
		Role:             role,
		ConfirmationCode: hash,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrNameInUse
		}
		return nil, err
	}

	msg := notify.Message{
		Subject:   "Confirmation code for API access",
		Body:      "Greetings, " + user.Username + "!\nTo finish registration, use this confirmation code: " + code,
		Recipient: user.Email,
	}
	if err := s.sender.Send(ctx, msg); err != nil {
		s.logger.Warn("failed to send confirmation code", "username", user.Username, "error", err)
	}

	return dto.UserFromModel(user), nil
}

func (s *userService) GetByUsername(ctx context.Context, username string) (*dto.UserResponse, error) {
	user, err := s.userRepo.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return dto.UserFromModel(user), nil
}

// Update patches the user record. Role changes are dropped unless the
// caller is allowed to assign roles; the confirmation code is left alone
// no matter what changes.
func (s *userService) Update(ctx context.Context, username string, input dto.UpdateUserDTO, allowRoleChange bool) (*dto.UserResponse, error) {
	user, err := s.userRepo.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	if input.Email != nil {
		user.Email = *input.Email
	}
	if input.FirstName != nil {
		user.FirstName = *input.FirstName
	}
	if input.LastName != nil {
		user.LastName = *input.LastName
	}
	if input.Bio != nil {
		user.Bio = *input.Bio
	}
	if input.Role != nil && allowRoleChange {
		user.Role = *input.Role
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrEmailInUse
		}
		return nil, err
	}
	return dto.UserFromModel(user), nil
}

// Delete removes the user; owned reviews and comments cascade away with
// the row.
func (s *userService) Delete(ctx context.Context, username string) error {
	if err := s.userRepo.Delete(ctx, username); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return err
	}
	return nil
}
