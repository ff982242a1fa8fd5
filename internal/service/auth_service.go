package service

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"todopro/internal/dto"
	"todopro/internal/model"
	"todopro/internal/repository"
	"todopro/pkg/apperror"
	"todopro/pkg/password"
	"todopro/pkg/token"
)

type AuthService interface {
	Register(ctx context.Context, input dto.RegisterRequest) (*dto.UserResponse, error)
	Login(ctx context.Context, input dto.LoginRequest) (*dto.LoginResponse, error)
	Me(ctx context.Context, actor token.Identity) (*dto.UserResponse, error)
	ListUsers(ctx context.Context) ([]dto.UserResponse, error)
	UpdateProfile(ctx context.Context, actor token.Identity, input dto.UpdateProfileRequest) (*dto.UserResponse, error)
	ChangePassword(ctx context.Context, actor token.Identity, input dto.ChangePasswordRequest) error
}

type authService struct {
	users       repository.UserRepository
	departments repository.DepartmentRepository
	issuer      *token.Issuer
}

func NewAuthService(users repository.UserRepository, departments repository.DepartmentRepository, issuer *token.Issuer) AuthService {
	return &authService{
		users:       users,
		departments: departments,
		issuer:      issuer,
	}
}

// Register creates a user. Account uniqueness is the registration policy;
// display names are only checked on rename.
func (s *authService) Register(ctx context.Context, input dto.RegisterRequest) (*dto.UserResponse, error) {
	account := strings.TrimSpace(input.Account)

	if _, err := s.users.FindByAccount(ctx, account); err == nil {
		return nil, apperror.Validation("account already exists")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	if input.DepartmentID != nil {
		exists, err := s.departments.Exists(ctx, *input.DepartmentID)
		if err != nil {
			return nil, err
		}
		if !exists {
			return nil, apperror.Validation("department does not exist")
		}
	}

	hash, err := password.Hash(input.Password)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		Account:      account,
		PasswordHash: hash,
		Name:         strings.TrimSpace(input.Name),
		Supervisor:   input.Supervisor,
		DepartmentID: input.DepartmentID,
	}

	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	return userResponse(user), nil
}

// Login verifies the credentials and mints a bearer token. Unknown account
// and wrong password produce the same error so accounts cannot be
// enumerated.
func (s *authService) Login(ctx context.Context, input dto.LoginRequest) (*dto.LoginResponse, error) {
	user, err := s.users.FindByAccount(ctx, input.Account)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.Authentication("invalid credentials")
		}
		return nil, err
	}

	if !password.Verify(user.PasswordHash, input.Password) {
		return nil, apperror.Authentication("invalid credentials")
	}

	signed, expiresAt, err := s.issuer.Issue(token.Identity{
		UserID:     user.ID,
		Account:    user.Account,
		Name:       user.Name,
		Supervisor: user.Supervisor,
	})
	if err != nil {
		return nil, err
	}

	return &dto.LoginResponse{
		Token:     signed,
		TokenType: "Bearer",
		ExpiresAt: expiresAt,
	}, nil
}

func (s *authService) Me(ctx context.Context, actor token.Identity) (*dto.UserResponse, error) {
	user, err := s.users.FindByID(ctx, actor.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("user not found")
		}
		return nil, err
	}
	return userResponse(user), nil
}

func (s *authService) ListUsers(ctx context.Context) ([]dto.UserResponse, error) {
	users, err := s.users.FindAll(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]dto.UserResponse, 0, len(users))
	for _, user := range users {
		out = append(out, *userResponse(user))
	}
	return out, nil
}

// UpdateProfile renames the caller. The new display name must not collide
// with another user's.
func (s *authService) UpdateProfile(ctx context.Context, actor token.Identity, input dto.UpdateProfileRequest) (*dto.UserResponse, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, apperror.Validation("name must not be empty")
	}

	if existing, err := s.users.FindByName(ctx, name); err == nil {
		if existing.ID != actor.UserID {
			return nil, apperror.Validation("name already taken")
		}
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	user, err := s.users.FindByID(ctx, actor.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("user not found")
		}
		return nil, err
	}

	user.Name = name
	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}

	return userResponse(user), nil
}

// ChangePassword replaces the stored hash after verifying the old password.
func (s *authService) ChangePassword(ctx context.Context, actor token.Identity, input dto.ChangePasswordRequest) error {
	user, err := s.users.FindByID(ctx, actor.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperror.NotFound("user not found")
		}
		return err
	}

	if !password.Verify(user.PasswordHash, input.OldPassword) {
		return apperror.Authentication("old password incorrect")
	}

	hash, err := password.Hash(input.NewPassword)
	if err != nil {
		return err
	}

	user.PasswordHash = hash
	return s.users.Update(ctx, user)
}

func userResponse(user *model.User) *dto.UserResponse {
	resp := &dto.UserResponse{
		ID:           user.ID,
		Account:      user.Account,
		Name:         user.Name,
		Supervisor:   user.Supervisor,
		DepartmentID: user.DepartmentID,
	}
	if user.Department != nil {
		resp.Department = user.Department.Name
	}
	return resp
}
