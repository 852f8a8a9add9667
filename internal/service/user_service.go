package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/smsi-platform/smsi-backend/internal/model"
	"github.com/smsi-platform/smsi-backend/internal/repository"
)

// UserService handles administrative account management.
type UserService struct {
	users UserStore
	auth  *AuthService
}

// NewUserService creates a new UserService.
func NewUserService(users UserStore, auth *AuthService) *UserService {
	return &UserService{users: users, auth: auth}
}

func userErr(err error) error {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return ErrUserNotFound
	case errors.Is(err, repository.ErrDuplicateEmail):
		return ErrEmailExists
	}
	return err
}

// List retrieves a page of accounts with their training statistics.
func (s *UserService) List(ctx context.Context, page, perPage int) ([]model.UserWithStats, int, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 10
	}
	if perPage > 100 {
		perPage = 100
	}
	users, total, err := s.users.ListWithStats(ctx, perPage, (page-1)*perPage)
	if err != nil {
		return nil, 0, err
	}
	if users == nil {
		users = []model.UserWithStats{}
	}
	return users, total, nil
}

// Get retrieves one account.
func (s *UserService) Get(ctx context.Context, id int) (*model.User, error) {
	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, userErr(err)
	}
	return u, nil
}

// Create adds an account with the requested role (default user).
func (s *UserService) Create(ctx context.Context, req *model.CreateUserRequest) (*model.User, error) {
	hash, err := s.auth.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	role := req.Role
	if role == "" {
		role = model.RoleUser
	}
	u := &model.User{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: hash,
		Role:         role,
	}
	if err := s.users.Create(ctx, u); err != nil {
		return nil, userErr(err)
	}
	return u, nil
}

// Update changes the provided fields of an account.
func (s *UserService) Update(ctx context.Context, id int, req *model.UpdateUserRequest) (*model.User, error) {
	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, userErr(err)
	}

	if req.Name != "" {
		u.Name = req.Name
	}
	if req.Email != "" {
		u.Email = req.Email
	}
	if req.Role != "" {
		u.Role = req.Role
	}
	if req.Password != "" {
		hash, err := s.auth.HashPassword(req.Password)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
		u.PasswordHash = hash
	}

	if err := s.users.Update(ctx, u); err != nil {
		return nil, userErr(err)
	}
	return u, nil
}

// Delete removes an account. Deleting the caller's own account is refused
// before any lookup.
func (s *UserService) Delete(ctx context.Context, callerID, id int) error {
	if callerID == id {
		return ErrCannotDeleteSelf
	}
	if err := s.users.Delete(ctx, id); err != nil {
		return userErr(err)
	}
	return nil
}
