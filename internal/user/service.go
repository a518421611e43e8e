// AngelaMos | 2026
// service.go

package user

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/ayavrik/yamdb-final/internal/access"
	"github.com/ayavrik/yamdb-final/internal/auth"
	"github.com/ayavrik/yamdb-final/internal/core"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) GetByUsername(
	ctx context.Context,
	username string,
) (*auth.UserInfo, error) {
	user, err := s.repo.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}

	return toUserInfo(user), nil
}

func (s *Service) GetByID(
	ctx context.Context,
	id string,
) (*auth.UserInfo, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	return toUserInfo(user), nil
}

// EnsureSignup resolves a signup request to an account row. The same
// (username, email) pair signing up again reuses the existing row, so a
// lost code can simply be re-requested; a partial collision is a
// per-field validation error.
func (s *Service) EnsureSignup(
	ctx context.Context,
	username, email string,
) (*auth.UserInfo, error) {
	email = strings.ToLower(email)

	existing, err := s.repo.GetByUsername(ctx, username)
	if err != nil && !errors.Is(err, core.ErrNotFound) {
		return nil, err
	}
	if existing != nil {
		if existing.Email != email {
			return nil, core.FieldError("username", "username already taken")
		}
		return toUserInfo(existing), nil
	}

	if byEmail, emailErr := s.repo.GetByEmail(ctx, email); emailErr == nil &&
		byEmail != nil {
		return nil, core.FieldError("email", "email already registered")
	} else if emailErr != nil && !errors.Is(emailErr, core.ErrNotFound) {
		return nil, emailErr
	}

	user := &User{
		ID:       uuid.New().String(),
		Username: username,
		Email:    email,
		Role:     string(access.RoleUser),
	}

	if err := s.repo.Create(ctx, user); err != nil {
		if errors.Is(err, core.ErrDuplicateKey) {
			return nil, core.FieldError(
				"username",
				"username or email already taken",
			)
		}
		return nil, err
	}

	return toUserInfo(user), nil
}

func (s *Service) GetMe(ctx context.Context, userID string) (*User, error) {
	if userID == "" {
		return nil, fmt.Errorf("get me: %w", core.ErrUnauthorized)
	}

	return s.repo.GetByID(ctx, userID)
}

// UpdateMe applies a partial self-profile update. A plain user sending a
// role field has it silently dropped; elevated roles may change their
// own. Everything else applies either way.
func (s *Service) UpdateMe(
	ctx context.Context,
	userID string,
	req UpdateUserRequest,
) (*User, error) {
	if userID == "" {
		return nil, fmt.Errorf("update me: %w", core.ErrUnauthorized)
	}

	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if req.Role != nil && user.HasPlainRole() {
		req.Role = nil
	}

	return s.apply(ctx, user, req)
}

func (s *Service) CreateUser(
	ctx context.Context,
	req CreateUserRequest,
) (*User, error) {
	role := req.Role
	if role == "" {
		role = string(access.RoleUser)
	}
	if _, ok := access.ParseRole(role); !ok {
		return nil, core.FieldError("role", "unknown role")
	}

	user := &User{
		ID:        uuid.New().String(),
		Username:  req.Username,
		Email:     strings.ToLower(req.Email),
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Bio:       req.Bio,
		Role:      role,
	}

	if err := s.repo.Create(ctx, user); err != nil {
		if errors.Is(err, core.ErrDuplicateKey) {
			return nil, core.FieldError(
				"username",
				"username or email already taken",
			)
		}
		return nil, err
	}

	return user, nil
}

func (s *Service) GetUser(
	ctx context.Context,
	username string,
) (*User, error) {
	return s.repo.GetByUsername(ctx, username)
}

// UpdateUser is the admin-console update; role changes are honored here.
func (s *Service) UpdateUser(
	ctx context.Context,
	username string,
	req UpdateUserRequest,
) (*User, error) {
	user, err := s.repo.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}

	return s.apply(ctx, user, req)
}

func (s *Service) DeleteUser(ctx context.Context, username string) error {
	user, err := s.repo.GetByUsername(ctx, username)
	if err != nil {
		return err
	}

	return s.repo.Delete(ctx, user.ID)
}

func (s *Service) ListUsers(
	ctx context.Context,
	params ListUsersParams,
) ([]User, int, error) {
	return s.repo.List(ctx, params)
}

func (s *Service) apply(
	ctx context.Context,
	user *User,
	req UpdateUserRequest,
) (*User, error) {
	if req.Username != nil {
		if *req.Username == "me" {
			return nil, core.FieldError(
				"username",
				`"me" is a reserved username`,
			)
		}
		user.Username = *req.Username
	}
	if req.Email != nil {
		user.Email = strings.ToLower(*req.Email)
	}
	if req.FirstName != nil {
		user.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		user.LastName = *req.LastName
	}
	if req.Bio != nil {
		user.Bio = *req.Bio
	}
	if req.Role != nil {
		if _, ok := access.ParseRole(*req.Role); !ok {
			return nil, core.FieldError("role", "unknown role")
		}
		user.Role = *req.Role
	}

	if err := s.repo.Update(ctx, user); err != nil {
		if errors.Is(err, core.ErrDuplicateKey) {
			return nil, core.FieldError(
				"username",
				"username or email already taken",
			)
		}
		return nil, err
	}

	return user, nil
}

func toUserInfo(u *User) *auth.UserInfo {
	return &auth.UserInfo{
		ID:       u.ID,
		Username: u.Username,
		Email:    u.Email,
		Role:     u.Role,
		IsActive: u.IsActive,
	}
}

var _ auth.UserProvider = (*Service)(nil)
